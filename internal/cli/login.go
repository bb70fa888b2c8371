package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/staff-attendance/internal/client"
)

// LoginCmd signs in to the API and prints the access token.
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		Long:  "Sign in to the attendance API. Export the printed token as ATTENDANCE_API_TOKEN.",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			form := client.LoginForm{Email: email, Password: password}
			if problems := form.Validate(); len(problems) > 0 {
				fields := make([]string, 0, len(problems))
				for field := range problems {
					fields = append(fields, field)
				}
				sort.Strings(fields)
				for _, field := range fields {
					errColor.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, problems[field])
				}
				return fmt.Errorf("login form has %d invalid field(s)", len(problems))
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			if e.api == nil {
				return fmt.Errorf("login needs --source api")
			}

			res, err := e.api.Login(cmd.Context(), form.Email, form.Password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			okColor.Fprintf(cmd.ErrOrStderr(), "✓ Signed in as %s (%s)\n", res.User.FullName, res.User.Role)
			fmt.Fprintln(cmd.OutOrStdout(), res.AccessToken)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}
