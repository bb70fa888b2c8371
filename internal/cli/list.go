package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/staff-attendance/internal/tracker"
)

// ListCmd prints one page of attendance.
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show attendance for a day or a rolling window",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			s := e.session()
			defer s.Close()

			ctx := cmd.Context()
			if view, _ := cmd.Flags().GetBool("view"); view {
				if err := s.SetMode(ctx, tracker.ModeView); err != nil {
					return err
				}
				if days, _ := cmd.Flags().GetInt("days"); days > 0 {
					if err := s.LoadWindow(ctx, days); err != nil {
						return err
					}
				}
			} else if err := loadScope(ctx, cmd, s); err != nil {
				return err
			}
			if err := applyFilters(cmd, s); err != nil {
				return err
			}
			if page, _ := cmd.Flags().GetInt("page"); page > 1 && !s.GoToPage(page) {
				return fmt.Errorf("page %d is out of range (%d pages)", page, s.View().TotalPages)
			}

			renderPage(cmd.OutOrStdout(), s.View())
			return nil
		},
	}
	addScopeFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().Int("page", 1, "Page to show")
	cmd.Flags().Bool("view", false, "Read-only history over the rolling window")
	return cmd
}
