package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

// SummaryCmd prints status totals for a day or window.
func SummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count Present, Absent and Leave",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()

			if api := e.summarizer(); api != nil {
				scope, err := scopeFromFlags(cmd)
				if err != nil {
					return err
				}
				summary, err := api.Summary(ctx, tracker.Query{Scope: scope})
				if err != nil {
					return err
				}
				renderSummary(cmd.OutOrStdout(), summary)
				return nil
			}

			s := e.session()
			defer s.Close()
			if err := loadScope(ctx, cmd, s); err != nil {
				return err
			}
			from, to := s.Scope().Bounds(Clock())
			renderSummary(cmd.OutOrStdout(), tally(s.Records(), from, to))
			return nil
		},
	}
	addScopeFlags(cmd)
	return cmd
}

func scopeFromFlags(cmd *cobra.Command) (tracker.Scope, error) {
	date, _ := cmd.Flags().GetString("date")
	days, _ := cmd.Flags().GetInt("days")
	if days > 0 {
		return tracker.RollingWindow(days), nil
	}
	if date == "" {
		date = Clock().Format(models.DateLayout)
	}
	if _, err := tracker.ParseDate(date); err != nil {
		return tracker.Scope{}, err
	}
	return tracker.SpecificDate(date), nil
}
