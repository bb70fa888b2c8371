// Package cli implements the attendance operator command line.
package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the attendance command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "attendance",
		Short: "Record staff attendance and schedule shifts",
		Long: `attendance loads a day (or a rolling window) of staff attendance, lets you
mark statuses and assign shifts, and submits every change as one batch.

Sources: the attendance API (default), a JSON roster fixture, or a local SQLite roster.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("source", sourceAPI, "Data source: api, fixture or sqlite")
	flags.String("file", "", "Roster fixture JSON (with --source fixture)")
	flags.String("db", "", "Roster SQLite database (with --source sqlite)")
	flags.String("api-url", "", "Attendance API base URL (overrides ATTENDANCE_API_URL)")
	flags.String("token", "", "Bearer token (overrides ATTENDANCE_API_TOKEN)")
	flags.Int("page-size", 0, "Rows per page (overrides ATTENDANCE_PAGE_SIZE)")

	root.AddCommand(LoginCmd())
	root.AddCommand(ListCmd())
	root.AddCommand(MarkCmd())
	root.AddCommand(AssignCmd())
	root.AddCommand(SummaryCmd())
	root.AddCommand(RosterCmd())
	return root
}
