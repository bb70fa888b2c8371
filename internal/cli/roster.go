package cli

import (

	"github.com/spf13/cobra"

	"github.com/noah-isme/staff-attendance/internal/roster"
)

// RosterCmd manages the local SQLite roster.
func RosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the local roster database",
	}

	importCmd := &cobra.Command{
		Use:   "import <fixture.json>",
		Short: "Load staff from a JSON fixture into the --db SQLite roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("db")
			db, err := openSQLite(path)
			if err != nil {
				return err
			}
			defer db.Close()

			members, err := roster.NewFileSource(args[0], Clock).Staff()
			if err != nil {
				return err
			}
			n, err := roster.NewSQLiteSource(db, Clock).ImportStaff(cmd.Context(), members)
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "✓ Imported %d staff into %s\n", n, path)
			return nil
		},
	}
	cmd.AddCommand(importCmd)
	return cmd
}
