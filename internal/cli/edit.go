package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

// MarkCmd sets the attendance status of staff on a day and submits.
func MarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark <staff>...",
		Short: "Mark staff Present, Absent or Leave",
		Long: `Mark one or more staff (by staff ID or record id) with a status and submit
the batch. Statuses cannot be recorded for future days.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			return runEdits(cmd, args, tracker.FieldStatus, status)
		},
	}
	cmd.Flags().String("date", "", "Day to edit (YYYY-MM-DD, default today)")
	cmd.Flags().String("status", string(models.AttendanceStatusPresent), "Present, Absent or Leave")
	cmd.Flags().Bool("dry-run", false, "Show the pending changes without submitting")
	return cmd
}

// AssignCmd assigns a shift to staff on a day and submits. On future days
// the batch is checked for double-booked slots first.
func AssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <staff>...",
		Short: "Assign staff to a shift",
		Long: `Assign one or more staff to a shift on a day. For future days this is shift
scheduling: two staff of the same department and role may not share a shift.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, _ := cmd.Flags().GetString("shift")
			return runEdits(cmd, args, tracker.FieldShift, shift)
		},
	}
	cmd.Flags().String("date", "", "Day to edit (YYYY-MM-DD, default today)")
	cmd.Flags().String("shift", "", "Morning, Afternoon or Night")
	cmd.Flags().Bool("dry-run", false, "Show the pending changes without submitting")
	_ = cmd.MarkFlagRequired("shift")
	return cmd
}

func runEdits(cmd *cobra.Command, refs []string, field tracker.Field, value string) error {
	if !field.Allows(value) {
		return fmt.Errorf("invalid %s %q", field, value)
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	s := e.session()
	defer s.Close()

	ctx := cmd.Context()
	if err := loadScope(ctx, cmd, s); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ref := range refs {
		record, ok := s.Find(ref)
		if !ok {
			return fmt.Errorf("no staff %q on %s", ref, s.Scope().Date)
		}
		if err := s.Edit(record.ID, field, value); err != nil {
			if errors.Is(err, tracker.ErrStatusOnFutureDate) {
				return fmt.Errorf("%s: %w\nHint: use assign to schedule shifts on future days", record.StaffID, err)
			}
			return fmt.Errorf("%s: %w", record.StaffID, err)
		}
	}

	pending := s.Pending()
	renderPending(out, pending)
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		warnColor.Fprintf(out, "Dry run: %d change(s) not submitted (%s)\n", len(pending), s.EditPath())
		return nil
	}

	err = s.Submit(ctx)
	var conflictErr *tracker.ConflictError
	var transportErr *tracker.TransportError
	switch {
	case errors.As(err, &conflictErr):
		conflictColor.Fprintf(out, "Scheduling conflict: %d staff share a shift with a colleague of the same department and role\n", len(conflictErr.IDs))
		s.ShowConflictsOnly(true)
		renderRows(out, s.View().Rows)
		return fmt.Errorf("nothing submitted, resolve the conflicts and retry")
	case errors.As(err, &transportErr):
		return fmt.Errorf("%w\nHint: nothing was lost, run the command again to retry", transportErr)
	case err != nil:
		return err
	}
	okColor.Fprintf(out, "✓ Submitted %d change(s) for %s\n", len(pending), s.Scope().String())
	return nil
}
