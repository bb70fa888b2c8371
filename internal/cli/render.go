package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/tracker"
)

var (
	okColor       = color.New(color.FgGreen)
	warnColor     = color.New(color.FgYellow)
	errColor      = color.New(color.FgRed)
	conflictColor = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.Bold)
)

func statusText(status models.AttendanceStatus) string {
	switch status {
	case models.AttendanceStatusPresent:
		return okColor.Sprint(status)
	case models.AttendanceStatusAbsent:
		return errColor.Sprint(status)
	case models.AttendanceStatusLeave:
		return warnColor.Sprint(status)
	default:
		return string(status)
	}
}

func renderPage(w io.Writer, view tracker.PageView) {
	fmt.Fprintf(w, "%s  mode=%s  %s\n", headerColor.Sprint(view.Scope.String()), view.Mode, view.Path)
	renderRows(w, view.Rows)
	fmt.Fprintf(w, "Page %d of %d (%d records)", view.Page, view.TotalPages, view.Total)
	if view.Pending > 0 {
		fmt.Fprintf(w, "  %s", warnColor.Sprintf("%d pending", view.Pending))
	}
	if view.Conflicts > 0 {
		fmt.Fprintf(w, "  %s", conflictColor.Sprintf("%d in conflict", view.Conflicts))
	}
	fmt.Fprintln(w)
}

func renderRows(w io.Writer, rows []tracker.Row) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAFF ID\tNAME\tDEPARTMENT\tROLE\tDATE\tSHIFT\tSTATUS\t")
	for _, row := range rows {
		marker := ""
		switch {
		case row.Conflict:
			marker = conflictColor.Sprint("!! conflict")
		case row.Edited:
			marker = warnColor.Sprint("* edited")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.StaffID, row.Name, row.Department, row.Role, row.Date, row.Shift, statusText(row.Status), marker)
	}
	_ = tw.Flush()
}

func renderPending(w io.Writer, edits []tracker.PendingEdit) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAFF ID\tNAME\tDATE\tCHANGE")
	for _, edit := range edits {
		after := edit.Record()
		change := ""
		if edit.Patch.Status != nil {
			change += fmt.Sprintf("status %s -> %s ", edit.Base.Status, after.Status)
		}
		if edit.Patch.Shift != nil {
			change += fmt.Sprintf("shift %s -> %s", edit.Base.Shift, after.Shift)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", edit.Base.StaffID, edit.Base.Name, edit.Base.Date, change)
	}
	_ = tw.Flush()
}

func renderSummary(w io.Writer, summary *models.AttendanceSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s to %s\n", summary.From, summary.To)
	fmt.Fprintf(tw, "Present\t%s\n", okColor.Sprint(summary.TotalPresent))
	fmt.Fprintf(tw, "Absent\t%s\n", errColor.Sprint(summary.TotalAbsent))
	fmt.Fprintf(tw, "Leave\t%s\n", warnColor.Sprint(summary.TotalLeave))
	fmt.Fprintf(tw, "Total\t%d\n", summary.Total)
	_ = tw.Flush()
}

func tally(records []models.AttendanceRecord, from, to string) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{From: from, To: to, Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.AttendanceStatusPresent:
			summary.TotalPresent++
		case models.AttendanceStatusAbsent:
			summary.TotalAbsent++
		case models.AttendanceStatusLeave:
			summary.TotalLeave++
		}
	}
	return summary
}
