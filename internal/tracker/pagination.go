package tracker

import "github.com/noah-isme/staff-attendance/internal/models"

// TotalPages is ceil(count/pageSize), never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Page slices one page out of records. Page numbers start at 1. Out of range
// pages are not clamped; they yield an empty page.
func Page(records []models.AttendanceRecord, pageSize, pageNumber int) ([]models.AttendanceRecord, int) {
	total := TotalPages(len(records), pageSize)
	if pageSize <= 0 || pageNumber < 1 {
		return []models.AttendanceRecord{}, total
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(records) {
		return []models.AttendanceRecord{}, total
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return append([]models.AttendanceRecord(nil), records[start:end]...), total
}
