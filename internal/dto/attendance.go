package dto

import "github.com/noah-isme/staff-attendance/internal/models"

// AttendanceList is one cached page of attendance records.
type AttendanceList struct {
	Records    []models.AttendanceRecord `json:"records"`
	Pagination models.Pagination         `json:"pagination"`
}

// AttendanceUpdateResult acknowledges a stored batch.
type AttendanceUpdateResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
}

// ConflictDetails lists the submitted record ids that double-book a shift slot.
type ConflictDetails struct {
	ConflictIDs []string `json:"conflict_ids"`
}

// FieldViolation pinpoints an invalid field of one submitted record.
type FieldViolation struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ExportFile is a rendered attendance export.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
