package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// registerVocabulary adds the closed attendance vocabularies as validator tags.
func registerVocabulary(v *validator.Validate) {
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.Department(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("staff_role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
		return models.Shift(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
}
