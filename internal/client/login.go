package client

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoginForm collects operator credentials before any request is sent.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

var formValidator = validator.New()

// Validate returns a message per invalid field, keyed "email" or "password".
// An empty map means the form can be submitted.
func (f LoginForm) Validate() map[string]string {
	problems := make(map[string]string)
	f.Email = strings.TrimSpace(f.Email)
	err := formValidator.Struct(f)
	if err == nil {
		return problems
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		problems["form"] = err.Error()
		return problems
	}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			problems[field] = field + " is required"
		case "email":
			problems[field] = "enter a valid email address"
		case "min":
			problems[field] = field + " must be at least " + fe.Param() + " characters"
		default:
			problems[field] = field + " is invalid"
		}
	}
	return problems
}
