// Package form binds and validates the login and registration forms.
package form

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Login is the body of POST /login.
type Login struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// Register is the body of POST /register.
type Register struct {
	Email     string `form:"email" binding:"required,email,max=255"`
	Password  string `form:"password" binding:"required,min=6,max=72"`
	FirstName string `form:"firstName" binding:"required,max=100"`
	LastName  string `form:"lastName" binding:"required,max=100"`
}

// FieldErrors maps form field names to a message for the first failed rule.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe.Field())
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// fieldName turns a struct field name into its form key, e.g. FirstName -> firstName.
func fieldName(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
