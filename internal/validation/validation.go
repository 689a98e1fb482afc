// Package validation checks user-supplied field values before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"messenger/internal/models"

	"github.com/go-playground/validator/v10"
)

var loginRegex = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return loginRegex.MatchString(fl.Field().String())
	})
	return v
}

// SignUp is the input of account creation.
type SignUp struct {
	Login    string `validate:"required,max=50,login"`
	Password string `validate:"required,max=72"`
	Phone    string `validate:"omitempty,max=16"`
}

// ValidateSignUp checks login, password and phone.
func ValidateSignUp(in SignUp) error {
	return toAppError(validate.Struct(in))
}

// ValidateLogin checks a login used as a lookup or relationship target.
func ValidateLogin(login string) error {
	return toAppError(validate.Var(login, "required,max=50,login"), "login")
}

// ValidateMessageText enforces a non-empty text of at most 300 characters.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("message text is required")
	}
	return toAppError(validate.Var(text, fmt.Sprintf("max=%d", models.MaxMessageLen)), "message text")
}

// ValidateStatus enforces a status of at most 140 characters.
func ValidateStatus(status string) error {
	return toAppError(validate.Var(status, fmt.Sprintf("max=%d", models.MaxStatusLen)), "status")
}

// ValidateOffset rejects negative page offsets.
func ValidateOffset(offset int) error {
	return toAppError(validate.Var(offset, "min=0"), "offset")
}

func toAppError(err error, field ...string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	fe := verrs[0]
	name := strings.ToLower(fe.Field())
	if len(field) > 0 {
		name = field[0]
	}
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(name + " is required")
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s cannot be longer than %s characters", name, fe.Param()))
	case "min":
		return models.NewValidationError(fmt.Sprintf("%s must be at least %s", name, fe.Param()))
	case "login":
		return models.NewValidationError(name + " may only contain letters, digits and . _ @ -")
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", name))
	}
}
