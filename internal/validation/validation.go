// Package validation checks caller input and reports failures as a list of
// human-readable messages.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hoanghai1803/bloglist/internal/models"
)

// Messages returned for rejected input.
const (
	MsgMissingUserFields = "Missing required fields: 'name', 'username' and 'password'"
	MsgMissingUsername   = "Missing required field: 'username'"
	MsgInvalidEmail      = "Validation isEmail on username failed"
	MsgShortPassword     = "Password must be at least 6 characters long"
	MsgInvalidJSON       = "Invalid JSON body"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// Error is a validation failure carrying one or more messages.
type Error struct {
	Messages []string
}

// New returns an Error with the given messages.
func New(messages ...string) *Error {
	return &Error{Messages: messages}
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, ", ")
}

// As reports whether err is, or wraps, a validation Error.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("isEmail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// NewUser is a registration request.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,isEmail"`
	Password string `json:"password" validate:"required,min=6"`
}

// ValidateNewUser checks a registration request. A missing field is reported
// on its own; otherwise the first failing rule is reported.
func ValidateNewUser(u NewUser) error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating user: %w", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return New(MsgMissingUserFields)
		}
	}
	return New(messageFor(fieldErrs[0]))
}

// ValidateUsername checks a replacement username.
func ValidateUsername(username string) error {
	err := validate.Var(username, "required,isEmail")
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating username: %w", err)
	}
	if fieldErrs[0].Tag() == "required" {
		return New(MsgMissingUsername)
	}
	return New(MsgInvalidEmail)
}

// ValidateYear checks that year lies between the first blog year and the
// year of now, inclusive.
func ValidateYear(year int, now time.Time) error {
	rule := fmt.Sprintf("gte=%d,lte=%d", models.MinBlogYear, now.Year())
	if err := validate.Var(year, rule); err != nil {
		return New(YearMessage(now))
	}
	return nil
}

// YearMessage is the rejection message for an out-of-range or non-numeric
// blog year.
func YearMessage(now time.Time) string {
	return fmt.Sprintf("Year must be a number between %d and %d", models.MinBlogYear, now.Year())
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "isEmail":
		return MsgInvalidEmail
	case "min":
		return MsgShortPassword
	default:
		return fmt.Sprintf("Validation %s on %s failed", fe.Tag(), strings.ToLower(fe.Field()))
	}
}
