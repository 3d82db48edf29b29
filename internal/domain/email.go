package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailRules = validator.New()

// Email is a normalized email address. The zero value is invalid;
// construct one through NewEmail.
type Email struct {
	value string
}

// NewEmail trims and lowercases raw and validates it against the email
// grammar. Two addresses that differ only in case or surrounding
// whitespace produce equal Email values.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if err := emailRules.Var(normalized, "required,email"); err != nil {
		return Email{}, ErrEmailInvalid
	}
	return Email{value: normalized}, nil
}

func (e Email) String() string {
	return e.value
}
