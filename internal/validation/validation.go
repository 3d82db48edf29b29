// Package validation runs structural checks on command inputs before their
// handlers execute. Rule sets are declared as `validate` tags on the command
// struct, so registering a new command means tagging its input type; the
// pipeline itself never changes.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single failed rule on a named field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every violated rule of a command, not just the first.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

type Pipeline struct {
	validate *validator.Validate
}

func NewPipeline() *Pipeline {
	return &Pipeline{validate: validator.New()}
}

// Check evaluates every rule on cmd and returns a *Error listing all
// violations, or nil when the command is structurally valid.
func (p *Pipeline) Check(cmd any) error {
	err := p.validate.Struct(cmd)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-rule failure (e.g. cmd is not a struct); surface as a single violation.
		return &Error{Violations: []Violation{{Field: "", Message: err.Error()}}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return &Error{Violations: violations}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}
