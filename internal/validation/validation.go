// Package validation checks restaurant payloads before they reach the store.
//
// Rules run in order and every failure is collected, so adding a rule never
// touches the handlers that call Validate.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/go-playground/validator/v10"
)

// Failure describes one rule a payload broke.
type Failure struct {
	Rule    string `json:"rule"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when one or more rules fail.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the failure messages in rule order.
func (e *Error) Messages() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Message)
	}
	return out
}

// IsValidationError reports whether err carries rule failures.
func IsValidationError(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// Rule is a single named predicate over a restaurant.
// Check returns a human readable message when the rule fails, "" otherwise.
type Rule struct {
	Name  string
	Field string
	Check func(r models.Restaurant) string
}

// Validator runs an ordered list of rules.
type Validator struct {
	rules []Rule
}

// New creates a validator with the given rules. With no rules it falls back
// to DefaultRules.
func New(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// With returns a copy of v with extra rules appended.
func (v *Validator) With(rules ...Rule) *Validator {
	combined := make([]Rule, 0, len(v.rules)+len(rules))
	combined = append(combined, v.rules...)
	combined = append(combined, rules...)
	return &Validator{rules: combined}
}

// Validate returns *Error when any rule fails.
func (v *Validator) Validate(r models.Restaurant) error {
	var failures []Failure
	for _, rule := range v.rules {
		if msg := rule.Check(r); msg != "" {
			failures = append(failures, Failure{Rule: rule.Name, Field: rule.Field, Message: msg})
		}
	}
	if len(failures) > 0 {
		return &Error{Failures: failures}
	}
	return nil
}

const NameMinLength = 2

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultRules is the rule list used when none is configured.
func DefaultRules() []Rule {
	return []Rule{NameLength()}
}

// NameLength requires at least NameMinLength characters in Name.
func NameLength() Rule {
	tag := fmt.Sprintf("min=%d", NameMinLength)
	return Rule{
		Name:  "name_min_length",
		Field: "Name",
		Check: func(r models.Restaurant) string {
			if err := validate.Var(r.Name, tag); err != nil {
				return fmt.Sprintf("Name must be at least %d characters", NameMinLength)
			}
			return ""
		},
	}
}
