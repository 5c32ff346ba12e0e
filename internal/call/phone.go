package call

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vburojevic/obcall/internal/domain"
)

// PhoneValidator checks that a destination number is dialable for a deployment.
type PhoneValidator interface {
	Validate(number string) error
}

// PhoneValidatorFunc adapts a function to PhoneValidator.
type PhoneValidatorFunc func(number string) error

func (f PhoneValidatorFunc) Validate(number string) error { return f(number) }

// ExactLength requires exactly n characters, e.g. 12 for "+1NXXNXXXXXX".
func ExactLength(n int) PhoneValidator {
	return PhoneValidatorFunc(func(number string) error {
		if utf8.RuneCountInString(number) != n {
			return &domain.ValidationError{Field: "destination_number", Message: fmt.Sprintf("must be exactly %d characters", n)}
		}
		return nil
	})
}

// MaxLength allows at most n characters.
func MaxLength(n int) PhoneValidator {
	return PhoneValidatorFunc(func(number string) error {
		if utf8.RuneCountInString(number) > n {
			return &domain.ValidationError{Field: "destination_number", Message: fmt.Sprintf("must be at most %d characters", n)}
		}
		return nil
	})
}

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// E164 requires a plus sign, a country code and at most 15 digits.
func E164() PhoneValidator {
	return PhoneValidatorFunc(func(number string) error {
		if !e164.MatchString(number) {
			return &domain.ValidationError{Field: "destination_number", Message: "must be an E.164 number such as +12285332612"}
		}
		return nil
	})
}

// ParsePhonePolicy builds a validator from "exact:<n>", "max:<n>" or "e164".
// A bare policy name takes its length from length.
func ParsePhonePolicy(policy string, length int) (PhoneValidator, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(policy)), ":")
	if hasArg {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid phone policy length %q", arg)
		}
		length = n
	}
	switch name {
	case "", "e164":
		return E164(), nil
	case "exact", "max":
		if length <= 0 {
			return nil, fmt.Errorf("phone policy %q needs a positive length", name)
		}
		if name == "exact" {
			return ExactLength(length), nil
		}
		return MaxLength(length), nil
	default:
		return nil, fmt.Errorf("unknown phone policy %q (expected exact, max or e164)", name)
	}
}
