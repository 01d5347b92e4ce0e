package model

import (
	"strconv"
	"strings"
)

// Quantity is a portion count that decodes from either a JSON number or a
// numeric string ("3"). Anything else fails instead of becoming zero.
type Quantity int

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return Validationf("quantity %s is not a whole number", s)
		}
		s = unquoted
	}
	n, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = Quantity(n)
	return nil
}

// ParseQuantity converts a portion count to a non-negative integer.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, Validationf("quantity %q is not a whole number", s)
	}
	if n < 0 {
		return 0, Validationf("quantity must not be negative")
	}
	return n, nil
}
