package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// encode converts the canonical string form of v into the value bound for c.
// Booleans are bound as 0/1 so every engine stores them the same way.
// In a nullable column "" is bound as NULL.
func encode(c Column, v string) (any, error) {
	if c.AllowNull && v == "" {
		return nil, nil
	}
	switch c.Type {
	case Integer:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q expects an integer, got %q", ErrInvalidValue, c.Name, v)
		}
		return n, nil
	case Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: column %q expects a boolean, got %q", ErrInvalidValue, c.Name, v)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		if c.MaxLength > 0 && utf8.RuneCountInString(v) > c.MaxLength {
			return nil, fmt.Errorf("%w: column %q is limited to %d characters", ErrInvalidValue, c.Name, c.MaxLength)
		}
		return v, nil
	}
}

// decode converts a driver cell into the canonical string form for c.
// NULL decodes to "".
func decode(c Column, cell any) (string, error) {
	if cell == nil {
		return "", nil
	}
	switch c.Type {
	case Integer:
		switch v := cell.(type) {
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10), nil
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return strconv.FormatInt(n, 10), nil
			}
		case bool:
			if v {
				return "1", nil
			}
			return "0", nil
		}
	case Boolean:
		switch v := cell.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case int64:
			return strconv.FormatBool(v != 0), nil
		case float64:
			return strconv.FormatBool(v != 0), nil
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return strconv.FormatBool(b), nil
			}
		}
	default:
		switch v := cell.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
	}
	return "", fmt.Errorf("%w: cannot decode %T for %v column %q", ErrInvalidValue, cell, c.Type, c.Name)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
