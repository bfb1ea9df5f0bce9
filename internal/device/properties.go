package device

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Properties is the untyped bag a create or update request carries, as
// decoded from a JSON body or form post.
type Properties map[string]any

// String returns a required string property.
func (p Properties) String(key string) (string, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidDevice, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidDevice, key)
	}
	return s, nil
}

// Int returns a required integer property. json.Number values (bodies
// decoded with UseNumber), JSON numbers without a fractional part, Go
// integer types and base-10 strings are accepted. A json.Number outside the
// int64 range or with a fraction is rejected rather than rounded.
func (p Properties) Int(key string) (int64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidDevice, key)
	}

	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			break
		}
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			break
		}
		return int64(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v), nil
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidDevice, key)
}

// genericFields validates the keys every variant shares and returns the
// normalised name and description.
func genericFields(p Properties) (name, description string, err error) {
	name, err = p.String("name")
	if err != nil {
		return "", "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name cannot be empty", ErrInvalidDevice)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}

	description, err = p.String("description")
	if err != nil {
		return "", "", err
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", "", fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDevice, maxDescriptionLength)
	}

	return name, description, nil
}
