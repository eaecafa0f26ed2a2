package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// validate collects errors and returns a *ValidationError if any exist.
func validate(checks ...func() string) error {
	var errs []string
	for _, check := range checks {
		if msg := check(); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// requirePresent only checks presence; the content of the value is not inspected.
func requirePresent(field, value string) string {
	if value == "" {
		return fmt.Sprintf("%s is required", field)
	}
	return ""
}

func requireSet(field string, value RequiredInt) string {
	if !value.Valid {
		return fmt.Sprintf("%s is required", field)
	}
	return ""
}

// FlexibleInt decodes a JSON number or a numeric JSON string. null, false and "" decode to zero.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not an integer", s)
		}
		*f = FlexibleInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleInt(n)
	return nil
}

// RequiredInt is a FlexibleInt that also records whether the client sent a value at all.
// Zero, null, false and "" leave Valid unset; any numeric string, "0" included, sets it.
type RequiredInt struct {
	Value int
	Valid bool
}

// NewRequiredInt returns n as a RequiredInt, set unless n is zero.
func NewRequiredInt(n int) RequiredInt {
	return RequiredInt{Value: n, Valid: n != 0}
}

func (r *RequiredInt) UnmarshalJSON(data []byte) error {
	var n FlexibleInt
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	r.Value = int(n)
	r.Valid = n != 0

	var s string
	if json.Unmarshal(data, &s) == nil && strings.TrimSpace(s) != "" {
		r.Valid = true
	}
	return nil
}

// FlexibleString decodes a JSON string, or a number or boolean in its text form.
// null, false, 0 and "" all decode to the empty string.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty value")
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*f = ""
		return nil
	case bytes.Equal(data, []byte("true")):
		*f = "true"
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleString(s)
		return nil
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("%s is not a string", data)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%s is not a string: %w", data, err)
	}
	if n == 0 {
		*f = ""
		return nil
	}
	*f = FlexibleString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}
