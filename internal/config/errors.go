package config

import "fmt"

// FieldError names the offending field of an invalid configuration.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

func mountField(scheme string, idx int, field string) string {
	if scheme == "" {
		return fmt.Sprintf("Mount[#%d].%s", idx, field)
	}
	return fmt.Sprintf("Mount[%s].%s", scheme, field)
}
