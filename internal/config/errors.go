package config

import (
	"fmt"
	"strings"
)

// MissingFileError is returned when the configuration file does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// SerializationError reports a document that could not be parsed at all.
type SerializationError struct {
	Path   string
	Format string
	Cause  error
}

func (e *SerializationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s file %s: %v", e.Format, e.Path, e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a single field that failed validation. Field is the
// dotted document path, e.g. "vps.ssh_key_path".
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("field '%s' %s: %s", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("field '%s' %s", e.Field, e.Reason)
}

// ValidationErrors collects every field that failed a single validation pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "config validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.As and errors.Is.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

// HasField reports whether a failure was recorded for the given field path.
func (e ValidationErrors) HasField(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}
