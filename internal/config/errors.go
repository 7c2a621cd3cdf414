package config

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when the configuration file does not exist.
type NotFoundError struct {
	Err  error
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// FormatError is returned when the configuration file cannot be parsed into a mapping.
type FormatError struct {
	Err  error
	Path string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("config file %s has invalid format: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when a required section or key is missing.
type SchemaError struct {
	Section string
	Keys    []string
}

func (e *SchemaError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("config section %q is missing required keys: %s", e.Section, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("config is missing required section: %s", e.Section)
}

// PromptLookupError is returned when a named prompt template is not defined.
type PromptLookupError struct {
	Name string
}

func (e *PromptLookupError) Error() string {
	return fmt.Sprintf("prompt not found: %s", e.Name)
}

// PromptSubstitutionError is returned when a template placeholder has no value.
type PromptSubstitutionError struct {
	Name        string
	Placeholder string
}

func (e *PromptSubstitutionError) Error() string {
	return fmt.Sprintf("prompt %s: missing value for placeholder {%s}", e.Name, e.Placeholder)
}
