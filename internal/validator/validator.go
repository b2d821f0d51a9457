// Package validator performs the load-time checks of processor
// configurations. All violations are collected so a configuration file can
// be fixed in one go, rather than stopping at the first problem.
package validator

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationResult represents the result of processor validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Line    int // Optional: TOML line number
	Fix     string
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// NewResult returns an empty, valid result
func NewResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}
}

// AddError records an error and marks the result invalid
func (r *ValidationResult) AddError(field, message, fix string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Fix: fix})
	r.Valid = false
}

// AddWarning records a warning
func (r *ValidationResult) AddWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Merge appends the findings of other to r
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Valid = len(r.Errors) == 0
}

// Format returns a human-readable string representation of the validation result
func (r *ValidationResult) Format(name string) string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString(fmt.Sprintf("✓ %s: validation passed\n", name))
	} else {
		sb.WriteString(fmt.Sprintf("✗ %s: validation failed with %d error(s)\n", name, len(r.Errors)))
	}

	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("\nERROR: %s\n", err.Message))
		if err.Field != "" {
			sb.WriteString(fmt.Sprintf("  Field: %s\n", err.Field))
		}
		if err.Line > 0 {
			sb.WriteString(fmt.Sprintf("  Line: %d\n", err.Line))
		}
		if err.Fix != "" {
			sb.WriteString(fmt.Sprintf("  Fix: %s\n", err.Fix))
		}
	}

	for _, warn := range r.Warnings {
		sb.WriteString(fmt.Sprintf("\nWARNING: %s\n", warn.Message))
		if warn.Field != "" {
			sb.WriteString(fmt.Sprintf("  Field: %s\n", warn.Field))
		}
		if warn.Hint != "" {
			sb.WriteString(fmt.Sprintf("  Hint: %s\n", warn.Hint))
		}
	}

	return sb.String()
}

// sortedNames returns the keys of a string keyed map in lexical order
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
