package mauro

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of an import run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	err := importer.Run(ctx, selection)
//	if errors.Is(err, mauro.ErrConfig) {
//	    // abort before touching the catalog
//	}
var (
	// ErrConfig indicates bad run configuration (API URL, API key, namespace default).
	// Fatal for the whole run.
	ErrConfig = errors.New("configuration error")

	// ErrFileStructure indicates a structurally unusable input file.
	// Fatal for that file only.
	ErrFileStructure = errors.New("file structure error")

	// ErrHeader indicates duplicate or malformed header cells.
	ErrHeader = errors.New("header error")

	// ErrMissingRequiredField indicates a required hierarchy column is neither
	// in the header nor supplied as an override.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrIncompletePath indicates a row cannot be addressed in the catalog.
	// Fatal for that row only.
	ErrIncompletePath = errors.New("incomplete path")

	// ErrLookup indicates the catalog lookup did not yield a writable node.
	ErrLookup = errors.New("lookup failure")

	// ErrNotImplemented indicates a catalog write that is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSourceDatabase indicates a failure talking to a relational source during extraction.
	ErrSourceDatabase = errors.New("source database error")
)

// ConfigError describes a configuration value that failed a local format check.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// HeaderError reports duplicate header names in one file.
type HeaderError struct {
	File       string
	Duplicates []string
	Reason     string
}

func (e *HeaderError) Error() string {
	if len(e.Duplicates) > 0 {
		return fmt.Sprintf("%s: duplicate header(s): %s", e.File, strings.Join(e.Duplicates, ", "))
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrHeader || target == ErrFileStructure
}

// MissingRequiredFieldError lists required hierarchy columns that cannot be resolved.
type MissingRequiredFieldError struct {
	File   string
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: required column(s) not in header and not overridden: %s",
		e.File, strings.Join(e.Fields, ", "))
}

func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField || target == ErrFileStructure
}

// FieldCountError reports a row whose field count differs from the header.
type FieldCountError struct {
	File string
	Row  int
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	if e.Got > 0 {
		return fmt.Sprintf("%s: row %d has %d fields, header has %d", e.File, e.Row, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: row %d field count does not match header (%d fields)", e.File, e.Row, e.Want)
}

func (e *FieldCountError) Unwrap() error { return ErrFileStructure }

// IncompletePathError reports a row whose hierarchy cannot form a path.
type IncompletePathError struct {
	Row     int
	Missing string
}

func (e *IncompletePathError) Error() string {
	return fmt.Sprintf("row %d: incomplete path: %s is absent", e.Row, e.Missing)
}

func (e *IncompletePathError) Unwrap() error { return ErrIncompletePath }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrSourceDatabase):
		return ExitSourceDBError
	}

	// Cobra reports usage problems as plain errors
	errStr := err.Error()
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"required flag",
		"invalid argument",
		"if any flags in the group",
		"at least one of the flags in the group",
		"none of the others can be",
	}
	for _, p := range usagePatterns {
		if strings.Contains(errStr, p) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
