package loader

import (
	"errors"
	"fmt"
)

// Error types for budget file loading

// FileNotFoundError is returned when the input file does not exist.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s: file not found", e.Path)
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

func (e *FileNotFoundError) GetPath() string {
	return e.Path
}

// SchemaMismatchError is returned when a file does not have the expected
// layout: a missing sheet, a missing column, or an unsupported format.
type SchemaMismatchError struct {
	Path   string
	Sheet  string // Empty for delimited files
	Column string // Empty when the whole sheet is missing
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	location := e.Path
	if e.Sheet != "" {
		location = fmt.Sprintf("%s[%s]", e.Path, e.Sheet)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: %s: column %q", location, e.Reason, e.Column)
	}
	return fmt.Sprintf("%s: %s", location, e.Reason)
}

func (e *SchemaMismatchError) GetPath() string {
	return e.Path
}

func (e *SchemaMismatchError) GetSheet() string {
	return e.Sheet
}

// ParseError is returned when a cell cannot be parsed, or when the file
// itself is corrupt (Row is 0 in that case).
type ParseError struct {
	Path   string
	Sheet  string
	Row    int // 1-based, header row included
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	location := e.Path
	if e.Sheet != "" {
		location = fmt.Sprintf("%s[%s]", e.Path, e.Sheet)
	}
	if e.Row > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Row)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: invalid %s value %q: %v", location, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %v", location, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) GetPath() string {
	return e.Path
}

func (e *ParseError) GetRow() int {
	return e.Row
}

// IsNotFound reports whether err is or wraps a FileNotFoundError.
func IsNotFound(err error) bool {
	var target *FileNotFoundError
	return errors.As(err, &target)
}

// IsSchemaMismatch reports whether err is or wraps a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var target *SchemaMismatchError
	return errors.As(err, &target)
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
