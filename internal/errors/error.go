package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryDispatch   Category = "dispatch"
	CategoryConversion Category = "conversion"
	CategoryTemplate   Category = "template"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// Location represents a source location, usually inside a
// configuration or template file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// RoutraError is a structured error with source location, suggestions,
// and documentation.
type RoutraError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (dispatch, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file location where the error occurred.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RoutraError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RoutraError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error.
func (e *RoutraError) WithLocation(file string, line, column int) *RoutraError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RoutraError) WithSuggestion(s string) *RoutraError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *RoutraError) WithExample(ex string) *RoutraError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RoutraError) WithDetail(d string) *RoutraError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *RoutraError) WithContext(lines []string) *RoutraError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *RoutraError) Wrap(err error) *RoutraError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a RoutraError from a registered error code.
func New(code string) *RoutraError {
	template, ok := registry[code]
	if !ok {
		return &RoutraError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RoutraError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new RoutraError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RoutraError {
	return &RoutraError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a RoutraError.
func FromError(err error, code string) *RoutraError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RoutraError); ok {
		return re
	}
	return New(code).Wrap(err)
}
