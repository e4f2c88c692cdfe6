// Package errors provides structured, actionable error messages for
// the Routra CLI and server.
//
// The errors package implements an error system that:
//   - Shows exact file locations (file, line, column) when available
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with code examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - dispatch: View resolution and invocation errors
//   - conversion: URL parameter conversion errors
//   - template: Fallback template lookup and render errors
//   - config: routra.json configuration errors
//   - cli: Command-line errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E120").
//	    WithLocation("routra.json", 7, 3).
//	    WithSuggestion("Remove the trailing comma")
//
//	errors.PrintError(err)
package errors
