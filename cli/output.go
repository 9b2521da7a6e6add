package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/asaidimu/go-mongosql/core/query"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // SQL was generated
	ExitFailure      = 1 // The query structure did not compile
	ExitCommandError = 2 // Bad flags, unreadable input, invalid config
)

// Error codes reported in JSON output.
const (
	ErrCodeUnknownOperator = "unknown_operator"
	ErrCodeMalformedSpec   = "malformed_spec"
	ErrCodeUnsupported     = "unsupported_for_dialect"
	ErrCodeInvalidInput    = "invalid_input"
	ErrCodeGeneric         = "error"
)

// ExitError carries the exit code a command failed with.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CompileResult is the JSON payload of a successful compilation.
type CompileResult struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect"`
}

// CLIResponse is the JSON envelope for errors.
type CLIResponse struct {
	Error *CLIError `json:"error"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Text errors go here (defaults to Writer)
}

// SQL prints generated SQL.
func (f *OutputFormatter) SQL(sql string, d query.Dialect) error {
	if f.Format == "json" {
		return f.JSON(CompileResult{SQL: sql, Dialect: d.String()})
	}
	_, err := fmt.Fprintln(f.Writer, sql)
	return err
}

// JSON writes v as a single JSON document.
func (f *OutputFormatter) JSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Fail reports err in the configured format and returns an ExitError that
// Execute will not print a second time.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)

	if f.Format == "json" {
		_ = f.JSON(CLIResponse{Error: &CLIError{Code: code, Message: err.Error()}})
	} else {
		fmt.Fprintf(f.errWriter(), "error: %v\n", err)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exitErr.reported = true
		return exitErr
	}
	return &ExitError{Code: exit, Err: err, reported: true}
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps compiler errors to an error code and an exit code.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, query.ErrUnknownOperator):
		return ErrCodeUnknownOperator, ExitFailure
	case errors.Is(err, query.ErrMalformedSpec):
		return ErrCodeMalformedSpec, ExitFailure
	case errors.Is(err, query.ErrUnsupportedForDialect):
		return ErrCodeUnsupported, ExitFailure
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == ExitCommandError {
			return ErrCodeInvalidInput, exitErr.Code
		}
		return ErrCodeGeneric, exitErr.Code
	}
	return ErrCodeGeneric, ExitFailure
}
