package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected transaction, inconsistent store, etc.
	ExitCommandError = 2 // Command error (invalid paths, bad fact files, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format.
// In text mode, data is printed with fmt's default formatting unless
// it is a string.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs an error in the configured format.
func (f *OutputFormatter) Failure(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "error: %s\n", message)
	return nil
}

// FormatDatoms renders datoms one per line, resolving entids to
// idents where the schema knows them.
func FormatDatoms(ds []datom.Datom, s *schema.Schema) string {
	var b strings.Builder
	for _, d := range ds {
		op := "+"
		if !d.Added {
			op = "-"
		}
		fmt.Fprintf(&b, "%s [%s %s %s %d]\n",
			op, formatEntid(d.E, s), formatEntid(d.A, s), formatValue(d.V, s), int64(d.Tx))
	}
	return b.String()
}

func formatEntid(e datom.Entid, s *schema.Schema) string {
	if s != nil {
		if kw, ok := s.IdentForEntid(e); ok {
			return kw.String()
		}
	}
	return fmt.Sprintf("%d", int64(e))
}

func formatValue(v datom.TypedValue, s *schema.Schema) string {
	switch x := v.(type) {
	case datom.Ref:
		return formatEntid(datom.Entid(x), s)
	case datom.String:
		return fmt.Sprintf("%q", string(x))
	case datom.Keyword:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
