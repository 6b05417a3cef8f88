// Package diag carries lexical and syntactic diagnostics. Diagnostics are
// values, not errors: the lexer and parser always run to completion and
// report what they saw.
package diag

import "fmt"

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

func Warningf(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

func Errorf(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

// HasErrors reports whether any diagnostic in the list is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
