// Package talekit is an embeddable branching-dialogue scripting engine.
// Scripts declare named nodes of dialogue lines, player choices,
// conditionals, and commands; a host application compiles a script once
// and drives any number of runtime.Runner instances over it.
package talekit

import (
	"errors"
	"fmt"

	"github.com/talekit/talekit/ast"
	"github.com/talekit/talekit/diag"
	"github.com/talekit/talekit/parser"
	"github.com/talekit/talekit/runtime"
)

// ErrCompile wraps the first error-severity diagnostic from Compile.
var ErrCompile = errors.New("compile failed")

// Compile parses a script and builds a runner over it. It fails when
// any error-severity diagnostic is produced; warnings do not stop
// compilation. The returned diagnostics are always complete, even on
// failure.
func Compile(source string, opts ...runtime.Option) (*runtime.Runner, []diag.Diagnostic, error) {
	script, diags := parser.ParseSource(source)
	if diag.HasErrors(diags) {
		return nil, diags, fmt.Errorf("%w: %s", ErrCompile, firstError(diags))
	}
	return runtime.NewRunner(script, opts...), diags, nil
}

// Parse returns the AST and diagnostics without building a runner, for
// tooling that only validates or inspects scripts.
func Parse(source string) (*ast.Script, []diag.Diagnostic) {
	return parser.ParseSource(source)
}

func firstError(diags []diag.Diagnostic) string {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return d.String()
		}
	}
	return "unknown error"
}
