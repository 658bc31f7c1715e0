// Package constprop implements constant propagation (§4.3): folding
// literal and function-call AST nodes down to scalars, interned into the
// node value store so later passes (statement analysis, the editor's
// substring renderer) can read a node's effective value uniformly.
package constprop

import (
	"strings"

	"github.com/dashql-run/dashql-core/scalar"
	"gopkg.in/src-d/go-errors.v1"
)

// ErrFunctionInvalidInput and ErrFunctionUnknown mirror the node-error
// kinds declared in package instance (instance.ErrFunctionInvalidInput/
// ErrFunctionUnknown) with the same messages. They are separate kinds: an
// Is check against one package's kind does not match the other's errors.
var (
	ErrFunctionInvalidInput = errors.NewKind("invalid input to function %q")
	ErrFunctionUnknown      = errors.NewKind("unknown function %q")
)

// Function folds a fixed-arity or variadic argument list into a scalar.
// Implementations must be conservative (§4.3.1): either deterministic for
// fixed inputs, or return an error.
type Function func(args []scalar.Scalar) (scalar.Scalar, error)

// Registry is a minimal name -> Function table (§4.3.1).
type Registry map[string]Function

// DefaultRegistry returns the registry the facade uses unless the caller
// supplies its own: format (spec-mandated) plus concat (SPEC_FULL
// supplement), both conservative/deterministic.
func DefaultRegistry() Registry {
	return Registry{
		"format": formatFn,
		"concat": concatFn,
	}
}

// Resolve looks up name, reporting ErrFunctionUnknown if absent.
func (r Registry) Resolve(name string) (Function, error) {
	fn, ok := r[name]
	if !ok {
		return nil, ErrFunctionUnknown.New(name)
	}
	return fn, nil
}

// formatFn implements format(template, arg0, arg1, ...): positional {}
// substitution. Fails on zero arguments (§4.3.1).
func formatFn(args []scalar.Scalar) (scalar.Scalar, error) {
	if len(args) == 0 {
		return scalar.Scalar{}, ErrFunctionInvalidInput.New("format")
	}
	template := args[0].FormatValue()
	var b strings.Builder
	argIdx := 1
	for i := 0; i < len(template); i++ {
		if template[i] == '{' && i+1 < len(template) && template[i+1] == '}' {
			if argIdx >= len(args) {
				return scalar.Scalar{}, ErrFunctionInvalidInput.New("format")
			}
			b.WriteString(args[argIdx].FormatValue())
			argIdx++
			i++
			continue
		}
		b.WriteByte(template[i])
	}
	return scalar.StringVal(b.String()), nil
}

// concatFn implements concat(arg0, arg1, ...): string concatenation of
// every argument's natural textual form (SPEC_FULL supplement; no
// date/time folding is added alongside it).
func concatFn(args []scalar.Scalar) (scalar.Scalar, error) {
	if len(args) == 0 {
		return scalar.Scalar{}, ErrFunctionInvalidInput.New("concat")
	}
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.FormatValue())
	}
	return scalar.StringVal(b.String()), nil
}
