// Package stmt implements one analyzer per statement kind (§4.4): INPUT,
// FETCH, LOAD, SET, VIZ, and the supplemented EXTRACT kind (SPEC_FULL
// §4). Each analyzer reads a statement's AST subtree via the matcher
// package and produces a typed record. Analyzers depend only on a small
// ValueReader interface rather than the full program instance, so that
// package instance (which stores these records) can import stmt without
// creating an import cycle.
package stmt

import (
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
)

// ValueReader is the read surface every analyzer needs from a program
// instance: the effective (post constant-propagation) scalar for a node,
// and qualified-name resolution with the instance's configured default
// schema baked in.
type ValueReader interface {
	ReadNodeValue(nodeID int) scalar.Scalar
	ReadQualifiedName(nodeID int, liftGlobal bool) program.QualifiedName
}

// Options configures statement analysis that depends on script-level
// configuration rather than the AST alone (§4.4 LOAD: "default-schema
// qualification from the script options"; §3.2 Glossary "Script option").
type Options struct {
	// GlobalNamespace fills an empty schema when a qualified name is
	// read with lift-global semantics (§4.2).
	GlobalNamespace string
	// ExtensionLoadMethods maps a bare file extension (no dot) to the
	// load method it implies when a LOAD statement's method is omitted
	// (§4.4 LOAD: "csv -> JMESPATH").
	ExtensionLoadMethods map[string]LoadMethod
}

// DefaultOptions returns the options the facade uses unless the caller
// configures otherwise.
func DefaultOptions() Options {
	return Options{
		GlobalNamespace: "global",
		ExtensionLoadMethods: map[string]LoadMethod{
			"csv": LoadMethodJMESPath,
		},
	}
}

// LinterMessage is the shape an analyzer reports back to its caller; the
// facade is responsible for attaching these to the program instance's
// linter_messages list (§3.3) with the configured LinterCode.
type LinterMessage struct {
	Code    Code
	NodeID  int
	Message string
}

// Code mirrors instance.LinterCode without importing package instance
// (avoiding the cycle); the facade maps between the two by ordinal, which
// is safe since both enumerate the same fixed, spec-mandated code set
// (§7 layer 3).
type Code int

const (
	KeyAlternative Code = iota
	KeyAlternativeStyle
	KeyRedundant
	KeyNotUnique
	KeyMissing
)
