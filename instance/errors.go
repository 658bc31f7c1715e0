package instance

import "gopkg.in/src-d/go-errors.v1"

// LinterCode enumerates the five linter message codes of §7 layer 3.
type LinterCode int

const (
	KeyAlternative LinterCode = iota
	KeyAlternativeStyle
	KeyRedundant
	KeyNotUnique
	KeyMissing
)

func (c LinterCode) String() string {
	switch c {
	case KeyAlternative:
		return "KEY_ALTERNATIVE"
	case KeyAlternativeStyle:
		return "KEY_ALTERNATIVE_STYLE"
	case KeyRedundant:
		return "KEY_REDUNDANT"
	case KeyNotUnique:
		return "KEY_NOT_UNIQUE"
	case KeyMissing:
		return "KEY_MISSING"
	default:
		return "UNKNOWN"
	}
}

// Node-error kinds (§7 layer 2): localized evaluation problems recorded
// against a node id. These never fail the whole instantiation; constant
// propagation simply stops folding the faulty subtree.
var (
	ErrFunctionInvalidInput = errors.NewKind("invalid input to function %q")
	ErrFunctionUnknown      = errors.NewKind("unknown function %q")
)

// NodeError pairs a node id with the error recorded against it (§3.3
// node_errors, §7 layer 2).
type NodeError struct {
	NodeID int
	Err    error
}

// LinterMessage pairs a code, the node id it was raised against, and a
// human-readable message (§7 layer 3).
type LinterMessage struct {
	Code    LinterCode
	NodeID  int
	Message string
}
