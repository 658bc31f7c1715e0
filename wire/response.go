// Package wire implements the external in-process API framing described
// in §6.1 and the status layer of §7: every façade operation returns a
// Response carrying a status code, an optional payload buffer or scalar,
// and — on failure — a UTF-8 error message. The package also defines the
// length-prefixed buffer framing used for Program/Annotations/Plan/
// ProgramReplacement artifacts (§6.3); the wire shape is abstract (spec
// §6.3: "any binary-schema representation will do"), so Pack here means
// "produce the bytes our own client would read back", not a commitment
// to any particular external schema.
package wire

import (
	"encoding/binary"

	"gopkg.in/src-d/go-errors.v1"
)

// StatusCode enumerates the top-level operation outcomes (§7 layer 1):
// OK plus four failure codes. OK is the zero value so a zero Response
// reads as success.
type StatusCode int

const (
	OK StatusCode = iota
	Invalid
	NotImplemented
	ExecutionError
	IOError
)

func (c StatusCode) String() string {
	switch c {
	case OK:
		return "OK"
	case Invalid:
		return "INVALID"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	case ExecutionError:
		return "EXECUTION_ERROR"
	case IOError:
		return "IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Status error kinds (§7 layer 1): every façade operation wraps its
// terminal error in one of these before returning, so the status code a
// Response carries is always recoverable from the error itself.
var (
	ErrInvalid        = errors.NewKind("invalid input: %s")
	ErrNotImplemented = errors.NewKind("not implemented: %s")
	ErrExecution      = errors.NewKind("execution error: %s")
	ErrIO             = errors.NewKind("io error: %s")
)

// CodeOf maps err to the status code its go-errors.v1 kind carries,
// defaulting to ExecutionError for an error of an unrecognized kind (a
// programmer error in the façade, not a caller mistake) and OK for nil.
func CodeOf(err error) StatusCode {
	switch {
	case err == nil:
		return OK
	case ErrInvalid.Is(err):
		return Invalid
	case ErrNotImplemented.Is(err):
		return NotImplemented
	case ErrIO.Is(err):
		return IOError
	default:
		return ExecutionError
	}
}

// Response is the stable shape every façade operation returns across the
// in-process API boundary (§6.1). On success with a buffer payload,
// Data holds it and Value/HasValue are unused. On success with a scalar
// payload (a double or a size), Value holds it and HasValue is true. On
// failure, Message holds the UTF-8 error text and Data/Value are unused.
type Response struct {
	Status  StatusCode
	Data    []byte
	Value   float64
	HasValue bool
	Message string
}

// Ok wraps a successful buffer payload.
func Ok(data []byte) Response { return Response{Status: OK, Data: data} }

// OkValue wraps a successful scalar payload.
func OkValue(v float64) Response { return Response{Status: OK, Value: v, HasValue: true} }

// Err wraps a failed operation, deriving the status code from err's kind.
func Err(err error) Response {
	return Response{Status: CodeOf(err), Message: err.Error()}
}

// putUvarint appends x to b as a little-endian-framed length prefix,
// matching the flat length-prefixed records §6.1 describes.
func putUvarint(b []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(b, tmp[:n]...)
}

// PackFrame prepends payload's length as a varint, the length-prefixed
// byte buffer framing every Program/Annotations/Plan/ProgramReplacement
// artifact uses when crossing the in-process API boundary (§6.1, §6.3).
func PackFrame(payload []byte) []byte {
	out := putUvarint(make([]byte, 0, len(payload)+binary.MaxVarintLen64), uint64(len(payload)))
	return append(out, payload...)
}

// UnpackFrame reverses PackFrame, returning the payload and the number of
// bytes consumed from buf.
func UnpackFrame(buf []byte) (payload []byte, consumed int, ok bool) {
	length, n := binary.Uvarint(buf)
	if n <= 0 {
		return nil, 0, false
	}
	end := n + int(length)
	if end > len(buf) {
		return nil, 0, false
	}
	return buf[n:end], end, true
}
