// Package scalar implements the dynamic, multi-type cell value (§9
// design note) that the node value store (§4.2) interns per AST node
// union, and that the statement analyzers (§4.4) read back through the
// instance.ValueReader interface. It is split out from package instance
// so that the stmt package can depend on the value shape without
// depending on the full ProgramInstance (which in turn depends on stmt
// for its per-kind analyzer record lists, §3.3).
package scalar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags the variant a Scalar holds (§9 design note: "Dynamic scalar
// values: model as a sum type over the enumerated scalar kinds plus a
// null variant").
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindDecimal
	KindDate32
	KindTime64
	KindTimestamp
	KindInterval
	KindString
)

// Scalar is the dynamic, multi-type cell value the node value store
// interns per AST node union. Only the field matching Kind is meaningful.
type Scalar struct {
	Kind    Kind
	Bool    bool
	Int     int64 // backs I8/I16/I32/I64/Date32(days)/Time64(micros)/Timestamp(micros)
	Float   float64
	Decimal decimal.Decimal
	// Interval is a day-time interval expressed as (days, microseconds).
	IntervalDays   int32
	IntervalMicros int64
	Str            string
}

func Null() Scalar                        { return Scalar{Kind: KindNull} }
func BoolVal(b bool) Scalar                { return Scalar{Kind: KindBool, Bool: b} }
func Int64Val(v int64) Scalar              { return Scalar{Kind: KindI64, Int: v} }
func StringVal(s string) Scalar            { return Scalar{Kind: KindString, Str: s} }
func DecimalVal(d decimal.Decimal) Scalar  { return Scalar{Kind: KindDecimal, Decimal: d} }

// Equal compares two scalars kind-first, then value (§9 design note).
func Equal(a, b Scalar) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindI8, KindI16, KindI32, KindI64, KindDate32, KindTime64, KindTimestamp:
		return a.Int == b.Int
	case KindF32, KindF64:
		return a.Float == b.Float
	case KindDecimal:
		return a.Decimal.Equal(b.Decimal)
	case KindInterval:
		return a.IntervalDays == b.IntervalDays && a.IntervalMicros == b.IntervalMicros
	case KindString:
		return a.Str == b.Str
	default:
		return false
	}
}

// FormatValue renders the scalar's natural textual form, used by
// format()/concat() argument substitution (§4.3.1): integers and floats
// format natively, everything else (besides strings, which callers quote
// separately) stringifies via its natural representation.
func (s Scalar) FormatValue() string {
	switch s.Kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(s.Bool)
	case KindI8, KindI16, KindI32, KindI64:
		return strconv.FormatInt(s.Int, 10)
	case KindF32, KindF64:
		return strconv.FormatFloat(s.Float, 'g', -1, 64)
	case KindDecimal:
		return s.Decimal.String()
	case KindDate32:
		return strconv.FormatInt(int64(s.Int), 10)
	case KindTime64, KindTimestamp:
		return strconv.FormatInt(s.Int, 10)
	case KindInterval:
		return fmt.Sprintf("%dd%dus", s.IntervalDays, s.IntervalMicros)
	case KindString:
		return s.Str
	default:
		return ""
	}
}

// ScriptLiteral renders the scalar the way it must appear when substituted
// back into rendered statement source (§4.7): strings are single-quoted
// (with embedded quotes doubled), everything else uses its native form.
func (s Scalar) ScriptLiteral() string {
	if s.Kind == KindString {
		escaped := strings.ReplaceAll(s.Str, "'", "''")
		return "'" + escaped + "'"
	}
	return s.FormatValue()
}
