package qail

import "fmt"

// ValueKind discriminates the tagged variants a Value can hold (§3).
type ValueKind int

const (
	ValNull ValueKind = iota
	ValBool
	ValInt
	ValFloat
	ValText
	ValBytes
	ValArray
	ValPositional
	ValNamed
	ValFuncToken
	ValColumnRef
	ValUUID
	ValInterval
	ValTimestamp
)

// IntervalUnit is one of the units a Value of kind ValInterval carries.
type IntervalUnit string

const (
	UnitSecond IntervalUnit = "second"
	UnitMinute IntervalUnit = "minute"
	UnitHour   IntervalUnit = "hour"
	UnitDay    IntervalUnit = "day"
	UnitWeek   IntervalUnit = "week"
	UnitMonth  IntervalUnit = "month"
	UnitYear   IntervalUnit = "year"
)

// Value is a tagged-union leaf of the query AST. Values are pure data: a
// Value never owns heap allocations beyond the borrowed slice lifetime of
// the QailCmd (or arena) that holds it, per §3's ownership note.
type Value struct {
	Kind ValueKind

	Bool  bool
	Int   int64
	Float float64
	Text  string
	Bytes []byte
	Array []Value

	// Placeholder is the 1-65535 positional index for ValPositional.
	Placeholder int

	// Name carries the payload for ValNamed, ValFuncToken, ValColumnRef,
	// and ValUUID/ValTimestamp (the latter two keep their text form here —
	// a timestamp/UUID is rendered, never arithmetic-evaluated, by this
	// library).
	Name string

	IntervalAmount int64
	IntervalUnit   IntervalUnit
}

// Null returns the SQL NULL value.
func Null() Value { return Value{Kind: ValNull} }

// Bool wraps a boolean literal.
func Bool(b bool) Value { return Value{Kind: ValBool, Bool: b} }

// Int wraps a signed 64-bit integer literal.
func Int(n int64) Value { return Value{Kind: ValInt, Int: n} }

// Float wraps a 64-bit float literal.
func Float(f float64) Value { return Value{Kind: ValFloat, Float: f} }

// Text wraps a string literal.
func Text(s string) Value { return Value{Kind: ValText, Text: s} }

// Bytes wraps a byte-sequence literal, rendered as PostgreSQL bytea.
func Bytes(b []byte) Value { return Value{Kind: ValBytes, Bytes: b} }

// Array wraps an ordered sequence of Values, rendered as ARRAY[...].
// Homogeneity of element kinds is expected but not enforced, per §3.
func Array(vs ...Value) Value { return Value{Kind: ValArray, Array: vs} }

// Positional returns a $N placeholder. n must be in [1, 65535]; neither
// this constructor nor the encoder checks the range — constructing a Value
// is infallible by design (§9).
func Positional(n int) Value { return Value{Kind: ValPositional, Placeholder: n} }

// Named returns a named placeholder (e.g. for driver layers that resolve
// names to positions before reaching the encoder).
func Named(name string) Value { return Value{Kind: ValNamed, Name: name} }

// FuncToken returns a bare SQL function token (e.g. "now()", "DEFAULT"),
// emitted verbatim rather than quoted.
func FuncToken(token string) Value { return Value{Kind: ValFuncToken, Name: token} }

// ColumnRef returns a reference to another column, used e.g. in an UPDATE
// assignment whose right-hand side is itself a column (`SET a = b`).
func ColumnRef(name string) Value { return Value{Kind: ValColumnRef, Name: name} }

// UUID wraps a UUID literal supplied as text.
func UUID(s string) Value { return Value{Kind: ValUUID, Name: s} }

// Interval wraps an INTERVAL literal amount + unit.
func Interval(amount int64, unit IntervalUnit) Value {
	return Value{Kind: ValInterval, IntervalAmount: amount, IntervalUnit: unit}
}

// Timestamp wraps a timestamp literal supplied as text.
func Timestamp(s string) Value { return Value{Kind: ValTimestamp, Name: s} }

// IsNull reports whether v is the SQL NULL value.
func (v Value) IsNull() bool { return v.Kind == ValNull }

func (v Value) String() string {
	switch v.Kind {
	case ValNull:
		return "NULL"
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValText:
		return v.Text
	case ValBytes:
		return fmt.Sprintf("bytea(%d)", len(v.Bytes))
	case ValArray:
		return fmt.Sprintf("array(%d)", len(v.Array))
	case ValPositional:
		return fmt.Sprintf("$%d", v.Placeholder)
	case ValNamed:
		return ":" + v.Name
	case ValFuncToken:
		return v.Name
	case ValColumnRef:
		return v.Name
	case ValUUID:
		return v.Name
	case ValInterval:
		return fmt.Sprintf("%d %s", v.IntervalAmount, v.IntervalUnit)
	case ValTimestamp:
		return v.Name
	default:
		return "?"
	}
}
