package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the domain of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindText
	KindDate
	KindDatetime
	KindTextSet
	KindIntSet
	KindRow // nested row produced by a 1-1 join
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "boolean",
	KindInt:      "integer",
	KindReal:     "real",
	KindText:     "text",
	KindDate:     "date",
	KindDatetime: "datetime",
	KindTextSet:  "set<text>",
	KindIntSet:   "set<integer>",
	KindRow:      "row",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is an immutable tagged union over the value domains a column can hold.
// The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	t     time.Time
	texts []string
	ints  []int64
	row   *Row
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Real returns a real value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Date returns a date value; the time of day is discarded.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Datetime returns a datetime value normalized to UTC.
func Datetime(t time.Time) Value { return Value{kind: KindDatetime, t: t.UTC()} }

// TextSet returns a set<text> value. Duplicates are dropped, first occurrence wins.
func TextSet(elems ...string) Value {
	out := make([]string, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return Value{kind: KindTextSet, texts: out}
}

// IntSet returns a set<integer> value. Duplicates are dropped, first occurrence wins.
func IntSet(elems ...int64) Value {
	out := make([]int64, 0, len(elems))
	seen := make(map[int64]struct{}, len(elems))
	for _, e := range elems {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return Value{kind: KindIntSet, ints: out}
}

// Nested wraps a row as a value.
func Nested(r Row) Value {
	return Value{kind: KindRow, row: &r}
}

// Kind returns the value's domain.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v is an integer or a real.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindReal }

// IsTime reports whether v is a date or a datetime.
func (v Value) IsTime() bool { return v.kind == KindDate || v.kind == KindDatetime }

// IsSet reports whether v is a set of either element kind.
func (v Value) IsSet() bool { return v.kind == KindTextSet || v.kind == KindIntSet }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload, truncating reals.
func (v Value) AsInt() int64 {
	if v.kind == KindReal {
		return int64(v.f)
	}
	return v.i
}

// AsReal returns the numeric payload as a float64.
func (v Value) AsReal() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// AsText returns the text payload.
func (v Value) AsText() string { return v.s }

// AsTime returns the date or datetime payload.
func (v Value) AsTime() time.Time { return v.t }

// TextElems returns a copy of the set<text> elements.
func (v Value) TextElems() []string {
	return append([]string(nil), v.texts...)
}

// IntElems returns a copy of the set<integer> elements.
func (v Value) IntElems() []int64 {
	return append([]int64(nil), v.ints...)
}

// Len returns the number of elements of a set, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindTextSet:
		return len(v.texts)
	case KindIntSet:
		return len(v.ints)
	}
	return 0
}

// Elems returns the set elements as scalar values.
func (v Value) Elems() []Value {
	switch v.kind {
	case KindTextSet:
		out := make([]Value, len(v.texts))
		for i, s := range v.texts {
			out[i] = Text(s)
		}
		return out
	case KindIntSet:
		out := make([]Value, len(v.ints))
		for i, n := range v.ints {
			out[i] = Int(n)
		}
		return out
	}
	return nil
}

// AsRow returns the nested row payload.
func (v Value) AsRow() (Row, bool) {
	if v.kind != KindRow || v.row == nil {
		return Row{}, false
	}
	return *v.row, true
}

// Interface converts v to a plain Go value: nil, bool, int64, float64, string,
// time.Time, []string, []int64 or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindDate, KindDatetime:
		return v.t
	case KindTextSet:
		return v.TextElems()
	case KindIntSet:
		return v.IntElems()
	case KindRow:
		if v.row != nil {
			return v.row.Map()
		}
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.s)
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindDatetime:
		return v.t.Format(time.RFC3339Nano)
	case KindTextSet, KindIntSet:
		parts := make([]string, 0, v.Len())
		for _, e := range v.Elems() {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRow:
		if v.row != nil {
			return v.row.String()
		}
	}
	return fmt.Sprintf("<%s>", v.kind)
}
