// Package eval evaluates filters, updates, joins and aggregations over rows.
// Every function is pure: inputs are never mutated and no state is shared.
package eval

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/zoobzio/vdba/internal/types"
)

var (
	// ErrNotOrdered is returned when ordering is requested between values
	// that have no total order.
	ErrNotOrdered = errors.New("values are not ordered")

	// ErrOperand is returned when an operand does not fit the operator.
	ErrOperand = errors.New("invalid operand")

	// ErrNoColumn is returned when an update names a column the row lacks.
	ErrNoColumn = errors.New("no such column")

	// ErrNoTable is returned when a join target has no rows bound.
	ErrNoTable = errors.New("no such table")
)

// Equal reports whether a and b are equal.
// Integers and reals compare numerically, dates and datetimes as instants,
// sets ignore element order and nested rows ignore column order.
func Equal(a, b types.Value) bool {
	switch {
	case a.IsNull() || b.IsNull():
		return a.IsNull() && b.IsNull()
	case a.IsNumeric() && b.IsNumeric():
		if a.Kind() == types.KindReal && b.Kind() == types.KindReal {
			return a.AsReal() == b.AsReal()
		}
		if isNaN(a) || isNaN(b) {
			return false
		}
		return cmpNum(a, b) == 0
	case a.IsTime() && b.IsTime():
		return a.AsTime().Equal(b.AsTime())
	case a.IsSet() && b.IsSet():
		return setEqual(a, b)
	case a.Kind() != b.Kind():
		return false
	}

	switch a.Kind() {
	case types.KindBool:
		return a.AsBool() == b.AsBool()
	case types.KindText:
		return a.AsText() == b.AsText()
	case types.KindRow:
		ra, _ := a.AsRow()
		rb, _ := b.AsRow()
		return RowEqual(ra, rb)
	}
	return false
}

func setEqual(a, b types.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, e := range a.Elems() {
		if !Contains(b, e) {
			return false
		}
	}
	return true
}

// Contains reports whether the set s holds elem.
func Contains(s, elem types.Value) bool {
	for _, e := range s.Elems() {
		if Equal(e, elem) {
			return true
		}
	}
	return false
}

// RowEqual reports whether a and b carry the same columns with equal values.
func RowEqual(a, b types.Row) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		col, va := a.At(i)
		vb, ok := b.Get(col)
		if !ok || !Equal(va, vb) {
			return false
		}
	}
	return true
}

// Compare orders two values of a totally ordered domain: numbers,
// text (byte-wise) and dates/datetimes (chronological).
func Compare(a, b types.Value) (int, error) {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return cmpNum(a, b), nil
	case a.Kind() == types.KindText && b.Kind() == types.KindText:
		return strings.Compare(a.AsText(), b.AsText()), nil
	case a.IsTime() && b.IsTime():
		return a.AsTime().Compare(b.AsTime()), nil
	}
	return 0, ErrNotOrdered
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpNum orders two numbers. An integer and a real are compared exactly,
// not through a float64 conversion that loses precision past 2^53.
func cmpNum(a, b types.Value) int {
	switch {
	case a.Kind() == types.KindInt && b.Kind() == types.KindInt:
		return cmpInt(a.AsInt(), b.AsInt())
	case a.Kind() == types.KindInt:
		return cmpIntReal(a.AsInt(), b.AsReal())
	case b.Kind() == types.KindInt:
		return -cmpIntReal(b.AsInt(), a.AsReal())
	}
	return cmpFloat(a.AsReal(), b.AsReal())
}

// 2^63 as a float64; every float at or above it exceeds any int64.
const twoTo63 = float64(1 << 63)

func cmpIntReal(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= twoTo63:
		return -1
	case f < -twoTo63:
		return 1
	}
	t := math.Trunc(f)
	if c := cmpInt(i, int64(t)); c != 0 {
		return c
	}
	return cmpFloat(t, f)
}

func isNaN(v types.Value) bool {
	return v.Kind() == types.KindReal && math.IsNaN(v.AsReal())
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// rank orders value domains for sorting.
func rank(v types.Value) int {
	switch {
	case v.IsNull():
		return 0
	case v.Kind() == types.KindBool:
		return 1
	case v.IsNumeric():
		return 2
	case v.Kind() == types.KindText:
		return 3
	case v.IsTime():
		return 4
	case v.IsSet():
		return 5
	}
	return 6
}

// SortCompare is a total order over all values, used by sort stages.
// Nulls sort first, then booleans (false before true), numbers, text,
// times, sets and rows.
func SortCompare(a, b types.Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(int64(ra), int64(rb))
	}
	switch ra {
	case 0:
		return 0
	case 1:
		switch {
		case a.AsBool() == b.AsBool():
			return 0
		case !a.AsBool():
			return -1
		}
		return 1
	case 2, 3, 4:
		c, _ := Compare(a, b)
		return c
	}
	return strings.Compare(Key(a), Key(b))
}

// Key returns a string that is identical for two values exactly when Equal
// reports them equal, except that NaN keys match each other. Used to hash
// join and group keys.
func Key(v types.Value) string {
	switch v.Kind() {
	case types.KindNull:
		return "~"
	case types.KindBool:
		if v.AsBool() {
			return "b1"
		}
		return "b0"
	case types.KindInt:
		return "n" + strconv.FormatInt(v.AsInt(), 10)
	case types.KindReal:
		f := v.AsReal()
		if f == math.Trunc(f) && f >= -twoTo63 && f < twoTo63 {
			return "n" + strconv.FormatInt(int64(f), 10)
		}
		return "f" + strconv.FormatFloat(f, 'g', -1, 64)
	case types.KindText:
		s := v.AsText()
		return "s" + strconv.Itoa(len(s)) + ":" + s
	case types.KindDate, types.KindDatetime:
		return "t" + strconv.FormatInt(v.AsTime().UnixNano(), 10)
	case types.KindTextSet, types.KindIntSet:
		elems := v.Elems()
		keys := make([]string, len(elems))
		for i, e := range elems {
			keys[i] = Key(e)
		}
		slices.Sort(keys)
		return "{" + strings.Join(keys, ",") + "}"
	case types.KindRow:
		r, _ := v.AsRow()
		cols := r.Columns()
		slices.Sort(cols)
		var b strings.Builder
		b.WriteByte('(')
		for _, c := range cols {
			b.WriteString(strconv.Itoa(len(c)))
			b.WriteByte(':')
			b.WriteString(c)
			b.WriteByte('=')
			b.WriteString(Key(r.Value(c)))
			b.WriteByte(';')
		}
		b.WriteByte(')')
		return b.String()
	}
	return "?"
}

// TupleKey hashes the values of cols in row. Tuples are equal column-wise
// exactly when their keys are identical.
func TupleKey(row types.Row, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(Key(row.Value(c)))
		b.WriteByte('|')
	}
	return b.String()
}
