package types

import "strings"

// Row is an ordered, immutable mapping from column name to Value.
// Methods that change a row return a copy.
type Row struct {
	cols []string
	vals []Value
}

// NewRow builds a row from parallel column and value slices.
// Later duplicates of a column overwrite earlier ones in place.
func NewRow(cols []string, vals []Value) Row {
	r := Row{
		cols: make([]string, 0, len(cols)),
		vals: make([]Value, 0, len(cols)),
	}
	for i, c := range cols {
		var v Value
		if i < len(vals) {
			v = vals[i]
		}
		if j := r.index(c); j >= 0 {
			r.vals[j] = v
			continue
		}
		r.cols = append(r.cols, c)
		r.vals = append(r.vals, v)
	}
	return r
}

func (r Row) index(col string) int {
	for i, c := range r.cols {
		if c == col {
			return i
		}
	}
	return -1
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Columns returns the column names in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.cols...)
}

// Has reports whether the row carries col.
func (r Row) Has(col string) bool { return r.index(col) >= 0 }

// Get returns the value of col and whether the row carries it.
func (r Row) Get(col string) (Value, bool) {
	if i := r.index(col); i >= 0 {
		return r.vals[i], true
	}
	return Value{}, false
}

// Value returns the value of col, null when absent.
func (r Row) Value(col string) Value {
	v, _ := r.Get(col)
	return v
}

// At returns the column name and value at position i.
func (r Row) At(i int) (string, Value) {
	return r.cols[i], r.vals[i]
}

// Set returns a copy of r with col assigned v. New columns are appended.
func (r Row) Set(col string, v Value) Row {
	out := r.clone(1)
	if i := out.index(col); i >= 0 {
		out.vals[i] = v
		return out
	}
	out.cols = append(out.cols, col)
	out.vals = append(out.vals, v)
	return out
}

// Merge returns r followed by the columns of other; other wins on collision.
func (r Row) Merge(other Row) Row {
	out := r.clone(other.Len())
	for i, c := range other.cols {
		if j := out.index(c); j >= 0 {
			out.vals[j] = other.vals[i]
			continue
		}
		out.cols = append(out.cols, c)
		out.vals = append(out.vals, other.vals[i])
	}
	return out
}

// Project returns a row holding only cols, in that order. Missing columns are null.
func (r Row) Project(cols ...string) Row {
	out := Row{cols: make([]string, 0, len(cols)), vals: make([]Value, 0, len(cols))}
	for _, c := range cols {
		out.cols = append(out.cols, c)
		out.vals = append(out.vals, r.Value(c))
	}
	return out
}

func (r Row) clone(extra int) Row {
	out := Row{
		cols: make([]string, len(r.cols), len(r.cols)+extra),
		vals: make([]Value, len(r.vals), len(r.vals)+extra),
	}
	copy(out.cols, r.cols)
	copy(out.vals, r.vals)
	return out
}

// Map converts the row to a map of plain Go values.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		m[c] = r.vals[i].Interface()
	}
	return m
}

func (r Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
		b.WriteString(": ")
		b.WriteString(r.vals[i].String())
	}
	b.WriteByte('}')
	return b.String()
}
