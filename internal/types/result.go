package types

// Result is the read-only output of a query.
type Result struct {
	rows []Row
}

// NewResult wraps rows in a Result.
func NewResult(rows []Row) *Result {
	return &Result{rows: rows}
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.rows) }

// Rows returns the rows in order.
func (r *Result) Rows() []Row {
	return append([]Row(nil), r.rows...)
}

// Row returns the i-th row.
func (r *Result) Row(i int) Row { return r.rows[i] }

// First returns the first row, if any.
func (r *Result) First() (Row, bool) {
	if len(r.rows) == 0 {
		return Row{}, false
	}
	return r.rows[0], true
}

// Maps converts every row to a map of plain Go values.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.Map()
	}
	return out
}
