package conformance

import (
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/eval"
)

// rows converts records into rows.
func rows(t require.TestingT, ms []vdba.M) []vdba.Row {
	out := make([]vdba.Row, len(ms))
	for i, m := range ms {
		r, err := vdba.RowOf(m)
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func format(rs []vdba.Row) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ",\n ") + "]"
}

// requireRows fails unless got holds rows equal to want, in order.
// Column order is not significant.
func requireRows(t require.TestingT, want []vdba.M, got []vdba.Row) {
	exp := rows(t, want)
	ok := len(exp) == len(got)
	for i := 0; ok && i < len(exp); i++ {
		ok = eval.RowEqual(exp[i], got[i])
	}
	if !ok {
		require.Fail(t, "rows differ", "want %s\ngot  %s", format(exp), format(got))
	}
}

// requireResult is requireRows on a query result.
func requireResult(t require.TestingT, want []vdba.M, res *vdba.Result, err error) {
	require.NoError(t, err)
	require.NotNil(t, res)
	requireRows(t, want, res.Rows())
}

// requireRow fails unless got equals want.
func requireRow(t require.TestingT, want vdba.M, got vdba.Row) {
	requireRows(t, []vdba.M{want}, []vdba.Row{got})
}

// requireUsage fails unless err is a usage error with message msg.
func requireUsage(t require.TestingT, err error, msg string) {
	require.ErrorIs(t, err, vdba.ErrUsage)
	require.EqualError(t, err, msg)
}

// pick returns the records at the given indexes.
func pick(ms []vdba.M, idx ...int) []vdba.M {
	out := make([]vdba.M, len(idx))
	for i, n := range idx {
		out[i] = ms[n]
	}
	return out
}

// with returns a copy of m with the given entries replaced.
func with(m, changes vdba.M) vdba.M {
	out := make(vdba.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range changes {
		out[k] = v
	}
	return out
}
