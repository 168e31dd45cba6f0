package eval

import (
	"fmt"

	"github.com/zoobzio/vdba/internal/types"
)

type bucket struct {
	key  types.Row
	rows []types.Row
}

// Aggregate partitions rows by the group columns and emits one row per group:
// the group columns followed by one column per aggregation alias. Groups keep
// the order in which they were first seen.
//
// An aggregation filter is split in two. Its "value" predicate constrains the
// aggregated result and gates the group; every other predicate restricts the
// rows the aggregation reads.
func Aggregate(rows []types.Row, g types.Group) ([]types.Row, error) {
	index := make(map[string]int)
	var buckets []*bucket
	for _, r := range rows {
		k := TupleKey(r, g.Columns)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, &bucket{key: r.Project(g.Columns...)})
		}
		buckets[i].rows = append(buckets[i].rows, r)
	}

	having := g.Filter()
	out := make([]types.Row, 0, len(buckets))
	for _, b := range buckets {
		row := b.key
		for _, a := range g.Aggregations {
			v, err := compute(a, Select(b.rows, a.RowFilter()))
			if err != nil {
				return nil, err
			}
			row = row.Set(a.Alias, v)
		}
		if g.HasFilter() && !Match(row, having) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func compute(a types.Aggregation, rows []types.Row) (types.Value, error) {
	if a.Func == types.AggCount {
		return types.Int(int64(len(rows))), nil
	}

	vals := make([]types.Value, 0, len(rows))
	for _, r := range rows {
		if v := r.Value(a.Column); !v.IsNull() {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return types.Null(), nil
	}

	switch a.Func {
	case types.AggSum, types.AggAvg:
		allInt, overflow := true, false
		var isum int64
		var fsum float64
		for _, v := range vals {
			if !v.IsNumeric() {
				return types.Value{}, fmt.Errorf("%w: %s(%s) over %s", ErrOperand, a.Func, a.Column, v.Kind())
			}
			if v.Kind() != types.KindInt {
				allInt = false
			} else if !overflow {
				var ok bool
				if isum, ok = addInt(isum, v.AsInt()); !ok {
					overflow = true
				}
			}
			fsum += v.AsReal()
		}
		if a.Func == types.AggAvg {
			return types.Real(fsum / float64(len(vals))), nil
		}
		if allInt {
			if overflow {
				return types.Value{}, fmt.Errorf("%w: %s(%s) overflows an integer", ErrOperand, a.Func, a.Column)
			}
			return types.Int(isum), nil
		}
		return types.Real(fsum), nil
	case types.AggMin, types.AggMax:
		best := vals[0]
		for _, v := range vals[1:] {
			n, err := Compare(v, best)
			if err != nil {
				return types.Value{}, fmt.Errorf("%s(%s): %w", a.Func, a.Column, err)
			}
			if (a.Func == types.AggMin && n < 0) || (a.Func == types.AggMax && n > 0) {
				best = v
			}
		}
		if _, err := Compare(best, best); err != nil {
			return types.Value{}, fmt.Errorf("%s(%s): %w", a.Func, a.Column, err)
		}
		return best, nil
	}
	return types.Value{}, fmt.Errorf("%w: unknown aggregate %q", ErrOperand, a.Func)
}
