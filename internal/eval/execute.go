package eval

import (
	"fmt"
	"slices"

	"github.com/zoobzio/vdba/internal/types"
)

// Sort returns rows ordered by keys. The sort is stable and keys take
// precedence left to right.
func Sort(rows []types.Row, keys []types.OrderBy) []types.Row {
	out := append([]types.Row(nil), rows...)
	if len(keys) == 0 {
		return out
	}
	slices.SortStableFunc(out, func(a, b types.Row) int {
		for _, k := range keys {
			c := SortCompare(a.Value(k.Column), b.Value(k.Column))
			if c == 0 {
				continue
			}
			if k.Direction == types.DESC {
				return -c
			}
			return c
		}
		return 0
	})
	return out
}

// Slice returns rows [l.Start, l.Start+l.Count). A start past the end yields
// no rows.
func Slice(rows []types.Row, l types.Limit) []types.Row {
	if l.Start >= len(rows) {
		return []types.Row{}
	}
	end := len(rows)
	if l.Count < end-l.Start {
		end = l.Start + l.Count
	}
	return append([]types.Row(nil), rows[l.Start:end]...)
}

// Execute runs p over base, the rows of p.Table. Join targets are read from
// targets, keyed by their reference. Stages run in order: filter, joins,
// group, sort, limit.
func Execute(p types.Pipeline, base []types.Row, targets map[types.TableRef][]types.Row) ([]types.Row, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}

	rows := Select(base, p.Filter)

	for _, j := range p.Joins {
		target, ok := targets[j.Target]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoTable, j.Target)
		}
		rows = Join(rows, target, j)
	}

	if p.Group != nil {
		var err error
		if rows, err = Aggregate(rows, *p.Group); err != nil {
			return nil, err
		}
	}

	rows = Sort(rows, p.OrderBy)

	if p.Limit != nil {
		rows = Slice(rows, *p.Limit)
	}
	if rows == nil {
		rows = []types.Row{}
	}
	return rows, nil
}
