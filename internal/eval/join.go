package eval

import "github.com/zoobzio/vdba/internal/types"

// Join combines source and target rows on equal key values. Only inner joins
// exist: source rows without a match produce nothing, and null keys never match.
//
// A flat join emits one merged row per match, walking target rows in order
// and, for each, the matching source rows in order. A 1-1 join walks source
// rows and nests the first matching target row under the target table name.
func Join(source, target []types.Row, j types.Join) []types.Row {
	if j.Mode == types.JoinOneToOne {
		return joinNested(source, target, j)
	}

	bySource := make(map[string][]int, len(source))
	for i, r := range source {
		v := r.Value(j.SourceColumn)
		if v.IsNull() {
			continue
		}
		k := Key(v)
		bySource[k] = append(bySource[k], i)
	}

	var out []types.Row
	for _, t := range target {
		v := t.Value(j.TargetColumn)
		if v.IsNull() {
			continue
		}
		for _, i := range bySource[Key(v)] {
			out = append(out, source[i].Merge(t))
		}
	}
	return out
}

func joinNested(source, target []types.Row, j types.Join) []types.Row {
	byTarget := make(map[string]int, len(target))
	for i, t := range target {
		v := t.Value(j.TargetColumn)
		if v.IsNull() {
			continue
		}
		k := Key(v)
		if _, dup := byTarget[k]; !dup {
			byTarget[k] = i
		}
	}

	var out []types.Row
	for _, s := range source {
		v := s.Value(j.SourceColumn)
		if v.IsNull() {
			continue
		}
		i, ok := byTarget[Key(v)]
		if !ok {
			continue
		}
		out = append(out, s.Set(j.As(), types.Nested(target[i])))
	}
	return out
}
