package eval

import (
	"fmt"

	"github.com/zoobzio/vdba/internal/types"
)

// ColumnLookup resolves a column definition by name.
type ColumnLookup func(name string) (types.Column, bool)

// Like reports whether s matches pattern, where '_' matches exactly one
// character and '%' matches any run of characters. Matching is case-sensitive
// and covers the whole string.
func Like(s, pattern string) bool {
	sr, pr := []rune(s), []rune(pattern)
	si, pi := 0, 0
	star, mark := -1, 0
	for si < len(sr) {
		switch {
		case pi < len(pr) && pr[pi] == '%':
			star, mark = pi, si
			pi++
		case pi < len(pr) && (pr[pi] == '_' || pr[pi] == sr[si]):
			si++
			pi++
		case star >= 0:
			mark++
			si, pi = mark, star+1
		default:
			return false
		}
	}
	for pi < len(pr) && pr[pi] == '%' {
		pi++
	}
	return pi == len(pr)
}

// Match reports whether row satisfies every predicate of f.
// A predicate on a column the row lacks never matches.
func Match(row types.Row, f types.Filter) bool {
	for _, p := range f.Predicates {
		v, ok := row.Get(p.Column)
		if !ok {
			return false
		}
		for _, c := range p.Constraints {
			if !Satisfies(v, c) {
				return false
			}
		}
	}
	return true
}

// Satisfies evaluates one constraint against a value. Null only matches
// $eq null, $ne on a non-null operand never matches it, $ncontains accepts it.
func Satisfies(v types.Value, c types.Constraint) bool {
	switch c.Op {
	case types.EQ:
		return Equal(v, c.Operand)
	case types.NE:
		if c.Operand.IsNull() {
			return !v.IsNull()
		}
		return !v.IsNull() && !Equal(v, c.Operand)
	case types.GT, types.GE, types.LT, types.LE:
		if v.IsNull() || c.Operand.IsNull() {
			return false
		}
		n, err := Compare(v, c.Operand)
		if err != nil {
			return false
		}
		switch c.Op {
		case types.GT:
			return n > 0
		case types.GE:
			return n >= 0
		case types.LT:
			return n < 0
		}
		return n <= 0
	case types.Like, types.NotLike:
		if v.Kind() != types.KindText || c.Operand.Kind() != types.KindText {
			return false
		}
		return Like(v.AsText(), c.Operand.AsText()) == (c.Op == types.Like)
	case types.In:
		for _, o := range c.Operands {
			if Equal(v, o) {
				return true
			}
		}
		return false
	case types.NotIn:
		if v.IsNull() {
			return false
		}
		for _, o := range c.Operands {
			if Equal(v, o) {
				return false
			}
		}
		return true
	case types.Contains:
		return v.IsSet() && Contains(v, c.Operand)
	case types.NotContains:
		if v.IsNull() {
			return true
		}
		return v.IsSet() && !Contains(v, c.Operand)
	}
	return false
}

// Select returns the rows matching f, in order.
func Select(rows []types.Row, f types.Filter) []types.Row {
	if f.IsEmpty() {
		return append([]types.Row(nil), rows...)
	}
	out := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		if Match(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// CheckFilter validates operator applicability against column types.
// Columns unknown to lookup are left to evaluation, where they never match.
func CheckFilter(f types.Filter, lookup ColumnLookup) error {
	if lookup == nil {
		return nil
	}
	for _, p := range f.Predicates {
		col, ok := lookup(p.Column)
		if !ok {
			continue
		}
		for _, c := range p.Constraints {
			if err := checkConstraint(col, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkConstraint(col types.Column, c types.Constraint) error {
	switch {
	case c.Op.IsOrdering():
		if !col.Type.IsOrdered() {
			return fmt.Errorf("operator %s is not valid for %s column %q", c.Op, col.Type, col.Name)
		}
		if c.Operand.IsSet() || c.Operand.Kind() == types.KindBool {
			return fmt.Errorf("operator %s needs an ordered operand, got %s", c.Op, c.Operand.Kind())
		}
	case c.Op == types.Like || c.Op == types.NotLike:
		if col.Type != types.TypeText {
			return fmt.Errorf("operator %s is not valid for %s column %q", c.Op, col.Type, col.Name)
		}
		if c.Operand.Kind() != types.KindText {
			return fmt.Errorf("operator %s needs a text pattern, got %s", c.Op, c.Operand.Kind())
		}
	case c.Op == types.Contains || c.Op == types.NotContains:
		if !col.Type.IsSet() {
			return fmt.Errorf("operator %s is not valid for %s column %q", c.Op, col.Type, col.Name)
		}
		if c.Operand.IsSet() || c.Operand.Kind() == types.KindRow {
			return fmt.Errorf("operator %s needs a scalar element, got %s", c.Op, c.Operand.Kind())
		}
	}
	return nil
}
