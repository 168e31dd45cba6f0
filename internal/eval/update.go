package eval

import (
	"fmt"

	"github.com/zoobzio/vdba/internal/types"
)

// Apply returns a copy of row with every assignment of u applied in order.
// Integer arithmetic that overflows fails with ErrOperand.
//
// lookup supplies column types. Without it a null value has no known type,
// so $add on a null set column yields null instead of a one-element set.
func Apply(row types.Row, u types.Update, lookup ColumnLookup) (types.Row, error) {
	out := row
	for _, a := range u.Assignments {
		cur, ok := out.Get(a.Column)
		if !ok {
			return types.Row{}, fmt.Errorf("%w: %s", ErrNoColumn, a.Column)
		}
		var col *types.Column
		if lookup != nil {
			if c, found := lookup(a.Column); found {
				col = &c
			}
		}
		next, err := applyOne(cur, a, col)
		if err != nil {
			return types.Row{}, fmt.Errorf("update %s: %w", a.Column, err)
		}
		out = out.Set(a.Column, next)
	}
	return out, nil
}

func applyOne(cur types.Value, a types.Assignment, col *types.Column) (types.Value, error) {
	switch a.Op {
	case types.OpSet:
		return a.Operand, nil
	case types.OpAdd:
		if cur.IsSet() || (cur.IsNull() && col != nil && col.Type.IsSet()) {
			return setAdd(cur, a.Operand, col)
		}
		if cur.IsNull() {
			return types.Null(), nil
		}
		if cur.Kind() == types.KindText {
			if a.Operand.Kind() != types.KindText {
				return types.Value{}, fmt.Errorf("%w: cannot append %s to text", ErrOperand, a.Operand.Kind())
			}
			return types.Text(cur.AsText() + a.Operand.AsText()), nil
		}
		return arith(a.Op, cur, a.Operand)
	case types.OpInc, types.OpDec, types.OpMul:
		if cur.IsNull() {
			return types.Null(), nil
		}
		return arith(a.Op, cur, a.Operand)
	case types.OpDel:
		if cur.IsNull() {
			return types.Null(), nil
		}
		if !cur.IsSet() {
			return types.Value{}, fmt.Errorf("%w: $del needs a set, got %s", ErrOperand, cur.Kind())
		}
		return setDel(cur, a.Operand), nil
	}
	return types.Value{}, fmt.Errorf("%w: unknown update operator %q", ErrOperand, a.Op)
}

func arith(op types.UpdateOp, a, b types.Value) (types.Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return types.Value{}, fmt.Errorf("%w: %s needs numbers, got %s and %s", ErrOperand, op, a.Kind(), b.Kind())
	}
	if a.Kind() == types.KindInt && b.Kind() == types.KindInt {
		x, y := a.AsInt(), b.AsInt()
		var (
			n  int64
			ok bool
		)
		switch op {
		case types.OpDec:
			n, ok = subInt(x, y)
		case types.OpMul:
			n, ok = mulInt(x, y)
		default:
			n, ok = addInt(x, y)
		}
		if !ok {
			return types.Value{}, fmt.Errorf("%w: %s of %d and %d overflows an integer", ErrOperand, op, x, y)
		}
		return types.Int(n), nil
	}
	x, y := a.AsReal(), b.AsReal()
	switch op {
	case types.OpDec:
		return types.Real(x - y), nil
	case types.OpMul:
		return types.Real(x * y), nil
	}
	return types.Real(x + y), nil
}

// setKind picks the element kind of a set being extended with elem.
func setKind(cur, elem types.Value, col *types.Column) types.Kind {
	if cur.Len() > 0 {
		return cur.Kind()
	}
	if col != nil {
		switch col.Type {
		case types.TypeIntSet:
			return types.KindIntSet
		case types.TypeTextSet:
			return types.KindTextSet
		}
	}
	if elem.IsNumeric() {
		return types.KindIntSet
	}
	return types.KindTextSet
}

func setAdd(cur, elem types.Value, col *types.Column) (types.Value, error) {
	switch setKind(cur, elem, col) {
	case types.KindIntSet:
		n, ok := integral(elem)
		if !ok {
			return types.Value{}, fmt.Errorf("%w: cannot add %s to set<integer>", ErrOperand, elem.Kind())
		}
		return types.IntSet(append(cur.IntElems(), n)...), nil
	default:
		if elem.Kind() != types.KindText {
			return types.Value{}, fmt.Errorf("%w: cannot add %s to set<text>", ErrOperand, elem.Kind())
		}
		return types.TextSet(append(cur.TextElems(), elem.AsText())...), nil
	}
}

func setDel(cur, elem types.Value) types.Value {
	if !Contains(cur, elem) {
		return cur
	}
	if cur.Kind() == types.KindIntSet {
		kept := make([]int64, 0, cur.Len())
		for _, n := range cur.IntElems() {
			if !Equal(types.Int(n), elem) {
				kept = append(kept, n)
			}
		}
		return types.IntSet(kept...)
	}
	kept := make([]string, 0, cur.Len())
	for _, s := range cur.TextElems() {
		if !Equal(types.Text(s), elem) {
			kept = append(kept, s)
		}
	}
	return types.TextSet(kept...)
}

// integral returns v as an integer when it has no fractional part.
func integral(v types.Value) (int64, bool) {
	switch v.Kind() {
	case types.KindInt:
		return v.AsInt(), true
	case types.KindReal:
		f := v.AsReal()
		if f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}

// CheckUpdate validates update operators against column types.
// Columns unknown to lookup are reported at execution.
func CheckUpdate(u types.Update, lookup ColumnLookup) error {
	if lookup == nil {
		return nil
	}
	for _, a := range u.Assignments {
		col, ok := lookup(a.Column)
		if !ok {
			continue
		}
		switch a.Op {
		case types.OpAdd:
			switch {
			case col.Type.IsSet():
				if a.Operand.IsSet() || a.Operand.IsNull() || a.Operand.Kind() == types.KindRow {
					return fmt.Errorf("$add on set column %q needs one element", col.Name)
				}
			case col.Type == types.TypeText:
				if a.Operand.Kind() != types.KindText {
					return fmt.Errorf("$add on text column %q needs text", col.Name)
				}
			case !col.Type.IsNumeric():
				return fmt.Errorf("$add is not valid for %s column %q", col.Type, col.Name)
			}
		case types.OpInc, types.OpDec, types.OpMul:
			if !col.Type.IsNumeric() {
				return fmt.Errorf("%s is not valid for %s column %q", a.Op, col.Type, col.Name)
			}
			if !a.Operand.IsNumeric() {
				return fmt.Errorf("%s on column %q needs a number", a.Op, col.Name)
			}
		case types.OpDel:
			if !col.Type.IsSet() {
				return fmt.Errorf("$del is not valid for %s column %q", col.Type, col.Name)
			}
		}
	}
	return nil
}
