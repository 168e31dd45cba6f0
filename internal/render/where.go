package render

import (
	"strings"

	"github.com/zoobzio/vdba/internal/types"
)

// Pushdown is the part of a filter rendered as a WHERE clause.
type Pushdown struct {
	Clause  string
	Args    []any
	Skipped []error // constraints left to in-process evaluation
}

var sqlOperators = map[types.Operator]string{
	types.EQ: "=",
	types.GT: ">",
	types.GE: ">=",
	types.LT: "<",
	types.LE: "<=",
}

// Where renders the constraints of f that the database can evaluate with
// the same result as the evaluator, or a weaker one. Rows it returns are a
// superset of the matching rows; callers must still apply f. Placeholders
// are numbered from start.
func Where(d Dialect, def types.TableDef, f types.Filter, start int) Pushdown {
	var (
		out   Pushdown
		conds []string
	)
	n := start
	for _, p := range f.Predicates {
		col, ok := def.Lookup(p.Column)
		if !ok {
			out.Skipped = append(out.Skipped, NewUnsupportedFeatureError(d.Name(), "unknown column "+p.Column))
			continue
		}
		for _, c := range p.Constraints {
			cond, args, err := constraint(d, col, c, n)
			if err != nil {
				out.Skipped = append(out.Skipped, err)
				continue
			}
			conds = append(conds, cond)
			out.Args = append(out.Args, args...)
			n += len(args)
		}
	}
	out.Clause = strings.Join(conds, " AND ")
	return out
}

func constraint(d Dialect, col types.Column, c types.Constraint, n int) (string, []any, error) {
	unsupported := func() (string, []any, error) {
		return "", nil, NewUnsupportedFeatureError(d.Name(), string(c.Op)+" on "+string(col.Type)+" column "+col.Name, "evaluated in process")
	}
	switch c.Op {
	case types.EQ:
		arg, ok := operand(col.Type, c.Operand)
		if !ok {
			return unsupported()
		}
		return d.Quote(col.Name) + " = " + d.Placeholder(n), []any{arg}, nil
	case types.GT, types.GE, types.LT, types.LE:
		if !col.Type.IsNumeric() {
			return unsupported()
		}
		arg, ok := operand(col.Type, c.Operand)
		if !ok {
			return unsupported()
		}
		return d.Quote(col.Name) + " " + sqlOperators[c.Op] + " " + d.Placeholder(n), []any{arg}, nil
	case types.In:
		if len(c.Operands) == 0 {
			return unsupported()
		}
		args := make([]any, len(c.Operands))
		for i, v := range c.Operands {
			arg, ok := operand(col.Type, v)
			if !ok {
				return unsupported()
			}
			args[i] = arg
		}
		return d.Quote(col.Name) + " IN (" + Placeholders(d, n, len(args)) + ")", args, nil
	}
	return unsupported()
}

// operand returns the driver argument for comparing v against a column of
// type t, or false when the database could disagree with the evaluator.
func operand(t types.ColumnType, v types.Value) (any, bool) {
	switch t {
	case types.TypeText:
		if v.Kind() == types.KindText {
			return v.AsText(), true
		}
	case types.TypeInteger, types.TypeSequence:
		if v.Kind() == types.KindInt {
			return v.AsInt(), true
		}
	case types.TypeReal:
		if v.IsNumeric() {
			return v.AsReal(), true
		}
	case types.TypeBoolean:
		if v.Kind() == types.KindBool {
			return v.AsBool(), true
		}
	}
	return nil, false
}
