package vdba

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/zoobzio/vdba/internal/types"
)

// ParseFilter converts a filter record into a Filter. Each entry maps a
// column either to a literal, meaning equality, or to an operator object
// such as M{"$gt": 1, "$le": 5}. Entries are AND-combined; a nil or empty
// record matches every row.
func ParseFilter(m M) (Filter, error) {
	var f Filter
	for _, col := range sortedKeys(m) {
		if col == "" {
			return Filter{}, usage(msgColumn)
		}
		cs, err := parseConstraints(col, m[col])
		if err != nil {
			return Filter{}, err
		}
		f.Predicates = append(f.Predicates, types.Predicate{Column: col, Constraints: cs})
	}
	return f, nil
}

// MustParseFilter is like ParseFilter but panics on error.
func MustParseFilter(m M) Filter {
	f, err := ParseFilter(m)
	if err != nil {
		panic(err)
	}
	return f
}

func parseConstraints(col string, x any) ([]types.Constraint, error) {
	ops, isObj, err := operatorObject(x)
	if err != nil {
		return nil, usage(msgInvalidFilter + col + ": " + err.Error())
	}
	if !isObj {
		v, err := ValueOf(x)
		if err != nil {
			return nil, usage(msgInvalidFilter + col + ": " + err.Error())
		}
		return []types.Constraint{types.LiteralConstraint(v)}, nil
	}

	cs := make([]types.Constraint, 0, len(ops))
	for _, key := range sortedKeys(ops) {
		op, ok := types.LookupOperator(key)
		if !ok {
			return nil, usage(msgInvalidFilter + col + ": unknown operator " + key)
		}
		if op.IsList() {
			vs, err := listOf(ops[key])
			if err != nil {
				return nil, usage(msgInvalidFilter + col + ": " + key + ": " + err.Error())
			}
			cs = append(cs, types.ListConstraint(op, vs))
			continue
		}
		v, err := ValueOf(ops[key])
		if err != nil {
			return nil, usage(msgInvalidFilter + col + ": " + key + ": " + err.Error())
		}
		cs = append(cs, types.OperatorConstraint(op, v))
	}
	return cs, nil
}

// operatorObject reports whether x is a record whose keys are all operators.
func operatorObject(x any) (M, bool, error) {
	var m M
	switch v := x.(type) {
	case M:
		m = v
	case map[string]any:
		m = v
	default:
		return nil, false, nil
	}
	if len(m) == 0 {
		return nil, false, fmt.Errorf("empty operator object")
	}
	n := 0
	for k := range m {
		if strings.HasPrefix(k, "$") {
			n++
		}
	}
	switch n {
	case 0:
		return nil, false, nil
	case len(m):
		return m, true, nil
	}
	return nil, false, fmt.Errorf("operators mixed with columns")
}

func listOf(x any) ([]Value, error) {
	rv := reflect.ValueOf(x)
	if x == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("list expected, got %T", x)
	}
	out := make([]Value, rv.Len())
	for i := range out {
		v, err := ValueOf(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func sortedKeys(m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
