package vdba

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/zoobzio/vdba/internal/types"
)

// M is a loosely typed record: a row to insert, a filter or an update.
type M map[string]any

// ValueOf converts a plain Go value into a Value.
//
// Accepted inputs are nil, bool, every integer and float kind, string,
// time.Time, Value, Row, M and slices of strings or integers. A slice
// becomes a set; an empty untyped slice is an empty set of either kind.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return types.Null(), nil
	case Value:
		return v, nil
	case Row:
		return types.Nested(v), nil
	case bool:
		return types.Bool(v), nil
	case string:
		return types.Text(v), nil
	case time.Time:
		return types.Datetime(v), nil
	case *time.Time:
		if v == nil {
			return types.Null(), nil
		}
		return types.Datetime(*v), nil
	case []string:
		return types.TextSet(v...), nil
	case []int64:
		return types.IntSet(v...), nil
	case []int:
		elems := make([]int64, len(v))
		for i, n := range v {
			elems[i] = int64(n)
		}
		return types.IntSet(elems...), nil
	case []any:
		return setOf(v)
	case M:
		return nestedOf(v)
	case map[string]any:
		return nestedOf(v)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return types.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return types.Real(rv.Float()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return types.Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	}
	return types.Value{}, fmt.Errorf("%w: unsupported value %T", ErrType, x)
}

// MustValueOf is like ValueOf but panics on error.
func MustValueOf(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

func setOf(elems []any) (Value, error) {
	if len(elems) == 0 {
		return types.TextSet(), nil
	}
	texts := make([]string, 0, len(elems))
	ints := make([]int64, 0, len(elems))
	for _, e := range elems {
		v, err := ValueOf(e)
		if err != nil {
			return types.Value{}, err
		}
		switch v.Kind() {
		case types.KindText:
			texts = append(texts, v.AsText())
		case types.KindInt:
			ints = append(ints, v.AsInt())
		case types.KindReal:
			if float64(v.AsInt()) != v.AsReal() {
				return types.Value{}, fmt.Errorf("%w: set element %v is not an integer", ErrType, e)
			}
			ints = append(ints, v.AsInt())
		default:
			return types.Value{}, fmt.Errorf("%w: set element %v is %s", ErrType, e, v.Kind())
		}
	}
	switch {
	case len(ints) == 0:
		return types.TextSet(texts...), nil
	case len(texts) == 0:
		return types.IntSet(ints...), nil
	}
	return types.Value{}, fmt.Errorf("%w: set mixes text and integer elements", ErrType)
}

func nestedOf(m map[string]any) (Value, error) {
	r, err := RowOf(m)
	if err != nil {
		return types.Value{}, err
	}
	return types.Nested(r), nil
}

// RowOf converts a record into a Row with columns in lexical order.
func RowOf(m map[string]any) (Row, error) {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	vals := make([]Value, len(cols))
	for i, c := range cols {
		v, err := ValueOf(m[c])
		if err != nil {
			return Row{}, fmt.Errorf("column %s: %w", c, err)
		}
		vals[i] = v
	}
	return types.NewRow(cols, vals), nil
}
