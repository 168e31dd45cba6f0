package vdba

import (
	"github.com/zoobzio/vdba/internal/types"
)

// ParseUpdate converts an update record into an Update. Each entry maps a
// column to a literal, meaning $set, or to a single-operator object such
// as M{"$inc": 1}. A nil value assigns null.
func ParseUpdate(m M) (Update, error) {
	if len(m) == 0 {
		return Update{}, usage(msgUpdateColumns)
	}
	var u Update
	for _, col := range sortedKeys(m) {
		if col == "" {
			return Update{}, usage(msgColumn)
		}
		a, err := parseAssignment(col, m[col])
		if err != nil {
			return Update{}, err
		}
		u.Assignments = append(u.Assignments, a)
	}
	return u, nil
}

func parseAssignment(col string, x any) (types.Assignment, error) {
	ops, isObj, err := operatorObject(x)
	if err != nil {
		return types.Assignment{}, usage(msgInvalidUpdate + col + ": " + err.Error())
	}
	if !isObj {
		v, err := ValueOf(x)
		if err != nil {
			return types.Assignment{}, usage(msgInvalidUpdate + col + ": " + err.Error())
		}
		return types.Assignment{Column: col, Op: types.OpSet, Operand: v}, nil
	}
	if len(ops) != 1 {
		return types.Assignment{}, usage(msgInvalidUpdate + col + ": one operator expected")
	}
	for key, arg := range ops {
		op, ok := types.LookupUpdateOp(key)
		if !ok {
			return types.Assignment{}, usage(msgInvalidUpdate + col + ": unknown operator " + key)
		}
		v, err := ValueOf(arg)
		if err != nil {
			return types.Assignment{}, usage(msgInvalidUpdate + col + ": " + key + ": " + err.Error())
		}
		return types.Assignment{Column: col, Op: op, Operand: v}, nil
	}
	return types.Assignment{}, nil
}
