package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrType is returned when a value does not fit a column's type.
var ErrType = errors.New("type mismatch")

// Coerce converts v to the representation stored for c. Integer columns
// truncate reals, real columns widen integers, and date columns drop the
// time of day. Null passes through; nullability is checked by the caller.
func (c Column) Coerce(v Value) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch c.Type {
	case TypeText:
		if v.kind == KindText {
			return v, nil
		}
	case TypeInteger, TypeSequence:
		switch v.kind {
		case KindInt:
			return v, nil
		case KindReal:
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				break
			}
			return Int(int64(v.f)), nil
		}
	case TypeReal:
		if v.IsNumeric() {
			return Real(v.AsReal()), nil
		}
	case TypeBoolean:
		if v.kind == KindBool {
			return v, nil
		}
	case TypeDate:
		if v.IsTime() {
			return Date(v.t), nil
		}
		if v.kind == KindText {
			if t, ok := parseTime(v.s); ok {
				return Date(t), nil
			}
		}
	case TypeDatetime:
		if v.IsTime() {
			return Datetime(v.t), nil
		}
		if v.kind == KindText {
			if t, ok := parseTime(v.s); ok {
				return Datetime(t), nil
			}
		}
	case TypeTextSet:
		if v.kind == KindTextSet || (v.IsSet() && v.Len() == 0) {
			return TextSet(v.texts...), nil
		}
	case TypeIntSet:
		if v.kind == KindIntSet || (v.IsSet() && v.Len() == 0) {
			return IntSet(v.ints...), nil
		}
	}
	return Value{}, fmt.Errorf("%w: column %s is %s, got %s", ErrType, c.Name, c.Type, v.kind)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
