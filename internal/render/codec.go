package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/zoobzio/vdba/internal/types"
)

// TimeLayout stores dates and datetimes as fixed-width UTC text, so text
// order equals time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Encode converts a value into a driver argument for a column of type t.
// The value must already be coerced to t.
func Encode(v types.Value, t types.ColumnType) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch t {
	case types.TypeText:
		return v.AsText(), nil
	case types.TypeInteger, types.TypeSequence:
		return v.AsInt(), nil
	case types.TypeReal:
		return v.AsReal(), nil
	case types.TypeBoolean:
		return v.AsBool(), nil
	case types.TypeDate, types.TypeDatetime:
		return v.AsTime().UTC().Format(TimeLayout), nil
	case types.TypeTextSet:
		return marshalSet(v.TextElems())
	case types.TypeIntSet:
		return marshalSet(v.IntElems())
	}
	return nil, fmt.Errorf("%w: cannot store %s as %s", types.ErrType, v.Kind(), t)
}

func marshalSet[E string | int64](elems []E) (any, error) {
	if elems == nil {
		elems = []E{}
	}
	b, err := json.Marshal(elems)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Decode converts a scanned driver value into a value of column type t.
func Decode(src any, t types.ColumnType) (types.Value, error) {
	if src == nil {
		return types.Null(), nil
	}
	switch t {
	case types.TypeText:
		switch s := src.(type) {
		case string:
			return types.Text(s), nil
		case []byte:
			return types.Text(string(s)), nil
		}
	case types.TypeInteger, types.TypeSequence:
		switch n := src.(type) {
		case int64:
			return types.Int(n), nil
		case int32:
			return types.Int(int64(n)), nil
		case int:
			return types.Int(int64(n)), nil
		case float64:
			return types.Int(int64(n)), nil
		case []byte:
			return parseInt(string(n))
		case string:
			return parseInt(n)
		}
	case types.TypeReal:
		switch n := src.(type) {
		case float64:
			return types.Real(n), nil
		case float32:
			return types.Real(float64(n)), nil
		case int64:
			return types.Real(float64(n)), nil
		case []byte:
			return parseReal(string(n))
		case string:
			return parseReal(n)
		}
	case types.TypeBoolean:
		switch b := src.(type) {
		case bool:
			return types.Bool(b), nil
		case int64:
			return types.Bool(b != 0), nil
		case []byte:
			return parseBool(string(b))
		case string:
			return parseBool(b)
		}
	case types.TypeDate, types.TypeDatetime:
		var s string
		switch x := src.(type) {
		case time.Time:
			return timeValue(x, t), nil
		case string:
			s = x
		case []byte:
			s = string(x)
		default:
			return types.Null(), decodeError(src, t)
		}
		tm, err := time.Parse(TimeLayout, s)
		if err != nil {
			return types.Null(), fmt.Errorf("%w: %v", types.ErrType, err)
		}
		return timeValue(tm, t), nil
	case types.TypeTextSet:
		var elems []string
		if err := unmarshalSet(src, &elems); err != nil {
			return types.Null(), err
		}
		return types.TextSet(elems...), nil
	case types.TypeIntSet:
		var elems []int64
		if err := unmarshalSet(src, &elems); err != nil {
			return types.Null(), err
		}
		return types.IntSet(elems...), nil
	}
	return types.Null(), decodeError(src, t)
}

func decodeError(src any, t types.ColumnType) error {
	return fmt.Errorf("%w: cannot read %T as %s", types.ErrType, src, t)
}

func timeValue(tm time.Time, t types.ColumnType) types.Value {
	if t == types.TypeDate {
		return types.Date(tm.UTC())
	}
	return types.Datetime(tm)
}

func parseInt(s string) (types.Value, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return types.Null(), fmt.Errorf("%w: %v", types.ErrType, err)
	}
	return types.Int(n), nil
}

func parseReal(s string) (types.Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.Null(), fmt.Errorf("%w: %v", types.ErrType, err)
	}
	return types.Real(f), nil
}

func parseBool(s string) (types.Value, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return types.Null(), fmt.Errorf("%w: %v", types.ErrType, err)
	}
	return types.Bool(b), nil
}

func unmarshalSet(src any, dst any) error {
	var data []byte
	switch x := src.(type) {
	case string:
		data = []byte(x)
	case []byte:
		data = x
	default:
		return fmt.Errorf("%w: cannot read %T as a set", types.ErrType, src)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", types.ErrType, err)
	}
	return nil
}
