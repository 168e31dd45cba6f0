package vdba_test

import (
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/vdba"
)

func TestValueOf(t *testing.T) {
	now := time.Date(2015, 1, 2, 8, 30, 0, 0, time.FixedZone("CET", 3600))
	seven := 7

	tests := []struct {
		name string
		in   any
		kind vdba.Kind
	}{
		{"nil", nil, vdba.KindNull},
		{"bool", true, vdba.KindBool},
		{"int", 42, vdba.KindInt},
		{"int8", int8(-3), vdba.KindInt},
		{"uint16", uint16(3), vdba.KindInt},
		{"float32", float32(1.5), vdba.KindReal},
		{"float64", 2.25, vdba.KindReal},
		{"string", "hello", vdba.KindText},
		{"time", now, vdba.KindDatetime},
		{"nil time pointer", (*time.Time)(nil), vdba.KindNull},
		{"int pointer", &seven, vdba.KindInt},
		{"strings", []string{"a", "b"}, vdba.KindTextSet},
		{"ints", []int{1, 2}, vdba.KindIntSet},
		{"int64s", []int64{1}, vdba.KindIntSet},
		{"empty any slice", []any{}, vdba.KindTextSet},
		{"any texts", []any{"a", "b"}, vdba.KindTextSet},
		{"any ints", []any{1, int64(2), 3.0}, vdba.KindIntSet},
		{"record", vdba.M{"a": 1}, vdba.KindRow},
		{"map", map[string]any{"a": 1}, vdba.KindRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := vdba.ValueOf(tt.in)
			if err != nil {
				t.Fatalf("ValueOf(%v) error = %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("ValueOf(%v).Kind() = %s, want %s", tt.in, v.Kind(), tt.kind)
			}
		})
	}
}

func TestValueOf_Datetime_UTC(t *testing.T) {
	in := time.Date(2015, 1, 2, 8, 30, 0, 0, time.FixedZone("CET", 3600))
	v := vdba.MustValueOf(in)
	if got := v.AsTime(); !got.Equal(in) || got.Location() != time.UTC {
		t.Errorf("AsTime() = %v, want %v in UTC", got, in)
	}
}

func TestValueOf_Sets(t *testing.T) {
	v := vdba.MustValueOf([]string{"b", "a", "b"})
	if got := v.TextElems(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("TextElems() = %v, want [b a]", got)
	}
	v = vdba.MustValueOf([]int{3, 1, 3, 2})
	if got := v.IntElems(); len(got) != 3 || got[0] != 3 || got[2] != 2 {
		t.Errorf("IntElems() = %v, want [3 1 2]", got)
	}
}

func TestValueOf_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"struct", struct{}{}},
		{"channel", make(chan int)},
		{"mixed set", []any{"a", 1}},
		{"fractional set element", []any{1.5}},
		{"boolean set element", []any{true}},
		{"bad nested column", vdba.M{"a": struct{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vdba.ValueOf(tt.in)
			if !errors.Is(err, vdba.ErrType) {
				t.Errorf("ValueOf(%v) error = %v, want ErrType", tt.in, err)
			}
		})
	}
}

func TestMustValueOf_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustValueOf did not panic")
		}
	}()
	vdba.MustValueOf(struct{}{})
}

func TestRowOf(t *testing.T) {
	r, err := vdba.RowOf(vdba.M{"b": 2, "a": "x", "c": nil})
	if err != nil {
		t.Fatalf("RowOf() error = %v", err)
	}
	cols := r.Columns()
	if len(cols) != 3 || cols[0] != "a" || cols[1] != "b" || cols[2] != "c" {
		t.Errorf("Columns() = %v, want [a b c]", cols)
	}
	if got := r.Value("b").AsInt(); got != 2 {
		t.Errorf("Value(b) = %d, want 2", got)
	}
	if !r.Value("c").IsNull() {
		t.Error("Value(c) is not null")
	}

	if _, err := vdba.RowOf(vdba.M{"bad": struct{}{}}); err == nil {
		t.Error("RowOf() accepted an unsupported value")
	}
}
