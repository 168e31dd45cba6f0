package eval

import (
	"errors"
	"math"
	"testing"

	"github.com/zoobzio/vdba/internal/types"
)

var sessionDef = types.TableDef{Schema: "sec", Name: "session", Columns: []types.Column{
	{Name: "sessionId", Type: types.TypeSequence, PrimaryKey: true},
	{Name: "userId", Type: types.TypeInteger},
	{Name: "login", Type: types.TypeDatetime},
	{Name: "clickedArticles", Type: types.TypeIntSet, Nullable: true},
	{Name: "minutes", Type: types.TypeReal, Nullable: true},
}}

func apply(t *testing.T, row types.Row, u types.Update) types.Row {
	t.Helper()
	out, err := Apply(row, u, sessionDef.Lookup)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return out
}

func TestApply_SetIsolatesColumn(t *testing.T) {
	for _, r := range testSessions() {
		got := apply(t, r, set("minutes", types.OpSet, types.Real(3)))
		for _, c := range r.Columns() {
			want := r.Value(c)
			if c == "minutes" {
				want = types.Real(3)
			}
			if !Equal(got.Value(c), want) {
				t.Errorf("column %s = %v, want %v", c, got.Value(c), want)
			}
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	r := testSessions()[0]
	_ = apply(t, r, set("clickedArticles", types.OpAdd, types.Int(6)))
	if r.Value("clickedArticles").Len() != 5 {
		t.Errorf("input row changed: %v", r)
	}
}

func TestApply_Scalars(t *testing.T) {
	s := testSessions()[0]
	u := testUsers()[1]
	tests := []struct {
		name string
		row  types.Row
		col  string
		op   types.UpdateOp
		arg  types.Value
		want types.Value
	}{
		{"int $add", u, "userId", types.OpAdd, types.Int(100), types.Int(102)},
		{"int $inc", u, "userId", types.OpInc, types.Int(100), types.Int(102)},
		{"int $dec", u, "userId", types.OpDec, types.Int(2), types.Int(0)},
		{"int $mul int", u, "userId", types.OpMul, types.Int(100), types.Int(200)},
		{"int $mul real promotes", u, "userId", types.OpMul, types.Real(100.3), types.Real(2 * 100.3)},
		{"real $add", s, "minutes", types.OpAdd, types.Int(100), types.Real(10.2 + 100)},
		{"real $dec", s, "minutes", types.OpDec, types.Int(1), types.Real(10.2 - 1)},
		{"real $mul", s, "minutes", types.OpMul, types.Real(200.25), types.Real(10.2 * 200.25)},
		{"text $add concatenates", u, "username", types.OpAdd, types.Text("xxxxx"), types.Text("user02xxxxx")},
		{"literal null", s, "clickedArticles", types.OpSet, types.Null(), types.Null()},
		{"literal empty set", s, "clickedArticles", types.OpSet, types.IntSet(), types.IntSet()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.row, set(tt.col, tt.op, tt.arg), nil)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if v := got.Value(tt.col); !Equal(v, tt.want) || v.Kind() != tt.want.Kind() {
				t.Errorf("%s = %v (%s), want %v (%s)", tt.col, v, v.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestApply_NullArithmeticPropagates(t *testing.T) {
	s := testSessions()[3]
	for _, op := range []types.UpdateOp{types.OpAdd, types.OpInc, types.OpDec, types.OpMul} {
		got := apply(t, s, set("minutes", op, types.Int(2)))
		if !got.Value("minutes").IsNull() {
			t.Errorf("%s on null = %v, want null", op, got.Value("minutes"))
		}
	}
}

func TestApply_SetElements(t *testing.T) {
	sessions := testSessions()
	tests := []struct {
		name string
		row  types.Row
		op   types.UpdateOp
		arg  int64
		want []int64
		null bool
	}{
		{"add to null", sessions[3], types.OpAdd, 1, []int64{1}, false},
		{"add to empty", sessions[2], types.OpAdd, 1, []int64{1}, false},
		{"add last", sessions[0], types.OpAdd, 6, []int64{1, 2, 3, 4, 5, 6}, false},
		{"add existing", sessions[0], types.OpAdd, 3, []int64{1, 2, 3, 4, 5}, false},
		{"del first", sessions[0], types.OpDel, 1, []int64{2, 3, 4, 5}, false},
		{"del middle", sessions[0], types.OpDel, 3, []int64{1, 2, 4, 5}, false},
		{"del last", sessions[0], types.OpDel, 5, []int64{1, 2, 3, 4}, false},
		{"del unknown", sessions[0], types.OpDel, 12345, []int64{1, 2, 3, 4, 5}, false},
		{"del only", sessions[1], types.OpDel, 1, []int64{}, false},
		{"del from null", sessions[3], types.OpDel, 1, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(t, tt.row, set("clickedArticles", tt.op, types.Int(tt.arg))).Value("clickedArticles")
			if tt.null {
				if !got.IsNull() {
					t.Fatalf("clickedArticles = %v, want null", got)
				}
				return
			}
			elems := got.IntElems()
			if len(elems) != len(tt.want) {
				t.Fatalf("clickedArticles = %v, want %v", elems, tt.want)
			}
			for i := range tt.want {
				if elems[i] != tt.want[i] {
					t.Fatalf("clickedArticles = %v, want %v (order matters)", elems, tt.want)
				}
			}
		})
	}
}

func TestApply_TextSet(t *testing.T) {
	p := testProfiles()
	got, err := Apply(p[6], set("emails", types.OpAdd, types.Text("u07@test.com")), func(string) (types.Column, bool) {
		return types.Column{Name: "emails", Type: types.TypeTextSet}, true
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !Equal(got.Value("emails"), types.TextSet("u07@test.com")) {
		t.Errorf("emails = %v", got.Value("emails"))
	}
}

func TestApply_AddIdempotent(t *testing.T) {
	for _, r := range testSessions() {
		u := set("clickedArticles", types.OpAdd, types.Int(3))
		once := apply(t, r, u)
		twice := apply(t, once, u)
		if !RowEqual(once, twice) {
			t.Errorf("$add not idempotent: %v vs %v", once, twice)
		}
	}
}

func TestApply_AddDelRoundTrip(t *testing.T) {
	for _, r := range testSessions()[:3] {
		added := apply(t, r, set("clickedArticles", types.OpAdd, types.Int(99)))
		back := apply(t, added, set("clickedArticles", types.OpDel, types.Int(99)))
		if !Equal(back.Value("clickedArticles"), r.Value("clickedArticles")) {
			t.Errorf("round trip = %v, want %v", back.Value("clickedArticles"), r.Value("clickedArticles"))
		}
	}
}

func TestApply_MulFolds(t *testing.T) {
	u := testUsers()[2]
	stepwise := apply(t, apply(t, u, set("userId", types.OpMul, types.Int(4))), set("userId", types.OpMul, types.Int(5)))
	folded := apply(t, u, set("userId", types.OpMul, types.Int(20)))
	if !Equal(stepwise.Value("userId"), folded.Value("userId")) {
		t.Errorf("stepwise %v != folded %v", stepwise.Value("userId"), folded.Value("userId"))
	}
}

func TestApply_Errors(t *testing.T) {
	u := testUsers()[0]
	tests := []struct {
		name string
		upd  types.Update
		want error
	}{
		{"unknown column", set("nope", types.OpSet, types.Int(1)), ErrNoColumn},
		{"arith on bool", set("enabled", types.OpInc, types.Int(1)), ErrOperand},
		{"del on scalar", set("userId", types.OpDel, types.Int(1)), ErrOperand},
		{"text plus number", set("username", types.OpAdd, types.Int(1)), ErrOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(u, tt.upd, nil); !errors.Is(err, tt.want) {
				t.Errorf("Apply() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckUpdate(t *testing.T) {
	tests := []struct {
		name    string
		upd     types.Update
		wantErr bool
	}{
		{"inc real", set("minutes", types.OpInc, types.Int(1)), false},
		{"inc datetime", set("login", types.OpInc, types.Int(1)), true},
		{"del on integer", set("userId", types.OpDel, types.Int(1)), true},
		{"add set to set", set("clickedArticles", types.OpAdd, types.IntSet(1)), true},
		{"add element to set", set("clickedArticles", types.OpAdd, types.Int(1)), false},
		{"mul by text", set("minutes", types.OpMul, types.Text("2")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpdate(tt.upd, sessionDef.Lookup)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApply_IntegerOverflow(t *testing.T) {
	cols := []string{"userId"}
	tests := []struct {
		name string
		val  int64
		op   types.UpdateOp
		arg  int64
	}{
		{"inc", math.MaxInt64, types.OpInc, 1},
		{"add", 1 << 62, types.OpAdd, 1 << 62},
		{"dec", math.MinInt64, types.OpDec, 1},
		{"dec negative", math.MaxInt64, types.OpDec, -1},
		{"mul", 1 << 62, types.OpMul, 4},
		{"mul min", math.MinInt64, types.OpMul, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := types.NewRow(cols, []types.Value{types.Int(tt.val)})
			_, err := Apply(r, set("userId", tt.op, types.Int(tt.arg)), sessionDef.Lookup)
			if !errors.Is(err, ErrOperand) {
				t.Errorf("Apply() error = %v, want ErrOperand", err)
			}
		})
	}
}

func TestApply_IntegerBounds(t *testing.T) {
	cols := []string{"userId"}
	tests := []struct {
		name string
		val  int64
		op   types.UpdateOp
		arg  int64
		want int64
	}{
		{"inc to max", math.MaxInt64 - 1, types.OpInc, 1, math.MaxInt64},
		{"dec to min", math.MinInt64 + 1, types.OpDec, 1, math.MinInt64},
		{"mul to min", 1 << 62, types.OpMul, -2, math.MinInt64},
		{"mul zero", math.MaxInt64, types.OpMul, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := types.NewRow(cols, []types.Value{types.Int(tt.val)})
			got := apply(t, r, set("userId", tt.op, types.Int(tt.arg)))
			if v := got.Value("userId"); v.Kind() != types.KindInt || v.AsInt() != tt.want {
				t.Errorf("userId = %v, want %d", v, tt.want)
			}
		})
	}
}

func TestApply_NilLookupNullSet(t *testing.T) {
	r := testSessions()[3]
	got, err := Apply(r, set("clickedArticles", types.OpAdd, types.Int(9)), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !got.Value("clickedArticles").IsNull() {
		t.Errorf("clickedArticles = %v, want null without a lookup", got.Value("clickedArticles"))
	}
	got = apply(t, r, set("clickedArticles", types.OpAdd, types.Int(9)))
	if !Equal(got.Value("clickedArticles"), types.IntSet(9)) {
		t.Errorf("clickedArticles = %v, want [9]", got.Value("clickedArticles"))
	}
}
