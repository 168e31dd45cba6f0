package eval

import (
	"errors"
	"math"
	"testing"

	"github.com/zoobzio/vdba/internal/types"
)

func agg(fn types.AggFunc, col, alias string, f *types.Filter) types.Aggregation {
	return types.Aggregation{Func: fn, Column: col, Alias: alias, Filter: f}
}

func valueFilter(op types.Operator, v types.Value) *types.Filter {
	f := where(types.AggregateValue, types.OperatorConstraint(op, v))
	return &f
}

func row(cols []string, vals ...types.Value) types.Row {
	return types.NewRow(cols, vals)
}

func TestAggregate_FirstEncounterOrder(t *testing.T) {
	g := types.Group{Columns: []string{"enabled"}, Aggregations: []types.Aggregation{agg(types.AggCount, "*", "count", nil)}}
	got, err := Aggregate(testUsers(), g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	cols := []string{"enabled", "count"}
	assertRows(t, got, []types.Row{
		row(cols, types.Bool(true), types.Int(5)),
		row(cols, types.Bool(false), types.Int(2)),
	})
}

func TestAggregate_CountHaving(t *testing.T) {
	g := types.Group{Columns: []string{"enabled"}, Aggregations: []types.Aggregation{
		agg(types.AggCount, "*", "total", valueFilter(types.GT, types.Int(2))),
	}}
	got, err := Aggregate(testUsers(), g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	assertRows(t, got, []types.Row{row([]string{"enabled", "total"}, types.Bool(true), types.Int(5))})
}

func TestAggregate_Sessions(t *testing.T) {
	sessions := testSessions()
	cols := func(alias string) []string { return []string{"userId", alias} }
	tests := []struct {
		name string
		agg  types.Aggregation
		want []types.Row
	}{
		{"sum", agg(types.AggSum, "minutes", "sum", nil), []types.Row{
			row(cols("sum"), types.Int(1), types.Real(10.2+0.25)),
			row(cols("sum"), types.Int(2), types.Real(1.13)),
			row(cols("sum"), types.Int(3), types.Null()),
		}},
		{"sum having", agg(types.AggSum, "minutes", "sum", valueFilter(types.GT, types.Int(2))), []types.Row{
			row(cols("sum"), types.Int(1), types.Real(10.2+0.25)),
		}},
		{"min", agg(types.AggMin, "minutes", "min", nil), []types.Row{
			row(cols("min"), types.Int(1), types.Real(0.25)),
			row(cols("min"), types.Int(2), types.Real(1.13)),
			row(cols("min"), types.Int(3), types.Null()),
		}},
		{"min having", agg(types.AggMin, "minutes", "min", valueFilter(types.GT, types.Int(1))), []types.Row{
			row(cols("min"), types.Int(2), types.Real(1.13)),
		}},
		{"max", agg(types.AggMax, "minutes", "max", nil), []types.Row{
			row(cols("max"), types.Int(1), types.Real(10.2)),
			row(cols("max"), types.Int(2), types.Real(1.13)),
			row(cols("max"), types.Int(3), types.Null()),
		}},
		{"avg", agg(types.AggAvg, "minutes", "avg", nil), []types.Row{
			row(cols("avg"), types.Int(1), types.Real((10.2+0.25)/2)),
			row(cols("avg"), types.Int(2), types.Real(1.13)),
			row(cols("avg"), types.Int(3), types.Null()),
		}},
		{"integer sum stays integer", agg(types.AggSum, "sessionId", "sum", nil), []types.Row{
			row(cols("sum"), types.Int(1), types.Int(4)),
			row(cols("sum"), types.Int(2), types.Int(2)),
			row(cols("sum"), types.Int(3), types.Int(4)),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := types.Group{Columns: []string{"userId"}, Aggregations: []types.Aggregation{tt.agg}}
			got, err := Aggregate(sessions, g)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			assertRows(t, got, tt.want)
		})
	}
}

func TestAggregate_TwoFilteredAggregations(t *testing.T) {
	g := types.Group{Columns: []string{"userId"}, Aggregations: []types.Aggregation{
		agg(types.AggCount, "*", "count", valueFilter(types.GE, types.Int(1))),
		agg(types.AggSum, "minutes", "sum", valueFilter(types.GT, types.Int(5))),
	}}
	got, err := Aggregate(testSessions(), g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	assertRows(t, got, []types.Row{
		row([]string{"userId", "count", "sum"}, types.Int(1), types.Int(2), types.Real(10.2+0.25)),
	})
}

func TestAggregate_RowFilterRestrictsSubset(t *testing.T) {
	f := where("minutes", types.OperatorConstraint(types.GT, types.Real(1)))
	g := types.Group{Columns: []string{"userId"}, Aggregations: []types.Aggregation{
		agg(types.AggCount, "*", "long", &f),
		agg(types.AggCount, "*", "all", nil),
	}}
	got, err := Aggregate(testSessions(), g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	cols := []string{"userId", "long", "all"}
	assertRows(t, got, []types.Row{
		row(cols, types.Int(1), types.Int(1), types.Int(2)),
		row(cols, types.Int(2), types.Int(1), types.Int(1)),
		row(cols, types.Int(3), types.Int(0), types.Int(1)),
	})
}

func TestAggregate_EmptySubset(t *testing.T) {
	f := where("minutes", types.OperatorConstraint(types.GT, types.Int(1000)))
	g := types.Group{Columns: []string{"userId"}, Aggregations: []types.Aggregation{
		agg(types.AggCount, "*", "count", &f),
		agg(types.AggSum, "minutes", "sum", &f),
		agg(types.AggMin, "minutes", "min", &f),
		agg(types.AggMax, "minutes", "max", &f),
		agg(types.AggAvg, "minutes", "avg", &f),
	}}
	got, err := Aggregate(testSessions(), g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	for _, r := range got {
		if r.Value("count").AsInt() != 0 {
			t.Errorf("count = %v, want 0", r.Value("count"))
		}
		for _, c := range []string{"sum", "min", "max", "avg"} {
			if !r.Value(c).IsNull() {
				t.Errorf("%s = %v, want null", c, r.Value(c))
			}
		}
	}
}

func TestAggregate_MinOnBooleansFails(t *testing.T) {
	g := types.Group{Columns: []string{"password"}, Aggregations: []types.Aggregation{agg(types.AggMin, "enabled", "min", nil)}}
	if _, err := Aggregate(testUsers(), g); !errors.Is(err, ErrNotOrdered) {
		t.Errorf("Aggregate() error = %v, want ErrNotOrdered", err)
	}
}

func TestAggregate_SumOverflow(t *testing.T) {
	cols := []string{"k", "v"}
	rows := []types.Row{
		row(cols, types.Int(1), types.Int(1<<62)),
		row(cols, types.Int(1), types.Int(1<<62)),
	}
	g := types.Group{Columns: []string{"k"}, Aggregations: []types.Aggregation{agg(types.AggSum, "v", "sum", nil)}}
	if _, err := Aggregate(rows, g); !errors.Is(err, ErrOperand) {
		t.Errorf("Aggregate() error = %v, want ErrOperand", err)
	}

	// A real input makes the sum real.
	rows = append(rows, row(cols, types.Int(1), types.Real(0.5)))
	got, err := Aggregate(rows, g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if v := got[0].Value("sum"); v.Kind() != types.KindReal {
		t.Errorf("sum = %v, want a real", v)
	}

	// A total at the edge of the range is kept.
	rows = []types.Row{
		row(cols, types.Int(1), types.Int(math.MaxInt64)),
		row(cols, types.Int(1), types.Int(-1)),
	}
	got, err = Aggregate(rows, g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	assertRows(t, got, []types.Row{row([]string{"k", "sum"}, types.Int(1), types.Int(math.MaxInt64-1))})
}

func TestAggregate_GroupsMatchEqual(t *testing.T) {
	cols := []string{"k"}
	rows := []types.Row{
		row(cols, types.Int(1<<53)),
		row(cols, types.Real(1<<53)),
		row(cols, types.Int(1<<53+1)),
	}
	g := types.Group{Columns: cols, Aggregations: []types.Aggregation{agg(types.AggCount, "*", "count", nil)}}
	got, err := Aggregate(rows, g)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	want := []string{"k", "count"}
	assertRows(t, got, []types.Row{
		row(want, types.Int(1<<53), types.Int(2)),
		row(want, types.Int(1<<53+1), types.Int(1)),
	})
}
