package eval

import (
	"testing"
	"time"

	"github.com/zoobzio/vdba/internal/types"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2015, m, d, 0, 0, 0, 0, time.UTC)
}

func at(m time.Month, d, h, min int) time.Time {
	return time.Date(2015, m, d, h, min, 0, 0, time.UTC)
}

var userCols = []string{"userId", "username", "password", "createDate", "enabled"}

func user(id int64, name, pwd string, created time.Time, enabled bool) types.Row {
	return types.NewRow(userCols, []types.Value{
		types.Int(id), types.Text(name), types.Text(pwd), types.Date(created), types.Bool(enabled),
	})
}

func testUsers() []types.Row {
	return []types.Row{
		user(1, "user01", "pwd01", day(1, 2), true),
		user(2, "user02", "pwd02", day(1, 2), false),
		user(3, "user03", "pwd03", day(1, 2), true),
		user(4, "user04", "pwd04", day(1, 3), true),
		user(5, "user05", "pwd05", day(1, 3), false),
		user(6, "user11", "pwd11", day(1, 4), true),
		user(7, "user12", "pwd12", day(1, 5), true),
	}
}

var sessionCols = []string{"sessionId", "userId", "login", "clickedArticles", "minutes"}

func testSessions() []types.Row {
	return []types.Row{
		types.NewRow(sessionCols, []types.Value{types.Int(1), types.Int(1), types.Datetime(at(1, 2, 8, 30)), types.IntSet(1, 2, 3, 4, 5), types.Real(10.2)}),
		types.NewRow(sessionCols, []types.Value{types.Int(2), types.Int(2), types.Datetime(at(1, 2, 15, 35)), types.IntSet(1), types.Real(1.13)}),
		types.NewRow(sessionCols, []types.Value{types.Int(3), types.Int(1), types.Datetime(at(1, 3, 7, 45)), types.IntSet(), types.Real(0.25)}),
		types.NewRow(sessionCols, []types.Value{types.Int(4), types.Int(3), types.Datetime(at(1, 5, 16, 23)), types.Null(), types.Null()}),
	}
}

var profileCols = []string{"userId", "nick", "emails"}

func testProfiles() []types.Row {
	return []types.Row{
		types.NewRow(profileCols, []types.Value{types.Int(1), types.Text("u01"), types.TextSet("user01@test.com", "u01@test.com", "another@test.com")}),
		types.NewRow(profileCols, []types.Value{types.Int(2), types.Text("u02"), types.TextSet("user02@test.com")}),
		types.NewRow(profileCols, []types.Value{types.Int(3), types.Text("u03"), types.TextSet("user03@test.com", "u03@test.com")}),
		types.NewRow(profileCols, []types.Value{types.Int(4), types.Text("u04"), types.TextSet()}),
		types.NewRow(profileCols, []types.Value{types.Int(5), types.Text("u05"), types.TextSet("user05@test.com", "u05@test.com")}),
		types.NewRow(profileCols, []types.Value{types.Int(6), types.Text("u11"), types.TextSet("user11@test.com", "u11@test.com")}),
		types.NewRow(profileCols, []types.Value{types.Int(7), types.Text("u12"), types.Null()}),
	}
}

func eq(col string, v types.Value) types.Filter {
	return where(col, types.LiteralConstraint(v))
}

func where(col string, cs ...types.Constraint) types.Filter {
	return types.Filter{Predicates: []types.Predicate{{Column: col, Constraints: cs}}}
}

func set(col string, op types.UpdateOp, v types.Value) types.Update {
	return types.Update{Assignments: []types.Assignment{{Column: col, Op: op, Operand: v}}}
}

// assertRows compares rows by value, ignoring column order within a row.
func assertRows(t *testing.T, got, want []types.Row) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if !RowEqual(got[i], want[i]) {
			t.Errorf("row %d:\ngot:  %v\nwant: %v", i, got[i], want[i])
		}
	}
}

func ids(rows []types.Row, col string) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Value(col).AsInt()
	}
	return out
}

func assertIDs(t *testing.T, rows []types.Row, col string, want ...int64) {
	t.Helper()
	got := ids(rows, col)
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", col, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", col, got, want)
		}
	}
}
