package eval

import (
	"testing"

	"github.com/zoobzio/vdba/internal/types"
)

func sessionJoin(mode types.JoinMode, target string) types.Join {
	return types.Join{
		Mode:         mode,
		Type:         types.InnerJoin,
		Target:       types.TableRef{Schema: "sec", Name: target},
		SourceColumn: "userId",
		TargetColumn: "userId",
	}
}

func TestJoin_FlatFollowsTargetOrder(t *testing.T) {
	users := testUsers()
	sessions := testSessions()

	got := Join(users, sessions, sessionJoin(types.JoinFlat, "session"))

	want := []types.Row{
		users[0].Merge(sessions[0]),
		users[1].Merge(sessions[1]),
		users[0].Merge(sessions[2]),
		users[2].Merge(sessions[3]),
	}
	assertRows(t, got, want)
	assertIDs(t, got, "sessionId", 1, 2, 3, 4)

	cols := got[0].Columns()
	wantCols := []string{"userId", "username", "password", "createDate", "enabled", "sessionId", "login", "clickedArticles", "minutes"}
	if len(cols) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", cols, wantCols)
	}
	for i := range wantCols {
		if cols[i] != wantCols[i] {
			t.Errorf("column %d = %s, want %s", i, cols[i], wantCols[i])
		}
	}
}

func TestJoin_Cardinality(t *testing.T) {
	users := testUsers()
	sessions := testSessions()
	j := sessionJoin(types.JoinFlat, "session")

	perUser := map[int64]int{}
	for _, r := range Join(users, sessions, j) {
		perUser[r.Value("userId").AsInt()]++
	}
	want := map[int64]int{1: 2, 2: 1, 3: 1}
	for id, n := range want {
		if perUser[id] != n {
			t.Errorf("user %d joined %d rows, want %d", id, perUser[id], n)
		}
	}
	for id := int64(4); id <= 7; id++ {
		if perUser[id] != 0 {
			t.Errorf("user %d without sessions joined %d rows", id, perUser[id])
		}
	}
}

func TestJoin_OneToOneNests(t *testing.T) {
	users := testUsers()
	profiles := testProfiles()

	got := Join(users, profiles, sessionJoin(types.JoinOneToOne, "profile"))
	if len(got) != len(users) {
		t.Fatalf("got %d rows, want %d", len(got), len(users))
	}
	for i, r := range got {
		nested, ok := r.Value("profile").AsRow()
		if !ok {
			t.Fatalf("row %d has no nested profile: %v", i, r)
		}
		if !RowEqual(nested, profiles[i]) {
			t.Errorf("row %d profile = %v, want %v", i, nested, profiles[i])
		}
		if !RowEqual(r.Project(userCols...), users[i]) {
			t.Errorf("row %d lost source columns: %v", i, r)
		}
	}
}

func TestJoin_NullKeysNeverMatch(t *testing.T) {
	cols := []string{"k"}
	src := []types.Row{types.NewRow(cols, []types.Value{types.Null()})}
	tgt := []types.Row{types.NewRow(cols, []types.Value{types.Null()})}
	j := types.Join{Mode: types.JoinFlat, Type: types.InnerJoin, Target: types.TableRef{Name: "t"}, SourceColumn: "k", TargetColumn: "k"}
	if got := Join(src, tgt, j); len(got) != 0 {
		t.Errorf("null keys joined: %v", got)
	}
}

func TestJoin_NumericKeysAcrossKinds(t *testing.T) {
	src := []types.Row{types.NewRow([]string{"a"}, []types.Value{types.Int(2)})}
	tgt := []types.Row{types.NewRow([]string{"b"}, []types.Value{types.Real(2)})}
	j := types.Join{Mode: types.JoinFlat, Type: types.InnerJoin, Target: types.TableRef{Name: "t"}, SourceColumn: "a", TargetColumn: "b"}
	if got := Join(src, tgt, j); len(got) != 1 {
		t.Errorf("integer and real keys did not join: %v", got)
	}
}
