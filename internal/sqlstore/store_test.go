package sqlstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/sqlstore"
	"github.com/zoobzio/vdba/sqlite"
)

var session = vdba.TableDef{
	Schema: "sec",
	Name:   "session",
	Columns: []vdba.Column{
		{Name: "sessionId", Type: vdba.TypeSequence, PrimaryKey: true},
		{Name: "userId", Type: vdba.TypeInteger},
		{Name: "login", Type: vdba.TypeDatetime},
		{Name: "day", Type: vdba.TypeDate, Nullable: true},
		{Name: "clickedArticles", Type: vdba.TypeIntSet, Nullable: true},
		{Name: "tags", Type: vdba.TypeTextSet, Nullable: true},
		{Name: "minutes", Type: vdba.TypeReal, Nullable: true},
		{Name: "active", Type: vdba.TypeBoolean, Nullable: true},
		{Name: "note", Type: vdba.TypeText, Nullable: true},
	},
}

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	s, err := sqlstore.Open(ctx, sqlstore.Options{
		DriverName:   "sqlite",
		DSN:          "file:" + filepath.Join(t.TempDir(), "store.db"),
		Address:      "sqlite://test",
		Dialect:      sqlite.Dialect{},
		MaxOpenConns: 1,
		Logger:       zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustRow(t *testing.T, m vdba.M) vdba.Row {
	t.Helper()
	r, err := vdba.RowOf(m)
	if err != nil {
		t.Fatalf("RowOf: %v", err)
	}
	return r
}

func TestOpen_RequiresDialect(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), sqlstore.Options{DriverName: "sqlite", DSN: ":memory:"})
	if err == nil {
		t.Fatal("expected error without dialect")
	}
}

func TestTables(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	if err := s.CreateTable(ctx, session); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := s.CreateTable(ctx, session); !errors.Is(err, vdba.ErrTableExists) {
		t.Fatalf("expected ErrTableExists, got %v", err)
	}

	def, ok, err := s.Table(ctx, session.Ref())
	if err != nil || !ok {
		t.Fatalf("Table: ok=%v err=%v", ok, err)
	}
	if def.Name != "session" || def.Schema != "sec" || len(def.Columns) != len(session.Columns) {
		t.Errorf("Table = %+v", def)
	}
	if def.Columns[0].Type != vdba.TypeSequence || !def.Columns[0].PrimaryKey {
		t.Errorf("first column = %+v", def.Columns[0])
	}

	if _, ok, _ := s.Table(ctx, vdba.TableRef{Schema: "sec", Name: "nope"}); ok {
		t.Error("unknown table reported as existing")
	}

	if err := s.DropTable(ctx, session.Ref()); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if _, ok, _ := s.Table(ctx, session.Ref()); ok {
		t.Error("dropped table still exists")
	}
	if err := s.DropTable(ctx, session.Ref()); err != nil {
		t.Errorf("dropping an unknown table: %v", err)
	}
}

func TestRows(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.CreateTable(ctx, session); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	login := time.Date(2024, 3, 1, 10, 30, 0, 500, time.UTC)
	rows := []vdba.Row{
		mustRow(t, vdba.M{
			"sessionId": 1, "userId": 1, "login": login,
			"day": login, "clickedArticles": []int64{3, 1},
			"tags": []string{"a"}, "minutes": 2.5, "active": true, "note": "x",
		}),
		mustRow(t, vdba.M{"sessionId": 2, "userId": 2, "login": login.Add(time.Hour)}),
	}
	if err := s.Insert(ctx, session.Ref(), rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Scan(ctx, session.Ref(), vdba.Filter{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Scan returned %d rows", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("ids = %d, %d", got[0].ID, got[1].ID)
	}
	first := got[0].Row
	if v := first.Value("login"); v.Kind() != vdba.KindDatetime || !v.AsTime().Equal(login) {
		t.Errorf("login = %v", v)
	}
	if v := first.Value("day"); v.Kind() != vdba.KindDate || v.String() != "2024-03-01" {
		t.Errorf("day = %v", v)
	}
	if v := first.Value("clickedArticles"); v.Kind() != vdba.KindIntSet || v.String() != "[3, 1]" {
		t.Errorf("clickedArticles = %v", v)
	}
	if v := first.Value("tags"); v.Kind() != vdba.KindTextSet || v.Len() != 1 {
		t.Errorf("tags = %v", v)
	}
	if v := first.Value("minutes"); v.Kind() != vdba.KindReal || v.AsReal() != 2.5 {
		t.Errorf("minutes = %v", v)
	}
	if v := first.Value("active"); v.Kind() != vdba.KindBool || !v.AsBool() {
		t.Errorf("active = %v", v)
	}
	second := got[1].Row
	for _, col := range []string{"day", "clickedArticles", "tags", "minutes", "active", "note"} {
		if !second.Value(col).IsNull() {
			t.Errorf("%s = %v, want null", col, second.Value(col))
		}
	}

	t.Run("replace", func(t *testing.T) {
		changed := got[1]
		changed.Row = changed.Row.Set("note", vdba.MustValueOf("edited"))
		if err := s.Replace(ctx, session.Ref(), []vdba.StoredRow{changed}); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		after, _ := s.Scan(ctx, session.Ref(), vdba.Filter{})
		if v := after[1].Row.Value("note"); v.AsText() != "edited" {
			t.Errorf("note = %v", v)
		}
	})

	t.Run("delete then insert", func(t *testing.T) {
		if err := s.Delete(ctx, session.Ref(), []int64{2}); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Insert(ctx, session.Ref(), []vdba.Row{mustRow(t, vdba.M{"sessionId": 3, "userId": 1, "login": login})}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		after, _ := s.Scan(ctx, session.Ref(), vdba.Filter{})
		if len(after) != 2 || after[1].ID != 2 {
			t.Errorf("after delete and insert: %+v", after)
		}
	})

	t.Run("truncate", func(t *testing.T) {
		if err := s.Truncate(ctx, session.Ref()); err != nil {
			t.Fatalf("Truncate: %v", err)
		}
		after, _ := s.Scan(ctx, session.Ref(), vdba.Filter{})
		if len(after) != 0 {
			t.Errorf("rows after truncate: %d", len(after))
		}
	})
}

func TestScan_PushesDownHint(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.CreateTable(ctx, session); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	login := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var rows []vdba.Row
	for i := 1; i <= 5; i++ {
		rows = append(rows, mustRow(t, vdba.M{"sessionId": i, "userId": i % 2, "login": login, "minutes": float64(i)}))
	}
	if err := s.Insert(ctx, session.Ref(), rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tests := []struct {
		name   string
		filter vdba.M
		want   int
	}{
		{"equality", vdba.M{"userId": 1}, 3},
		{"range", vdba.M{"minutes": vdba.M{"$gt": 2}}, 3},
		{"in", vdba.M{"sessionId": vdba.M{"$in": []int{1, 5}}}, 2},
		{"not pushed", vdba.M{"note": vdba.M{"$like": "%x%"}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Scan(ctx, session.Ref(), vdba.MustParseFilter(tt.filter))
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Scan returned %d rows, want %d", len(got), tt.want)
			}
		})
	}
}

func TestScan_UnknownTable(t *testing.T) {
	s := openStore(t)
	_, err := s.Scan(context.Background(), vdba.TableRef{Name: "missing"}, vdba.Filter{})
	if !errors.Is(err, vdba.ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestIndexes(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.CreateTable(ctx, session); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	ixB := vdba.IndexDef{Schema: "sec", Name: "ix_b", Table: "session", Columns: []string{"userId", "login"}}
	ixA := vdba.IndexDef{Schema: "sec", Name: "ix_a", Table: "session", Columns: []string{"note"}, Unique: true}
	for _, ix := range []vdba.IndexDef{ixB, ixA} {
		if err := s.CreateIndex(ctx, ix); err != nil {
			t.Fatalf("CreateIndex %s: %v", ix.Name, err)
		}
	}
	if err := s.CreateIndex(ctx, ixA); !errors.Is(err, vdba.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
	missing := vdba.IndexDef{Schema: "sec", Name: "ix_c", Table: "nope", Columns: []string{"x"}}
	if err := s.CreateIndex(ctx, missing); !errors.Is(err, vdba.ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}

	got, ok, err := s.Index(ctx, "sec", "ix_a")
	if err != nil || !ok || !got.Unique || got.Columns[0] != "note" {
		t.Errorf("Index = %+v ok=%v err=%v", got, ok, err)
	}

	list, err := s.Indexes(ctx, session.Ref())
	if err != nil {
		t.Fatalf("Indexes: %v", err)
	}
	if len(list) != 2 || list[0].Name != "ix_a" || list[1].Name != "ix_b" {
		t.Errorf("Indexes = %+v", list)
	}

	if err := s.DropIndex(ctx, "sec", "ix_a"); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if _, ok, _ := s.Index(ctx, "sec", "ix_a"); ok {
		t.Error("dropped index still exists")
	}
	if err := s.DropIndex(ctx, "sec", "ix_a"); err != nil {
		t.Errorf("dropping an unknown index: %v", err)
	}

	if err := s.DropTable(ctx, session.Ref()); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if _, ok, _ := s.Index(ctx, "sec", "ix_b"); ok {
		t.Error("index survived its table")
	}
}

func TestClose(t *testing.T) {
	s := openStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	_, _, err := s.Table(context.Background(), session.Ref())
	if !errors.Is(err, vdba.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if s.Address() != "sqlite://test" {
		t.Errorf("Address = %q", s.Address())
	}
}
