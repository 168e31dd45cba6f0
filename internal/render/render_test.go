package render

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/zoobzio/vdba/internal/types"
)

// ansi quotes with double quotes and binds $n.
type ansi struct{ caps Capabilities }

func (ansi) Name() string { return "ansi" }
func (ansi) Quote(ident string) string { return QuoteDouble(ident) }
func (ansi) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (a ansi) Capabilities() Capabilities { return a.caps }
func (ansi) Type(t SQLType) string {
	switch t {
	case BigInt:
		return "BIGINT"
	case Double:
		return "DOUBLE PRECISION"
	case Boolean:
		return "BOOLEAN"
	}
	return "TEXT"
}

// guarded lacks IF NOT EXISTS and wraps creation instead.
type guarded struct{ ansi }

func (guarded) IfNotExists(table, stmt string) string {
	return "IF OBJECT_ID('" + table + "') IS NULL " + stmt
}

var users = types.TableDef{
	Schema: "sec",
	Name:   "user",
	Columns: []types.Column{
		{Name: "userId", Type: types.TypeSequence, PrimaryKey: true},
		{Name: "username", Type: types.TypeText},
		{Name: "score", Type: types.TypeReal, Nullable: true},
		{Name: "enabled", Type: types.TypeBoolean},
		{Name: "createDate", Type: types.TypeDate},
		{Name: "tags", Type: types.TypeTextSet, Nullable: true},
	},
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"double", QuoteDouble, "user", `"user"`},
		{"double escaped", QuoteDouble, `a"b`, `"a""b"`},
		{"backtick", QuoteBacktick, "user", "`user`"},
		{"backtick escaped", QuoteBacktick, "a`b", "`a``b`"},
		{"bracket", QuoteBracket, "user", "[user]"},
		{"bracket escaped", QuoteBracket, "a]b", "[a]]b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	if got := TableName(users.Ref()); got != "sec__user" {
		t.Errorf("TableName = %q", got)
	}
	if got := TableName(types.TableRef{Name: "t"}); got != "t" {
		t.Errorf("TableName = %q", got)
	}
	if got := IndexName("sec", "ix_user_username"); got != "ix__sec__ix_user_username" {
		t.Errorf("IndexName = %q", got)
	}
}

func TestCreateTable(t *testing.T) {
	d := ansi{caps: Capabilities{IfNotExists: true}}
	got, err := CreateTable(d, TableName(users.Ref()), TableColumns(users), []string{SeqColumn}, false)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := `CREATE TABLE "sec__user" ("_seq" BIGINT NOT NULL, "userId" BIGINT NULL, "username" TEXT NULL, ` +
		`"score" DOUBLE PRECISION NULL, "enabled" BOOLEAN NULL, "createDate" TEXT NULL, "tags" TEXT NULL, PRIMARY KEY ("_seq"))`
	if got != want {
		t.Errorf("CreateTable =\n%s\nwant\n%s", got, want)
	}
}

func TestCreateCatalog(t *testing.T) {
	t.Run("if not exists", func(t *testing.T) {
		got, err := CreateCatalog(ansi{caps: Capabilities{IfNotExists: true}})
		if err != nil {
			t.Fatalf("CreateCatalog: %v", err)
		}
		want := `CREATE TABLE IF NOT EXISTS "vdba_catalog" ("kind" TEXT NOT NULL, "schema_name" TEXT NOT NULL, ` +
			`"object_name" TEXT NOT NULL, "body" TEXT NOT NULL, PRIMARY KEY ("kind", "schema_name", "object_name"))`
		if got != want {
			t.Errorf("CreateCatalog =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("guard", func(t *testing.T) {
		got, err := CreateCatalog(guarded{})
		if err != nil {
			t.Fatalf("CreateCatalog: %v", err)
		}
		prefix := `IF OBJECT_ID('vdba_catalog') IS NULL CREATE TABLE "vdba_catalog" (`
		if len(got) < len(prefix) || got[:len(prefix)] != prefix {
			t.Errorf("CreateCatalog = %s", got)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := CreateCatalog(ansi{})
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}

func TestIndexStatements(t *testing.T) {
	d := ansi{}
	if got, want := CreateIndex(d, "ix", "sec__user", []string{"username", "enabled"}),
		`CREATE INDEX "ix" ON "sec__user" ("username", "enabled")`; got != want {
		t.Errorf("CreateIndex = %s, want %s", got, want)
	}
	if got, want := DropIndex(d, "ix", "sec__user"), `DROP INDEX "ix"`; got != want {
		t.Errorf("DropIndex = %s, want %s", got, want)
	}
	on := ansi{caps: Capabilities{DropIndexOnTable: true}}
	if got, want := DropIndex(on, "ix", "sec__user"), `DROP INDEX "ix" ON "sec__user"`; got != want {
		t.Errorf("DropIndex = %s, want %s", got, want)
	}
}

func TestDML(t *testing.T) {
	d := ansi{}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"insert", Insert(d, "t", []string{"_seq", "a"}), `INSERT INTO "t" ("_seq", "a") VALUES ($1, $2)`},
		{"select", Select(d, "t", []string{"_seq", "a"}, ""), `SELECT "_seq", "a" FROM "t" ORDER BY "_seq"`},
		{"select where", Select(d, "t", []string{"a"}, `"a" = $1`), `SELECT "a" FROM "t" WHERE "a" = $1 ORDER BY "_seq"`},
		{"max", MaxSeq(d, "t"), `SELECT MAX("_seq") FROM "t"`},
		{"update", UpdateRow(d, "t", []string{"a", "b"}), `UPDATE "t" SET "a" = $1, "b" = $2 WHERE "_seq" = $3`},
		{"delete", DeleteRow(d, "t"), `DELETE FROM "t" WHERE "_seq" = $1`},
		{"delete all", DeleteAll(d, "t"), `DELETE FROM "t"`},
		{"catalog select", CatalogSelect(d), `SELECT "body" FROM "vdba_catalog" WHERE "kind" = $1 AND "schema_name" = $2 AND "object_name" = $3`},
		{"catalog list", CatalogList(d), `SELECT "body" FROM "vdba_catalog" WHERE "kind" = $1 ORDER BY "schema_name", "object_name"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", tt.got, tt.want)
			}
		})
	}
}

func TestWhere(t *testing.T) {
	d := ansi{}
	eq := func(col string, v types.Value) types.Predicate {
		return types.Predicate{Column: col, Constraints: []types.Constraint{types.LiteralConstraint(v)}}
	}
	op := func(col string, o types.Operator, v types.Value) types.Predicate {
		return types.Predicate{Column: col, Constraints: []types.Constraint{types.OperatorConstraint(o, v)}}
	}

	t.Run("equality and range", func(t *testing.T) {
		f := types.Filter{Predicates: []types.Predicate{
			eq("username", types.Text("user01")),
			op("score", types.GE, types.Int(3)),
			eq("enabled", types.Bool(true)),
		}}
		got := Where(d, users, f, 1)
		want := `"username" = $1 AND "score" >= $2 AND "enabled" = $3`
		if got.Clause != want {
			t.Errorf("Clause = %s, want %s", got.Clause, want)
		}
		if len(got.Args) != 3 || got.Args[0] != "user01" || got.Args[1] != float64(3) || got.Args[2] != true {
			t.Errorf("Args = %#v", got.Args)
		}
		if len(got.Skipped) != 0 {
			t.Errorf("Skipped = %v", got.Skipped)
		}
	})

	t.Run("in list", func(t *testing.T) {
		f := types.Filter{Predicates: []types.Predicate{{
			Column:      "userId",
			Constraints: []types.Constraint{types.ListConstraint(types.In, []types.Value{types.Int(1), types.Int(3)})},
		}}}
		got := Where(d, users, f, 4)
		if got.Clause != `"userId" IN ($4, $5)` {
			t.Errorf("Clause = %s", got.Clause)
		}
		if len(got.Args) != 2 || got.Args[0] != int64(1) || got.Args[1] != int64(3) {
			t.Errorf("Args = %#v", got.Args)
		}
	})

	t.Run("left to the evaluator", func(t *testing.T) {
		f := types.Filter{Predicates: []types.Predicate{
			op("username", types.Like, types.Text("user%")),
			op("username", types.GT, types.Text("a")),
			eq("userId", types.Real(2)),
			eq("score", types.Null()),
			op("tags", types.Contains, types.Text("x")),
			eq("createDate", types.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
			eq("missing", types.Int(1)),
			{Column: "userId", Constraints: []types.Constraint{types.ListConstraint(types.In, []types.Value{types.Int(1), types.Null()})}},
		}}
		got := Where(d, users, f, 1)
		if got.Clause != "" || len(got.Args) != 0 {
			t.Errorf("Clause = %q, Args = %v", got.Clause, got.Args)
		}
		if len(got.Skipped) != len(f.Predicates) {
			t.Fatalf("Skipped = %d, want %d", len(got.Skipped), len(f.Predicates))
		}
		for _, err := range got.Skipped {
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("skip reason %v is not ErrUnsupported", err)
			}
		}
	})
}

func TestCodec(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 2, 29, 13, 45, 7, 120, time.UTC)
	tests := []struct {
		name string
		typ  types.ColumnType
		in   types.Value
		want any
	}{
		{"null", types.TypeText, types.Null(), nil},
		{"text", types.TypeText, types.Text("a"), "a"},
		{"integer", types.TypeInteger, types.Int(7), int64(7)},
		{"sequence", types.TypeSequence, types.Int(1), int64(1)},
		{"real", types.TypeReal, types.Real(1.5), 1.5},
		{"boolean", types.TypeBoolean, types.Bool(true), true},
		{"date", types.TypeDate, types.Date(day), "2024-02-29T00:00:00.000000000Z"},
		{"datetime", types.TypeDatetime, types.Datetime(at), "2024-02-29T13:45:07.000000120Z"},
		{"text set", types.TypeTextSet, types.TextSet("a", "b"), `["a","b"]`},
		{"empty int set", types.TypeIntSet, types.IntSet(), `[]`},
		{"int set", types.TypeIntSet, types.IntSet(3, 1), `[3,1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in, tt.typ)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Encode = %#v, want %#v", got, tt.want)
			}
			back, err := Decode(got, tt.typ)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if back.String() != tt.in.String() || back.Kind() != tt.in.Kind() {
				t.Errorf("Decode = %v (%s), want %v (%s)", back, back.Kind(), tt.in, tt.in.Kind())
			}
		})
	}
}

func TestDecodeDriverTypes(t *testing.T) {
	tests := []struct {
		name string
		typ  types.ColumnType
		src  any
		want types.Value
	}{
		{"bytes text", types.TypeText, []byte("abc"), types.Text("abc")},
		{"bytes integer", types.TypeInteger, []byte("42"), types.Int(42)},
		{"int32 integer", types.TypeInteger, int32(5), types.Int(5)},
		{"bytes real", types.TypeReal, []byte("2.25"), types.Real(2.25)},
		{"int real", types.TypeReal, int64(2), types.Real(2)},
		{"int boolean", types.TypeBoolean, int64(1), types.Bool(true)},
		{"bytes boolean", types.TypeBoolean, []byte("0"), types.Bool(false)},
		{"bytes set", types.TypeTextSet, []byte(`["x"]`), types.TextSet("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.src, tt.typ)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Kind() != tt.want.Kind() || got.String() != tt.want.String() {
				t.Errorf("Decode = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("mismatch", func(t *testing.T) {
		if _, err := Decode(true, types.TypeText); !errors.Is(err, types.ErrType) {
			t.Errorf("expected ErrType, got %v", err)
		}
		if _, err := Decode("not a date", types.TypeDate); !errors.Is(err, types.ErrType) {
			t.Errorf("expected ErrType, got %v", err)
		}
	})
}
