package conformance

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/dbml"

	"github.com/zoobzio/vdba"
)

// Fixture tables.
var (
	UserDef = vdba.TableDef{
		Schema: "sec",
		Name:   "user",
		Columns: []vdba.Column{
			{Name: "userId", Type: vdba.TypeSequence, PrimaryKey: true},
			{Name: "username", Type: vdba.TypeText, Unique: true},
			{Name: "password", Type: vdba.TypeText},
			{Name: "createDate", Type: vdba.TypeDate},
			{Name: "enabled", Type: vdba.TypeBoolean},
		},
	}

	ProfileDef = vdba.TableDef{
		Schema: "sec",
		Name:   "profile",
		Columns: []vdba.Column{
			{Name: "userId", Type: vdba.TypeInteger, PrimaryKey: true, Ref: "sec.user.userId"},
			{Name: "nick", Type: vdba.TypeText, Nullable: true},
			{Name: "emails", Type: vdba.TypeTextSet, Nullable: true},
		},
	}

	SessionDef = vdba.TableDef{
		Schema: "sec",
		Name:   "session",
		Columns: []vdba.Column{
			{Name: "sessionId", Type: vdba.TypeSequence, PrimaryKey: true},
			{Name: "userId", Type: vdba.TypeInteger, Ref: "sec.user.userId"},
			{Name: "login", Type: vdba.TypeDatetime},
			{Name: "clickedArticles", Type: vdba.TypeIntSet, Nullable: true},
			{Name: "minutes", Type: vdba.TypeReal, Nullable: true},
		},
	}

	// ValuesDef holds one nullable column per updatable type.
	ValuesDef = vdba.TableDef{
		Schema: "sec",
		Name:   "sample",
		Columns: []vdba.Column{
			{Name: "id", Type: vdba.TypeSequence, PrimaryKey: true},
			{Name: "text", Type: vdba.TypeText, Nullable: true},
			{Name: "int", Type: vdba.TypeInteger, Nullable: true},
			{Name: "real", Type: vdba.TypeReal, Nullable: true},
			{Name: "texts", Type: vdba.TypeTextSet, Nullable: true},
			{Name: "ints", Type: vdba.TypeIntSet, Nullable: true},
		},
	}
)

// UserIndex is the index the table-indexes group creates.
const UserIndex = "ix_user_username"

func day(d int) time.Time { return time.Date(2015, time.January, d, 0, 0, 0, 0, time.UTC) }

func at(d, h, m int) time.Time { return time.Date(2015, time.January, d, h, m, 0, 0, time.UTC) }

// Users returns the sec.user rows with their sequence values.
func Users() []vdba.M {
	return []vdba.M{
		{"userId": 1, "username": "user01", "password": "pwd01", "createDate": day(2), "enabled": true},
		{"userId": 2, "username": "user02", "password": "pwd02", "createDate": day(2), "enabled": false},
		{"userId": 3, "username": "user03", "password": "pwd03", "createDate": day(2), "enabled": true},
		{"userId": 4, "username": "user04", "password": "pwd04", "createDate": day(3), "enabled": true},
		{"userId": 5, "username": "user05", "password": "pwd05", "createDate": day(3), "enabled": false},
		{"userId": 6, "username": "user11", "password": "pwd11", "createDate": day(4), "enabled": true},
		{"userId": 7, "username": "user12", "password": "pwd12", "createDate": day(5), "enabled": true},
	}
}

// Profiles returns the sec.profile rows.
func Profiles() []vdba.M {
	return []vdba.M{
		{"userId": 1, "nick": "u01", "emails": []string{"user01@test.com", "u01@test.com", "another@test.com"}},
		{"userId": 2, "nick": "u02", "emails": []string{"user02@test.com"}},
		{"userId": 3, "nick": "u03", "emails": []string{"user03@test.com", "u03@test.com"}},
		{"userId": 4, "nick": "u04", "emails": []string{}},
		{"userId": 5, "nick": "u05", "emails": []string{"user05@test.com", "u05@test.com"}},
		{"userId": 6, "nick": "u11", "emails": []string{"user11@test.com", "u11@test.com"}},
		{"userId": 7, "nick": "u12", "emails": nil},
	}
}

// Sessions returns the sec.session rows with their sequence values.
func Sessions() []vdba.M {
	return []vdba.M{
		{"sessionId": 1, "userId": 1, "login": at(2, 8, 30), "clickedArticles": []int64{1, 2, 3, 4, 5}, "minutes": 10.2},
		{"sessionId": 2, "userId": 2, "login": at(2, 15, 35), "clickedArticles": []int64{1}, "minutes": 1.13},
		{"sessionId": 3, "userId": 1, "login": at(3, 7, 45), "clickedArticles": []int64{}, "minutes": 0.25},
		{"sessionId": 4, "userId": 3, "login": at(5, 16, 23), "clickedArticles": nil, "minutes": nil},
	}
}

// JoinUserSession is sec.user joined flat with sec.session on userId, in
// session order.
func JoinUserSession() []vdba.M {
	users := Users()
	var out []vdba.M
	for _, s := range Sessions() {
		m := vdba.M{}
		for k, v := range users[s["userId"].(int)-1] {
			m[k] = v
		}
		for k, v := range s {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}

// JoinOOUserProfile is sec.user with its sec.profile row nested under
// "profile".
func JoinOOUserProfile() []vdba.M {
	profiles := Profiles()
	out := Users()
	for i, u := range out {
		u["profile"] = profiles[i]
	}
	return out
}

// Project describes the fixture tables as a DBML project.
func Project() *dbml.Project {
	return vdba.Project("conformance", UserDef, ProfileDef, SessionDef)
}

// Fixture gives a case its context and cleans up after it.
type Fixture struct {
	Ctx context.Context
	Env Env

	cleanups []func()
}

func newFixture(ctx context.Context, env Env) *Fixture {
	return &Fixture{Ctx: ctx, Env: env}
}

// Defer registers fn to run after the case, most recent first.
func (f *Fixture) Defer(fn func()) {
	f.cleanups = append(f.cleanups, fn)
}

func (f *Fixture) cleanup() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
	f.cleanups = nil
}

// Connection returns a closed connection.
func (f *Fixture) Connection(t require.TestingT) *vdba.Connection {
	cx, err := vdba.NewConnection(f.Env.Driver, f.Env.Config)
	require.NoError(t, err)
	f.Defer(func() { _ = cx.Close(context.Background()) })
	return cx
}

// Open returns an open connection.
func (f *Fixture) Open(t require.TestingT) *vdba.Connection {
	cx := f.Connection(t)
	require.NoError(t, cx.Open(f.Ctx))
	return cx
}

// Database opens a connection and returns its database with the fixture
// tables dropped, before the case and after it.
func (f *Fixture) Database(t require.TestingT) *vdba.Database {
	db := f.Open(t).Database()
	drop := func() {
		for _, def := range []vdba.TableDef{ValuesDef, SessionDef, ProfileDef, UserDef} {
			_ = db.DropTable(context.Background(), def.Ref().String())
		}
	}
	drop()
	f.Defer(drop)
	return db
}

// Create creates the tables of defs and returns them in order.
func (f *Fixture) Create(t require.TestingT, db *vdba.Database, defs ...vdba.TableDef) []*vdba.Table {
	tables := make([]*vdba.Table, len(defs))
	for i, def := range defs {
		require.NoError(t, db.CreateTable(f.Ctx, def))
		tab, err := db.FindTable(f.Ctx, def.Ref().String())
		require.NoError(t, err)
		require.NotNil(t, tab, "table %s", def.Ref())
		tables[i] = tab
	}
	return tables
}

// Tables holds the loaded fixture tables.
type Tables struct {
	DB      *vdba.Database
	User    *vdba.Table
	Profile *vdba.Table
	Session *vdba.Table
}

// Load creates every fixture table and inserts its rows.
func (f *Fixture) Load(t require.TestingT) Tables {
	db := f.Database(t)
	tabs := f.Create(t, db, UserDef, ProfileDef, SessionDef)
	require.NoError(t, tabs[0].Insert(f.Ctx, Users()...))
	require.NoError(t, tabs[1].Insert(f.Ctx, Profiles()...))
	require.NoError(t, tabs[2].Insert(f.Ctx, Sessions()...))
	return Tables{DB: db, User: tabs[0], Profile: tabs[1], Session: tabs[2]}
}
