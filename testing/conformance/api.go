package conformance

import (
	"slices"

	"github.com/stretchr/testify/require"

	"github.com/zoobzio/vdba"
)

func driverCases() []Case {
	const g = "driver"
	return []Case{
		{g, "unknown name", func(t require.TestingT, f *Fixture) {
			_, ok := f.Env.Registry.Lookup("unknown-driver")
			require.False(t, ok)
		}},
		{g, "lookup by name", func(t require.TestingT, f *Fixture) {
			d, ok := f.Env.Registry.Lookup(f.Env.Driver.Name())
			require.True(t, ok)
			require.Equal(t, f.Env.Driver.Name(), d.Name())
		}},
		{g, "lookup by alias", func(t require.TestingT, f *Fixture) {
			for _, alias := range f.Env.Driver.Aliases() {
				d, ok := f.Env.Registry.Lookup(alias)
				require.True(t, ok, "alias %s", alias)
				require.Equal(t, f.Env.Driver.Name(), d.Name(), "alias %s", alias)
			}
		}},
		{g, "connection without configuration", func(t require.TestingT, f *Fixture) {
			_, err := vdba.NewConnection(f.Env.Driver, vdba.Config{})
			requireUsage(t, err, "Configuration expected.")
		}},
		{g, "new connection is closed", func(t require.TestingT, f *Fixture) {
			cx := f.Connection(t)
			require.False(t, cx.Connected())
			require.Equal(t, f.Env.Config.Database, cx.Config().Database)
		}},
	}
}

func connectionCases() []Case {
	const g = "connection"
	return []Case{
		{g, "open", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.True(t, cx.Connected())
			srv := cx.Server()
			require.Equal(t, f.Env.Driver.Name(), srv.Driver)
			require.NotEmpty(t, srv.Address)
		}},
		{g, "open twice", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.NoError(t, cx.Open(f.Ctx))
			require.True(t, cx.Connected())
		}},
		{g, "close", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.NoError(t, cx.Close(f.Ctx))
			require.False(t, cx.Connected())
		}},
		{g, "close twice", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.NoError(t, cx.Close(f.Ctx))
			require.NoError(t, cx.Close(f.Ctx))
			require.False(t, cx.Connected())
		}},
		{g, "close without open", func(t require.TestingT, f *Fixture) {
			cx := f.Connection(t)
			require.NoError(t, cx.Close(f.Ctx))
		}},
		{g, "reopen", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.NoError(t, cx.Close(f.Ctx))
			require.NoError(t, cx.Open(f.Ctx))
			require.True(t, cx.Connected())
		}},
		{g, "database", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			db := cx.Database()
			require.NotNil(t, db)
			require.Equal(t, f.Env.Config.Database, db.Name())
			require.Same(t, cx, db.Connection())
		}},
		{g, "closed connection", func(t require.TestingT, f *Fixture) {
			cx := f.Open(t)
			require.NoError(t, cx.Close(f.Ctx))
			_, err := cx.Database().FindTable(f.Ctx, UserDef.Ref().String())
			require.ErrorIs(t, err, vdba.ErrClosed)
		}},
	}
}

func databaseCases() []Case {
	const g = "database"
	user := UserDef.Ref().String()
	session := SessionDef.Ref().String()
	return []Case{
		{g, "create table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.CreateTable(f.Ctx, UserDef))
			tab, err := db.FindTable(f.Ctx, user)
			require.NoError(t, err)
			require.NotNil(t, tab)
			require.Equal(t, "sec", tab.Schema())
			require.Equal(t, "user", tab.Name())
			require.Equal(t, UserDef.ColumnNames(), tab.Def().ColumnNames())
			col, ok := tab.Def().Lookup("username")
			require.True(t, ok)
			require.Equal(t, vdba.TypeText, col.Type)
			require.True(t, col.Unique)
		}},
		{g, "create table without name", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			requireUsage(t, db.CreateTable(f.Ctx, vdba.TableDef{Columns: UserDef.Columns}), "Table name expected.")
		}},
		{g, "create table without columns", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			requireUsage(t, db.CreateTable(f.Ctx, vdba.TableDef{Schema: "sec", Name: "user"}), "Column(s) expected.")
		}},
		{g, "create existing table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.CreateTable(f.Ctx, UserDef))
			require.ErrorIs(t, db.CreateTable(f.Ctx, UserDef), vdba.ErrTableExists)
		}},
		{g, "drop table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.CreateTable(f.Ctx, UserDef))
			require.NoError(t, db.DropTable(f.Ctx, user))
			ok, err := db.HasTable(f.Ctx, user)
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "drop unknown table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.DropTable(f.Ctx, "sec.unknown"))
		}},
		{g, "find unknown table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tab, err := db.FindTable(f.Ctx, "sec.unknown")
			require.NoError(t, err)
			require.Nil(t, tab)
		}},
		{g, "has tables", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.CreateTable(f.Ctx, UserDef))
			for _, tc := range []struct {
				names []string
				want  bool
			}{
				{[]string{user}, true},
				{[]string{session}, false},
				{[]string{user, user}, true},
				{[]string{user, session}, false},
				{[]string{session, session}, false},
				{[]string{session, user}, false},
			} {
				ok, err := db.HasTables(f.Ctx, tc.names...)
				require.NoError(t, err)
				require.Equal(t, tc.want, ok, "%v", tc.names)
			}
		}},
		{g, "has tables without names", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			_, err := db.HasTables(f.Ctx)
			requireUsage(t, err, "Table names expected.")
		}},
		{g, "tables outlive the connection", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			require.NoError(t, db.CreateTable(f.Ctx, UserDef))
			other := f.Open(t).Database()
			ok, err := other.HasTable(f.Ctx, user)
			require.NoError(t, err)
			require.True(t, ok)
		}},
		{g, "verify", func(t require.TestingT, f *Fixture) {
			db := f.Load(t).DB
			require.NoError(t, db.Verify(f.Ctx, Project()))

			audit := vdba.TableDef{Schema: "sec", Name: "audit", Columns: []vdba.Column{{Name: "id", Type: vdba.TypeSequence}}}
			err := db.Verify(f.Ctx, vdba.Project("conformance", UserDef, audit))
			require.ErrorIs(t, err, vdba.ErrNoTable)

			wide := UserDef
			wide.Columns = append(slices.Clone(UserDef.Columns), vdba.Column{Name: "email", Type: vdba.TypeText})
			err = db.Verify(f.Ctx, vdba.Project("conformance", wide))
			require.ErrorIs(t, err, vdba.ErrNoColumn)
		}},
		{g, "unknown table is not created by queries", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tabs := f.Create(t, db, UserDef)
			_, err := tabs[0].Query().Join("sec.unknown", "userId").Find(f.Ctx)
			require.ErrorIs(t, err, vdba.ErrNoTable)
			ok, err := db.HasTable(f.Ctx, "sec.unknown")
			require.NoError(t, err)
			require.False(t, ok)
		}},
	}
}
