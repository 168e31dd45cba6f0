package conformance

import (
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zoobzio/vdba"
)

// user creates sec.user in a clean database.
func user(t require.TestingT, f *Fixture) *vdba.Table {
	return f.Create(t, f.Database(t), UserDef)[0]
}

// findOne returns the row matching filter and fails if there is none.
func findOne(t require.TestingT, f *Fixture, tab *vdba.Table, filter vdba.M) vdba.Row {
	row, ok, err := tab.FindOne(f.Ctx, filter)
	require.NoError(t, err)
	require.True(t, ok, "no row matches %v", filter)
	return row
}

func count(t require.TestingT, f *Fixture, tab *vdba.Table) int {
	n, err := tab.Count(f.Ctx)
	require.NoError(t, err)
	return n
}

func indexCases() []Case {
	const g = "table-indexes"
	return []Case{
		{g, "create index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}))
			ix, ok, err := tab.FindIndex(f.Ctx, UserIndex)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, UserIndex, ix.Name)
			require.Equal(t, "sec", ix.Schema)
			require.Equal(t, "user", ix.Table)
			require.Equal(t, []string{"username"}, ix.Columns)
			require.False(t, ix.Unique)
		}},
		{g, "create index without name", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			requireUsage(t, tab.CreateIndex(f.Ctx, "", []string{"username"}), "Index name expected.")
		}},
		{g, "create index without columns", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			requireUsage(t, tab.CreateIndex(f.Ctx, UserIndex, nil), "Indexing column(s) expected.")
		}},
		{g, "create index on unknown column", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.ErrorIs(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"email"}), vdba.ErrNoColumn)
		}},
		{g, "create index on unknown table", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			err := db.CreateIndex(f.Ctx, "sec.unknown", UserIndex, []string{"username"}, vdba.IndexOptions{})
			require.ErrorIs(t, err, vdba.ErrNoTable)
		}},
		{g, "create existing index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}))
			require.ErrorIs(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}), vdba.ErrIndexExists)
		}},
		{g, "create existing index if not exists", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			opts := vdba.IndexOptions{IfNotExists: true}
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}, opts))
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}, opts))
		}},
		{g, "has index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			ok, err := tab.HasIndex(f.Ctx, UserIndex)
			require.NoError(t, err)
			require.False(t, ok)
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}))
			ok, err = tab.HasIndex(f.Ctx, UserIndex)
			require.NoError(t, err)
			require.True(t, ok)
			ok, err = tab.Database().HasIndex(f.Ctx, "sec."+UserIndex)
			require.NoError(t, err)
			require.True(t, ok)
		}},
		{g, "has index without name", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			_, err := tab.HasIndex(f.Ctx, "")
			requireUsage(t, err, "Index name expected.")
			_, _, err = tab.FindIndex(f.Ctx, "")
			requireUsage(t, err, "Index name expected.")
		}},
		{g, "find unknown index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			_, ok, err := tab.FindIndex(f.Ctx, "ix_unknown")
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "drop index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}))
			require.NoError(t, tab.DropIndex(f.Ctx, UserIndex))
			ok, err := tab.HasIndex(f.Ctx, UserIndex)
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "drop index without name", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			requireUsage(t, tab.DropIndex(f.Ctx, ""), "Index expected.")
		}},
		{g, "drop unknown index", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.DropIndex(f.Ctx, "ix_unknown"))
		}},
		{g, "drop table drops its indexes", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tab := f.Create(t, db, UserDef)[0]
			require.NoError(t, tab.CreateIndex(f.Ctx, UserIndex, []string{"username"}))
			require.NoError(t, db.DropTable(f.Ctx, UserDef.Ref().String()))
			ok, err := db.HasIndex(f.Ctx, "sec."+UserIndex)
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "unique index rejects duplicates", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			opts := vdba.IndexOptions{Unique: true}
			require.NoError(t, tab.CreateIndex(f.Ctx, "ix_user_password", []string{"password"}, opts))

			dup := vdba.M{"username": "user99", "password": "pwd01", "createDate": day(9), "enabled": true}
			require.ErrorIs(t, tab.Insert(f.Ctx, dup), vdba.ErrConstraint)
			require.Equal(t, 7, count(t, f, tab))
		}},
		{g, "unique index over duplicates", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			opts := vdba.IndexOptions{Unique: true}
			err := tab.CreateIndex(f.Ctx, "ix_user_enabled", []string{"enabled"}, opts)
			require.ErrorIs(t, err, vdba.ErrConstraint)
		}},
	}
}

func dmlCases() []Case {
	const g = "table-dml"
	return []Case{
		{g, "insert without rows", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			requireUsage(t, tab.Insert(f.Ctx), "Row(s) expected.")
		}},
		{g, "insert empty batch", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, []vdba.M{}...))
			require.Equal(t, 0, count(t, f, tab))
		}},
		{g, "insert one", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()[0]))
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, Users()[:1], res, err)
		}},
		{g, "insert many", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			require.Equal(t, 7, count(t, f, tab))
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, Users(), res, err)
		}},
		{g, "insert rows", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			in := rows(t, Users())
			require.NoError(t, tab.InsertRows(f.Ctx, in...))
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, Users(), res, err)
		}},
		{g, "insert numbers sequences", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			var batch []vdba.M
			for _, u := range Users() {
				delete(u, "userId")
				batch = append(batch, u)
			}
			require.NoError(t, tab.Insert(f.Ctx, batch...))
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, Users(), res, err)
		}},
		{g, "sequence continues after the largest value", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()[:3]...))
			next := Users()[3]
			delete(next, "userId")
			require.NoError(t, tab.Insert(f.Ctx, next))
			row := findOne(t, f, tab, vdba.M{"username": "user04"})
			require.Equal(t, int64(4), row.Value("userId").AsInt())
		}},
		{g, "insert sets", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tabs := f.Create(t, db, ProfileDef, SessionDef)
			require.NoError(t, tabs[0].Insert(f.Ctx, Profiles()...))
			require.NoError(t, tabs[1].Insert(f.Ctx, Sessions()...))
			res, err := tabs[0].FindAll(f.Ctx)
			requireResult(t, Profiles(), res, err)
			res, err = tabs[1].FindAll(f.Ctx)
			requireResult(t, Sessions(), res, err)
		}},
		{g, "insert keeps set order", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tab := f.Create(t, db, ProfileDef)[0]
			require.NoError(t, tab.Insert(f.Ctx, Profiles()[0]))
			row := findOne(t, f, tab, vdba.M{"userId": 1})
			require.Equal(t, []string{"user01@test.com", "u01@test.com", "another@test.com"}, row.Value("emails").TextElems())
		}},
		{g, "insert datetime", func(t require.TestingT, f *Fixture) {
			db := f.Database(t)
			tab := f.Create(t, db, SessionDef)[0]
			login := time.Date(2015, time.January, 2, 8, 30, 15, 123456789, time.UTC)
			require.NoError(t, tab.Insert(f.Ctx, vdba.M{"userId": 1, "login": login}))
			row := findOne(t, f, tab, vdba.M{"userId": 1})
			require.True(t, login.Equal(row.Value("login").AsTime()), "got %s", row.Value("login"))
		}},
		{g, "insert date drops the time of day", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			u := with(Users()[0], vdba.M{"createDate": at(2, 8, 30)})
			require.NoError(t, tab.Insert(f.Ctx, u))
			row := findOne(t, f, tab, vdba.M{"userId": 1})
			require.True(t, day(2).Equal(row.Value("createDate").AsTime()), "got %s", row.Value("createDate"))
		}},
		{g, "insert null into not null column", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			u := with(Users()[0], vdba.M{"password": nil})
			require.ErrorIs(t, tab.Insert(f.Ctx, u), vdba.ErrConstraint)
			require.Equal(t, 0, count(t, f, tab))
		}},
		{g, "insert duplicate primary key", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()[0]))
			dup := with(Users()[1], vdba.M{"userId": 1})
			require.ErrorIs(t, tab.Insert(f.Ctx, dup), vdba.ErrConstraint)
			require.Equal(t, 1, count(t, f, tab))
		}},
		{g, "insert duplicate unique column", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			dup := with(Users()[1], vdba.M{"username": "user01"})
			require.ErrorIs(t, tab.Insert(f.Ctx, Users()[0], dup), vdba.ErrConstraint)
			require.Equal(t, 0, count(t, f, tab))
		}},
		{g, "insert unknown column", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			u := with(Users()[0], vdba.M{"email": "user01@test.com"})
			require.ErrorIs(t, tab.Insert(f.Ctx, u), vdba.ErrNoColumn)
		}},
		{g, "insert wrong type", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			u := with(Users()[0], vdba.M{"enabled": "yes"})
			require.ErrorIs(t, tab.Insert(f.Ctx, u), vdba.ErrType)
		}},
		{g, "truncate", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			require.NoError(t, tab.Truncate(f.Ctx))
			require.Equal(t, 0, count(t, f, tab))
		}},
		{g, "remove all", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			n, err := tab.Remove(f.Ctx)
			require.NoError(t, err)
			require.Equal(t, 7, n)
			require.Equal(t, 0, count(t, f, tab))
		}},
		{g, "remove with filter", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			n, err := tab.Remove(f.Ctx, vdba.M{"username": "user01"})
			require.NoError(t, err)
			require.Equal(t, 1, n)
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, Users()[1:], res, err)
		}},
		{g, "remove with operators", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			n, err := tab.Remove(f.Ctx, vdba.M{"username": vdba.M{"$like": "user0%"}, "enabled": false})
			require.NoError(t, err)
			require.Equal(t, 2, n)
			res, err := tab.FindAll(f.Ctx)
			requireResult(t, pick(Users(), 0, 2, 3, 5, 6), res, err)
		}},
		{g, "remove without match", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			n, err := tab.Remove(f.Ctx, vdba.M{"username": "unknown"})
			require.NoError(t, err)
			require.Equal(t, 0, n)
			require.Equal(t, 7, count(t, f, tab))
		}},
		{g, "remove on unknown column", func(t require.TestingT, f *Fixture) {
			tab := user(t, f)
			require.NoError(t, tab.Insert(f.Ctx, Users()...))
			n, err := tab.Remove(f.Ctx, vdba.M{"email": "x"})
			require.NoError(t, err)
			require.Equal(t, 0, n)
			require.Equal(t, 7, count(t, f, tab))
		}},
	}
}

// sample creates sec.sample holding one row with the given values.
func sample(t require.TestingT, f *Fixture, values vdba.M) *vdba.Table {
	tab := f.Create(t, f.Database(t), ValuesDef)[0]
	require.NoError(t, tab.Insert(f.Ctx, with(vdba.M{"id": 1}, values)))
	return tab
}

// updated applies update to the sample row and returns the row.
func updated(t require.TestingT, f *Fixture, tab *vdba.Table, update vdba.M) vdba.Row {
	n, err := tab.Update(f.Ctx, vdba.M{"id": 1}, update)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return findOne(t, f, tab, vdba.M{"id": 1})
}

func requireTexts(t require.TestingT, want []string, v vdba.Value) {
	if want == nil {
		require.True(t, v.IsNull(), "want null, got %s", v)
		return
	}
	require.False(t, v.IsNull(), "want %v, got null", want)
	require.Equal(t, want, append([]string{}, v.TextElems()...))
}

func requireInts(t require.TestingT, want []int64, v vdba.Value) {
	if want == nil {
		require.True(t, v.IsNull(), "want null, got %s", v)
		return
	}
	require.False(t, v.IsNull(), "want %v, got null", want)
	require.Equal(t, want, append([]int64{}, v.IntElems()...))
}

func updateCases() []Case {
	const g = "table-update"
	abc := vdba.M{"texts": []string{"a", "b", "c"}, "ints": []int64{1, 2, 3}}

	cases := []Case{
		{g, "update without columns", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, nil)
			_, err := tab.Update(f.Ctx, vdba.M{"id": 1}, vdba.M{})
			requireUsage(t, err, "Column(s) to update expected.")
		}},
		{g, "update unknown column", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, nil)
			_, err := tab.Update(f.Ctx, vdba.M{"id": 1}, vdba.M{"unknown": 1})
			require.ErrorIs(t, err, vdba.ErrNoColumn)
		}},
		{g, "update invalid operator", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, nil)
			_, err := tab.Update(f.Ctx, vdba.M{"id": 1}, vdba.M{"text": vdba.M{"$del": "a"}})
			require.ErrorIs(t, err, vdba.ErrUsage)
		}},
		{g, "update only matching rows", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			n, err := tabs.User.Update(f.Ctx, vdba.M{"userId": 1}, vdba.M{"password": "new"})
			require.NoError(t, err)
			require.Equal(t, 1, n)
			want := Users()
			want[0]["password"] = "new"
			res, err := tabs.User.FindAll(f.Ctx)
			requireResult(t, want, res, err)
		}},
		{g, "update every row", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			n, err := tabs.User.Update(f.Ctx, nil, vdba.M{"enabled": true})
			require.NoError(t, err)
			require.Equal(t, 7, n)
			res, err := tabs.User.Find(f.Ctx, vdba.M{"enabled": true})
			require.NoError(t, err)
			require.Equal(t, 7, res.Len())
		}},
		{g, "update without match", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			n, err := tabs.User.Update(f.Ctx, vdba.M{"userId": 99}, vdba.M{"password": "new"})
			require.NoError(t, err)
			require.Equal(t, 0, n)
		}},
		{g, "update several columns", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			n, err := tabs.Session.Update(f.Ctx, vdba.M{"userId": 1}, vdba.M{
				"minutes":         vdba.M{"$inc": 1},
				"clickedArticles": vdba.M{"$add": 9},
			})
			require.NoError(t, err)
			require.Equal(t, 2, n)
			res, err := tabs.Session.Find(f.Ctx, vdba.M{"userId": 1})
			want := pick(Sessions(), 0, 2)
			want[0] = with(want[0], vdba.M{"minutes": 11.2, "clickedArticles": []int64{1, 2, 3, 4, 5, 9}})
			want[1] = with(want[1], vdba.M{"minutes": 1.25, "clickedArticles": []int64{9}})
			requireResult(t, want, res, err)
		}},
		{g, "update null into not null column", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, err := tabs.User.Update(f.Ctx, vdba.M{"userId": 1}, vdba.M{"password": nil})
			require.ErrorIs(t, err, vdba.ErrConstraint)
			requireRow(t, Users()[0], findOne(t, f, tabs.User, vdba.M{"userId": 1}))
		}},
		{g, "update into duplicate", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, err := tabs.User.Update(f.Ctx, vdba.M{"userId": 2}, vdba.M{"username": "user01"})
			require.ErrorIs(t, err, vdba.ErrConstraint)
			requireRow(t, Users()[1], findOne(t, f, tabs.User, vdba.M{"userId": 2}))
		}},
		{g, "text $set", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"text": "abc"})
			require.Equal(t, "xyz", updated(t, f, tab, vdba.M{"text": vdba.M{"$set": "xyz"}}).Value("text").AsText())
		}},
		{g, "text literal", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"text": "abc"})
			require.Equal(t, "xyz", updated(t, f, tab, vdba.M{"text": "xyz"}).Value("text").AsText())
		}},
		{g, "text $set null", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"text": "abc"})
			require.True(t, updated(t, f, tab, vdba.M{"text": nil}).Value("text").IsNull())
		}},
		{g, "text $add", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"text": "pwd01"})
			require.Equal(t, "pwd01xxxxx", updated(t, f, tab, vdba.M{"text": vdba.M{"$add": "xxxxx"}}).Value("text").AsText())
		}},
	}

	for _, tc := range []struct {
		name   string
		start  any
		update vdba.M
		want   int64
	}{
		{"integer $set", 1, vdba.M{"$set": 111}, 111},
		{"integer literal", 1, nil, 121},
		{"integer $add", 1, vdba.M{"$add": 100}, 101},
		{"integer $inc", 1, vdba.M{"$inc": 100}, 101},
		{"integer $dec", 1, vdba.M{"$dec": 2}, -1},
		{"integer $mul", 2, vdba.M{"$mul": 100}, 200},
		{"integer $mul real", 2, vdba.M{"$mul": 100.3}, 200},
	} {
		cases = append(cases, Case{g, tc.name, func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"int": tc.start})
			var u any = tc.update
			if tc.update == nil {
				u = tc.want
			}
			v := updated(t, f, tab, vdba.M{"int": u}).Value("int")
			require.Equal(t, vdba.KindInt, v.Kind())
			require.Equal(t, tc.want, v.AsInt())
		}})
	}

	for _, tc := range []struct {
		name   string
		start  any
		update any
		want   float64
	}{
		{"real $set", 1.5, vdba.M{"$set": 12.34}, 12.34},
		{"real literal", 1.5, 3, 3},
		{"real $add", 1.5, vdba.M{"$add": 100}, 101.5},
		{"real $inc", 1.5, vdba.M{"$inc": 101}, 102.5},
		{"real $dec", 1.5, vdba.M{"$dec": 1}, 0.5},
		{"real $mul", 1.5, vdba.M{"$mul": 200}, 300},
		{"real $mul real", 2, vdba.M{"$mul": 200.25}, 400.5},
	} {
		cases = append(cases, Case{g, tc.name, func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, vdba.M{"real": tc.start})
			v := updated(t, f, tab, vdba.M{"real": tc.update}).Value("real")
			require.Equal(t, vdba.KindReal, v.Kind())
			require.InDelta(t, tc.want, v.AsReal(), 1e-9)
		}})
	}

	cases = append(cases,
		Case{g, "numeric operator on null", func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, nil)
			row := updated(t, f, tab, vdba.M{"int": vdba.M{"$inc": 1}, "real": vdba.M{"$mul": 2}})
			require.True(t, row.Value("int").IsNull())
			require.True(t, row.Value("real").IsNull())
		}},
	)

	for _, tc := range []struct {
		name   string
		start  vdba.M
		update vdba.M
		texts  []string
		ints   []int64
	}{
		{"set $set null", abc, vdba.M{"texts": vdba.M{"$set": nil}, "ints": vdba.M{"$set": nil}}, nil, nil},
		{"set $set empty", abc, vdba.M{"texts": []string{}, "ints": []int64{}}, []string{}, []int64{}},
		{"set $set keeps order", abc,
			vdba.M{"texts": vdba.M{"$set": []string{"e", "d", "c", "b", "a"}}, "ints": vdba.M{"$set": []int64{5, 4, 3, 2, 1}}},
			[]string{"e", "d", "c", "b", "a"}, []int64{5, 4, 3, 2, 1}},
		{"set $add to null", nil, vdba.M{"texts": vdba.M{"$add": "x"}, "ints": vdba.M{"$add": 9}}, []string{"x"}, []int64{9}},
		{"set $add to empty", vdba.M{"texts": []string{}, "ints": []int64{}},
			vdba.M{"texts": vdba.M{"$add": "x"}, "ints": vdba.M{"$add": 9}}, []string{"x"}, []int64{9}},
		{"set $add appends", abc, vdba.M{"texts": vdba.M{"$add": "d"}, "ints": vdba.M{"$add": 4}},
			[]string{"a", "b", "c", "d"}, []int64{1, 2, 3, 4}},
		{"set $add existing", abc, vdba.M{"texts": vdba.M{"$add": "b"}, "ints": vdba.M{"$add": 2}},
			[]string{"a", "b", "c"}, []int64{1, 2, 3}},
		{"set $del first", abc, vdba.M{"texts": vdba.M{"$del": "a"}, "ints": vdba.M{"$del": 1}},
			[]string{"b", "c"}, []int64{2, 3}},
		{"set $del middle", abc, vdba.M{"texts": vdba.M{"$del": "b"}, "ints": vdba.M{"$del": 2}},
			[]string{"a", "c"}, []int64{1, 3}},
		{"set $del last", abc, vdba.M{"texts": vdba.M{"$del": "c"}, "ints": vdba.M{"$del": 3}},
			[]string{"a", "b"}, []int64{1, 2}},
		{"set $del unknown", abc, vdba.M{"texts": vdba.M{"$del": "z"}, "ints": vdba.M{"$del": 9}},
			[]string{"a", "b", "c"}, []int64{1, 2, 3}},
		{"set $del only element", vdba.M{"texts": []string{"a"}, "ints": []int64{1}},
			vdba.M{"texts": vdba.M{"$del": "a"}, "ints": vdba.M{"$del": 1}}, []string{}, []int64{}},
		{"set $del from null", nil, vdba.M{"texts": vdba.M{"$del": "a"}, "ints": vdba.M{"$del": 1}}, nil, nil},
	} {
		cases = append(cases, Case{g, tc.name, func(t require.TestingT, f *Fixture) {
			tab := sample(t, f, tc.start)
			row := updated(t, f, tab, tc.update)
			requireTexts(t, tc.texts, row.Value("texts"))
			requireInts(t, tc.ints, row.Value("ints"))
		}})
	}
	return cases
}

// mapped is a sec.user row decoded by Table.Map.
type mapped struct {
	ID         int64     `vdba:"userId"`
	Username   string    `vdba:"username"`
	Password   string    `vdba:"password"`
	CreateDate time.Time `vdba:"createDate"`
	Enabled    bool      `vdba:"enabled"`
}

func dqlCases() []Case {
	const g = "table-dql"
	filtered := func(filter vdba.M, want ...int) func(require.TestingT, *Fixture) {
		return func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Find(f.Ctx, filter)
			requireResult(t, pick(Users(), want...), res, err)
		}
	}
	return []Case{
		{g, "count", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			require.Equal(t, 7, count(t, f, tabs.User))
		}},
		{g, "find all", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.FindAll(f.Ctx)
			requireResult(t, Users(), res, err)
			require.Equal(t, 7, res.Len())
		}},
		{g, "find without filter", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Find(f.Ctx)
			requireResult(t, Users(), res, err)
		}},
		{g, "find with empty filter", filtered(vdba.M{}, 0, 1, 2, 3, 4, 5, 6)},
		{g, "$eq", filtered(vdba.M{"username": "user01"}, 0)},
		{g, "$eq operator", filtered(vdba.M{"username": vdba.M{"$eq": "user01"}}, 0)},
		{g, "$ne", filtered(vdba.M{"username": vdba.M{"$ne": "user03"}}, 0, 1, 3, 4, 5, 6)},
		{g, "$gt", filtered(vdba.M{"username": vdba.M{"$gt": "user03"}}, 3, 4, 5, 6)},
		{g, "$ge", filtered(vdba.M{"username": vdba.M{"$ge": "user03"}}, 2, 3, 4, 5, 6)},
		{g, "$lt", filtered(vdba.M{"username": vdba.M{"$lt": "user03"}}, 0, 1)},
		{g, "$le", filtered(vdba.M{"username": vdba.M{"$le": "user03"}}, 0, 1, 2)},
		{g, "$gt and $lt", filtered(vdba.M{"userId": vdba.M{"$gt": 2, "$lt": 5}}, 2, 3)},
		{g, "$like", filtered(vdba.M{"username": vdba.M{"$like": "user_1"}}, 0, 5)},
		{g, "$like percent", filtered(vdba.M{"username": vdba.M{"$like": "%1%"}}, 0, 5, 6)},
		{g, "$notLike", filtered(vdba.M{"username": vdba.M{"$notLike": "user_1"}}, 1, 2, 3, 4, 6)},
		{g, "$in", filtered(vdba.M{"username": vdba.M{"$in": []string{"user01", "user11"}}}, 0, 5)},
		{g, "$notIn", filtered(vdba.M{"username": vdba.M{"$notIn": []string{"user01", "user11"}}}, 1, 2, 3, 4, 6)},
		{g, "boolean", filtered(vdba.M{"enabled": false}, 1, 4)},
		{g, "date", filtered(vdba.M{"createDate": day(2)}, 0, 1, 2)},
		{g, "date range", filtered(vdba.M{"createDate": vdba.M{"$gt": day(3)}}, 5, 6)},
		{g, "compound", filtered(vdba.M{"username": vdba.M{"$like": "user_1"}, "password": "pwd01"}, 0)},
		{g, "no match", filtered(vdba.M{"username": "unknown"})},
		{g, "ordering a boolean", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, err := tabs.User.Find(f.Ctx, vdba.M{"enabled": vdba.M{"$gt": false}})
			require.ErrorIs(t, err, vdba.ErrUsage)
		}},
		{g, "find one", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireRow(t, Users()[5], findOne(t, f, tabs.User, vdba.M{"username": "user11"}))
		}},
		{g, "find one without match", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, ok, err := tabs.User.FindOne(f.Ctx, vdba.M{"username": "unknown"})
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "map", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			var got []mapped
			require.NoError(t, tabs.User.Map(f.Ctx, &got, vdba.M{"enabled": false}))
			require.Len(t, got, 2)
			require.Equal(t, int64(2), got[0].ID)
			require.Equal(t, "user02", got[0].Username)
			require.Equal(t, "user05", got[1].Username)
			require.True(t, day(2).Equal(got[0].CreateDate))
		}},
		{g, "map all", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			var got []mapped
			require.NoError(t, tabs.User.MapAll(f.Ctx, &got))
			require.Len(t, got, 7)
			require.Equal(t, "user12", got[6].Username)
			require.True(t, got[6].Enabled)
		}},
		{g, "map one", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			var got mapped
			ok, err := tabs.User.MapOne(f.Ctx, &got, vdba.M{"userId": 3})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "pwd03", got.Password)

			ok, err = tabs.User.MapOne(f.Ctx, &got, vdba.M{"userId": 99})
			require.NoError(t, err)
			require.False(t, ok)
		}},
		{g, "map without destination", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Map(f.Ctx, nil), "Map expected.")
			requireUsage(t, tabs.User.MapAll(f.Ctx, nil), "Map expected.")
			_, err := tabs.User.MapOne(f.Ctx, nil)
			requireUsage(t, err, "Map expected.")
		}},
	}
}
