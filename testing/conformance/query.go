package conformance

import (
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/vdba"
)

func querySimpleCases() []Case {
	const g = "query-simple"
	sorted := func(build func(*vdba.Query) *vdba.Query, want ...int) func(require.TestingT, *Fixture) {
		return func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := build(tabs.User.Query()).Find(f.Ctx)
			requireResult(t, pick(Users(), want...), res, err)
		}
	}
	return []Case{
		{g, "query", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query()
			require.NoError(t, q.Err())
			spec := q.Spec()
			require.Equal(t, UserDef.Ref(), spec.Table)
			require.True(t, spec.Filter.IsEmpty())
			require.Empty(t, spec.Joins)
			require.Nil(t, spec.Group)
			require.Empty(t, spec.OrderBy)
			require.Nil(t, spec.Limit)
		}},
		{g, "limit with negative count", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Limit(-1).Err(), "Count expected.")
		}},
		{g, "limit", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query()
			require.Same(t, q, q.Limit(3))
			l := q.Spec().Limit
			require.NotNil(t, l)
			require.Equal(t, 3, l.Count)
			require.Equal(t, 0, l.Start)
			res, err := q.Find(f.Ctx)
			requireResult(t, Users()[:3], res, err)
		}},
		{g, "limit with start", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query().Limit(3, 2)
			l := q.Spec().Limit
			require.Equal(t, 3, l.Count)
			require.Equal(t, 2, l.Start)
			res, err := q.Find(f.Ctx)
			requireResult(t, pick(Users(), 2, 3, 4), res, err)
		}},
		{g, "limit past the end", sorted(func(q *vdba.Query) *vdba.Query { return q.Limit(5, 5) }, 5, 6)},
		{g, "limit zero", sorted(func(q *vdba.Query) *vdba.Query { return q.Limit(0) })},
		{g, "sort without columns", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Sort().Err(), "Ordering column(s) expected.")
		}},
		{g, "sort", sorted(func(q *vdba.Query) *vdba.Query { return q.Sort("enabled") }, 1, 4, 0, 2, 3, 5, 6)},
		{g, "sort by several columns", sorted(func(q *vdba.Query) *vdba.Query {
			return q.Sort("enabled", "userId")
		}, 1, 4, 0, 2, 3, 5, 6)},
		{g, "sort with directions", sorted(func(q *vdba.Query) *vdba.Query {
			return q.SortBy(vdba.Asc("enabled"), vdba.Desc("userId"))
		}, 4, 1, 6, 5, 3, 2, 0)},
		{g, "sort descending text", sorted(func(q *vdba.Query) *vdba.Query {
			return q.SortBy(vdba.Desc("username"))
		}, 6, 5, 4, 3, 2, 1, 0)},
		{g, "sort then limit", sorted(func(q *vdba.Query) *vdba.Query {
			return q.SortBy(vdba.Desc("userId")).Limit(2)
		}, 6, 5)},
		{g, "sort spec", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query().SortBy(vdba.Asc("enabled"), vdba.Desc("userId"))
			require.Equal(t, []vdba.OrderBy{
				{Column: "enabled", Direction: vdba.ASC},
				{Column: "userId", Direction: vdba.DESC},
			}, q.Spec().OrderBy)
		}},
		{g, "filter nil", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Filter(nil).Err(), "Filter expected.")
		}},
		{g, "filter", sorted(func(q *vdba.Query) *vdba.Query { return q.Filter(vdba.M{"userId": 3}) }, 2)},
		{g, "filter with operators", sorted(func(q *vdba.Query) *vdba.Query {
			return q.Filter(vdba.M{"username": vdba.M{"$like": "user_1"}, "password": vdba.M{"$like": "%11"}})
		}, 5)},
		{g, "filter without match", sorted(func(q *vdba.Query) *vdba.Query {
			return q.Filter(vdba.M{"username": "unknown"})
		})},
		{g, "filters combine", sorted(func(q *vdba.Query) *vdba.Query {
			return q.Filter(vdba.M{"enabled": true}).Filter(vdba.M{"createDate": day(2)})
		}, 0, 2)},
		{g, "filter spec", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			filter := vdba.M{"userId": vdba.M{"$gt": 3}}
			q := tabs.User.Query().Filter(filter)
			require.Equal(t, vdba.MustParseFilter(filter), q.Spec().Filter)
		}},
		{g, "find with filter", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query().Filter(vdba.M{"enabled": true})
			res, err := q.Find(f.Ctx, vdba.M{"createDate": day(3)})
			requireResult(t, pick(Users(), 3), res, err)
			res, err = q.Find(f.Ctx)
			requireResult(t, pick(Users(), 0, 2, 3, 5, 6), res, err)
		}},
		{g, "find all ignores the filter", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Filter(vdba.M{"enabled": true}).FindAll(f.Ctx)
			requireResult(t, Users(), res, err)
		}},
		{g, "find one", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			row, ok, err := tabs.User.Query().SortBy(vdba.Desc("userId")).FindOne(f.Ctx)
			require.NoError(t, err)
			require.True(t, ok)
			requireRow(t, Users()[6], row)
		}},
		{g, "spec is a copy", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query().Sort("userId")
			spec := q.Spec()
			q.Limit(1).Filter(vdba.M{"userId": 1})
			require.Nil(t, spec.Limit)
			require.True(t, spec.Filter.IsEmpty())
			require.Len(t, spec.OrderBy, 1)
		}},
		{g, "first error wins", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query().Sort().Filter(nil).Limit(-1)
			requireUsage(t, q.Err(), "Ordering column(s) expected.")
			_, err := q.Find(f.Ctx)
			requireUsage(t, err, "Ordering column(s) expected.")
		}},
		{g, "run", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			type outcome struct {
				res *vdba.Result
				err error
			}
			done := make(chan outcome, 1)
			err := tabs.User.Query().Filter(vdba.M{"enabled": false}).Run(f.Ctx, func(res *vdba.Result, err error) {
				done <- outcome{res, err}
			})
			require.NoError(t, err)
			o := <-done
			requireResult(t, pick(Users(), 1, 4), o.res, o.err)
		}},
		{g, "run without callback", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Run(f.Ctx, nil), "Callback expected.")
		}},
	}
}

func queryOperatorCases() []Case {
	const g = "query-operators"
	profiles := func(filter vdba.M, want ...int) func(require.TestingT, *Fixture) {
		return func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.Profile.Query().Filter(filter).Find(f.Ctx)
			requireResult(t, pick(Profiles(), want...), res, err)
		}
	}
	sessions := func(filter vdba.M, want ...int) func(require.TestingT, *Fixture) {
		return func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.Session.Query().Filter(filter).Find(f.Ctx)
			requireResult(t, pick(Sessions(), want...), res, err)
		}
	}
	return []Case{
		{g, "$contains text", profiles(vdba.M{"emails": vdba.M{"$contains": "user01@test.com"}}, 0)},
		{g, "$contains integer", sessions(vdba.M{"clickedArticles": vdba.M{"$contains": 1}}, 0, 1)},
		{g, "$contains without match", sessions(vdba.M{"clickedArticles": vdba.M{"$contains": 99}})},
		{g, "$ncontains text", profiles(vdba.M{"emails": vdba.M{"$ncontains": "user01@test.com"}}, 1, 2, 3, 4, 5, 6)},
		{g, "$notContains text", profiles(vdba.M{"emails": vdba.M{"$notContains": "user01@test.com"}}, 1, 2, 3, 4, 5, 6)},
		{g, "$ncontains integer", sessions(vdba.M{"clickedArticles": vdba.M{"$ncontains": 1}}, 2, 3)},
		{g, "$notContains integer", sessions(vdba.M{"clickedArticles": vdba.M{"$notContains": 1}}, 2, 3)},
		{g, "$eq null", sessions(vdba.M{"minutes": nil}, 3)},
		{g, "$ne null", sessions(vdba.M{"minutes": vdba.M{"$ne": nil}}, 0, 1, 2)},
		{g, "$gt real", sessions(vdba.M{"minutes": vdba.M{"$gt": 1}}, 0, 1)},
		{g, "$le real", sessions(vdba.M{"minutes": vdba.M{"$le": 1.13}}, 1, 2)},
		{g, "datetime range", sessions(vdba.M{"login": vdba.M{"$ge": at(2, 12, 0), "$lt": at(5, 0, 0)}}, 1, 2)},
		{g, "$in integer", sessions(vdba.M{"userId": vdba.M{"$in": []int{1, 3}}}, 0, 2, 3)},
		{g, "$notIn integer", sessions(vdba.M{"userId": vdba.M{"$notIn": []int{1, 3}}}, 1)},
		{g, "$contains on a scalar column", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			err := tabs.Session.Query().Filter(vdba.M{"minutes": vdba.M{"$contains": 1}}).Err()
			require.ErrorIs(t, err, vdba.ErrUsage)
		}},
		{g, "unknown operator", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			err := tabs.Session.Query().Filter(vdba.M{"minutes": vdba.M{"$between": 1}}).Err()
			require.ErrorIs(t, err, vdba.ErrUsage)
		}},
	}
}

func queryMultiTableCases() []Case {
	const g = "query-multitable"
	return []Case{
		{g, "join without target", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Join("", "userId").Err(), "Target table expected.")
		}},
		{g, "join without source column", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Join("session", "").Err(), "Source column name expected.")
		}},
		{g, "join spec", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			q := tabs.User.Query()
			require.Same(t, q, q.Join("session", "userId"))
			joins := q.Spec().Joins
			require.Len(t, joins, 1)
			require.Equal(t, vdba.Join{
				Mode:         "none",
				Type:         "inner",
				Target:       SessionDef.Ref(),
				SourceColumn: "userId",
				TargetColumn: "userId",
			}, joins[0])
		}},
		{g, "join spec with target column", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			joins := tabs.User.Query().Join("sec.session", "userId", "user").Spec().Joins
			require.Equal(t, "userId", joins[0].SourceColumn)
			require.Equal(t, "user", joins[0].TargetColumn)
		}},
		{g, "join", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Join("session", "userId").Find(f.Ctx)
			requireResult(t, JoinUserSession(), res, err)
		}},
		{g, "join qualified target", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Join("sec.session", "userId", "userId").Find(f.Ctx)
			requireResult(t, JoinUserSession(), res, err)
		}},
		{g, "join with limit", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Join("session", "userId").Limit(2).Find(f.Ctx)
			requireResult(t, JoinUserSession()[:2], res, err)
		}},
		{g, "join with filter", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Filter(vdba.M{"username": "user01"}).Join("session", "userId").Find(f.Ctx)
			requireResult(t, pick(JoinUserSession(), 0, 2), res, err)
		}},
		{g, "join then sort", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().Join("session", "userId").SortBy(vdba.Desc("sessionId")).Find(f.Ctx)
			requireResult(t, pick(JoinUserSession(), 3, 2, 1, 0), res, err)
		}},
		{g, "join unknown table", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, err := tabs.User.Query().Join("unknown", "userId").Find(f.Ctx)
			require.ErrorIs(t, err, vdba.ErrNoTable)
		}},
		{g, "joinoo spec", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			joins := tabs.User.Query().JoinOO("profile", "userId").Spec().Joins
			require.Len(t, joins, 1)
			require.Equal(t, vdba.Join{
				Mode:         "1-1",
				Type:         "inner",
				Target:       ProfileDef.Ref(),
				SourceColumn: "userId",
				TargetColumn: "userId",
			}, joins[0])
		}},
		{g, "joinoo", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			res, err := tabs.User.Query().JoinOO("profile", "userId").Find(f.Ctx)
			requireResult(t, JoinOOUserProfile(), res, err)
		}},
		{g, "joinoo drops unmatched rows", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			_, err := tabs.Profile.Remove(f.Ctx, vdba.M{"userId": vdba.M{"$gt": 2}})
			require.NoError(t, err)
			res, err := tabs.User.Query().JoinOO("profile", "userId").Find(f.Ctx)
			requireResult(t, JoinOOUserProfile()[:2], res, err)
		}},
	}
}

func queryAggCases() []Case {
	const g = "query-agg"
	enabled := func(t require.TestingT, f *Fixture) *vdba.Query {
		return f.Load(t).User.Query().Group("enabled").Sort("enabled")
	}
	byUser := func(t require.TestingT, f *Fixture) *vdba.Query {
		return f.Load(t).Session.Query().Group("userId")
	}
	expect := func(q func(require.TestingT, *Fixture) *vdba.Query, build func(*vdba.Query) *vdba.Query, want ...vdba.M) func(require.TestingT, *Fixture) {
		return func(t require.TestingT, f *Fixture) {
			res, err := build(q(t, f)).Find(f.Ctx)
			requireResult(t, want, res, err)
		}
	}
	agg := func(fn, column, alias string, filter vdba.M) vdba.Aggregation {
		a := vdba.Aggregation{Func: vdba.AggFunc(fn), Column: column, Alias: alias}
		if filter != nil {
			f := vdba.MustParseFilter(filter)
			a.Filter = &f
		}
		return a
	}
	gt2 := vdba.M{"value": vdba.M{"$gt": 2}}

	cases := []Case{
		{g, "group without columns", func(t require.TestingT, f *Fixture) {
			tabs := f.Load(t)
			requireUsage(t, tabs.User.Query().Group().Err(), "Grouping column(s) expected.")
		}},
		{g, "group spec", func(t require.TestingT, f *Fixture) {
			q := byUser(t, f)
			grp := q.Spec().Group
			require.NotNil(t, grp)
			require.Equal(t, []string{"userId"}, grp.Columns)
			require.Empty(t, grp.Aggregations)
		}},
		{g, "group without aggregation", expect(byUser, func(q *vdba.Query) *vdba.Query { return q },
			vdba.M{"userId": 1}, vdba.M{"userId": 2}, vdba.M{"userId": 3})},
		{g, "count spec", func(t require.TestingT, f *Fixture) {
			q := enabled(t, f)
			require.Same(t, q, q.Count())
			grp := q.Spec().Group
			require.Equal(t, []vdba.Aggregation{agg("count", "*", "count", nil)}, grp.Aggregations)
			require.False(t, grp.HasFilter())
		}},
		{g, "count", expect(enabled, func(q *vdba.Query) *vdba.Query { return q.Count() },
			vdba.M{"enabled": false, "count": 2}, vdba.M{"enabled": true, "count": 5})},
		{g, "count with filter spec", func(t require.TestingT, f *Fixture) {
			q := enabled(t, f).Count(vdba.Agg{Filter: gt2})
			grp := q.Spec().Group
			require.True(t, grp.HasFilter())
			require.Equal(t, vdba.MustParseFilter(vdba.M{"count": vdba.M{"$gt": 2}}), grp.Filter())
			require.Equal(t, []vdba.Aggregation{agg("count", "*", "count", gt2)}, grp.Aggregations)
		}},
		{g, "count with filter", expect(enabled, func(q *vdba.Query) *vdba.Query {
			return q.Count(vdba.Agg{Filter: gt2})
		}, vdba.M{"enabled": true, "count": 5})},
		{g, "count ignores its column", func(t require.TestingT, f *Fixture) {
			q := enabled(t, f).Count(vdba.Agg{Column: "username"})
			require.Equal(t, "*", q.Spec().Group.Aggregations[0].Column)
		}},
		{g, "count with alias and filter", func(t require.TestingT, f *Fixture) {
			q := enabled(t, f).Count(vdba.Agg{Alias: "total", Filter: gt2})
			grp := q.Spec().Group
			require.Equal(t, vdba.MustParseFilter(vdba.M{"total": vdba.M{"$gt": 2}}), grp.Filter())
			require.Equal(t, []vdba.Aggregation{agg("count", "*", "total", gt2)}, grp.Aggregations)
			res, err := q.Find(f.Ctx)
			requireResult(t, []vdba.M{{"enabled": true, "total": 5}}, res, err)
		}},
		{g, "count with row filter", expect(byUser, func(q *vdba.Query) *vdba.Query {
			return q.Count(vdba.Agg{Filter: vdba.M{"minutes": vdba.M{"$gt": 1}}})
		}, vdba.M{"userId": 1, "count": 1}, vdba.M{"userId": 2, "count": 1}, vdba.M{"userId": 3, "count": 0})},
		{g, "duplicate alias", func(t require.TestingT, f *Fixture) {
			q := byUser(t, f).Count().Sum(vdba.Agg{Column: "minutes", Alias: "count"})
			require.ErrorIs(t, q.Err(), vdba.ErrUsage)
		}},
		{g, "several aggregations spec", func(t require.TestingT, f *Fixture) {
			q := byUser(t, f).Count().Sum(vdba.Agg{Column: "minutes"})
			grp := q.Spec().Group
			require.Equal(t, []vdba.Aggregation{
				agg("count", "*", "count", nil),
				agg("sum", "minutes", "sum", nil),
			}, grp.Aggregations)
			require.False(t, grp.HasFilter())
		}},
		{g, "several aggregations", expect(byUser, func(q *vdba.Query) *vdba.Query {
			return q.Count().Sum(vdba.Agg{Column: "minutes"})
		},
			vdba.M{"userId": 1, "count": 2, "sum": 10.45},
			vdba.M{"userId": 2, "count": 1, "sum": 1.13},
			vdba.M{"userId": 3, "count": 1, "sum": nil},
		)},
		{g, "several filtered aggregations spec", func(t require.TestingT, f *Fixture) {
			ge1 := vdba.M{"value": vdba.M{"$ge": 1}}
			gt5 := vdba.M{"value": vdba.M{"$gt": 5}}
			q := byUser(t, f).Count(vdba.Agg{Filter: ge1}).Sum(vdba.Agg{Column: "minutes", Filter: gt5})
			grp := q.Spec().Group
			require.True(t, grp.HasFilter())
			require.Equal(t, vdba.MustParseFilter(vdba.M{"count": vdba.M{"$ge": 1}, "sum": vdba.M{"$gt": 5}}), grp.Filter())
			require.Equal(t, []vdba.Aggregation{
				agg("count", "*", "count", ge1),
				agg("sum", "minutes", "sum", gt5),
			}, grp.Aggregations)
		}},
		{g, "several filtered aggregations", expect(byUser, func(q *vdba.Query) *vdba.Query {
			return q.Count(vdba.Agg{Filter: vdba.M{"value": vdba.M{"$ge": 1}}}).
				Sum(vdba.Agg{Column: "minutes", Filter: vdba.M{"value": vdba.M{"$gt": 5}}})
		}, vdba.M{"userId": 1, "count": 2, "sum": 10.45})},
		{g, "aggregate then sort and limit", expect(byUser, func(q *vdba.Query) *vdba.Query {
			return q.Count().SortBy(vdba.Desc("count"), vdba.Desc("userId")).Limit(2)
		}, vdba.M{"userId": 1, "count": 2}, vdba.M{"userId": 3, "count": 1})},
	}

	for _, fn := range []struct {
		name    string
		add     func(*vdba.Query, ...vdba.Agg) *vdba.Query
		results [3]any
		filter  vdba.M
		kept    vdba.M
	}{
		{"sum", (*vdba.Query).Sum, [3]any{10.45, 1.13, nil}, gt2, vdba.M{"userId": 1}},
		{"min", (*vdba.Query).Min, [3]any{0.25, 1.13, nil}, vdba.M{"value": vdba.M{"$gt": 1}}, vdba.M{"userId": 2}},
		{"max", (*vdba.Query).Max, [3]any{10.2, 1.13, nil}, gt2, vdba.M{"userId": 1}},
		{"avg", (*vdba.Query).Avg, [3]any{5.225, 1.13, nil}, gt2, vdba.M{"userId": 1}},
	} {
		name, add := fn.name, fn.add
		rowsAs := func(alias string) []vdba.M {
			out := make([]vdba.M, 3)
			for i := range out {
				out[i] = vdba.M{"userId": i + 1, alias: fn.results[i]}
			}
			return out
		}
		kept := func(alias string) []vdba.M {
			for _, r := range rowsAs(alias) {
				if r["userId"] == fn.kept["userId"] {
					return []vdba.M{r}
				}
			}
			return nil
		}
		filter := fn.filter
		cases = append(cases,
			Case{g, name + " without group", func(t require.TestingT, f *Fixture) {
				tabs := f.Load(t)
				requireUsage(t, add(tabs.Session.Query(), vdba.Agg{Column: "minutes"}).Err(), "No grouping column specified.")
			}},
			Case{g, name + " without column", func(t require.TestingT, f *Fixture) {
				requireUsage(t, add(byUser(t, f), vdba.Agg{}).Err(), "Column name expected.")
			}},
			Case{g, name + " spec", func(t require.TestingT, f *Fixture) {
				q := add(byUser(t, f), vdba.Agg{Column: "minutes"})
				grp := q.Spec().Group
				require.Equal(t, []vdba.Aggregation{agg(name, "minutes", name, nil)}, grp.Aggregations)
				require.False(t, grp.HasFilter())
			}},
			Case{g, name, func(t require.TestingT, f *Fixture) {
				res, err := add(byUser(t, f), vdba.Agg{Column: "minutes"}).Find(f.Ctx)
				requireResult(t, rowsAs(name), res, err)
			}},
			Case{g, name + " with alias", func(t require.TestingT, f *Fixture) {
				q := add(byUser(t, f), vdba.Agg{Column: "minutes", Alias: "total"})
				require.Equal(t, "total", q.Spec().Group.Aggregations[0].Alias)
				res, err := q.Find(f.Ctx)
				requireResult(t, rowsAs("total"), res, err)
			}},
			Case{g, name + " with filter", func(t require.TestingT, f *Fixture) {
				q := add(byUser(t, f), vdba.Agg{Column: "minutes", Filter: filter})
				grp := q.Spec().Group
				require.True(t, grp.HasFilter())
				require.Equal(t, []vdba.Aggregation{agg(name, "minutes", name, filter)}, grp.Aggregations)
				res, err := q.Find(f.Ctx)
				requireResult(t, kept(name), res, err)
			}},
			Case{g, name + " with alias and filter", func(t require.TestingT, f *Fixture) {
				q := add(byUser(t, f), vdba.Agg{Column: "minutes", Alias: "total", Filter: filter})
				res, err := q.Find(f.Ctx)
				requireResult(t, kept("total"), res, err)
			}},
		)
	}
	return cases
}

func queryMultiTableAggCases() []Case {
	const g = "query-multitable-agg"
	grouped := func(t require.TestingT, f *Fixture) *vdba.Query {
		return f.Load(t).User.Query().Join("session", "userId").Group("userId", "username")
	}
	return []Case{
		{g, "count", func(t require.TestingT, f *Fixture) {
			res, err := grouped(t, f).Count().Find(f.Ctx)
			requireResult(t, []vdba.M{
				{"userId": 1, "username": "user01", "count": 2},
				{"userId": 2, "username": "user02", "count": 1},
				{"userId": 3, "username": "user03", "count": 1},
			}, res, err)
		}},
		{g, "count and sum", func(t require.TestingT, f *Fixture) {
			res, err := grouped(t, f).Count().Sum(vdba.Agg{Column: "minutes"}).Find(f.Ctx)
			requireResult(t, []vdba.M{
				{"userId": 1, "username": "user01", "count": 2, "sum": 10.45},
				{"userId": 2, "username": "user02", "count": 1, "sum": 1.13},
				{"userId": 3, "username": "user03", "count": 1, "sum": nil},
			}, res, err)
		}},
		{g, "filtered count", func(t require.TestingT, f *Fixture) {
			res, err := grouped(t, f).Count(vdba.Agg{Filter: vdba.M{"value": vdba.M{"$gt": 1}}}).Find(f.Ctx)
			requireResult(t, []vdba.M{{"userId": 1, "username": "user01", "count": 2}}, res, err)
		}},
		{g, "grouped by a joined column", func(t require.TestingT, f *Fixture) {
			q := f.Load(t).Session.Query().JoinOO("user", "userId")
			res, err := q.Join("profile", "userId").Group("nick").Max(vdba.Agg{Column: "login", Alias: "last"}).Sort("nick").Find(f.Ctx)
			requireResult(t, []vdba.M{
				{"nick": "u01", "last": at(3, 7, 45)},
				{"nick": "u02", "last": at(2, 15, 35)},
				{"nick": "u03", "last": at(5, 16, 23)},
			}, res, err)
		}},
	}
}
