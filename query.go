package vdba

import (
	"context"
	"fmt"

	"github.com/zoobzio/vdba/internal/eval"
	"github.com/zoobzio/vdba/internal/types"
)

// Agg configures an aggregation.
type Agg struct {
	// Column is the aggregated column. Count ignores it.
	Column string
	// Alias names the output column. It defaults to the function name.
	Alias string
	// Filter restricts the aggregation. Its "value" entry constrains the
	// aggregated result and drops groups that fail it; every other entry
	// restricts the rows the aggregation reads.
	Filter M
}

// Handler receives the outcome of Query.Run.
type Handler func(*Result, error)

// Query provides a fluent API for building and running a query over one
// table. Builder methods return the same Query; the first usage error is
// recorded and later builder calls are ignored.
type Query struct {
	table *Table
	p     types.Pipeline
	err   error
}

func newQuery(t *Table) *Query {
	return &Query{table: t, p: types.Pipeline{Table: t.Ref()}}
}

// Err returns the first usage error recorded by the builder.
func (q *Query) Err() error {
	return q.err
}

// Spec returns a copy of the accumulated pipeline.
func (q *Query) Spec() Pipeline {
	return q.p.Clone()
}

// Filter restricts the source rows. Successive filters are AND-combined.
func (q *Query) Filter(filter M) *Query {
	if q.err != nil {
		return q
	}
	if filter == nil {
		q.err = usage(msgFilter)
		return q
	}
	f, err := q.table.filter([]M{filter})
	if err != nil {
		q.err = err
		return q
	}
	q.p.Filter = q.p.Filter.And(f)
	return q
}

// Sort orders the result by columns, ascending.
func (q *Query) Sort(columns ...string) *Query {
	orders := make([]OrderBy, len(columns))
	for i, c := range columns {
		orders[i] = Asc(c)
	}
	return q.SortBy(orders...)
}

// SortBy orders the result by keys, the first taking precedence.
func (q *Query) SortBy(orders ...OrderBy) *Query {
	if q.err != nil {
		return q
	}
	if len(orders) == 0 {
		q.err = usage(msgOrdering)
		return q
	}
	for _, o := range orders {
		if o.Column == "" {
			q.err = usage(msgOrdering)
			return q
		}
		if o.Direction != ASC && o.Direction != DESC {
			q.err = usage(fmt.Sprintf("Invalid sort direction: %s", o.Direction))
			return q
		}
	}
	q.p.OrderBy = append(q.p.OrderBy, orders...)
	return q
}

// Limit keeps count rows starting at the optional start offset.
func (q *Query) Limit(count int, start ...int) *Query {
	if q.err != nil {
		return q
	}
	l := types.Limit{Count: count}
	if len(start) > 0 {
		l.Start = start[0]
	}
	if l.Count < 0 || l.Start < 0 {
		q.err = usage(msgCount)
		return q
	}
	q.p.Limit = &l
	return q
}

// Join merges each row with every row of target whose targetColumn equals
// its sourceColumn. targetColumn defaults to sourceColumn. A target without
// a schema is looked up in the source table's schema.
func (q *Query) Join(target, sourceColumn string, targetColumn ...string) *Query {
	return q.join(types.JoinFlat, target, sourceColumn, targetColumn)
}

// JoinOO nests the first matching row of target under the target's name.
func (q *Query) JoinOO(target, sourceColumn string, targetColumn ...string) *Query {
	return q.join(types.JoinOneToOne, target, sourceColumn, targetColumn)
}

func (q *Query) join(mode types.JoinMode, target, sourceColumn string, targetColumn []string) *Query {
	if q.err != nil {
		return q
	}
	if target == "" {
		q.err = usage(msgTarget)
		return q
	}
	if sourceColumn == "" {
		q.err = usage(msgSourceColumn)
		return q
	}
	j := types.Join{
		Mode:         mode,
		Type:         types.InnerJoin,
		Target:       ParseTableRef(target),
		SourceColumn: sourceColumn,
		TargetColumn: sourceColumn,
	}
	if len(targetColumn) > 0 && targetColumn[0] != "" {
		j.TargetColumn = targetColumn[0]
	}
	if j.Target.Schema == "" {
		j.Target.Schema = q.table.Schema()
	}
	q.p.Joins = append(q.p.Joins, j)
	return q
}

// Group partitions the rows by columns. Aggregations are added with Count,
// Sum, Min, Max and Avg.
func (q *Query) Group(columns ...string) *Query {
	if q.err != nil {
		return q
	}
	if len(columns) == 0 {
		q.err = usage(msgGrouping)
		return q
	}
	for _, c := range columns {
		if c == "" {
			q.err = usage(msgGrouping)
			return q
		}
	}
	g := types.Group{Columns: append([]string(nil), columns...)}
	if q.p.Group != nil {
		g.Aggregations = q.p.Group.Aggregations
	}
	q.p.Group = &g
	return q
}

// Count adds a row count per group.
func (q *Query) Count(cfg ...Agg) *Query {
	return q.aggregate(types.AggCount, cfg)
}

// Sum adds the sum of a column per group.
func (q *Query) Sum(cfg ...Agg) *Query {
	return q.aggregate(types.AggSum, cfg)
}

// Min adds the smallest value of a column per group.
func (q *Query) Min(cfg ...Agg) *Query {
	return q.aggregate(types.AggMin, cfg)
}

// Max adds the largest value of a column per group.
func (q *Query) Max(cfg ...Agg) *Query {
	return q.aggregate(types.AggMax, cfg)
}

// Avg adds the mean of a column per group.
func (q *Query) Avg(cfg ...Agg) *Query {
	return q.aggregate(types.AggAvg, cfg)
}

func (q *Query) aggregate(fn types.AggFunc, cfg []Agg) *Query {
	if q.err != nil {
		return q
	}
	if q.p.Group == nil {
		q.err = usage(msgNoGrouping)
		return q
	}
	var c Agg
	if len(cfg) > 0 {
		c = cfg[0]
	}

	a := types.Aggregation{Func: fn, Column: c.Column, Alias: c.Alias}
	if fn == types.AggCount {
		a.Column = types.AllColumns
	} else if a.Column == "" {
		q.err = usage(msgColumn)
		return q
	}
	if a.Alias == "" {
		a.Alias = string(fn)
	}
	for _, other := range q.p.Group.Aggregations {
		if other.Alias == a.Alias {
			q.err = usage(fmt.Sprintf("Duplicate aggregation alias: %s", a.Alias))
			return q
		}
	}
	if c.Filter != nil {
		f, err := ParseFilter(c.Filter)
		if err != nil {
			q.err = err
			return q
		}
		a.Filter = &f
	}
	q.p.Group.Aggregations = append(q.p.Group.Aggregations, a)
	return q
}

// Find runs the query. A filter given here is AND-combined with the
// accumulated one for this call only.
func (q *Query) Find(ctx context.Context, filter ...M) (*Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	p := q.p.Clone()
	if len(filter) > 0 && filter[0] != nil {
		f, err := q.table.filter(filter[:1])
		if err != nil {
			return nil, err
		}
		p.Filter = p.Filter.And(f)
	}
	return q.table.run(ctx, p)
}

// FindOne runs the query and returns its first row.
func (q *Query) FindOne(ctx context.Context, filter ...M) (Row, bool, error) {
	res, err := q.Find(ctx, filter...)
	if err != nil {
		return Row{}, false, err
	}
	row, ok := res.First()
	return row, ok, nil
}

// FindAll runs the query without its filter.
func (q *Query) FindAll(ctx context.Context) (*Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	p := q.p.Clone()
	p.Filter = Filter{}
	return q.table.run(ctx, p)
}

// Run executes the query in its own goroutine and passes the outcome to
// handler exactly once. Usage errors are returned without calling it.
func (q *Query) Run(ctx context.Context, handler Handler) error {
	if handler == nil {
		return usage(msgCallback)
	}
	if q.err != nil {
		return q.err
	}
	p := q.p.Clone()
	go func() {
		handler(q.table.run(ctx, p))
	}()
	return nil
}

// run reads the source and join target rows and evaluates p over them.
func (t *Table) run(ctx context.Context, p Pipeline) (*Result, error) {
	b, err := t.db.backend()
	if err != nil {
		return nil, err
	}
	base, err := scanRows(ctx, b, p.Table, p.Filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.Table, err)
	}
	targets := make(map[TableRef][]Row, len(p.Joins))
	for _, j := range p.Joins {
		if _, done := targets[j.Target]; done {
			continue
		}
		if _, ok, err := b.Table(ctx, j.Target); err != nil {
			return nil, fmt.Errorf("query %s: %w", p.Table, err)
		} else if !ok {
			return nil, fmt.Errorf("query %s: %w: %s", p.Table, ErrNoTable, j.Target)
		}
		rows, err := scanRows(ctx, b, j.Target, Filter{})
		if err != nil {
			return nil, fmt.Errorf("query %s: join %s: %w", p.Table, j.Target, err)
		}
		targets[j.Target] = rows
	}
	rows, err := eval.Execute(p, base, targets)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.Table, err)
	}
	return types.NewResult(rows), nil
}

func scanRows(ctx context.Context, b Backend, ref TableRef, hint Filter) ([]Row, error) {
	stored, err := b.Scan(ctx, ref, hint)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(stored))
	for i, s := range stored {
		rows[i] = s.Row
	}
	return rows, nil
}
