package types

import "fmt"

// JoinMode selects the output shape of a join.
type JoinMode string

const (
	JoinFlat     JoinMode = "none" // target columns merged into the source row
	JoinOneToOne JoinMode = "1-1"  // target row nested under the target table name
)

// JoinType selects how unmatched rows are treated. Only inner joins exist.
type JoinType string

const InnerJoin JoinType = "inner"

// Join describes one join stage.
type Join struct {
	Mode         JoinMode
	Type         JoinType
	Target       TableRef
	SourceColumn string
	TargetColumn string
}

// As returns the property a 1-1 join nests the target row under.
func (j Join) As() string { return j.Target.Name }

// AggFunc is an aggregate function.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
	AggAvg   AggFunc = "avg"
)

// AggregateValue is the reserved filter key naming an aggregation's result.
const AggregateValue = "value"

// AllColumns is the column of an aggregation that ignores values.
const AllColumns = "*"

// Aggregation computes one value per group.
type Aggregation struct {
	Func   AggFunc
	Column string
	Alias  string
	Filter *Filter
}

// RowFilter returns the part of the filter that restricts input rows.
func (a Aggregation) RowFilter() Filter {
	if a.Filter == nil {
		return Filter{}
	}
	_, rest := a.Filter.Split(AggregateValue)
	return rest
}

// Having returns the part of the filter that constrains the result, keyed by alias.
func (a Aggregation) Having() Filter {
	if a.Filter == nil {
		return Filter{}
	}
	matched, _ := a.Filter.Split(AggregateValue)
	return matched.Rename(AggregateValue, a.Alias)
}

// Group partitions rows and aggregates each partition.
type Group struct {
	Columns      []string
	Aggregations []Aggregation
}

// HasFilter reports whether any aggregation carries a filter.
func (g Group) HasFilter() bool {
	for _, a := range g.Aggregations {
		if a.Filter != nil {
			return true
		}
	}
	return false
}

// Filter returns the alias-keyed filter applied to aggregated rows.
func (g Group) Filter() Filter {
	var f Filter
	for _, a := range g.Aggregations {
		f = f.And(a.Having())
	}
	return f
}

// Direction is a sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// OrderBy is one sort key.
type OrderBy struct {
	Column    string
	Direction Direction
}

// Limit selects rows [Start, Start+Count).
type Limit struct {
	Count int
	Start int
}

// Pipeline is the declarative description of a query over one table.
type Pipeline struct {
	Table   TableRef
	Filter  Filter
	Joins   []Join
	Group   *Group
	OrderBy []OrderBy
	Limit   *Limit
}

// Clone returns a deep copy of p.
func (p Pipeline) Clone() Pipeline {
	out := p
	out.Filter = Filter{Predicates: append([]Predicate(nil), p.Filter.Predicates...)}
	out.Joins = append([]Join(nil), p.Joins...)
	out.OrderBy = append([]OrderBy(nil), p.OrderBy...)
	if p.Group != nil {
		g := Group{
			Columns:      append([]string(nil), p.Group.Columns...),
			Aggregations: append([]Aggregation(nil), p.Group.Aggregations...),
		}
		out.Group = &g
	}
	if p.Limit != nil {
		l := *p.Limit
		out.Limit = &l
	}
	return out
}

// Validate checks the pipeline for structural errors.
func (p Pipeline) Validate() error {
	for i, j := range p.Joins {
		if j.Target.Name == "" {
			return fmt.Errorf("join %d has no target table", i)
		}
		if j.SourceColumn == "" || j.TargetColumn == "" {
			return fmt.Errorf("join %d has no key columns", i)
		}
		if j.Mode != JoinFlat && j.Mode != JoinOneToOne {
			return fmt.Errorf("join %d has unknown mode %q", i, j.Mode)
		}
		if j.Type != InnerJoin {
			return fmt.Errorf("join %d has unsupported type %q", i, j.Type)
		}
	}
	if p.Group != nil {
		if len(p.Group.Columns) == 0 {
			return fmt.Errorf("group has no columns")
		}
		aliases := make(map[string]bool, len(p.Group.Aggregations))
		for _, a := range p.Group.Aggregations {
			if aliases[a.Alias] {
				return fmt.Errorf("aggregation alias %q used twice", a.Alias)
			}
			aliases[a.Alias] = true
			if a.Func != AggCount && (a.Column == "" || a.Column == AllColumns) {
				return fmt.Errorf("%s requires a column", a.Func)
			}
		}
	}
	for _, o := range p.OrderBy {
		if o.Direction != ASC && o.Direction != DESC {
			return fmt.Errorf("unknown sort direction %q", o.Direction)
		}
	}
	if p.Limit != nil && (p.Limit.Count < 0 || p.Limit.Start < 0) {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}
