package types

// Constraint is one condition on a column value: either a literal compared
// for equality or an operator applied to an operand.
type Constraint struct {
	Literal  bool
	Op       Operator
	Operand  Value
	Operands []Value // list operand of $in and $notIn
}

// LiteralConstraint returns an implicit equality constraint.
func LiteralConstraint(v Value) Constraint {
	return Constraint{Literal: true, Op: EQ, Operand: v}
}

// OperatorConstraint returns an explicit operator constraint.
func OperatorConstraint(op Operator, v Value) Constraint {
	return Constraint{Op: op, Operand: v}
}

// ListConstraint returns an $in or $notIn constraint.
func ListConstraint(op Operator, vs []Value) Constraint {
	return Constraint{Op: op, Operands: append([]Value(nil), vs...)}
}

// Predicate binds constraints to a column. All constraints must hold.
type Predicate struct {
	Column      string
	Constraints []Constraint
}

// Filter is a conjunction of predicates. The zero Filter matches every row.
type Filter struct {
	Predicates []Predicate
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool { return len(f.Predicates) == 0 }

// Columns returns the columns the filter constrains.
func (f Filter) Columns() []string {
	cols := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		cols[i] = p.Column
	}
	return cols
}

// And returns the conjunction of f and other.
func (f Filter) And(other Filter) Filter {
	out := Filter{Predicates: make([]Predicate, 0, len(f.Predicates)+len(other.Predicates))}
	out.Predicates = append(out.Predicates, f.Predicates...)
	out.Predicates = append(out.Predicates, other.Predicates...)
	return out
}

// Split separates the predicate on column from the rest.
func (f Filter) Split(column string) (matched, rest Filter) {
	for _, p := range f.Predicates {
		if p.Column == column {
			matched.Predicates = append(matched.Predicates, p)
		} else {
			rest.Predicates = append(rest.Predicates, p)
		}
	}
	return matched, rest
}

// Rename returns f with every predicate on from moved to to.
func (f Filter) Rename(from, to string) Filter {
	out := Filter{Predicates: make([]Predicate, len(f.Predicates))}
	for i, p := range f.Predicates {
		if p.Column == from {
			p.Column = to
		}
		out.Predicates[i] = p
	}
	return out
}

// Assignment is one column update.
type Assignment struct {
	Column  string
	Op      UpdateOp
	Operand Value
}

// Update is an ordered list of assignments.
type Update struct {
	Assignments []Assignment
}

// IsEmpty reports whether the update assigns nothing.
func (u Update) IsEmpty() bool { return len(u.Assignments) == 0 }
