package types

// Operator is a filter comparison operator.
type Operator string

const (
	// Comparison operators.
	EQ Operator = "$eq"
	NE Operator = "$ne"
	GT Operator = "$gt"
	GE Operator = "$ge"
	LT Operator = "$lt"
	LE Operator = "$le"

	// Pattern and membership operators.
	Like        Operator = "$like"
	NotLike     Operator = "$notLike"
	In          Operator = "$in"
	NotIn       Operator = "$notIn"
	Contains    Operator = "$contains"
	NotContains Operator = "$ncontains"
)

// operatorAliases maps accepted spellings onto canonical operators.
var operatorAliases = map[string]Operator{
	"$eq":          EQ,
	"$ne":          NE,
	"$gt":          GT,
	"$ge":          GE,
	"$lt":          LT,
	"$le":          LE,
	"$like":        Like,
	"$notLike":     NotLike,
	"$in":          In,
	"$notIn":       NotIn,
	"$contains":    Contains,
	"$ncontains":   NotContains,
	"$notContains": NotContains,
}

// LookupOperator resolves a filter operator key.
func LookupOperator(key string) (Operator, bool) {
	op, ok := operatorAliases[key]
	return op, ok
}

// IsOrdering reports whether op requires totally ordered operands.
func (op Operator) IsOrdering() bool {
	return op == GT || op == GE || op == LT || op == LE
}

// IsList reports whether op takes a list operand.
func (op Operator) IsList() bool { return op == In || op == NotIn }

// UpdateOp is an update operator.
type UpdateOp string

const (
	OpSet UpdateOp = "$set"
	OpAdd UpdateOp = "$add"
	OpInc UpdateOp = "$inc"
	OpDec UpdateOp = "$dec"
	OpMul UpdateOp = "$mul"
	OpDel UpdateOp = "$del"
)

// LookupUpdateOp resolves an update operator key.
func LookupUpdateOp(key string) (UpdateOp, bool) {
	switch op := UpdateOp(key); op {
	case OpSet, OpAdd, OpInc, OpDec, OpMul, OpDel:
		return op, true
	}
	return "", false
}
