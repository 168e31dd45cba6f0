// Package vdba provides a uniform database-access API and the reference
// semantics every storage driver must reproduce.
//
// A Driver opens a Backend, the storage collaborator. On top of it the
// package layers connections, databases, tables and queries, and evaluates
// filters, updates, joins and aggregations itself, so every backend returns
// the same rows for the same request.
//
// # Basic Usage
//
//	reg := vdba.NewRegistry(memory.New(), sqlite.New())
//	drv, _ := reg.Lookup("sqlite")
//
//	cx, err := vdba.OpenConnection(ctx, drv, vdba.Config{Database: "test"})
//	if err != nil {
//		return err
//	}
//	defer cx.Close(ctx)
//
//	db := cx.Database()
//	_ = db.CreateTable(ctx, vdba.TableDef{Schema: "sec", Name: "user", Columns: cols})
//	users, _ := db.FindTable(ctx, "sec.user")
//	_ = users.Insert(ctx, vdba.M{"username": "user01", "enabled": true})
//
// # Filters and Updates
//
// Filters and updates are plain records. A literal means equality (or $set
// in an update); an operator object applies an operator:
//
//	users.Find(ctx, vdba.M{"username": vdba.M{"$like": "user_1"}, "enabled": true})
//	users.Update(ctx, vdba.M{"userId": 1}, vdba.M{"password": "new", "logins": vdba.M{"$inc": 1}})
//
// # Queries
//
// Table.Query returns a fluent builder. The first usage error is recorded
// and reported by Err and by every terminal call:
//
//	res, err := sessions.Query().
//		Join("sec.user", "userId").
//		Group("userId").
//		Sum(vdba.Agg{Column: "minutes", Filter: vdba.M{"value": vdba.M{"$gt": 2}}}).
//		Sort("userId").
//		Find(ctx)
package vdba

import (
	"github.com/zoobzio/vdba/internal/eval"
	"github.com/zoobzio/vdba/internal/types"
)

// Value is a typed column value. The zero Value is null.
type Value = types.Value

// Kind identifies the domain of a Value.
type Kind = types.Kind

// Re-export kind constants for public API.
const (
	KindNull     = types.KindNull
	KindBool     = types.KindBool
	KindInt      = types.KindInt
	KindReal     = types.KindReal
	KindText     = types.KindText
	KindDate     = types.KindDate
	KindDatetime = types.KindDatetime
	KindTextSet  = types.KindTextSet
	KindIntSet   = types.KindIntSet
	KindRow      = types.KindRow
)

// Row is an immutable ordered record.
type Row = types.Row

// NewRow builds a row from parallel column and value slices.
func NewRow(cols []string, vals []Value) Row { return types.NewRow(cols, vals) }

// ColumnType is the declared type of a column.
type ColumnType = types.ColumnType

// Re-export column type constants for public API.
const (
	TypeText     = types.TypeText
	TypeInteger  = types.TypeInteger
	TypeReal     = types.TypeReal
	TypeBoolean  = types.TypeBoolean
	TypeDate     = types.TypeDate
	TypeDatetime = types.TypeDatetime
	TypeSequence = types.TypeSequence
	TypeTextSet  = types.TypeTextSet
	TypeIntSet   = types.TypeIntSet
)

// Column describes one column of a table.
type Column = types.Column

// TableDef is the schema of a table.
type TableDef = types.TableDef

// TableRef names a table, optionally qualified by a schema.
type TableRef = types.TableRef

// ParseTableRef splits "schema.name" into a reference.
func ParseTableRef(qn string) TableRef { return types.ParseTableRef(qn) }

// IndexDef describes an index.
type IndexDef = types.IndexDef

// Filter is a parsed filter expression.
type Filter = types.Filter

// Update is a parsed update expression.
type Update = types.Update

// Pipeline is the immutable description of a query.
type Pipeline = types.Pipeline

// Join is one join stage of a pipeline.
type Join = types.Join

// JoinMode selects the output shape of a join.
type JoinMode = types.JoinMode

// Group is the grouping stage of a pipeline.
type Group = types.Group

// Aggregation computes one value per group.
type Aggregation = types.Aggregation

// AggFunc is an aggregate function.
type AggFunc = types.AggFunc

// Limit is the limit stage of a pipeline.
type Limit = types.Limit

// Result is the read-only output of a query.
type Result = types.Result

// Direction represents sort direction.
type Direction = types.Direction

// Re-export direction constants for public API.
const (
	ASC  = types.ASC
	DESC = types.DESC
)

// OrderBy is one sort key.
type OrderBy = types.OrderBy

// Asc sorts column in ascending order.
func Asc(column string) OrderBy { return OrderBy{Column: column, Direction: ASC} }

// Desc sorts column in descending order.
func Desc(column string) OrderBy { return OrderBy{Column: column, Direction: DESC} }

// Operator is a filter operator.
type Operator = types.Operator

// Re-export operator constants for public API.
const (
	EQ          = types.EQ
	NE          = types.NE
	GT          = types.GT
	GE          = types.GE
	LT          = types.LT
	LE          = types.LE
	Like        = types.Like
	NotLike     = types.NotLike
	In          = types.In
	NotIn       = types.NotIn
	Contains    = types.Contains
	NotContains = types.NotContains
)

// Reference semantics. A driver or a test can compute the rows any backend
// must return without opening a connection.

// Match reports whether row satisfies f.
func Match(row Row, f Filter) bool { return eval.Match(row, f) }

// Apply returns row with u applied. def supplies the column types, which
// decide how $add treats a null set column.
func Apply(row Row, u Update, def TableDef) (Row, error) {
	return eval.Apply(row, u, def.Lookup)
}

// JoinRows joins source with target as j describes.
func JoinRows(source, target []Row, j Join) []Row { return eval.Join(source, target, j) }

// Aggregate groups rows and computes the aggregations of g.
func Aggregate(rows []Row, g Group) ([]Row, error) { return eval.Aggregate(rows, g) }

// Execute runs p over base, the rows of p.Table. Join targets are read from
// targets by reference; a missing target fails with ErrNoTable.
func Execute(p Pipeline, base []Row, targets map[TableRef][]Row) ([]Row, error) {
	return eval.Execute(p, base, targets)
}

// CheckFilter validates the operators of f against the columns of def.
func CheckFilter(f Filter, def TableDef) error { return eval.CheckFilter(f, def.Lookup) }

// CheckUpdate validates the operators of u against the columns of def.
func CheckUpdate(u Update, def TableDef) error { return eval.CheckUpdate(u, def.Lookup) }
