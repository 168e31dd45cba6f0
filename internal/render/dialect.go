// Package render builds the SQL statements of the relational store for each
// supported dialect.
package render

import (
	"strings"

	"github.com/zoobzio/vdba/internal/types"
)

// SQLType is a storage class every dialect maps to a concrete column type.
type SQLType int

const (
	Key      SQLType = iota // text short enough to index
	LongText                // unbounded text
	BigInt                  // 64-bit integer
	Double                  // 64-bit float
	Boolean                 // boolean or its closest integer type
)

// Dialect describes one SQL engine.
type Dialect interface {
	// Name identifies the dialect in errors and logs.
	Name() string
	// Quote quotes an identifier.
	Quote(ident string) string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// Type returns the column type of a storage class.
	Type(t SQLType) string
	// Capabilities reports optional syntax.
	Capabilities() Capabilities
}

// Guard is implemented by dialects without CREATE TABLE IF NOT EXISTS.
type Guard interface {
	// IfNotExists wraps stmt so it only runs when table is missing.
	IfNotExists(table, stmt string) string
}

// SeqColumn is the hidden column holding row identity and insertion order.
const SeqColumn = "_seq"

// CatalogTable stores table and index definitions.
const CatalogTable = "vdba_catalog"

// TableName returns the physical name of a table.
func TableName(ref types.TableRef) string {
	if ref.Schema == "" {
		return ref.Name
	}
	return ref.Schema + "__" + ref.Name
}

// IndexName returns the physical name of an index.
func IndexName(schema, name string) string {
	if schema == "" {
		return "ix__" + name
	}
	return "ix__" + schema + "__" + name
}

// StorageType returns the storage class of a column type. Dates and sets
// are stored as text.
func StorageType(t types.ColumnType) SQLType {
	switch t {
	case types.TypeInteger, types.TypeSequence:
		return BigInt
	case types.TypeReal:
		return Double
	case types.TypeBoolean:
		return Boolean
	case types.TypeTextSet, types.TypeIntSet:
		return LongText
	}
	return Key
}

// quoteWith doubles every closing quote inside ident.
func quoteWith(open, close, ident string) string {
	return open + strings.ReplaceAll(ident, close, close+close) + close
}

// QuoteDouble quotes with ANSI double quotes.
func QuoteDouble(ident string) string { return quoteWith(`"`, `"`, ident) }

// QuoteBacktick quotes with MySQL backticks.
func QuoteBacktick(ident string) string { return quoteWith("`", "`", ident) }

// QuoteBracket quotes with SQL Server brackets.
func QuoteBracket(ident string) string { return quoteWith("[", "]", ident) }
