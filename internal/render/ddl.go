package render

import (
	"strings"

	"github.com/zoobzio/vdba/internal/types"
)

// ColumnSpec is a physical column.
type ColumnSpec struct {
	Name    string
	Type    SQLType
	NotNull bool
}

// TableColumns returns the physical columns of a table: the sequence column
// first, then the declared columns in order. Declared columns are always
// nullable in storage; NOT NULL is enforced before writing.
func TableColumns(def types.TableDef) []ColumnSpec {
	cols := make([]ColumnSpec, 0, len(def.Columns)+1)
	cols = append(cols, ColumnSpec{Name: SeqColumn, Type: BigInt, NotNull: true})
	for _, c := range def.Columns {
		cols = append(cols, ColumnSpec{Name: c.Name, Type: StorageType(c.Type)})
	}
	return cols
}

// CreateTable renders CREATE TABLE with the first column as primary key.
func CreateTable(d Dialect, table string, cols []ColumnSpec, primaryKey []string, ifNotExists bool) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists && d.Capabilities().IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(d.Quote(table))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c.Name))
		b.WriteByte(' ')
		b.WriteString(d.Type(c.Type))
		if c.NotNull {
			b.WriteString(" NOT NULL")
		} else {
			b.WriteString(" NULL")
		}
	}
	if len(primaryKey) > 0 {
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(quoteList(d, primaryKey))
		b.WriteByte(')')
	}
	b.WriteByte(')')
	stmt := b.String()

	if ifNotExists && !d.Capabilities().IfNotExists {
		g, ok := d.(Guard)
		if !ok {
			return "", NewUnsupportedFeatureError(d.Name(), "CREATE TABLE IF NOT EXISTS")
		}
		return g.IfNotExists(table, stmt), nil
	}
	return stmt, nil
}

// DropTable renders DROP TABLE.
func DropTable(d Dialect, table string) string {
	return "DROP TABLE " + d.Quote(table)
}

// CreateIndex renders a plain (non-unique) index; uniqueness is checked on write.
func CreateIndex(d Dialect, index, table string, cols []string) string {
	return "CREATE INDEX " + d.Quote(index) + " ON " + d.Quote(table) + " (" + quoteList(d, cols) + ")"
}

// DropIndex renders DROP INDEX.
func DropIndex(d Dialect, index, table string) string {
	if d.Capabilities().DropIndexOnTable {
		return "DROP INDEX " + d.Quote(index) + " ON " + d.Quote(table)
	}
	return "DROP INDEX " + d.Quote(index)
}

// Catalog columns.
const (
	CatalogKind   = "kind"
	CatalogSchema = "schema_name"
	CatalogObject = "object_name"
	CatalogBody   = "body"
)

// Catalog kinds.
const (
	KindTable = "table"
	KindIndex = "index"
)

// CreateCatalog renders the idempotent creation of the catalog table.
func CreateCatalog(d Dialect) (string, error) {
	cols := []ColumnSpec{
		{Name: CatalogKind, Type: Key, NotNull: true},
		{Name: CatalogSchema, Type: Key, NotNull: true},
		{Name: CatalogObject, Type: Key, NotNull: true},
		{Name: CatalogBody, Type: LongText, NotNull: true},
	}
	return CreateTable(d, CatalogTable, cols, []string{CatalogKind, CatalogSchema, CatalogObject}, true)
}

func quoteList(d Dialect, idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return strings.Join(quoted, ", ")
}
