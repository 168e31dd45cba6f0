package render

import (
	"strings"
)

// Placeholders renders n placeholders starting at index start.
func Placeholders(d Dialect, start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Placeholder(start + i)
	}
	return strings.Join(ps, ", ")
}

// Insert renders a single-row INSERT.
func Insert(d Dialect, table string, cols []string) string {
	return "INSERT INTO " + d.Quote(table) + " (" + quoteList(d, cols) + ") VALUES (" + Placeholders(d, 1, len(cols)) + ")"
}

// Select renders a SELECT of cols ordered by the sequence column. where may
// be empty.
func Select(d Dialect, table string, cols []string, where string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(quoteList(d, cols))
	b.WriteString(" FROM ")
	b.WriteString(d.Quote(table))
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(d.Quote(SeqColumn))
	return b.String()
}

// MaxSeq renders the query for the highest sequence number of a table.
func MaxSeq(d Dialect, table string) string {
	return "SELECT MAX(" + d.Quote(SeqColumn) + ") FROM " + d.Quote(table)
}

// UpdateRow renders an UPDATE of cols on the row with a given sequence number,
// which is bound last.
func UpdateRow(d Dialect, table string, cols []string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = d.Quote(c) + " = " + d.Placeholder(i+1)
	}
	return "UPDATE " + d.Quote(table) + " SET " + strings.Join(sets, ", ") +
		" WHERE " + d.Quote(SeqColumn) + " = " + d.Placeholder(len(cols)+1)
}

// DeleteRow renders the deletion of one row by sequence number.
func DeleteRow(d Dialect, table string) string {
	return "DELETE FROM " + d.Quote(table) + " WHERE " + d.Quote(SeqColumn) + " = " + d.Placeholder(1)
}

// DeleteAll renders the deletion of every row.
func DeleteAll(d Dialect, table string) string {
	return "DELETE FROM " + d.Quote(table)
}

// CatalogSelect renders the lookup of one catalog entry's body.
func CatalogSelect(d Dialect) string {
	return "SELECT " + d.Quote(CatalogBody) + " FROM " + d.Quote(CatalogTable) +
		" WHERE " + d.Quote(CatalogKind) + " = " + d.Placeholder(1) +
		" AND " + d.Quote(CatalogSchema) + " = " + d.Placeholder(2) +
		" AND " + d.Quote(CatalogObject) + " = " + d.Placeholder(3)
}

// CatalogList renders the listing of every body of one kind.
func CatalogList(d Dialect) string {
	return "SELECT " + d.Quote(CatalogBody) + " FROM " + d.Quote(CatalogTable) +
		" WHERE " + d.Quote(CatalogKind) + " = " + d.Placeholder(1) +
		" ORDER BY " + d.Quote(CatalogSchema) + ", " + d.Quote(CatalogObject)
}

// CatalogInsert renders the insertion of a catalog entry.
func CatalogInsert(d Dialect) string {
	return Insert(d, CatalogTable, []string{CatalogKind, CatalogSchema, CatalogObject, CatalogBody})
}

// CatalogDelete renders the removal of a catalog entry.
func CatalogDelete(d Dialect) string {
	return "DELETE FROM " + d.Quote(CatalogTable) +
		" WHERE " + d.Quote(CatalogKind) + " = " + d.Placeholder(1) +
		" AND " + d.Quote(CatalogSchema) + " = " + d.Placeholder(2) +
		" AND " + d.Quote(CatalogObject) + " = " + d.Placeholder(3)
}
