package types

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a column.
type ColumnType string

const (
	TypeText     ColumnType = "text"
	TypeInteger  ColumnType = "integer"
	TypeReal     ColumnType = "real"
	TypeBoolean  ColumnType = "boolean"
	TypeDate     ColumnType = "date"
	TypeDatetime ColumnType = "datetime"
	TypeSequence ColumnType = "sequence"
	TypeTextSet  ColumnType = "set<text>"
	TypeIntSet   ColumnType = "set<integer>"
)

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeInteger, TypeReal, TypeBoolean, TypeDate,
		TypeDatetime, TypeSequence, TypeTextSet, TypeIntSet:
		return true
	}
	return false
}

// IsSet reports whether t is a set type.
func (t ColumnType) IsSet() bool { return t == TypeTextSet || t == TypeIntSet }

// IsNumeric reports whether t holds integers or reals.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeReal || t == TypeSequence
}

// IsOrdered reports whether ordering operators apply to t.
func (t ColumnType) IsOrdered() bool {
	switch t {
	case TypeText, TypeInteger, TypeReal, TypeSequence, TypeDate, TypeDatetime:
		return true
	}
	return false
}

// Column describes one column of a table.
type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Nullable   bool       `json:"nullable"`
	PrimaryKey bool       `json:"pk,omitempty"`
	Unique     bool       `json:"uq,omitempty"`
	Ref        string     `json:"ref,omitempty"`
}

// TableRef names a table, optionally qualified by a schema.
type TableRef struct {
	Schema string
	Name   string
}

// ParseTableRef splits "schema.name" into a reference. A bare name has no schema.
func ParseTableRef(qn string) TableRef {
	if i := strings.LastIndexByte(qn, '.'); i >= 0 {
		return TableRef{Schema: qn[:i], Name: qn[i+1:]}
	}
	return TableRef{Name: qn}
}

// String returns the qualified name.
func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}

// TableDef is the schema of a table.
type TableDef struct {
	Schema  string   `json:"schema,omitempty"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Ref returns the table's reference.
func (d TableDef) Ref() TableRef { return TableRef{Schema: d.Schema, Name: d.Name} }

// Lookup returns the column definition for name.
func (d TableDef) Lookup(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (d TableDef) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the definition for structural errors.
func (d TableDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", d.Ref())
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s has an unnamed column", d.Ref())
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s declares column %q twice", d.Ref(), c.Name)
		}
		seen[c.Name] = true
		if !c.Type.Valid() {
			return fmt.Errorf("column %s.%s has unknown type %q", d.Ref(), c.Name, c.Type)
		}
	}
	return nil
}

// IndexDef describes an index over columns of a table.
type IndexDef struct {
	Schema  string   `json:"schema,omitempty"`
	Name    string   `json:"name"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// TableRef returns the indexed table.
func (ix IndexDef) TableRef() TableRef { return TableRef{Schema: ix.Schema, Name: ix.Table} }
