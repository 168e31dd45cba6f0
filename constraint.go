package vdba

import (
	"fmt"
	"strings"

	"github.com/zoobzio/vdba/internal/eval"
)

// uniqueKeys returns the column tuples that must not repeat in a table:
// its primary key, its unique columns and its unique indexes.
func uniqueKeys(def TableDef, indexes []IndexDef) []IndexDef {
	var keys []IndexDef
	var pk []string
	for _, c := range def.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
		if c.Unique && !c.PrimaryKey {
			keys = append(keys, IndexDef{Name: c.Name, Columns: []string{c.Name}, Unique: true})
		}
	}
	if len(pk) > 0 {
		keys = append([]IndexDef{{Name: "primary key", Columns: pk, Unique: true}}, keys...)
	}
	for _, ix := range indexes {
		if ix.Unique {
			keys = append(keys, ix)
		}
	}
	return keys
}

// checkUnique fails if two rows share a key tuple. Tuples holding a null
// never collide.
func checkUnique(keys []IndexDef, rows []StoredRow) error {
	for _, k := range keys {
		seen := make(map[string]bool, len(rows))
		for _, r := range rows {
			if hasNull(r.Row, k.Columns) {
				continue
			}
			key := eval.TupleKey(r.Row, k.Columns)
			if seen[key] {
				return fmt.Errorf("%w: duplicate %s (%s)", ErrConstraint, k.Name, strings.Join(k.Columns, ", "))
			}
			seen[key] = true
		}
	}
	return nil
}

func hasNull(r Row, cols []string) bool {
	for _, c := range cols {
		if r.Value(c).IsNull() {
			return true
		}
	}
	return false
}

// checkNotNull fails if r holds null in a column that does not accept it.
func checkNotNull(def TableDef, r Row) error {
	for _, c := range def.Columns {
		if !c.Nullable && r.Value(c.Name).IsNull() {
			return fmt.Errorf("%w: %s.%s must not be null", ErrConstraint, def.Ref(), c.Name)
		}
	}
	return nil
}
