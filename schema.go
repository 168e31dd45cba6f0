package vdba

import (
	"context"
	"errors"
	"fmt"

	"github.com/zoobzio/dbml"
)

// dbmlTypes maps column types onto DBML column types.
var dbmlTypes = map[ColumnType]string{
	TypeText:     "varchar",
	TypeInteger:  "bigint",
	TypeSequence: "bigserial",
	TypeReal:     "double",
	TypeBoolean:  "boolean",
	TypeDate:     "date",
	TypeDatetime: "timestamp",
	TypeTextSet:  "varchar[]",
	TypeIntSet:   "bigint[]",
}

// Project describes table definitions as a DBML project. Tables are named
// by their qualified name.
func Project(name string, defs ...TableDef) *dbml.Project {
	project := dbml.NewProject(name)
	for _, def := range defs {
		table := dbml.NewTable(def.Ref().String())
		for _, c := range def.Columns {
			table.AddColumn(dbml.NewColumn(c.Name, dbmlTypes[c.Type]))
		}
		project.AddTable(table)
	}
	return project
}

// Verify checks that every table and column of project exists in the
// database. Table names in the project may be qualified by schema.
func (db *Database) Verify(ctx context.Context, project *dbml.Project) error {
	if project == nil {
		return usage(msgConfiguration)
	}
	var errs []error
	for _, table := range project.Tables {
		t, err := db.FindTable(ctx, table.Name)
		if err != nil {
			return err
		}
		if t == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoTable, table.Name))
			continue
		}
		for _, col := range table.Columns {
			if _, ok := t.def.Lookup(col.Name); !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s", ErrNoColumn, table.Name, col.Name))
			}
		}
	}
	return errors.Join(errs...)
}
