package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
)

// lookup reads one catalog body into dst.
func (s *Store) lookup(ctx context.Context, q querier, kind, schema, name string, dst any) (bool, error) {
	stmt := render.CatalogSelect(s.dialect)
	s.log.Sugar().Debugw("query", "sql", stmt, "kind", kind, "object", name)
	var body string
	err := q.QueryRowContext(ctx, stmt, kind, schema, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", kind, name, err)
	}
	return true, nil
}

func (s *Store) register(ctx context.Context, q querier, kind, schema, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.exec(ctx, q, render.CatalogInsert(s.dialect), kind, schema, name, string(body))
}

func (s *Store) unregister(ctx context.Context, q querier, kind, schema, name string) error {
	return s.exec(ctx, q, render.CatalogDelete(s.dialect), kind, schema, name)
}

func (s *Store) tableDef(ctx context.Context, q querier, ref vdba.TableRef) (vdba.TableDef, bool, error) {
	var def vdba.TableDef
	ok, err := s.lookup(ctx, q, render.KindTable, ref.Schema, ref.Name, &def)
	return def, ok, err
}

// mustTable returns the definition or a wrapped ErrNoTable.
func (s *Store) mustTable(ctx context.Context, q querier, ref vdba.TableRef) (vdba.TableDef, error) {
	def, ok, err := s.tableDef(ctx, q, ref)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, fmt.Errorf("%w: %s", vdba.ErrNoTable, ref)
	}
	return def, nil
}

func (s *Store) indexes(ctx context.Context, q querier, ref vdba.TableRef) ([]vdba.IndexDef, error) {
	rows, err := s.query(ctx, q, render.CatalogList(s.dialect), render.KindIndex)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []vdba.IndexDef
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var ix vdba.IndexDef
		if err := json.Unmarshal([]byte(body), &ix); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		if ix.TableRef() == ref {
			out = append(out, ix)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(x, y vdba.IndexDef) int { return strings.Compare(x.Name, y.Name) })
	return out, nil
}

// CreateTable creates the physical table and records its definition.
func (s *Store) CreateTable(ctx context.Context, def vdba.TableDef) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		_, ok, err := s.tableDef(ctx, tx, def.Ref())
		if err != nil {
			return err
		}
		if ok {
			return vdba.ErrTableExists
		}
		stmt, err := render.CreateTable(s.dialect, render.TableName(def.Ref()), render.TableColumns(def), []string{render.SeqColumn}, false)
		if err != nil {
			return err
		}
		if err := s.exec(ctx, tx, stmt); err != nil {
			return err
		}
		return s.register(ctx, tx, render.KindTable, def.Schema, def.Name, def)
	})
}

// DropTable drops the table with its indexes.
func (s *Store) DropTable(ctx context.Context, ref vdba.TableRef) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		_, ok, err := s.tableDef(ctx, tx, ref)
		if err != nil || !ok {
			return err
		}
		ixs, err := s.indexes(ctx, tx, ref)
		if err != nil {
			return err
		}
		for _, ix := range ixs {
			if err := s.unregister(ctx, tx, render.KindIndex, ix.Schema, ix.Name); err != nil {
				return err
			}
		}
		if err := s.exec(ctx, tx, render.DropTable(s.dialect, render.TableName(ref))); err != nil {
			return err
		}
		return s.unregister(ctx, tx, render.KindTable, ref.Schema, ref.Name)
	})
}

// Table returns the recorded definition.
func (s *Store) Table(ctx context.Context, ref vdba.TableRef) (vdba.TableDef, bool, error) {
	if err := s.check(); err != nil {
		return vdba.TableDef{}, false, err
	}
	return s.tableDef(ctx, s.db, ref)
}

// CreateIndex creates a physical index and records its definition.
func (s *Store) CreateIndex(ctx context.Context, ix vdba.IndexDef) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := s.mustTable(ctx, tx, ix.TableRef()); err != nil {
			return err
		}
		var existing vdba.IndexDef
		ok, err := s.lookup(ctx, tx, render.KindIndex, ix.Schema, ix.Name, &existing)
		if err != nil {
			return err
		}
		if ok {
			return vdba.ErrIndexExists
		}
		stmt := render.CreateIndex(s.dialect, render.IndexName(ix.Schema, ix.Name), render.TableName(ix.TableRef()), ix.Columns)
		if err := s.exec(ctx, tx, stmt); err != nil {
			return err
		}
		return s.register(ctx, tx, render.KindIndex, ix.Schema, ix.Name, ix)
	})
}

// DropIndex drops a recorded index.
func (s *Store) DropIndex(ctx context.Context, schema, name string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		var ix vdba.IndexDef
		ok, err := s.lookup(ctx, tx, render.KindIndex, schema, name, &ix)
		if err != nil || !ok {
			return err
		}
		stmt := render.DropIndex(s.dialect, render.IndexName(schema, name), render.TableName(ix.TableRef()))
		if err := s.exec(ctx, tx, stmt); err != nil {
			return err
		}
		return s.unregister(ctx, tx, render.KindIndex, schema, name)
	})
}

// Index returns a recorded index.
func (s *Store) Index(ctx context.Context, schema, name string) (vdba.IndexDef, bool, error) {
	if err := s.check(); err != nil {
		return vdba.IndexDef{}, false, err
	}
	var ix vdba.IndexDef
	ok, err := s.lookup(ctx, s.db, render.KindIndex, schema, name, &ix)
	return ix, ok, err
}

// Indexes returns the indexes of a table ordered by name.
func (s *Store) Indexes(ctx context.Context, ref vdba.TableRef) ([]vdba.IndexDef, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.indexes(ctx, s.db, ref)
}
