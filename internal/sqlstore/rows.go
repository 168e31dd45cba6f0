package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
)

// Scan selects the rows of a table, pushing the part of hint the database
// can evaluate into the WHERE clause.
func (s *Store) Scan(ctx context.Context, ref vdba.TableRef, hint vdba.Filter) ([]vdba.StoredRow, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	def, err := s.mustTable(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	where := render.Where(s.dialect, def, hint, 1)
	for _, skipped := range where.Skipped {
		s.log.Debug("filter not pushed down", zap.Stringer("table", ref), zap.Error(skipped))
	}
	cols := append([]string{render.SeqColumn}, def.ColumnNames()...)
	rows, err := s.query(ctx, s.db, render.Select(s.dialect, render.TableName(ref), cols, where.Clause), where.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vdba.StoredRow
	names := def.ColumnNames()
	for rows.Next() {
		raw := make([]any, len(cols))
		dst := make([]any, len(cols))
		for i := range raw {
			dst[i] = &raw[i]
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ref, err)
		}
		id, err := render.Decode(raw[0], vdba.TypeInteger)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", ref, err)
		}
		vals := make([]vdba.Value, len(def.Columns))
		for i, c := range def.Columns {
			if vals[i], err = render.Decode(raw[i+1], c.Type); err != nil {
				return nil, fmt.Errorf("scan %s.%s: %w", ref, c.Name, err)
			}
		}
		out = append(out, vdba.StoredRow{ID: id.AsInt(), Row: vdba.NewRow(names, vals)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeRow returns the arguments for every declared column of def.
func encodeRow(def vdba.TableDef, r vdba.Row) ([]any, error) {
	args := make([]any, len(def.Columns))
	for i, c := range def.Columns {
		arg, err := render.Encode(r.Value(c.Name), c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		args[i] = arg
	}
	return args, nil
}

// Insert appends rows, numbering them after the highest stored sequence.
func (s *Store) Insert(ctx context.Context, ref vdba.TableRef, rows []vdba.Row) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		def, err := s.mustTable(ctx, tx, ref)
		if err != nil {
			return err
		}
		table := render.TableName(ref)
		var last sql.NullInt64
		stmt := render.MaxSeq(s.dialect, table)
		s.log.Debug("query", zap.String("sql", stmt))
		if err := tx.QueryRowContext(ctx, stmt).Scan(&last); err != nil {
			return fmt.Errorf("read sequence of %s: %w", ref, err)
		}
		next := last.Int64

		insert := render.Insert(s.dialect, table, append([]string{render.SeqColumn}, def.ColumnNames()...))
		for _, r := range rows {
			args, err := encodeRow(def, r)
			if err != nil {
				return err
			}
			next++
			if err := s.exec(ctx, tx, insert, append([]any{next}, args...)...); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace rewrites every declared column of the given rows.
func (s *Store) Replace(ctx context.Context, ref vdba.TableRef, rows []vdba.StoredRow) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		def, err := s.mustTable(ctx, tx, ref)
		if err != nil {
			return err
		}
		update := render.UpdateRow(s.dialect, render.TableName(ref), def.ColumnNames())
		for _, r := range rows {
			args, err := encodeRow(def, r.Row)
			if err != nil {
				return err
			}
			if err := s.exec(ctx, tx, update, append(args, r.ID)...); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes rows by sequence number.
func (s *Store) Delete(ctx context.Context, ref vdba.TableRef, ids []int64) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := s.mustTable(ctx, tx, ref); err != nil {
			return err
		}
		del := render.DeleteRow(s.dialect, render.TableName(ref))
		for _, id := range ids {
			if err := s.exec(ctx, tx, del, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Truncate removes every row. Sequence numbers restart.
func (s *Store) Truncate(ctx context.Context, ref vdba.TableRef) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := s.mustTable(ctx, tx, ref); err != nil {
			return err
		}
		return s.exec(ctx, tx, render.DeleteAll(s.dialect, render.TableName(ref)))
	})
}
