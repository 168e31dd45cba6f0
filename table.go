package vdba

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/zoobzio/vdba/internal/eval"
	"github.com/zoobzio/vdba/internal/types"
)

// Table is a handle on one table of a database.
type Table struct {
	db  *Database
	def TableDef
}

// Name returns the unqualified table name.
func (t *Table) Name() string { return t.def.Name }

// Schema returns the table's schema, or "" if it has none.
func (t *Table) Schema() string { return t.def.Schema }

// Ref returns the qualified reference of the table.
func (t *Table) Ref() TableRef { return t.def.Ref() }

// Def returns the table definition.
func (t *Table) Def() TableDef { return t.def }

// Database returns the owning database.
func (t *Table) Database() *Database { return t.db }

// Insert stores rows. Values are converted to the column types; sequence
// columns left out or null are numbered after the largest stored value.
// Calling Insert without rows is a usage error, an empty batch is not.
func (t *Table) Insert(ctx context.Context, rows ...M) error {
	if rows == nil {
		return usage(msgRows)
	}
	out := make([]Row, len(rows))
	for i, m := range rows {
		if m == nil {
			return usage(msgRows)
		}
		r, err := t.fromRecord(m)
		if err != nil {
			return err
		}
		out[i] = r
	}
	return t.insert(ctx, out)
}

// InsertRows stores rows given as Row values.
func (t *Table) InsertRows(ctx context.Context, rows ...Row) error {
	if rows == nil {
		return usage(msgRows)
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		m := make(M, r.Len())
		for j := 0; j < r.Len(); j++ {
			c, v := r.At(j)
			m[c] = v
		}
		row, err := t.fromRecord(m)
		if err != nil {
			return err
		}
		out[i] = row
	}
	return t.insert(ctx, out)
}

// fromRecord converts m into a row holding every column in declaration order.
func (t *Table) fromRecord(m M) (Row, error) {
	for c := range m {
		if _, ok := t.def.Lookup(c); !ok {
			return Row{}, fmt.Errorf("insert into %s: %w: %s", t.Ref(), ErrNoColumn, c)
		}
	}
	vals := make([]Value, len(t.def.Columns))
	for i, col := range t.def.Columns {
		v, err := ValueOf(m[col.Name])
		if err != nil {
			return Row{}, fmt.Errorf("insert into %s: column %s: %w", t.Ref(), col.Name, err)
		}
		if vals[i], err = col.Coerce(v); err != nil {
			return Row{}, fmt.Errorf("insert into %s: %w", t.Ref(), err)
		}
	}
	return types.NewRow(t.def.ColumnNames(), vals), nil
}

func (t *Table) insert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	b, err := t.db.backend()
	if err != nil {
		return err
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	stored, err := b.Scan(ctx, t.Ref(), Filter{})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", t.Ref(), err)
	}
	indexes, err := b.Indexes(ctx, t.Ref())
	if err != nil {
		return fmt.Errorf("insert into %s: %w", t.Ref(), err)
	}

	rows = t.number(stored, rows)
	all := stored
	for _, r := range rows {
		if err := checkNotNull(t.def, r); err != nil {
			return fmt.Errorf("insert into %s: %w", t.Ref(), err)
		}
		all = append(all, StoredRow{Row: r})
	}
	if err := checkUnique(uniqueKeys(t.def, indexes), all); err != nil {
		return fmt.Errorf("insert into %s: %w", t.Ref(), err)
	}

	if err := b.Insert(ctx, t.Ref(), rows); err != nil {
		return fmt.Errorf("insert into %s: %w", t.Ref(), err)
	}
	t.db.log().Debug("rows inserted", zap.Stringer("table", t.Ref()), zap.Int("rows", len(rows)))
	return nil
}

// number fills null sequence columns.
func (t *Table) number(stored []StoredRow, rows []Row) []Row {
	for _, col := range t.def.Columns {
		if col.Type != types.TypeSequence {
			continue
		}
		var last int64
		for _, s := range stored {
			if v := s.Row.Value(col.Name); !v.IsNull() && v.AsInt() > last {
				last = v.AsInt()
			}
		}
		for _, r := range rows {
			if v := r.Value(col.Name); !v.IsNull() && v.AsInt() > last {
				last = v.AsInt()
			}
		}
		for i, r := range rows {
			if r.Value(col.Name).IsNull() {
				last++
				rows[i] = r.Set(col.Name, types.Int(last))
			}
		}
	}
	return rows
}

// Truncate removes every row.
func (t *Table) Truncate(ctx context.Context) error {
	b, err := t.db.backend()
	if err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err := b.Truncate(ctx, t.Ref()); err != nil {
		return fmt.Errorf("truncate %s: %w", t.Ref(), err)
	}
	return nil
}

// Remove deletes the rows matching filter, or every row without a filter.
// It returns the number of rows removed.
func (t *Table) Remove(ctx context.Context, filter ...M) (int, error) {
	f, err := t.filter(filter)
	if err != nil {
		return 0, err
	}
	b, err := t.db.backend()
	if err != nil {
		return 0, err
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	stored, err := b.Scan(ctx, t.Ref(), f)
	if err != nil {
		return 0, fmt.Errorf("remove from %s: %w", t.Ref(), err)
	}
	var ids []int64
	for _, s := range stored {
		if eval.Match(s.Row, f) {
			ids = append(ids, s.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := b.Delete(ctx, t.Ref(), ids); err != nil {
		return 0, fmt.Errorf("remove from %s: %w", t.Ref(), err)
	}
	t.db.log().Debug("rows removed", zap.Stringer("table", t.Ref()), zap.Int("rows", len(ids)))
	return len(ids), nil
}

// Update applies update to the rows matching filter and returns the number
// of rows changed. A nil filter matches every row.
func (t *Table) Update(ctx context.Context, filter, update M) (int, error) {
	f, err := t.filter([]M{filter})
	if err != nil {
		return 0, err
	}
	u, err := ParseUpdate(update)
	if err != nil {
		return 0, err
	}
	for _, a := range u.Assignments {
		if _, ok := t.def.Lookup(a.Column); !ok {
			return 0, fmt.Errorf("update %s: %w: %s", t.Ref(), ErrNoColumn, a.Column)
		}
	}
	if err := eval.CheckUpdate(u, t.def.Lookup); err != nil {
		return 0, usage(msgInvalidUpdate + err.Error())
	}
	b, err := t.db.backend()
	if err != nil {
		return 0, err
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	stored, err := b.Scan(ctx, t.Ref(), Filter{})
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
	}
	indexes, err := b.Indexes(ctx, t.Ref())
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
	}

	var changed []StoredRow
	all := make([]StoredRow, len(stored))
	for i, s := range stored {
		all[i] = s
		if !eval.Match(s.Row, f) {
			continue
		}
		r, err := eval.Apply(s.Row, u, t.def.Lookup)
		if err != nil {
			return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
		}
		if r, err = t.coerce(r); err != nil {
			return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
		}
		if err := checkNotNull(t.def, r); err != nil {
			return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
		}
		all[i].Row = r
		changed = append(changed, StoredRow{ID: s.ID, Row: r})
	}
	if len(changed) == 0 {
		return 0, nil
	}
	if err := checkUnique(uniqueKeys(t.def, indexes), all); err != nil {
		return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
	}
	if err := b.Replace(ctx, t.Ref(), changed); err != nil {
		return 0, fmt.Errorf("update %s: %w", t.Ref(), err)
	}
	t.db.log().Debug("rows updated", zap.Stringer("table", t.Ref()), zap.Int("rows", len(changed)))
	return len(changed), nil
}

func (t *Table) coerce(r Row) (Row, error) {
	for _, col := range t.def.Columns {
		v, err := col.Coerce(r.Value(col.Name))
		if err != nil {
			return Row{}, err
		}
		r = r.Set(col.Name, v)
	}
	return r, nil
}

// filter parses the optional filter argument and checks it against the
// table's columns.
func (t *Table) filter(filter []M) (Filter, error) {
	if len(filter) == 0 {
		return Filter{}, nil
	}
	f, err := ParseFilter(filter[0])
	if err != nil {
		return Filter{}, err
	}
	if err := eval.CheckFilter(f, t.def.Lookup); err != nil {
		return Filter{}, usage(msgInvalidFilter + err.Error())
	}
	return f, nil
}

// Count returns the number of rows.
func (t *Table) Count(ctx context.Context) (int, error) {
	b, err := t.db.backend()
	if err != nil {
		return 0, err
	}
	stored, err := b.Scan(ctx, t.Ref(), Filter{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", t.Ref(), err)
	}
	return len(stored), nil
}

// Query starts a query over the table.
func (t *Table) Query() *Query {
	return newQuery(t)
}

// Find returns the rows matching filter, or every row without a filter.
func (t *Table) Find(ctx context.Context, filter ...M) (*Result, error) {
	return t.Query().Find(ctx, filter...)
}

// FindOne returns the first row matching filter.
func (t *Table) FindOne(ctx context.Context, filter ...M) (Row, bool, error) {
	return t.Query().FindOne(ctx, filter...)
}

// FindAll returns every row.
func (t *Table) FindAll(ctx context.Context) (*Result, error) {
	return t.Query().FindAll(ctx)
}

// Map decodes the rows matching filter into dst, a pointer to a slice of
// structs or maps. Fields bind to columns through the "vdba" tag, or by
// case-insensitive name.
func (t *Table) Map(ctx context.Context, dst any, filter ...M) error {
	if !isPointer(dst) {
		return usage(msgMap)
	}
	res, err := t.Find(ctx, filter...)
	if err != nil {
		return err
	}
	return decode(res.Maps(), dst)
}

// MapAll decodes every row into dst.
func (t *Table) MapAll(ctx context.Context, dst any) error {
	if !isPointer(dst) {
		return usage(msgMap)
	}
	res, err := t.FindAll(ctx)
	if err != nil {
		return err
	}
	return decode(res.Maps(), dst)
}

// MapOne decodes the first row matching filter into dst, a pointer to a
// struct or map. It reports false, leaving dst untouched, if no row matches.
func (t *Table) MapOne(ctx context.Context, dst any, filter ...M) (bool, error) {
	if !isPointer(dst) {
		return false, usage(msgMap)
	}
	row, ok, err := t.FindOne(ctx, filter...)
	if err != nil || !ok {
		return false, err
	}
	return true, decode(row.Map(), dst)
}

func isPointer(dst any) bool {
	rv := reflect.ValueOf(dst)
	return rv.Kind() == reflect.Pointer && !rv.IsNil()
}

func decode(input, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "vdba",
		Result:  dst,
	})
	if err != nil {
		return fmt.Errorf("map rows: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("map rows: %w", err)
	}
	return nil
}

// CreateIndex creates an index on the table.
func (t *Table) CreateIndex(ctx context.Context, name string, columns []string, opts ...IndexOptions) error {
	var o IndexOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return t.db.CreateIndex(ctx, t.Ref().String(), name, columns, o)
}

// FindIndex returns an index of the table's schema.
func (t *Table) FindIndex(ctx context.Context, name string) (IndexDef, bool, error) {
	if name == "" {
		return IndexDef{}, false, usage(msgIndexName)
	}
	return t.db.FindIndex(ctx, t.qualify(name))
}

// HasIndex reports whether an index of the table's schema exists.
func (t *Table) HasIndex(ctx context.Context, name string) (bool, error) {
	_, ok, err := t.FindIndex(ctx, name)
	return ok, err
}

// DropIndex drops an index of the table's schema. Unknown indexes are
// ignored.
func (t *Table) DropIndex(ctx context.Context, name string) error {
	if name == "" {
		return usage(msgIndex)
	}
	return t.db.DropIndex(ctx, t.qualify(name))
}

func (t *Table) qualify(index string) string {
	if t.def.Schema == "" {
		return index
	}
	return t.def.Schema + "." + index
}
