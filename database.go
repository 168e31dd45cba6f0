package vdba

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// IndexOptions tune CreateIndex.
type IndexOptions struct {
	// IfNotExists turns an existing index into a no-op instead of an error.
	IfNotExists bool
	// Unique rejects rows that repeat the indexed column tuple.
	Unique bool
}

// Database is the namespace a connection works on. Table names may be
// qualified as "schema.name"; index names are scoped to a schema.
type Database struct {
	name string
	cx   *Connection

	// mu serializes writes so constraint checks see a stable table.
	mu sync.Mutex
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// Connection returns the owning connection.
func (db *Database) Connection() *Connection { return db.cx }

func (db *Database) backend() (Backend, error) { return db.cx.Backend() }

func (db *Database) log() *zap.Logger { return db.cx.log }

// CreateTable creates a table. It returns ErrTableExists if the name is
// taken.
func (db *Database) CreateTable(ctx context.Context, def TableDef) error {
	if def.Name == "" {
		return usage(msgTable)
	}
	if len(def.Columns) == 0 {
		return usage(msgColumns)
	}
	if err := def.Validate(); err != nil {
		return usage(msgInvalidSchema + err.Error())
	}
	b, err := db.backend()
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if err := b.CreateTable(ctx, normalizeDef(def)); err != nil {
		return fmt.Errorf("create table %s: %w", def.Ref(), err)
	}
	db.log().Debug("table created", zap.Stringer("table", def.Ref()))
	return nil
}

// normalizeDef makes primary keys non-nullable.
func normalizeDef(def TableDef) TableDef {
	out := def
	out.Columns = make([]Column, len(def.Columns))
	for i, c := range def.Columns {
		if c.PrimaryKey {
			c.Nullable = false
		}
		out.Columns[i] = c
	}
	return out
}

// DropTable drops a table. Unknown tables are ignored.
func (db *Database) DropTable(ctx context.Context, name string) error {
	if name == "" {
		return usage(msgTable)
	}
	b, err := db.backend()
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	ref := ParseTableRef(name)
	if err := b.DropTable(ctx, ref); err != nil {
		return fmt.Errorf("drop table %s: %w", ref, err)
	}
	return nil
}

// FindTable returns the named table, or nil if it does not exist.
func (db *Database) FindTable(ctx context.Context, name string) (*Table, error) {
	if name == "" {
		return nil, usage(msgTable)
	}
	b, err := db.backend()
	if err != nil {
		return nil, err
	}
	ref := ParseTableRef(name)
	def, ok, err := b.Table(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("find table %s: %w", ref, err)
	}
	if !ok {
		return nil, nil
	}
	return &Table{db: db, def: def}, nil
}

// HasTable reports whether the named table exists.
func (db *Database) HasTable(ctx context.Context, name string) (bool, error) {
	t, err := db.FindTable(ctx, name)
	return t != nil, err
}

// HasTables reports whether every named table exists.
func (db *Database) HasTables(ctx context.Context, names ...string) (bool, error) {
	if len(names) == 0 {
		return false, usage(msgTables)
	}
	for _, n := range names {
		ok, err := db.HasTable(ctx, n)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// CreateIndex creates an index named name over columns of table. The index
// lives in the table's schema.
func (db *Database) CreateIndex(ctx context.Context, table, name string, columns []string, opts IndexOptions) error {
	if table == "" {
		return usage(msgTable)
	}
	if name == "" {
		return usage(msgIndexName)
	}
	if len(columns) == 0 {
		return usage(msgIndexColumns)
	}
	b, err := db.backend()
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	ref := ParseTableRef(table)
	def, ok, err := b.Table(ctx, ref)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("create index %s: %w: %s", name, ErrNoTable, ref)
	}
	for _, c := range columns {
		if _, ok := def.Lookup(c); !ok {
			return fmt.Errorf("create index %s: %w: %s.%s", name, ErrNoColumn, ref, c)
		}
	}

	ix := IndexDef{Schema: ref.Schema, Name: name, Table: ref.Name, Columns: append([]string(nil), columns...), Unique: opts.Unique}
	if _, exists, err := b.Index(ctx, ix.Schema, ix.Name); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	} else if exists {
		if opts.IfNotExists {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, ErrIndexExists)
	}
	if opts.Unique {
		rows, err := b.Scan(ctx, ref, Filter{})
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		if err := checkUnique([]IndexDef{ix}, rows); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	if err := b.CreateIndex(ctx, ix); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	db.log().Debug("index created", zap.String("index", name), zap.Stringer("table", ref))
	return nil
}

// FindIndex returns the named index. The name may be qualified by schema.
func (db *Database) FindIndex(ctx context.Context, name string) (IndexDef, bool, error) {
	if name == "" {
		return IndexDef{}, false, usage(msgIndexName)
	}
	b, err := db.backend()
	if err != nil {
		return IndexDef{}, false, err
	}
	schema, ix := splitIndexName(name)
	def, ok, err := b.Index(ctx, schema, ix)
	if err != nil {
		return IndexDef{}, false, fmt.Errorf("find index %s: %w", name, err)
	}
	return def, ok, nil
}

// HasIndex reports whether the named index exists.
func (db *Database) HasIndex(ctx context.Context, name string) (bool, error) {
	_, ok, err := db.FindIndex(ctx, name)
	return ok, err
}

// DropIndex drops the named index. Unknown indexes are ignored.
func (db *Database) DropIndex(ctx context.Context, name string) error {
	if name == "" {
		return usage(msgIndex)
	}
	b, err := db.backend()
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	schema, ix := splitIndexName(name)
	if err := b.DropIndex(ctx, schema, ix); err != nil {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

func splitIndexName(name string) (schema, ix string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
