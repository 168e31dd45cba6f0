// Package memory provides an in-process driver. Databases live as long as
// the driver value, so data survives closing and reopening a connection.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zoobzio/vdba"
)

// Driver keeps one store per database name.
type Driver struct {
	mu     sync.Mutex
	stores map[string]*store
}

// New returns an empty in-memory driver.
func New() *Driver {
	return &Driver{stores: make(map[string]*store)}
}

// Name returns "memory".
func (d *Driver) Name() string { return "memory" }

// Aliases returns the alternative names of the driver.
func (d *Driver) Aliases() []string { return []string{"mem", "inmemory"} }

// Connect returns a backend on the store of cfg.Database.
func (d *Driver) Connect(_ context.Context, cfg vdba.Config) (vdba.Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.stores[cfg.Database]
	if !ok {
		s = newStore()
		d.stores[cfg.Database] = s
	}
	return &backend{store: s, database: cfg.Database}, nil
}

type indexKey struct {
	schema string
	name   string
}

type table struct {
	def  vdba.TableDef
	rows []vdba.StoredRow
	next int64
}

type store struct {
	mu      sync.RWMutex
	tables  map[vdba.TableRef]*table
	indexes map[indexKey]vdba.IndexDef
}

func newStore() *store {
	return &store{
		tables:  make(map[vdba.TableRef]*table),
		indexes: make(map[indexKey]vdba.IndexDef),
	}
}

// lookup returns the table or a wrapped ErrNoTable. The caller holds s.mu.
func (s *store) lookup(ref vdba.TableRef) (*table, error) {
	t, ok := s.tables[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vdba.ErrNoTable, ref)
	}
	return t, nil
}

// backend is one connection's view of a store.
type backend struct {
	store    *store
	database string

	mu     sync.RWMutex
	closed bool
}

func (b *backend) check() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return vdba.ErrClosed
	}
	return nil
}

func (b *backend) Address() string { return "memory://" + b.database }

func (b *backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *backend) CreateTable(_ context.Context, def vdba.TableDef) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := def.Ref()
	if _, ok := s.tables[ref]; ok {
		return vdba.ErrTableExists
	}
	def.Columns = slices.Clone(def.Columns)
	s.tables[ref] = &table{def: def}
	return nil
}

func (b *backend) DropTable(_ context.Context, ref vdba.TableRef) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, ref)
	for k, ix := range s.indexes {
		if ix.TableRef() == ref {
			delete(s.indexes, k)
		}
	}
	return nil
}

func (b *backend) Table(_ context.Context, ref vdba.TableRef) (vdba.TableDef, bool, error) {
	if err := b.check(); err != nil {
		return vdba.TableDef{}, false, err
	}
	s := b.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[ref]
	if !ok {
		return vdba.TableDef{}, false, nil
	}
	def := t.def
	def.Columns = slices.Clone(t.def.Columns)
	return def, true, nil
}

// Scan applies the hint itself; the rows are in memory already.
func (b *backend) Scan(_ context.Context, ref vdba.TableRef, hint vdba.Filter) ([]vdba.StoredRow, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	s := b.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(ref)
	if err != nil {
		return nil, err
	}
	out := make([]vdba.StoredRow, 0, len(t.rows))
	for _, r := range t.rows {
		if vdba.Match(r.Row, hint) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *backend) Insert(_ context.Context, ref vdba.TableRef, rows []vdba.Row) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(ref)
	if err != nil {
		return err
	}
	for _, r := range rows {
		t.next++
		t.rows = append(t.rows, vdba.StoredRow{ID: t.next, Row: r})
	}
	return nil
}

func (b *backend) Replace(_ context.Context, ref vdba.TableRef, rows []vdba.StoredRow) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(ref)
	if err != nil {
		return err
	}
	byID := make(map[int64]vdba.Row, len(rows))
	for _, r := range rows {
		byID[r.ID] = r.Row
	}
	for i, r := range t.rows {
		if nr, ok := byID[r.ID]; ok {
			t.rows[i].Row = nr
		}
	}
	return nil
}

func (b *backend) Delete(_ context.Context, ref vdba.TableRef, ids []int64) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(ref)
	if err != nil {
		return err
	}
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	t.rows = slices.DeleteFunc(t.rows, func(r vdba.StoredRow) bool { return drop[r.ID] })
	return nil
}

func (b *backend) Truncate(_ context.Context, ref vdba.TableRef) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(ref)
	if err != nil {
		return err
	}
	t.rows = nil
	return nil
}

func (b *backend) CreateIndex(_ context.Context, ix vdba.IndexDef) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(ix.TableRef()); err != nil {
		return err
	}
	k := indexKey{ix.Schema, ix.Name}
	if _, ok := s.indexes[k]; ok {
		return vdba.ErrIndexExists
	}
	ix.Columns = slices.Clone(ix.Columns)
	s.indexes[k] = ix
	return nil
}

func (b *backend) DropIndex(_ context.Context, schema, name string) error {
	if err := b.check(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, indexKey{schema, name})
	return nil
}

func (b *backend) Index(_ context.Context, schema, name string) (vdba.IndexDef, bool, error) {
	if err := b.check(); err != nil {
		return vdba.IndexDef{}, false, err
	}
	s := b.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	ix, ok := s.indexes[indexKey{schema, name}]
	return ix, ok, nil
}

func (b *backend) Indexes(_ context.Context, ref vdba.TableRef) ([]vdba.IndexDef, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	s := b.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []vdba.IndexDef
	for _, ix := range s.indexes {
		if ix.TableRef() == ref {
			out = append(out, ix)
		}
	}
	slices.SortFunc(out, func(x, y vdba.IndexDef) int { return strings.Compare(x.Name, y.Name) })
	return out, nil
}
