package vdba

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Config configures a connection.
type Config struct {
	// Database names the database the connection works on.
	Database string `mapstructure:"database"`

	// DSN is the backend-specific data source name. Embedded backends
	// ignore it.
	DSN string `mapstructure:"dsn"`

	// Logger receives connection and statement logs. Nil disables logging.
	Logger *zap.Logger `mapstructure:"-"`
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// StoredRow is a row together with the identity its backend assigned.
// Identities grow with insertion order.
type StoredRow struct {
	ID  int64
	Row Row
}

// Backend is the storage collaborator of a connection. It stores table and
// index definitions and rows, and nothing more: constraint checks, filter
// evaluation, joins and aggregation happen above it.
//
// Backends must be safe for concurrent use.
type Backend interface {
	// Address describes where the backend lives, for display.
	Address() string

	// CreateTable stores def. It returns ErrTableExists if the table exists.
	CreateTable(ctx context.Context, def TableDef) error
	// DropTable removes a table, its rows and its indexes. Unknown tables
	// are ignored.
	DropTable(ctx context.Context, ref TableRef) error
	// Table returns the definition of a table.
	Table(ctx context.Context, ref TableRef) (TableDef, bool, error)

	// Scan returns the rows of a table in insertion order. The hint is the
	// filter the caller will apply; a backend may use it to skip rows that
	// cannot match, and may ignore it.
	Scan(ctx context.Context, ref TableRef, hint Filter) ([]StoredRow, error)
	// Insert appends rows, each holding every column of the table.
	Insert(ctx context.Context, ref TableRef, rows []Row) error
	// Replace overwrites rows by identity.
	Replace(ctx context.Context, ref TableRef, rows []StoredRow) error
	// Delete removes rows by identity.
	Delete(ctx context.Context, ref TableRef, ids []int64) error
	// Truncate removes every row.
	Truncate(ctx context.Context, ref TableRef) error

	// CreateIndex stores ix. It returns ErrIndexExists if an index with the
	// same schema and name exists.
	CreateIndex(ctx context.Context, ix IndexDef) error
	// DropIndex removes an index. Unknown indexes are ignored.
	DropIndex(ctx context.Context, schema, name string) error
	// Index returns the definition of an index.
	Index(ctx context.Context, schema, name string) (IndexDef, bool, error)
	// Indexes returns the indexes of a table.
	Indexes(ctx context.Context, ref TableRef) ([]IndexDef, error)

	// Close releases the backend.
	Close() error
}

// Driver opens backends.
type Driver interface {
	Name() string
	Aliases() []string
	Connect(ctx context.Context, cfg Config) (Backend, error)
}

// Registry resolves drivers by name or alias.
type Registry struct {
	drivers []Driver
	byName  map[string]Driver
}

// NewRegistry returns a registry of drivers. Later drivers do not replace
// names or aliases already taken.
func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{byName: make(map[string]Driver)}
	for _, d := range drivers {
		r.Register(d)
	}
	return r
}

// Register adds a driver.
func (r *Registry) Register(d Driver) {
	if d == nil {
		return
	}
	r.drivers = append(r.drivers, d)
	for _, n := range append([]string{d.Name()}, d.Aliases()...) {
		key := strings.ToLower(n)
		if _, taken := r.byName[key]; !taken {
			r.byName[key] = d
		}
	}
}

// Lookup returns the driver registered under name or alias. Matching is
// case-insensitive.
func (r *Registry) Lookup(name string) (Driver, bool) {
	d, ok := r.byName[strings.ToLower(name)]
	return d, ok
}

// Drivers returns the registered drivers in registration order.
func (r *Registry) Drivers() []Driver {
	return slices.Clone(r.drivers)
}

// Names returns the registered driver names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.drivers))
	for i, d := range r.drivers {
		names[i] = d.Name()
	}
	slices.Sort(names)
	return names
}
