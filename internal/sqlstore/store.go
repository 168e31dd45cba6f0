// Package sqlstore implements a backend over database/sql. Each table is a
// physical table with a hidden sequence column, and table and index
// definitions live in a catalog table as JSON.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
)

// Options configures a store.
type Options struct {
	// DriverName is the database/sql driver to open.
	DriverName string
	// DSN is passed to sql.Open.
	DSN string
	// Address is shown in place of the DSN, which may hold credentials.
	Address string
	// Dialect renders statements.
	Dialect render.Dialect
	// MaxOpenConns limits the pool when positive.
	MaxOpenConns int
	// Logger receives statement logs at debug level.
	Logger *zap.Logger
}

// Store is a vdba.Backend over a SQL database.
type Store struct {
	db      *sql.DB
	dialect render.Dialect
	log     *zap.Logger
	address string

	mu     sync.Mutex
	closed bool
}

var _ vdba.Backend = (*Store)(nil)

// Open opens the database, checks it is reachable and creates the catalog.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Dialect == nil {
		return nil, fmt.Errorf("sqlstore: dialect is required")
	}
	db, err := sql.Open(opts.DriverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.DriverName, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	s, err := New(ctx, db, opts.Dialect, opts.Logger, opts.Address)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The store owns db from then on.
func New(ctx context.Context, db *sql.DB, dialect render.Dialect, log *zap.Logger, address string) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		db:      db,
		dialect: dialect,
		log:     log.With(zap.String("dialect", dialect.Name())),
		address: address,
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", dialect.Name(), err)
	}
	stmt, err := render.CreateCatalog(dialect)
	if err != nil {
		return nil, err
	}
	if err := s.exec(ctx, db, stmt); err != nil {
		return nil, fmt.Errorf("create catalog: %w", err)
	}
	return s, nil
}

// Address returns the display address.
func (s *Store) Address() string { return s.address }

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return vdba.ErrClosed
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) exec(ctx context.Context, q querier, stmt string, args ...any) error {
	s.log.Debug("exec", zap.String("sql", stmt), zap.Int("args", len(args)))
	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("%s: %w", firstWords(stmt), err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q querier, stmt string, args ...any) (*sql.Rows, error) {
	s.log.Debug("query", zap.String("sql", stmt), zap.Int("args", len(args)))
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", firstWords(stmt), err)
	}
	return rows, nil
}

// tx runs fn in a transaction, committing when fn succeeds.
func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := s.check(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.log.Warn("rollback failed", zap.Error(rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// firstWords labels statement errors without dumping the statement.
func firstWords(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.ToLower(strings.Join(fields, " "))
}
