package vdba

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Server describes the backend a connection talks to.
type Server struct {
	Driver  string
	Address string
}

// Connection binds a driver and a configuration to one database. It starts
// closed; Open and Close are idempotent.
type Connection struct {
	driver Driver
	cfg    Config
	log    *zap.Logger
	db     *Database

	mu      sync.RWMutex
	backend Backend
	address string
}

// NewConnection returns a closed connection.
func NewConnection(drv Driver, cfg Config) (*Connection, error) {
	if drv == nil || cfg.Database == "" {
		return nil, usage(msgConfiguration)
	}
	cx := &Connection{
		driver: drv,
		cfg:    cfg,
		log:    cfg.logger().With(zap.String("driver", drv.Name()), zap.String("database", cfg.Database)),
	}
	cx.db = &Database{name: cfg.Database, cx: cx}
	return cx, nil
}

// OpenConnection returns an opened connection.
func OpenConnection(ctx context.Context, drv Driver, cfg Config) (*Connection, error) {
	cx, err := NewConnection(drv, cfg)
	if err != nil {
		return nil, err
	}
	if err := cx.Open(ctx); err != nil {
		return nil, err
	}
	return cx, nil
}

// Open connects to the backend. Opening an open connection does nothing.
func (cx *Connection) Open(ctx context.Context) error {
	cx.mu.Lock()
	defer cx.mu.Unlock()
	if cx.backend != nil {
		return nil
	}
	b, err := cx.driver.Connect(ctx, cx.cfg)
	if err != nil {
		return fmt.Errorf("open %s connection: %w", cx.driver.Name(), err)
	}
	cx.backend = b
	cx.address = b.Address()
	cx.log.Info("connection opened", zap.String("address", cx.address))
	return nil
}

// Close disconnects from the backend. Closing a closed connection does
// nothing.
func (cx *Connection) Close(_ context.Context) error {
	cx.mu.Lock()
	defer cx.mu.Unlock()
	if cx.backend == nil {
		return nil
	}
	err := cx.backend.Close()
	cx.backend = nil
	cx.log.Info("connection closed")
	if err != nil {
		return fmt.Errorf("close %s connection: %w", cx.driver.Name(), err)
	}
	return nil
}

// Connected reports whether the connection is open.
func (cx *Connection) Connected() bool {
	cx.mu.RLock()
	defer cx.mu.RUnlock()
	return cx.backend != nil
}

// Server describes the backend. Address is empty until the connection has
// been opened once.
func (cx *Connection) Server() Server {
	cx.mu.RLock()
	defer cx.mu.RUnlock()
	return Server{Driver: cx.driver.Name(), Address: cx.address}
}

// Config returns the connection configuration.
func (cx *Connection) Config() Config { return cx.cfg }

// Database returns the database the connection works on.
func (cx *Connection) Database() *Database { return cx.db }

// Backend returns the open backend or ErrClosed.
func (cx *Connection) Backend() (Backend, error) {
	cx.mu.RLock()
	defer cx.mu.RUnlock()
	if cx.backend == nil {
		return nil, ErrClosed
	}
	return cx.backend, nil
}
