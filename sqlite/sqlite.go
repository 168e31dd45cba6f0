// Package sqlite provides SQLite drivers: an embedded one on modernc.org/sqlite
// and a libSQL one for Turso and sqld servers.
package sqlite

import (
	"context"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // registers "libsql"
	_ "modernc.org/sqlite"                               // registers "sqlite"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
	"github.com/zoobzio/vdba/internal/sqlstore"
)

// Dialect renders SQLite statements.
type Dialect struct{}

// Name returns "sqlite".
func (Dialect) Name() string { return "sqlite" }

// Quote quotes with double quotes.
func (Dialect) Quote(ident string) string { return render.QuoteDouble(ident) }

// Placeholder returns "?"; arguments bind in order.
func (Dialect) Placeholder(int) string { return "?" }

// Type maps storage classes onto SQLite type affinities.
func (Dialect) Type(t render.SQLType) string {
	switch t {
	case render.BigInt, render.Boolean:
		return "INTEGER"
	case render.Double:
		return "REAL"
	}
	return "TEXT"
}

// Capabilities reports SQLite syntax support.
func (Dialect) Capabilities() render.Capabilities {
	return render.Capabilities{
		IfNotExists:      true,
		DropIndexOnTable: false,
		NativeBoolean:    false,
	}
}

// Driver opens SQLite databases.
type Driver struct {
	name    string
	sqlName string
	aliases []string
	dsn     func(cfg vdba.Config) string
}

// New returns the embedded driver. Without a DSN each database is a
// shared in-memory database named after Config.Database, which lives
// while a connection to it is open.
func New() *Driver {
	return &Driver{
		name:    "sqlite",
		sqlName: "sqlite",
		aliases: []string{"sqlite3"},
		dsn: func(cfg vdba.Config) string {
			if cfg.DSN != "" {
				return cfg.DSN
			}
			return "file:" + cfg.Database + "?mode=memory&cache=shared"
		},
	}
}

// NewLibSQL returns the libSQL driver. The DSN is a libsql:// URL with an
// authToken parameter, or a file: path. Without a DSN the database is the
// local file named after Config.Database.
func NewLibSQL() *Driver {
	return &Driver{
		name:    "libsql",
		sqlName: "libsql",
		aliases: []string{"turso"},
		dsn: func(cfg vdba.Config) string {
			if cfg.DSN != "" {
				return cfg.DSN
			}
			return "file:" + cfg.Database + ".db"
		},
	}
}

// Name returns the driver name.
func (d *Driver) Name() string { return d.name }

// Aliases returns the alternative names of the driver.
func (d *Driver) Aliases() []string { return d.aliases }

// Connect opens the database. SQLite serializes writers, so the pool holds
// a single connection.
func (d *Driver) Connect(ctx context.Context, cfg vdba.Config) (vdba.Backend, error) {
	dsn := d.dsn(cfg)
	return sqlstore.Open(ctx, sqlstore.Options{
		DriverName:   d.sqlName,
		DSN:          dsn,
		Address:      d.name + "://" + cfg.Database,
		Dialect:      Dialect{},
		MaxOpenConns: 1,
		Logger:       cfg.Logger,
	})
}
