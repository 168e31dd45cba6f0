// Package mysql provides the MySQL driver on go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
	"github.com/zoobzio/vdba/internal/sqlstore"
)

// Dialect renders MySQL and MariaDB statements.
type Dialect struct {
	name string
}

// NewDialect returns a dialect reporting itself under name.
func NewDialect(name string) Dialect { return Dialect{name: name} }

func (d Dialect) Name() string {
	if d.name == "" {
		return "mysql"
	}
	return d.name
}

func (Dialect) Quote(ident string) string { return render.QuoteBacktick(ident) }
func (Dialect) Placeholder(int) string { return "?" }

// Type maps storage classes onto MySQL types. Indexed text is bounded so
// it fits an index key.
func (Dialect) Type(t render.SQLType) string {
	switch t {
	case render.LongText:
		return "LONGTEXT"
	case render.BigInt:
		return "BIGINT"
	case render.Double:
		return "DOUBLE"
	case render.Boolean:
		return "TINYINT(1)"
	}
	return "VARCHAR(255)"
}

func (Dialect) Capabilities() render.Capabilities {
	return render.Capabilities{
		IfNotExists:      true,
		DropIndexOnTable: true,
		NativeBoolean:    false,
	}
}

// Driver opens MySQL-protocol databases.
type Driver struct {
	name    string
	aliases []string
}

// New returns the MySQL driver.
func New() *Driver {
	return NewNamed("mysql")
}

// NewNamed returns a MySQL-protocol driver registered under another name.
func NewNamed(name string, aliases ...string) *Driver {
	return &Driver{name: name, aliases: aliases}
}

func (d *Driver) Name() string { return d.name }
func (d *Driver) Aliases() []string { return d.aliases }

// Connect opens cfg.DSN, a go-sql-driver DSN such as
// "user:pass@tcp(host:3306)/db". It is required.
func (d *Driver) Connect(ctx context.Context, cfg vdba.Config) (vdba.Backend, error) {
	if cfg.DSN == "" {
		return nil, &vdba.UsageError{Message: "Configuration expected."}
	}
	mc, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	return sqlstore.Open(ctx, sqlstore.Options{
		DriverName: "mysql",
		DSN:        mc.FormatDSN(),
		Address:    d.name + "://" + mc.Addr + "/" + cfg.Database,
		Dialect:    NewDialect(d.name),
		Logger:     cfg.Logger,
	})
}
