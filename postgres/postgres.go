// Package postgres provides the PostgreSQL driver on pgx.
package postgres

import (
	"context"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
	"github.com/zoobzio/vdba/internal/sqlstore"
)

// Dialect renders PostgreSQL statements.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }
func (Dialect) Quote(ident string) string { return render.QuoteDouble(ident) }
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) Type(t render.SQLType) string {
	switch t {
	case render.BigInt:
		return "BIGINT"
	case render.Double:
		return "DOUBLE PRECISION"
	case render.Boolean:
		return "BOOLEAN"
	}
	return "TEXT"
}

func (Dialect) Capabilities() render.Capabilities {
	return render.Capabilities{
		IfNotExists:      true,
		DropIndexOnTable: false,
		NativeBoolean:    true,
	}
}

// Driver opens PostgreSQL databases.
type Driver struct{}

// New returns the PostgreSQL driver.
func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "postgres" }
func (*Driver) Aliases() []string { return []string{"postgresql", "pg", "pgx"} }

// Connect opens cfg.DSN, a postgres:// URL or key=value string. It is
// required.
func (*Driver) Connect(ctx context.Context, cfg vdba.Config) (vdba.Backend, error) {
	if cfg.DSN == "" {
		return nil, &vdba.UsageError{Message: "Configuration expected."}
	}
	return sqlstore.Open(ctx, sqlstore.Options{
		DriverName: "pgx",
		DSN:        cfg.DSN,
		Address:    address("postgres", cfg),
		Dialect:    Dialect{},
		Logger:     cfg.Logger,
	})
}

// address hides credentials of URL DSNs.
func address(scheme string, cfg vdba.Config) string {
	if u, err := url.Parse(cfg.DSN); err == nil && u.Host != "" {
		return scheme + "://" + u.Host + "/" + cfg.Database
	}
	return scheme + "://" + cfg.Database
}
