// Package mssql provides the SQL Server driver on go-mssqldb.
package mssql

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/render"
	"github.com/zoobzio/vdba/internal/sqlstore"
)

// Dialect renders T-SQL statements.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }
func (Dialect) Quote(ident string) string { return render.QuoteBracket(ident) }
func (Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// Type maps storage classes onto SQL Server types. NVARCHAR(450) is the
// widest text that fits a 900-byte index key.
func (Dialect) Type(t render.SQLType) string {
	switch t {
	case render.LongText:
		return "NVARCHAR(MAX)"
	case render.BigInt:
		return "BIGINT"
	case render.Double:
		return "FLOAT"
	case render.Boolean:
		return "BIT"
	}
	return "NVARCHAR(450)"
}

func (Dialect) Capabilities() render.Capabilities {
	return render.Capabilities{
		IfNotExists:      false,
		DropIndexOnTable: true,
		NativeBoolean:    false,
	}
}

// IfNotExists guards stmt with an OBJECT_ID check.
func (Dialect) IfNotExists(table, stmt string) string {
	name := strings.ReplaceAll(table, "'", "''")
	return "IF OBJECT_ID(N'" + name + "', N'U') IS NULL " + stmt
}

// Driver opens SQL Server databases.
type Driver struct{}

// New returns the SQL Server driver.
func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "mssql" }
func (*Driver) Aliases() []string { return []string{"sqlserver"} }

// Connect opens cfg.DSN, a sqlserver:// URL. It is required.
func (*Driver) Connect(ctx context.Context, cfg vdba.Config) (vdba.Backend, error) {
	if cfg.DSN == "" {
		return nil, &vdba.UsageError{Message: "Configuration expected."}
	}
	addr := "mssql://" + cfg.Database
	if u, err := url.Parse(cfg.DSN); err == nil && u.Host != "" {
		addr = "mssql://" + u.Host + "/" + cfg.Database
	}
	return sqlstore.Open(ctx, sqlstore.Options{
		DriverName: "sqlserver",
		DSN:        cfg.DSN,
		Address:    addr,
		Dialect:    Dialect{},
		Logger:     cfg.Logger,
	})
}
