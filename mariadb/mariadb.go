// Package mariadb provides the MariaDB driver. MariaDB speaks the MySQL
// protocol and shares its dialect.
package mariadb

import (
	"github.com/zoobzio/vdba/mysql"
)

// New returns the MariaDB driver.
func New() *mysql.Driver {
	return mysql.NewNamed("mariadb", "maria")
}
