package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/mariadb"
	"github.com/zoobzio/vdba/memory"
	"github.com/zoobzio/vdba/mssql"
	"github.com/zoobzio/vdba/mysql"
	"github.com/zoobzio/vdba/postgres"
	"github.com/zoobzio/vdba/sqlite"
)

// registry returns every driver the command can check.
func registry() *vdba.Registry {
	return vdba.NewRegistry(
		memory.New(),
		sqlite.New(),
		sqlite.NewLibSQL(),
		postgres.New(),
		mysql.New(),
		mariadb.New(),
		mssql.New(),
	)
}

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the available drivers and their aliases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, d := range registry().Drivers() {
				if aliases := d.Aliases(); len(aliases) > 0 {
					fmt.Fprintf(out, "%-10s %s\n", d.Name(), strings.Join(aliases, ", "))
				} else {
					fmt.Fprintln(out, d.Name())
				}
			}
		},
	}
}
