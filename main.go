// Command mongosql translates MongoDB-style filters, expressions and
// aggregation pipelines into SQL.
package main

import (
	"os"

	"github.com/asaidimu/go-mongosql/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
