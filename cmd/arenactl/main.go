// Command arenactl is the operator CLI: it validates team files, inspects
// bot coverage and previews opponent resolution against a database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
