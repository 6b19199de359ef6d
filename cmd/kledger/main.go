// Command kledger maintains an append-only, hash-chained ledger of formula IDs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kledger/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
