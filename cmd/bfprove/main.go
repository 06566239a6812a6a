// Command bfprove is the interactive brute-force prover's CLI entry
// point: a cobra root command wrapping the REPL in internal/shell,
// mirroring go-dws's cmd/dwscript layout (a rootCmd with persistent
// flags and no subcommands beyond the one verb this spec needs).
package main

import (
	"fmt"
	"os"

	"github.com/tobix/bfprove/cmd/bfprove/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bfprove: %v\n", err)
		os.Exit(1)
	}
}
