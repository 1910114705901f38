// Command syncmux is the entrypoint for the multi-source audio sync and
// mux pipeline. It loads one or more JobSpecs, runs each through the
// fixed-order pipeline, and exits with the batch status code spec.md §6
// defines: 0 all succeeded, 2 at least one failed, 130 cancelled-only.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "syncmux: %v\n", err)
		os.Exit(1)
	}
}
