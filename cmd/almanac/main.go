// Command almanac is the personal planning tool: recurring task
// generation, remote workspace sync and garbage collection over a local
// PostgreSQL store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
