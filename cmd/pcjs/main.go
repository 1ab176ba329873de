// Command pcjs is a headless host for the cpu package: it configures a
// CPU from persisted or flag-supplied preferences, loads a raw binary
// image into memory, and runs it for a cycle budget or until the
// program halts, matching the core's external CLI/configuration
// contract.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
