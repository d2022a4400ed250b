// Package main provides the trialmirror CLI: a local mirror of the
// public clinical-trials registry with full-load, incremental-sync, and
// read-API entry points.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
