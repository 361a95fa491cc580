// Package main is the entry point for the ttlctl CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version info for CLI
	SetVersion(version, commit, date)

	if err := Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
