// ABOUTME: Main entry point for the docchat CLI
// ABOUTME: Sets up Cobra root command and executes CLI
package main

import (
	"fmt"
	"os"

	"github.com/docchat/docchat/cmd/docchat/commands"
)

// Build metadata, overridden at release time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docchat:", err)
		os.Exit(1)
	}
}
