// Package main is the entry point for the anima CLI.
//
// Usage:
//
//	anima [flags] <command> [args]
//
// Commands:
//
//	serve      - Run the companion gateway server
//	config     - Read and update the companion config document
//	data       - Dump the subconscious memory store
//	log        - Replay the action log from a running server
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/animahq/anima/cmd/anima/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
