// Package main provides the entry point for the chunkhash CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/chunkhash/cmd/chunkhash/commands"
	"github.com/Sumatoshi-tech/chunkhash/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
