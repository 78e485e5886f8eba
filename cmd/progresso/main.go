package main

import (
	"fmt"
	"os"

	"github.com/axondata/go-progresso/cmd/progresso/commands"
)

// Build-time variables injected via ldflags
var (
	version = ""
	commit  = "none"
)

func main() {
	if version != "" {
		commands.Version = version
	}
	commands.Commit = commit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
