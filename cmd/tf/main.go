// Command tf is the CLI host for TimeFiles: a thin collaborator over
// internal/core.Engine, following steveyegge-beads' cmd/bd shape — a
// cobra command tree, persistent flags synced into a shared context,
// styled output via lipgloss, no business logic of its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
