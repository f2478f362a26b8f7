package main

import (
	"os"

	"github.com/wonny/chooser/cmd/chooser/commands"
)

// main is the entry point for the chooser CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/chooser [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
