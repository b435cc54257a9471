// main is the entry point for the pulse CLI.
package main

import (
	"os"

	"github.com/devexhq/pulse/cmd"
	"github.com/devexhq/pulse/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogError("Command failed", err)
		os.Exit(1)
	}
}
