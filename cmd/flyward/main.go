// Package main is the entry point for flyward - Fly.io deployment setup assistant.
package main

import (
	"os"

	"github.com/joyshmitz/flyward/cmd/flyward/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
