// Package main is the entry point for the ziprates CLI and server.
package main

import (
	"os"

	"ziprates/cmd/ziprates/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
