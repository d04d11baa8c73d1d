// Package main is the forgelint entry point.
package main

import (
	"os"

	"github.com/forgelint/forgelint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
