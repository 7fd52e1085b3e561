// Package main provides the modelspec CLI for validating model definitions
// and model environments.
package main

import (
	"os"

	"github.com/leapstack-labs/modelspec/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
