// Package main is the sqlforge CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/sqlforge/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
