// Command motorcheck inspects a vehicle snapshot file from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/ukydev/motorcheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
