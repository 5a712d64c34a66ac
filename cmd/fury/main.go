package main

import (
	"os"

	"github.com/gemfury/gemfury/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
