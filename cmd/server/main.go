package main

import (
	"os"

	"github.com/iammorganparry/clive/apps/tasks/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
