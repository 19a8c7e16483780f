package main

import (
	"os"

	"github.com/collabtrack/server/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
