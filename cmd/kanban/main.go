package main

import (
	"kanban/internal/cli"
	"os"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
