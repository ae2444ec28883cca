package main

import (
	"os"

	"kyro/cmd/kyro/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
