package main

import (
	"os"

	"onboarding/cmd/bsconv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
