package main

import (
	"os"

	"github.com/brickmetric/leadpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
