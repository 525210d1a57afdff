package main

import (
	"os"

	"github.com/vzahanych/weatherpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
