package main

import (
	"os"

	"geohasher/cmd/geohasher/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
