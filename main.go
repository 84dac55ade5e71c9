package main

import (
	"os"

	"github.com/kilimobot/kilimobot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
