package main

import (
	"os"

	"github.com/tokentrail/tokentrail/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
