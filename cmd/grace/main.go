package main

import (
	"os"

	"github.com/grace-lang/grace/cmd/grace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
