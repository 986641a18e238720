package main

import (
	"os"

	"github.com/novalang/novac/cmd/novac/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
