package main

import (
	"os"

	"github.com/conneroisu/webbuilder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
