package main

import (
	"os"

	"github.com/corpusgraph/corpusgraph/cmd/corpusgraph"
)

func main() {
	if err := corpusgraph.Execute(); err != nil {
		os.Exit(1)
	}
}
