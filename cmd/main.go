package main

import (
	"os"

	"github.com/vargamick/poster-memento-sub005/cmd/memento"
)

func main() {
	if err := memento.Execute(); err != nil {
		os.Exit(1)
	}
}
