package main

import (
	"os"

	"github.com/soundprediction/go-hybridstore/cmd/hybridstore"
)

func main() {
	if err := hybridstore.Execute(); err != nil {
		os.Exit(1)
	}
}
