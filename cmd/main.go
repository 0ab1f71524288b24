package main

import (
	"os"

	"github.com/basistech/rosette-go/cmd/rosette"
)

func main() {
	if err := rosette.Execute(); err != nil {
		os.Exit(1)
	}
}
