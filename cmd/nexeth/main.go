package main

import (
	"os"

	"github.com/xab-mack/nexeth/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
