package main

import (
	"os"

	"github.com/enterprise-suite/authgate/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
