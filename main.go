package main

import (
	"os"

	"github.com/pressroom-io/pressroom/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
