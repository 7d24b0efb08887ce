// Command userdir runs the user directory HTTP service.
package main

import (
	"log"

	"github.com/patric-chuzhbe/userdir/internal/app"
)

func run() error {
	theApp, err := app.New()
	if err != nil {
		return err
	}
	defer theApp.Close()

	return theApp.Run()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
