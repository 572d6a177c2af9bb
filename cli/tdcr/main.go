// Package main is the tdcr command line entry point.
package main

import (
	"log"
	"os"

	"go.viam.com/tdcr/cli"
)

func main() {
	app := cli.NewApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
