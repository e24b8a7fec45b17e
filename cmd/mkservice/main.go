// Command mkservice scaffolds a containerized Node.js microservice.
package main

import (
	"os"

	"github.com/NielsdaWheelz/mkservice/internal/cli"
	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

func main() {
	err := cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
