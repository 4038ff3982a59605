// parsurv is a command line tool for working with the APGW hazard family:
// it draws random event times from any family variant and runs simulation
// studies that fit parametric survival regression models to generated data.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {

	app := &cli.App{
		Name:  "parsurv",
		Usage: "sampling and simulation studies for the APGW hazard family",
		Commands: []*cli.Command{
			&sampleCommand,
			&simfitCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
