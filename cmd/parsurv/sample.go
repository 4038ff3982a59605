package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/rand"

	"github.com/hazreg/parsurv/apgw"
)

var familyFlag = cli.StringFlag{
	Name:  "family",
	Usage: "family variant: base, scale, frailty, tilt, or revtilt",
	Value: "base",
}

var phiFlag = cli.Float64Flag{Name: "phi", Usage: "scale-like parameter", Value: 1}
var lambdaFlag = cli.Float64Flag{Name: "lambda", Usage: "rate parameter", Value: 1}
var gammaFlag = cli.Float64Flag{Name: "gamma", Usage: "power parameter", Value: 1}
var kappaFlag = cli.Float64Flag{Name: "kappa", Usage: "curvature parameter, must exceed -1", Value: 1}
var thetaFlag = cli.Float64Flag{Name: "theta", Usage: "link parameter for the non-base variants", Value: 1}
var seedFlag = cli.Uint64Flag{Name: "seed", Usage: "random number seed", Value: 1}

var sampleCommand = cli.Command{
	Action: sampleAction,
	Name:   "sample",
	Usage:  "draw random event times from an APGW family variant",
	Flags: []cli.Flag{
		&familyFlag,
		&phiFlag, &lambdaFlag, &gammaFlag, &kappaFlag, &thetaFlag,
		&seedFlag,
		&cli.IntFlag{Name: "n", Usage: "number of samples", Value: 100},
		&cli.StringFlag{Name: "out", Usage: "output file, stdout if empty"},
	},
}

// familyPar builds the family descriptor and its ordered parameter vector
// from the command line flags.
func familyPar(ctx *cli.Context) (*apgw.Family, []float64, error) {

	kind, err := apgw.ParseKind(ctx.String("family"))
	if err != nil {
		return nil, nil, err
	}
	fam := apgw.NewFamily(kind)

	par := []float64{
		ctx.Float64("phi"),
		ctx.Float64("lambda"),
		ctx.Float64("gamma"),
		ctx.Float64("kappa"),
	}
	if fam.NumParams() == 5 {
		par = append(par, ctx.Float64("theta"))
	}

	return fam, par, nil
}

func sampleAction(ctx *cli.Context) error {

	fam, par, err := familyPar(ctx)
	if err != nil {
		return err
	}

	src := rand.NewSource(ctx.Uint64("seed"))
	samples, err := fam.Sample(ctx.Int("n"), par, src)
	if err != nil {
		return err
	}

	out := os.Stdout
	if name := ctx.String("out"); name != "" {
		fid, err := os.Create(name)
		if err != nil {
			return err
		}
		defer fid.Close()
		out = fid
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	for _, s := range samples {
		fmt.Fprintf(w, "%f\n", s)
	}

	return nil
}
