// Package survreg fits parametric survival regression models for right
// censored data by maximum likelihood, using the APGW hazard family.
// Covariates enter through the family's location parameter on the log
// scale, so the interpretation of a coefficient depends on the family
// variant: time acceleration for the scale family, a hazard ratio for the
// frailty family, and odds/tilt ratios for the tilt families.
package survreg

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/hazreg/parsurv/apgw"
	"github.com/hazreg/parsurv/statfit"
)

// Config holds configuration parameters for a parametric survival
// regression.
type Config struct {

	// A logger to which progress information is written
	Log *log.Logger

	// Start contains starting values for the optimization, on the
	// unconstrained working scale.  If nil, the family initializer is
	// used.
	Start []float64

	// WeightVar is the name of a case weight variable.  If empty, all
	// weights are 1.
	WeightVar string

	// OptMethod is the Gonum optimization method used to fit the model.
	OptMethod optimize.Method

	// OptSettings configures the Gonum optimization routine.
	OptSettings *optimize.Settings
}

// DefaultConfig returns a default configuration for a parametric survival
// regression.
func DefaultConfig() *Config {

	return &Config{
		OptMethod: &optimize.BFGS{
			Linesearcher: &optimize.MoreThuente{},
		},
		OptSettings: &optimize.Settings{
			GradientThreshold: 1e-5,
		},
	}
}

// SurvReg describes a parametric survival regression model for right
// censored data.
type SurvReg struct {

	// The data to which the model is fit
	data statfit.Dataset

	// The hazard family being fit
	fam *apgw.Family

	time   []statfit.Dtype
	status []statfit.Dtype
	weight []statfit.Dtype

	// Positions of the covariates in the dataset
	xpos []int

	// Names of all model parameters: the family shape parameters
	// followed by the covariate names
	names []string

	start []float64

	optsettings *optimize.Settings
	optmethod   optimize.Method

	log *log.Logger
}

// New returns a SurvReg value for fitting the given family to the dataset.
// time and status name the event time and event indicator columns; the
// status column must contain only 0 (censored) and 1 (event) values.
func New(data statfit.Dataset, fam *apgw.Family, time, status string, predictors []string, config *Config) (*SurvReg, error) {

	if config == nil {
		config = DefaultConfig()
	}

	tcol := data.Column(time)
	if tcol == nil {
		return nil, fmt.Errorf("survreg: time variable '%s' not found in dataset", time)
	}
	scol := data.Column(status)
	if scol == nil {
		return nil, fmt.Errorf("survreg: status variable '%s' not found in dataset", status)
	}

	for i, t := range tcol {
		if !(t > 0) {
			return nil, fmt.Errorf("survreg: time %v at position %d is not positive", t, i)
		}
	}
	for i, s := range scol {
		if s != 0 && s != 1 {
			return nil, fmt.Errorf("survreg: status value %v at position %d is not 0 or 1", s, i)
		}
	}

	var wcol []statfit.Dtype
	if config.WeightVar != "" {
		wcol = data.Column(config.WeightVar)
		if wcol == nil {
			return nil, fmt.Errorf("survreg: weight variable '%s' not found in dataset", config.WeightVar)
		}
	}

	var xpos []int
	for _, xna := range predictors {
		xp := data.Pos(xna)
		if xp == -1 {
			return nil, fmt.Errorf("survreg: predictor '%s' not found in dataset", xna)
		}
		xpos = append(xpos, xp)
	}

	names := make([]string, 0, fam.NumParams()+len(predictors))
	names = append(names, fam.ParamNames...)
	names = append(names, predictors...)

	sr := &SurvReg{
		data:        data,
		fam:         fam,
		time:        tcol,
		status:      scol,
		weight:      wcol,
		xpos:        xpos,
		names:       names,
		start:       config.Start,
		optsettings: config.OptSettings,
		optmethod:   config.OptMethod,
		log:         config.Log,
	}

	return sr, nil
}

// NumParams returns the number of free parameters: the family shape
// parameters plus one regression coefficient per covariate.
func (sr *SurvReg) NumParams() int {
	return sr.fam.NumParams() + len(sr.xpos)
}

// NumObs returns the number of observations in the data set.
func (sr *SurvReg) NumObs() int {
	return len(sr.time)
}

// ParamNames returns the names of the model parameters.
func (sr *SurvReg) ParamNames() []string {
	return sr.names
}

// NumEvents returns the number of observations with an observed event.
func (sr *SurvReg) NumEvents() int {
	var e int
	for _, s := range sr.status {
		e += int(s)
	}
	return e
}

// linpred fills lp with the linear predictor for each observation.
func (sr *SurvReg) linpred(beta, lp []float64) {

	for i := range lp {
		lp[i] = 0
	}
	for j, k := range sr.xpos {
		x := sr.data.Data()[k]
		for i := range x {
			lp[i] += beta[j] * float64(x[i])
		}
	}
}

// LogLike returns the log-likelihood at the given working parameter vector:
// the transformed shape parameters followed by the regression coefficients.
// Trial points where the hazard evaluation fails yield -Inf, which the
// optimizer treats as an undefined objective and retreats from.
func (sr *SurvReg) LogLike(x []float64) float64 {

	m := sr.fam.NumParams()

	par := make([]float64, m)
	for j := range par {
		par[j] = sr.fam.InvTransforms[j](x[j])
	}

	lp := make([]float64, sr.NumObs())
	sr.linpred(x[m:], lp)

	loc := sr.fam.Location
	obspar := make([]float64, m)

	var ll float64
	for i, t := range sr.time {

		copy(obspar, par)
		obspar[loc] = par[loc] * math.Exp(lp[i])

		H, err := sr.fam.CumHaz(float64(t), obspar)
		if err != nil {
			return math.Inf(-1)
		}

		w := 1.0
		if sr.weight != nil {
			w = float64(sr.weight[i])
		}

		if sr.status[i] == 1 {
			h, err := sr.fam.Hazard(float64(t), obspar)
			if err != nil {
				return math.Inf(-1)
			}
			ll += w * math.Log(h)
		}
		ll -= w * H
	}

	if math.IsNaN(ll) {
		return math.Inf(-1)
	}

	return ll
}

// Score fills score with the gradient of the log-likelihood at x, obtained
// by central finite differencing.  Forward differences are too noisy near
// the optimum for a linesearch-based optimizer.
func (sr *SurvReg) Score(x, score []float64) {
	fd.Gradient(score, sr.LogLike, x, &fd.Settings{Formula: fd.Central})
}

// startValues returns the starting point for the optimization on the
// working scale: transformed initializer values for the shape parameters
// and zeros for the regression coefficients.
func (sr *SurvReg) startValues() []float64 {

	times := make([]float64, len(sr.time))
	for i, t := range sr.time {
		times[i] = float64(t)
	}

	init := sr.fam.Init(times)

	start := make([]float64, sr.NumParams())
	for j, v := range init {
		start[j] = sr.fam.Transforms[j](v)
	}

	return start
}

// Results describes the results of a fitted parametric survival regression.
type Results struct {
	statfit.BaseResults

	sr *SurvReg
}

// Fit fits the model to the data by maximum likelihood.
func (sr *SurvReg) Fit() (*Results, error) {

	start := sr.start
	if start == nil {
		start = sr.startValues()
	}
	if len(start) != sr.NumParams() {
		return nil, fmt.Errorf("survreg: start vector has length %d, expected %d",
			len(start), sr.NumParams())
	}

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return -sr.LogLike(x)
		},
		Grad: func(grad, x []float64) {
			sr.Score(x, grad)
			for i := range grad {
				grad[i] *= -1
			}
		},
	}

	settings := sr.optsettings
	if settings == nil {
		settings = &optimize.Settings{GradientThreshold: 1e-5}
	}

	if sr.log != nil {
		sr.log.Printf("survreg: fitting %s family, %d observations, %d events",
			sr.fam.Name, sr.NumObs(), sr.NumEvents())
	}

	optrslt, err := optimize.Minimize(p, start, settings, sr.optmethod)
	if err == nil {
		err = optrslt.Status.Err()
	}
	if err != nil && optrslt != nil {
		optrslt, err = sr.polish(p, optrslt, err)
	}
	if err != nil {
		if optrslt == nil {
			return nil, err
		}
		// Return partial results along with the error.
		results := &Results{
			BaseResults: statfit.NewBaseResults(sr, -optrslt.F, optrslt.X, nil),
			sr:          sr,
		}
		return results, err
	}

	params := make([]float64, len(optrslt.X))
	copy(params, optrslt.X)

	ll := -optrslt.F

	if sr.log != nil {
		sr.log.Printf("survreg: converged, loglike=%f", ll)
	}

	vcov, err := statfit.GetVcov(sr, params)
	if err != nil && sr.log != nil {
		sr.log.Printf("survreg: %v", err)
	}

	results := &Results{
		BaseResults: statfit.NewBaseResults(sr, ll, params, vcov),
		sr:          sr,
	}

	return results, nil
}

// polish recovers from an optimizer failure at a candidate point.  A
// linesearch can stall on finite difference noise near the optimum, so the
// incumbent is accepted if its gradient is already negligible, and is
// otherwise refined with Nelder-Mead, which does not depend on gradient
// accuracy.
func (sr *SurvReg) polish(p optimize.Problem, rslt *optimize.Result, err error) (*optimize.Result, error) {

	grad := make([]float64, sr.NumParams())
	sr.Score(rslt.X, grad)
	if floats.Norm(grad, math.Inf(1)) < 1e-2 {
		return rslt, nil
	}

	if sr.log != nil {
		sr.log.Printf("survreg: %v; refining with Nelder-Mead", err)
	}

	nm, nmerr := optimize.Minimize(p, rslt.X, nil, &optimize.NelderMead{})
	if nmerr != nil || nm == nil || nm.F > rslt.F {
		return rslt, err
	}

	return nm, nil
}

// NaturalParams returns the point estimates on the natural scale: the
// inverse transform of each shape parameter, and the exponential of each
// regression coefficient (a multiplicative effect on the location
// parameter).
func (rslt *Results) NaturalParams() []float64 {

	sr := rslt.sr
	m := sr.fam.NumParams()

	x := rslt.Params()
	out := make([]float64, len(x))
	for j := range x {
		if j < m {
			out[j] = sr.fam.InvTransforms[j](x[j])
		} else {
			out[j] = math.Exp(x[j])
		}
	}

	return out
}

// NaturalStdErr returns delta method standard errors for the natural-scale
// estimates: each working-scale standard error is scaled by the derivative
// of the inverse transform at the estimate.  It returns nil if no
// covariance matrix is available.
func (rslt *Results) NaturalStdErr() []float64 {

	std := rslt.StdErr()
	if std == nil {
		return nil
	}

	sr := rslt.sr
	m := sr.fam.NumParams()

	x := rslt.Params()
	out := make([]float64, len(x))
	for j := range x {
		var d float64
		if j < m {
			d = fd.Derivative(sr.fam.InvTransforms[j], x[j], nil)
		} else {
			d = math.Exp(x[j])
		}
		out[j] = math.Abs(d) * std[j]
	}

	return out
}

// Summary returns a summary table of the model results.  The Estimate and
// SE columns are on the unconstrained working scale; the Natural and
// Natural SE columns map the estimates and their standard errors back to
// the natural scale.
func (rslt *Results) Summary() *statfit.SummaryTable {

	sr := rslt.sr

	s := &statfit.SummaryTable{
		Title: "Parametric survival regression analysis",
	}

	s.Top = append(s.Top, fmt.Sprintf("  Family:       %10s", sr.fam.Name))
	s.Top = append(s.Top, fmt.Sprintf("  Sample size:  %10d", sr.NumObs()))
	s.Top = append(s.Top, fmt.Sprintf("  Events:       %10d", sr.NumEvents()))
	s.Top = append(s.Top, fmt.Sprintf("  Log-likelihood: %8.2f", rslt.LogLike()))
	s.Top = append(s.Top, fmt.Sprintf("  AIC:          %10.2f", rslt.AIC()))

	if rslt.StdErr() != nil {
		s.ColNames = []string{"Parameter", "Estimate", "SE", "Natural", "Natural SE", "Z-score", "P-value"}
		s.Cols = []interface{}{
			rslt.Names(), rslt.Params(), rslt.StdErr(), rslt.NaturalParams(),
			rslt.NaturalStdErr(), rslt.ZScores(), rslt.PValues(),
		}
	} else {
		s.ColNames = []string{"Parameter", "Estimate", "Natural"}
		s.Cols = []interface{}{rslt.Names(), rslt.Params(), rslt.NaturalParams()}
	}

	return s
}
