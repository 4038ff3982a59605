package statfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fitter is a model with a smooth log-likelihood that can be maximized over
// an unconstrained parameter vector.
type Fitter interface {

	// NumParams returns the number of free parameters in the model.
	NumParams() int

	// NumObs returns the number of observations in the data set.
	NumObs() int

	// ParamNames returns the names of the model parameters, in the order
	// of the parameter vector.
	ParamNames() []string

	// LogLike returns the log-likelihood at the given parameter vector.
	// It may return -Inf where the objective is undefined.
	LogLike(x []float64) float64
}

// GetVcov returns the sampling variance/covariance matrix of the parameter
// estimates, flattened to one dimension, as the inverse of the observed
// information matrix at x.  The Hessian is obtained by finite differencing
// the log-likelihood.
func GetVcov(model Fitter, x []float64) ([]float64, error) {

	p := model.NumParams()
	if len(x) != p {
		return nil, fmt.Errorf("statfit: parameter vector has length %d, expected %d", len(x), p)
	}

	hess := mat.NewSymDense(p, nil)
	fd.Hessian(hess, model.LogLike, x, nil)

	// Negate to get the observed information.
	info := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			info.Set(i, j, -hess.At(i, j))
		}
	}

	vcov := mat.NewDense(p, p, nil)
	if err := vcov.Inverse(info); err != nil {
		return nil, fmt.Errorf("statfit: cannot invert the observed information: %v", err)
	}

	out := make([]float64, p*p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			out[i*p+j] = vcov.At(i, j)
		}
	}

	return out, nil
}

// BaseResults holds the outcome of fitting a model by maximum likelihood.
type BaseResults struct {
	model   Fitter
	loglike float64
	params  []float64
	names   []string
	vcov    []float64

	stderr  []float64
	zscores []float64
	pvalues []float64
}

// NewBaseResults returns a BaseResults for the given fitted model, taking
// the parameter names from the model.  vcov may be nil, in which case no
// standard errors are available.
func NewBaseResults(model Fitter, loglike float64, params []float64, vcov []float64) BaseResults {
	return BaseResults{
		model:   model,
		loglike: loglike,
		params:  params,
		names:   model.ParamNames(),
		vcov:    vcov,
	}
}

// Model returns the model that produced the results.
func (rslt *BaseResults) Model() Fitter {
	return rslt.model
}

// Names returns the names of the fitted parameters.
func (rslt *BaseResults) Names() []string {
	return rslt.names
}

// Params returns the point estimates, on the scale the model was optimized
// on.
func (rslt *BaseResults) Params() []float64 {
	return rslt.params
}

// LogLike returns the maximized log-likelihood.
func (rslt *BaseResults) LogLike() float64 {
	return rslt.loglike
}

// AIC returns the Akaike information criterion for the fitted model.
func (rslt *BaseResults) AIC() float64 {
	return 2*float64(rslt.model.NumParams()) - 2*rslt.loglike
}

// VCov returns the sampling variance/covariance matrix of the estimates,
// flattened to one dimension, or nil if it is not available.
func (rslt *BaseResults) VCov() []float64 {
	return rslt.vcov
}

// StdErr returns the standard errors of the parameter estimates, or nil if
// no covariance matrix is available.
func (rslt *BaseResults) StdErr() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.stderr != nil {
		return rslt.stderr
	}

	p := rslt.model.NumParams()
	rslt.stderr = make([]float64, p)
	for i := range rslt.stderr {
		rslt.stderr[i] = math.Sqrt(rslt.vcov[i*p+i])
	}

	return rslt.stderr
}

// ZScores returns the parameter estimates divided by their standard errors.
func (rslt *BaseResults) ZScores() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.zscores != nil {
		return rslt.zscores
	}

	std := rslt.StdErr()
	rslt.zscores = make([]float64, len(std))
	for i := range std {
		rslt.zscores[i] = rslt.params[i] / std[i]
	}

	return rslt.zscores
}

// PValues returns two-sided p-values for the null hypothesis that each
// parameter's population value is zero.
func (rslt *BaseResults) PValues() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.pvalues != nil {
		return rslt.pvalues
	}

	stdnorm := distuv.Normal{Mu: 0, Sigma: 1}

	z := rslt.ZScores()
	rslt.pvalues = make([]float64, len(z))
	for i := range z {
		rslt.pvalues[i] = 2 * stdnorm.CDF(-math.Abs(z[i]))
	}

	return rslt.pvalues
}
