// Package apgw implements the Additive Power Generalized Weibull (APGW)
// hazard family for time-to-event analysis.  The base family has four shape
// parameters and closed forms for the hazard, the cumulative hazard, and the
// inverse of the cumulative hazard, which permits exact sampling by
// inversion.  Four reparameterized variants (scale, frailty, tilt, and
// reverse-tilt) add a single positive parameter that enters the base family
// through a fixed algebraic transform, yielding AFT, PH, PO, and PGT
// regression submodels respectively.
package apgw

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is returned when a parameter or function argument lies outside
// the domain of the family:  phi, lambda, gamma, and theta must be strictly
// positive, and kappa must exceed -1.
var ErrDomain = errors.New("apgw: argument out of domain")

// ErrNonFinite is returned when an evaluation overflows or otherwise
// produces a non-finite value inside the domain.  Optimizers should treat
// this as "objective undefined at this trial point".
var ErrNonFinite = errors.New("apgw: non-finite result")

// Params holds the shape parameters of the base APGW family.  A value is
// valid when Phi, Lambda, and Gamma are strictly positive and Kappa exceeds
// -1; Kappa may be negative or exactly zero.
type Params struct {

	// Scale-like parameter, inverse time units
	Phi float64

	// Rate parameter, multiplies the cumulative hazard
	Lambda float64

	// Power (shape) parameter
	Gamma float64

	// Curvature parameter, must exceed -1
	Kappa float64
}

// Validate returns ErrDomain (wrapped with detail) if the parameter value
// lies outside the domain of the family.  The negated comparisons also
// reject NaN.
func (p Params) Validate() error {
	switch {
	case !(p.Phi > 0):
		return fmt.Errorf("%w: phi=%v must be positive", ErrDomain, p.Phi)
	case !(p.Lambda > 0):
		return fmt.Errorf("%w: lambda=%v must be positive", ErrDomain, p.Lambda)
	case !(p.Gamma > 0):
		return fmt.Errorf("%w: gamma=%v must be positive", ErrDomain, p.Gamma)
	case !(p.Kappa > -1):
		return fmt.Errorf("%w: kappa=%v must exceed -1", ErrDomain, p.Kappa)
	}
	return nil
}

// Hazard returns the APGW hazard function
//
//	h(t) = lambda * gamma * phi^gamma * t^(gamma-1) * (1 + (phi*t)^gamma/(kappa+1))^(kappa-1)
//
// evaluated at t > 0.
func Hazard(t float64, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(t > 0) {
		return 0, fmt.Errorf("%w: t=%v must be positive", ErrDomain, t)
	}
	h := hazard(t, p)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%w: hazard at t=%v", ErrNonFinite, t)
	}
	return h, nil
}

// CumHaz returns the APGW cumulative hazard function
//
//	H(t) = lambda * (kappa+1)/kappa * ((1 + (phi*t)^gamma/(kappa+1))^kappa - 1)
//
// evaluated at t >= 0.  H is non-decreasing in t with H(0) = 0.  Kappa
// exactly zero is a removable singularity of the formula above and is
// special-cased with its analytic limit, lambda*log(1 + (phi*t)^gamma);
// values near but not at zero use the general formula, which is numerically
// stable there.
func CumHaz(t float64, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(t >= 0) {
		return 0, fmt.Errorf("%w: t=%v must be non-negative", ErrDomain, t)
	}
	H := cumHaz(t, p)
	if math.IsNaN(H) || math.IsInf(H, 0) {
		return 0, fmt.Errorf("%w: cumulative hazard at t=%v", ErrNonFinite, t)
	}
	return H, nil
}

// InvCumHaz solves H(t) = v for t in closed form:
//
//	t = (1/phi) * ((kappa+1) * ((1 + kappa*v/(lambda*(kappa+1)))^(1/kappa) - 1))^(1/gamma)
//
// for v >= 0.  This is the inversion used by the samplers.
func InvCumHaz(v float64, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(v >= 0) {
		return 0, fmt.Errorf("%w: v=%v must be non-negative", ErrDomain, v)
	}
	// For kappa < 0 the cumulative hazard is bounded above by
	// lambda*(kappa+1)/(-kappa), so the inversion is only defined below
	// that supremum.
	if p.Kappa < 0 {
		if sup := p.Lambda * (p.Kappa + 1) / -p.Kappa; !(v < sup) {
			return 0, fmt.Errorf("%w: v=%v is not below the cumulative hazard supremum %v",
				ErrDomain, v, sup)
		}
	}
	t := invCumHaz(v, p)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: inverse cumulative hazard at v=%v", ErrNonFinite, v)
	}
	return t, nil
}

// hazard evaluates the hazard without domain checks.  The kappa-1 exponent
// makes the formula valid at kappa = 0 with no special case.
func hazard(t float64, p Params) float64 {
	u := 1 + math.Pow(p.Phi*t, p.Gamma)/(p.Kappa+1)
	return p.Lambda * p.Gamma * math.Pow(p.Phi, p.Gamma) *
		math.Pow(t, p.Gamma-1) * math.Pow(u, p.Kappa-1)
}

func cumHaz(t float64, p Params) float64 {
	w := math.Pow(p.Phi*t, p.Gamma) / (p.Kappa + 1)
	if p.Kappa == 0 {
		// Limit of the general formula as kappa -> 0.
		return p.Lambda * math.Log1p(w)
	}
	return p.Lambda * (p.Kappa + 1) / p.Kappa * (math.Pow(1+w, p.Kappa) - 1)
}

func invCumHaz(v float64, p Params) float64 {
	if p.Kappa == 0 {
		return math.Pow(math.Expm1(v/p.Lambda), 1/p.Gamma) / p.Phi
	}
	u := math.Pow(1+p.Kappa*v/(p.Lambda*(p.Kappa+1)), 1/p.Kappa)
	return math.Pow((p.Kappa+1)*(u-1), 1/p.Gamma) / p.Phi
}
