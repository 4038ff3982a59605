package apgw

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Kind identifies a member of the APGW family of models.
type Kind uint8

// BaseKind, ... are the supported reparameterizations of the APGW family.
const (
	BaseKind Kind = iota
	ScaleKind
	FrailtyKind
	TiltKind
	RevTiltKind
)

// TransFunc maps a single parameter value between its natural domain and
// the unconstrained real line.
type TransFunc func(float64) float64

// EvalFunc evaluates a hazard-scale quantity at a single time point, given
// the ordered natural-scale parameter vector of the family.
type EvalFunc func(t float64, par []float64) (float64, error)

// Family is the declarative descriptor of one APGW family variant, in the
// shape a maximum-likelihood fitting backend consumes: parameter names and
// their ordering, the designated location (regression-linked) parameter,
// the hazard-scale functions, matched transform/inverse-transform pairs for
// unconstrained optimization, and an initializer heuristic.  Family values
// are constructed once at package initialization and are read-only.
type Family struct {

	// The canonical name of the family variant
	Name string

	// The numeric code for the variant
	Kind Kind

	// Ordered parameter names; the parameter vectors passed to the
	// evaluation functions follow this ordering.
	ParamNames []string

	// Location is the index of the parameter that a regression on
	// covariates is attached to: lambda for base/frailty, theta for
	// scale/tilt/revtilt.
	Location int

	// Hazard evaluates the hazard function.
	Hazard EvalFunc

	// CumHaz evaluates the cumulative hazard function.
	CumHaz EvalFunc

	// InvCumHaz solves CumHaz(t) = v for t.
	InvCumHaz EvalFunc

	// Transforms[i] maps parameter i to the real line; InvTransforms[i]
	// is its inverse.
	Transforms    []TransFunc
	InvTransforms []TransFunc

	// Init maps observed times to a starting parameter vector for
	// optimization.  It reads only the raw times.
	Init func(times []float64) []float64
}

// NumParams returns the number of parameters in the family variant.
func (f *Family) NumParams() int {
	return len(f.ParamNames)
}

// HazardVec evaluates the hazard at each time in t, storing the values in
// dst, which must have the same length as t.
func (f *Family) HazardVec(t, par, dst []float64) error {
	return evalVec(f.Hazard, t, par, dst)
}

// CumHazVec evaluates the cumulative hazard at each time in t, storing the
// values in dst, which must have the same length as t.
func (f *Family) CumHazVec(t, par, dst []float64) error {
	return evalVec(f.CumHaz, t, par, dst)
}

func evalVec(f EvalFunc, t, par, dst []float64) error {
	if len(dst) != len(t) {
		panic("apgw: dst length does not match t")
	}
	for i, ti := range t {
		v, err := f(ti, par)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// NewFamily returns the family descriptor corresponding to the given kind.
// Supported kinds are BaseKind, ScaleKind, FrailtyKind, TiltKind, and
// RevTiltKind.
func NewFamily(kind Kind) *Family {

	switch kind {
	case BaseKind:
		return &baseFamily
	case ScaleKind:
		return &scaleFamily
	case FrailtyKind:
		return &frailtyFamily
	case TiltKind:
		return &tiltFamily
	case RevTiltKind:
		return &revTiltFamily
	default:
		msg := fmt.Sprintf("apgw: unknown family kind: %v\n", kind)
		panic(msg)
	}
}

// ParseKind maps a family variant name to its kind.  An unrecognized name
// is a configuration error and is reported immediately.
func ParseKind(name string) (Kind, error) {

	switch name {
	case "base":
		return BaseKind, nil
	case "scale":
		return ScaleKind, nil
	case "frailty":
		return FrailtyKind, nil
	case "tilt":
		return TiltKind, nil
	case "revtilt":
		return RevTiltKind, nil
	default:
		return 0, fmt.Errorf("apgw: unknown family name %q", name)
	}
}

// baseParams maps the ordered parameter vector of the base family to a
// Params value.
func baseParams(par []float64) Params {
	return Params{Phi: par[0], Lambda: par[1], Gamma: par[2], Kappa: par[3]}
}

type variantFunc func(t float64, p Params, theta float64) (float64, error)

func baseEval(f func(float64, Params) (float64, error)) EvalFunc {
	return func(t float64, par []float64) (float64, error) {
		return f(t, baseParams(par))
	}
}

func variantEval(f variantFunc) EvalFunc {
	return func(t float64, par []float64) (float64, error) {
		return f(t, baseParams(par), par[4])
	}
}

func logTrans(x float64) float64 { return math.Log(x) }
func expTrans(x float64) float64 { return math.Exp(x) }

// The shifted log respects the kappa > -1 domain.
func shiftLogTrans(x float64) float64 { return math.Log1p(x) }
func shiftExpTrans(x float64) float64 { return math.Expm1(x) }

var baseTransforms = []TransFunc{logTrans, logTrans, logTrans, shiftLogTrans}
var baseInvTransforms = []TransFunc{expTrans, expTrans, expTrans, shiftExpTrans}

var variantTransforms = []TransFunc{logTrans, logTrans, logTrans, shiftLogTrans, logTrans}
var variantInvTransforms = []TransFunc{expTrans, expTrans, expTrans, shiftExpTrans, expTrans}

// rateInit seeds a rate parameter from the exponential median-to-rate
// relationship, rate = log(2)/median.
func rateInit(times []float64) float64 {

	if len(times) == 0 {
		return 1
	}

	s := make([]float64, len(times))
	copy(s, times)
	sort.Float64s(s)

	med := stat.Quantile(0.5, stat.Empirical, s, nil)
	if !(med > 0) {
		return 1
	}
	return math.Ln2 / med
}

func baseInit(times []float64) []float64 {
	return []float64{1, rateInit(times), 1, 1}
}

func variantInit(times []float64) []float64 {
	return append(baseInit(times), 1)
}

var baseFamily = Family{
	Name:          "base",
	Kind:          BaseKind,
	ParamNames:    []string{"phi", "lambda", "gamma", "kappa"},
	Location:      1,
	Hazard:        baseEval(Hazard),
	CumHaz:        baseEval(CumHaz),
	InvCumHaz:     baseEval(InvCumHaz),
	Transforms:    baseTransforms,
	InvTransforms: baseInvTransforms,
	Init:          baseInit,
}

var scaleFamily = Family{
	Name:          "scale",
	Kind:          ScaleKind,
	ParamNames:    []string{"phi", "lambda", "gamma", "kappa", "theta"},
	Location:      4,
	Hazard:        variantEval(ScaleHazard),
	CumHaz:        variantEval(ScaleCumHaz),
	InvCumHaz:     variantEval(ScaleInvCumHaz),
	Transforms:    variantTransforms,
	InvTransforms: variantInvTransforms,
	Init:          variantInit,
}

var frailtyFamily = Family{
	Name:          "frailty",
	Kind:          FrailtyKind,
	ParamNames:    []string{"phi", "lambda", "gamma", "kappa", "theta"},
	Location:      1,
	Hazard:        variantEval(FrailtyHazard),
	CumHaz:        variantEval(FrailtyCumHaz),
	InvCumHaz:     variantEval(FrailtyInvCumHaz),
	Transforms:    variantTransforms,
	InvTransforms: variantInvTransforms,
	Init:          variantInit,
}

var tiltFamily = Family{
	Name:          "tilt",
	Kind:          TiltKind,
	ParamNames:    []string{"phi", "lambda", "gamma", "kappa", "theta"},
	Location:      4,
	Hazard:        variantEval(TiltHazard),
	CumHaz:        variantEval(TiltCumHaz),
	InvCumHaz:     variantEval(TiltInvCumHaz),
	Transforms:    variantTransforms,
	InvTransforms: variantInvTransforms,
	Init:          variantInit,
}

var revTiltFamily = Family{
	Name:          "revtilt",
	Kind:          RevTiltKind,
	ParamNames:    []string{"phi", "lambda", "gamma", "kappa", "theta"},
	Location:      4,
	Hazard:        variantEval(RevTiltHazard),
	CumHaz:        variantEval(RevTiltCumHaz),
	InvCumHaz:     variantEval(RevTiltInvCumHaz),
	Transforms:    variantTransforms,
	InvTransforms: variantInvTransforms,
	Init:          variantInit,
}
