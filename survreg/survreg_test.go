package survreg

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/hazreg/parsurv/apgw"
	"github.com/hazreg/parsurv/statfit"
)

func smallData(t *testing.T) statfit.Dataset {

	t.Helper()

	da := [][]statfit.Dtype{
		{1, 2, 3, 4, 5, 6},
		{1, 1, 0, 1, 0, 1},
		{0, 1, 0, 1, 0, 1},
	}

	ds, err := statfit.NewDataset(da, []string{"Time", "Status", "X"})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestNewErrors(t *testing.T) {

	ds := smallData(t)
	fam := apgw.NewFamily(apgw.BaseKind)

	if _, err := New(ds, fam, "T", "Status", nil, nil); err == nil {
		t.Errorf("accepted unknown time variable")
	}
	if _, err := New(ds, fam, "Time", "S", nil, nil); err == nil {
		t.Errorf("accepted unknown status variable")
	}
	if _, err := New(ds, fam, "Time", "Status", []string{"Z"}, nil); err == nil {
		t.Errorf("accepted unknown predictor")
	}

	config := DefaultConfig()
	config.WeightVar = "W"
	if _, err := New(ds, fam, "Time", "Status", nil, config); err == nil {
		t.Errorf("accepted unknown weight variable")
	}

	// Status must be 0/1, times positive.
	da := [][]statfit.Dtype{{1, 2}, {1, 2}}
	bad, err := statfit.NewDataset(da, []string{"Time", "Status"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(bad, fam, "Time", "Status", nil, nil); err == nil {
		t.Errorf("accepted status values other than 0 and 1")
	}

	da = [][]statfit.Dtype{{0, 2}, {1, 1}}
	bad, err = statfit.NewDataset(da, []string{"Time", "Status"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(bad, fam, "Time", "Status", nil, nil); err == nil {
		t.Errorf("accepted non-positive times")
	}
}

// The log-likelihood must equal the direct sum of log hazards for events
// minus cumulative hazards, with covariates scaling the location parameter.
func TestLogLikeDirect(t *testing.T) {

	ds := smallData(t)
	fam := apgw.NewFamily(apgw.BaseKind)

	sr, err := New(ds, fam, "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	p := apgw.Params{Phi: 0.8, Lambda: 1.5, Gamma: 1.2, Kappa: 0.5}
	beta := 0.3

	x := []float64{
		math.Log(p.Phi), math.Log(p.Lambda), math.Log(p.Gamma), math.Log1p(p.Kappa), beta,
	}

	time := ds.Column("Time")
	status := ds.Column("Status")
	xcov := ds.Column("X")

	var expected float64
	for i := range time {

		pi := p
		pi.Lambda = p.Lambda * math.Exp(beta*float64(xcov[i]))

		H, err := apgw.CumHaz(float64(time[i]), pi)
		if err != nil {
			t.Fatal(err)
		}
		expected -= H

		if status[i] == 1 {
			h, err := apgw.Hazard(float64(time[i]), pi)
			if err != nil {
				t.Fatal(err)
			}
			expected += math.Log(h)
		}
	}

	ll := sr.LogLike(x)
	if math.Abs(ll-expected) > 1e-10*(1+math.Abs(expected)) {
		t.Errorf("loglike = %v, expected %v", ll, expected)
	}
}

// Case weights must reproduce the log-likelihood of the expanded dataset.
func TestLogLikeWeights(t *testing.T) {

	fam := apgw.NewFamily(apgw.BaseKind)

	dw := [][]statfit.Dtype{
		{1, 2, 3},
		{1, 0, 1},
		{2, 1, 3},
	}
	dsw, err := statfit.NewDataset(dw, []string{"Time", "Status", "W"})
	if err != nil {
		t.Fatal(err)
	}

	de := [][]statfit.Dtype{
		{1, 1, 2, 3, 3, 3},
		{1, 1, 0, 1, 1, 1},
	}
	dse, err := statfit.NewDataset(de, []string{"Time", "Status"})
	if err != nil {
		t.Fatal(err)
	}

	config := DefaultConfig()
	config.WeightVar = "W"
	srw, err := New(dsw, fam, "Time", "Status", nil, config)
	if err != nil {
		t.Fatal(err)
	}

	sre, err := New(dse, fam, "Time", "Status", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	x := []float64{0, math.Log(0.7), 0.1, math.Log1p(0.5)}

	llw := srw.LogLike(x)
	lle := sre.LogLike(x)
	if math.Abs(llw-lle) > 1e-10*(1+math.Abs(lle)) {
		t.Errorf("weighted loglike %v differs from expanded loglike %v", llw, lle)
	}
}

func TestStartValuesFinite(t *testing.T) {

	ds := smallData(t)

	for _, kind := range []apgw.Kind{apgw.BaseKind, apgw.ScaleKind, apgw.FrailtyKind, apgw.TiltKind, apgw.RevTiltKind} {
		fam := apgw.NewFamily(kind)

		sr, err := New(ds, fam, "Time", "Status", []string{"X"}, nil)
		if err != nil {
			t.Fatal(err)
		}

		start := sr.startValues()
		if len(start) != sr.NumParams() {
			t.Fatalf("%s: start vector has length %d", fam.Name, len(start))
		}

		ll := sr.LogLike(start)
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			t.Errorf("%s: loglike at the starting point is %v", fam.Name, ll)
		}
	}
}

// simulate draws right-censoring-free event times from the base family,
// with a binary covariate scaling lambda.
func simulate(t *testing.T, n int, p apgw.Params, beta float64, seed uint64) statfit.Dataset {

	t.Helper()

	src := rand.NewSource(seed)

	time := make([]statfit.Dtype, n)
	status := make([]statfit.Dtype, n)
	xcov := make([]statfit.Dtype, n)

	for i := 0; i < n; i++ {
		x := float64(i % 2)
		pi := p
		pi.Lambda = p.Lambda * math.Exp(beta*x)

		s, err := apgw.Sample(1, pi, src)
		if err != nil {
			t.Fatal(err)
		}

		time[i] = statfit.Dtype(s[0])
		status[i] = 1
		xcov[i] = statfit.Dtype(x)
	}

	ds, err := statfit.NewDataset([][]statfit.Dtype{time, status, xcov}, []string{"Time", "Status", "X"})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestFitNoCovariates(t *testing.T) {

	p := apgw.Params{Phi: 1, Lambda: 2, Gamma: 1, Kappa: 1}
	ds := simulate(t, 800, p, 0, 3709)

	fam := apgw.NewFamily(apgw.BaseKind)
	sr, err := New(ds, fam, "Time", "Status", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	rslt, err := sr.Fit()
	if err != nil {
		t.Fatal(err)
	}

	// The maximized log-likelihood cannot fall below the value at the
	// true parameters (modulo optimizer tolerance).
	truth := []float64{0, math.Log(2), 0, math.Log1p(1)}
	if rslt.LogLike() < sr.LogLike(truth)-1 {
		t.Errorf("fitted loglike %v is below the truth %v", rslt.LogLike(), sr.LogLike(truth))
	}

	nat := rslt.NaturalParams()
	q := apgw.Params{Phi: nat[0], Lambda: nat[1], Gamma: nat[2], Kappa: nat[3]}
	if err := q.Validate(); err != nil {
		t.Errorf("fitted parameters are out of domain: %v", err)
	}

	if math.Abs(rslt.AIC()-(8-2*rslt.LogLike())) > 1e-10 {
		t.Errorf("AIC = %v", rslt.AIC())
	}
}

// A modest sample fit with the default configuration must not surface an
// optimizer error: stalls of the linesearch near the optimum are recovered
// from internally.
func TestFitSmallSample(t *testing.T) {

	p := apgw.Params{Phi: 1, Lambda: 2, Gamma: 1, Kappa: 1}
	beta := 0.5
	ds := simulate(t, 400, p, beta, 21)

	fam := apgw.NewFamily(apgw.BaseKind)
	sr, err := New(ds, fam, "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rslt, err := sr.Fit()
	if err != nil {
		t.Fatal(err)
	}

	bhat := rslt.Params()[sr.NumParams()-1]
	if math.Abs(bhat-beta) > 0.5 {
		t.Errorf("beta = %v, expected about %v", bhat, beta)
	}
}

// The natural-scale standard errors follow from the delta method.  Every
// parameter in the model is mapped to its natural scale through an
// exponential (exp for the positive parameters and coefficients, expm1
// shifted by one for kappa), so each natural SE is the working SE scaled
// by exp of the estimate.
func TestNaturalStdErrDeltaMethod(t *testing.T) {

	ds := smallData(t)
	fam := apgw.NewFamily(apgw.BaseKind)

	sr, err := New(ds, fam, "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	params := []float64{0.1, 0.5, -0.2, 0.3, 0.25}
	vcov := make([]float64, 25)
	for j := 0; j < 5; j++ {
		vcov[j*5+j] = 0.01 * float64(j+1)
	}

	rslt := &Results{
		BaseResults: statfit.NewBaseResults(sr, -10, params, vcov),
		sr:          sr,
	}

	std := rslt.StdErr()
	nat := rslt.NaturalStdErr()
	for j := range params {
		want := std[j] * math.Exp(params[j])
		if math.Abs(nat[j]-want) > 1e-5*(1+want) {
			t.Errorf("natural SE %d = %v, expected %v", j, nat[j], want)
		}
	}

	sum := rslt.Summary().String()
	if !strings.Contains(sum, "Natural SE") {
		t.Errorf("summary is missing the natural-scale standard errors:\n%s", sum)
	}
}

func TestFitCovariate(t *testing.T) {

	p := apgw.Params{Phi: 1, Lambda: 2, Gamma: 1, Kappa: 1}
	beta := 0.7
	ds := simulate(t, 1000, p, beta, 5511)

	fam := apgw.NewFamily(apgw.BaseKind)
	sr, err := New(ds, fam, "Time", "Status", []string{"X"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rslt, err := sr.Fit()
	if err != nil {
		t.Fatal(err)
	}

	// The covariate coefficient is the last parameter; with n=1000 its
	// sampling error is well under the tolerance used here.
	bhat := rslt.Params()[sr.NumParams()-1]
	if math.Abs(bhat-beta) > 0.35 {
		t.Errorf("beta = %v, expected about %v", bhat, beta)
	}

	sum := rslt.Summary().String()
	if len(sum) == 0 {
		t.Errorf("empty summary")
	}
}
