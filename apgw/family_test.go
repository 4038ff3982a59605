package apgw

import (
	"math"
	"testing"
)

func TestTransformRoundTrip(t *testing.T) {

	points := map[string][]float64{
		"phi":    {0.01, 0.5, 1, 10},
		"lambda": {0.01, 0.5, 1, 10},
		"gamma":  {0.01, 0.5, 1, 10},
		"theta":  {0.01, 0.5, 1, 10},
		"kappa":  {-0.99, -0.2, 0, 1, 10},
	}

	for _, kind := range []Kind{BaseKind, ScaleKind, FrailtyKind, TiltKind, RevTiltKind} {
		fam := NewFamily(kind)

		if len(fam.Transforms) != fam.NumParams() || len(fam.InvTransforms) != fam.NumParams() {
			t.Fatalf("%s: transform list length mismatch", fam.Name)
		}

		for j, name := range fam.ParamNames {
			for _, x := range points[name] {
				y := fam.InvTransforms[j](fam.Transforms[j](x))
				if math.Abs(y-x) > 1e-10*(1+math.Abs(x)) {
					t.Errorf("%s: transform round trip failed for %s at %v: got %v",
						fam.Name, name, x, y)
				}
			}
		}
	}
}

func TestFamilyLocations(t *testing.T) {

	loc := map[Kind]string{
		BaseKind:    "lambda",
		ScaleKind:   "theta",
		FrailtyKind: "lambda",
		TiltKind:    "theta",
		RevTiltKind: "theta",
	}

	for kind, want := range loc {
		fam := NewFamily(kind)
		if fam.ParamNames[fam.Location] != want {
			t.Errorf("%s: location parameter is %s, expected %s",
				fam.Name, fam.ParamNames[fam.Location], want)
		}
	}
}

func TestFamilyInit(t *testing.T) {

	times := []float64{1, 2, 3, 4, 5, 6, 7}

	for _, kind := range []Kind{BaseKind, ScaleKind, FrailtyKind, TiltKind, RevTiltKind} {
		fam := NewFamily(kind)

		par := fam.Init(times)
		if len(par) != fam.NumParams() {
			t.Fatalf("%s: initializer returned %d values for %d parameters",
				fam.Name, len(par), fam.NumParams())
		}

		// The rate parameter is seeded from the exponential
		// median-to-rate relationship.
		if r := par[1]; math.Abs(r-math.Ln2/4) > 1e-10 {
			t.Errorf("%s: rate seed is %v, expected %v", fam.Name, r, math.Ln2/4)
		}

		// The starting point must be in the domain of the family.
		p := baseParams(par)
		if err := p.Validate(); err != nil {
			t.Errorf("%s: initializer returned invalid parameters: %v", fam.Name, err)
		}
	}
}

func TestFamilyEvalMatchesScalar(t *testing.T) {

	fam := NewFamily(BaseKind)
	p := Params{Phi: 1, Lambda: 5, Gamma: 2, Kappa: -0.2}
	par := []float64{p.Phi, p.Lambda, p.Gamma, p.Kappa}

	times := []float64{0.1, 0.5, 1, 2}
	h := make([]float64, len(times))
	H := make([]float64, len(times))

	if err := fam.HazardVec(times, par, h); err != nil {
		t.Fatal(err)
	}
	if err := fam.CumHazVec(times, par, H); err != nil {
		t.Fatal(err)
	}

	for i, ti := range times {
		hb, err := Hazard(ti, p)
		if err != nil {
			t.Fatal(err)
		}
		Hb, err := CumHaz(ti, p)
		if err != nil {
			t.Fatal(err)
		}
		if h[i] != hb || H[i] != Hb {
			t.Errorf("vector evaluation differs from scalar at t=%v", ti)
		}
	}
}

func TestParseKind(t *testing.T) {

	for name, want := range map[string]Kind{
		"base": BaseKind, "scale": ScaleKind, "frailty": FrailtyKind,
		"tilt": TiltKind, "revtilt": RevTiltKind,
	} {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatal(err)
		}
		if k != want {
			t.Errorf("ParseKind(%q) = %v", name, k)
		}
	}

	if _, err := ParseKind("weibull"); err == nil {
		t.Errorf("ParseKind accepted an unknown family name")
	}
}
