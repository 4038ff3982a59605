package apgw

import (
	"fmt"
	"math"
)

// The scale and frailty variants are plain reparameterizations of the base
// family: theta premultiplies phi (accelerated failure time) or lambda
// (proportional hazards).  The tilt variant transforms the base cumulative
// hazard through the link, H_tilt(t) = g(H(t); theta), giving a
// proportional-odds model.  The reverse-tilt variant composes in the other
// order, on the time scale rather than the hazard scale: a reverse-tilt
// event time is g(T; 1/theta) for a base event time T, so
// H_rev(t) = H(g(t; theta)).  The two compositions do not commute; tests
// guard against conflating them.

func validateTheta(theta float64) error {
	if !(theta > 0) {
		return fmt.Errorf("%w: theta=%v must be positive", ErrDomain, theta)
	}
	return nil
}

// ScaleHazard is the AFT-variant hazard, h(t; theta*phi, lambda, gamma, kappa).
func ScaleHazard(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Phi *= theta
	return Hazard(t, p)
}

// ScaleCumHaz is the AFT-variant cumulative hazard.
func ScaleCumHaz(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Phi *= theta
	return CumHaz(t, p)
}

// ScaleInvCumHaz inverts ScaleCumHaz in t.
func ScaleInvCumHaz(v float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Phi *= theta
	return InvCumHaz(v, p)
}

// FrailtyHazard is the PH-variant hazard, h(t; phi, theta*lambda, gamma, kappa).
func FrailtyHazard(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Lambda *= theta
	return Hazard(t, p)
}

// FrailtyCumHaz is the PH-variant cumulative hazard.
func FrailtyCumHaz(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Lambda *= theta
	return CumHaz(t, p)
}

// FrailtyInvCumHaz inverts FrailtyCumHaz in t.
func FrailtyInvCumHaz(v float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	p.Lambda *= theta
	return InvCumHaz(v, p)
}

// TiltHazard is the PO-variant hazard, obtained by differentiating
// g(H(t); theta):
//
//	h_tilt(t) = theta * h(t) * e^H(t) / (1 + theta*(e^H(t) - 1))
func TiltHazard(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	h, err := Hazard(t, p)
	if err != nil {
		return 0, err
	}
	H, err := CumHaz(t, p)
	if err != nil {
		return 0, err
	}
	ht := LinkDeriv(H, theta) * h
	if math.IsNaN(ht) || math.IsInf(ht, 0) {
		return 0, fmt.Errorf("%w: tilt hazard at t=%v", ErrNonFinite, t)
	}
	return ht, nil
}

// TiltCumHaz is the PO-variant cumulative hazard, g(H(t); theta).
func TiltCumHaz(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	H, err := CumHaz(t, p)
	if err != nil {
		return 0, err
	}
	Ht := LinkFn(H, theta)
	if math.IsNaN(Ht) || math.IsInf(Ht, 0) {
		return 0, fmt.Errorf("%w: tilt cumulative hazard at t=%v", ErrNonFinite, t)
	}
	return Ht, nil
}

// TiltInvCumHaz inverts TiltCumHaz in t: the link with parameter 1/theta is
// applied on the hazard scale before the base inversion.
func TiltInvCumHaz(v float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	if !(v >= 0) {
		return 0, fmt.Errorf("%w: v=%v must be non-negative", ErrDomain, v)
	}
	return InvCumHaz(LinkFn(v, 1/theta), p)
}

// RevTiltHazard is the PGT-variant hazard,
//
//	h_rev(t) = h(g(t; theta)) * g'(t; theta)
func RevTiltHazard(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	h, err := Hazard(LinkFn(t, theta), p)
	if err != nil {
		return 0, err
	}
	hr := h * LinkDeriv(t, theta)
	if math.IsNaN(hr) || math.IsInf(hr, 0) {
		return 0, fmt.Errorf("%w: reverse-tilt hazard at t=%v", ErrNonFinite, t)
	}
	return hr, nil
}

// RevTiltCumHaz is the PGT-variant cumulative hazard, H(g(t; theta)): the
// base cumulative hazard applied to a link-transformed time argument, not a
// link transform of the base cumulative hazard's output.
func RevTiltCumHaz(t float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	if !(t >= 0) {
		return 0, fmt.Errorf("%w: t=%v must be non-negative", ErrDomain, t)
	}
	return CumHaz(LinkFn(t, theta), p)
}

// RevTiltInvCumHaz inverts RevTiltCumHaz in t: the link with parameter
// 1/theta is applied to the base inversion on the time scale.
func RevTiltInvCumHaz(v float64, p Params, theta float64) (float64, error) {
	if err := validateTheta(theta); err != nil {
		return 0, err
	}
	t, err := InvCumHaz(v, p)
	if err != nil {
		return 0, err
	}
	return LinkFn(t, 1/theta), nil
}
