package apgw

import "math"

// LinkFn is the log generalized-logistic link
//
//	g(z; theta) = log(1 + theta*(e^z - 1))
//
// used to tilt a baseline cumulative hazard into a proportional-odds-style
// cumulative hazard.  For theta = 1 the link is the identity, and the link
// with parameter 1/theta inverts the link with parameter theta.
func LinkFn(z, theta float64) float64 {
	return math.Log1p(theta * math.Expm1(z))
}

// LinkInv inverts LinkFn in its first argument:
// LinkInv(LinkFn(z, theta), theta) == z.
func LinkInv(z, theta float64) float64 {
	return LinkFn(z, 1/theta)
}

// LinkDeriv is the derivative of LinkFn with respect to its first argument,
// written so it tends to its limit of 1 as z grows instead of overflowing.
func LinkDeriv(z, theta float64) float64 {
	emz := math.Exp(-z)
	return theta / (theta + (1-theta)*emz)
}
