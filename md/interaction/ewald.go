package interaction

import (
	"fmt"
	"math"
)

// EwaldSeriesLimit is the value of y = (beta*r)^2 below which the
// screening functions are summed as power series; the closed forms lose
// digits to cancellation there.
const EwaldSeriesLimit = 1.0

const seriesTerms = 24

var twoOverSqrtPi = 2 / math.Sqrt(math.Pi)

// EwaldCorrection returns the long-range part of the Ewald-split Coulomb
// interaction, v = erf(beta*r)/r, and its force divided by r,
// f = -(dv/dr)/r. Both stay finite for r -> 0.
func EwaldCorrection(beta, r float64) (v, f float64) {
	if beta == 0 {
		return 0, 0
	}
	x := beta * r
	y := x * x
	if y < EwaldSeriesLimit {
		// erf(x)/x = 2/sqrt(pi) sum_m t_m/(2m+1) and
		// g(x)     = 2/sqrt(pi) sum_m 2 t_m/(2m+3), with t_m = (-y)^m/m!
		sv, sf := 0.0, 0.0
		term := 1.0
		for m := 0; m < seriesTerms; m++ {
			sv += term / float64(2*m+1)
			sf += 2 * term / float64(2*m+3)
			term *= -y / float64(m+1)
		}
		return beta * twoOverSqrtPi * sv, beta * beta * beta * twoOverSqrtPi * sf
	}
	erf := math.Erf(x)
	v = erf / r
	f = (erf - twoOverSqrtPi*x*math.Exp(-y)) / (r * r * r)
	return v, f
}

// ljEwaldScreen returns exp(-y)(1 + y + y^2/2), the short-range fraction
// of the r^-6 dispersion at y = (beta*r)^2.
func ljEwaldScreen(y float64) float64 {
	return math.Exp(-y) * (1 + y + y*y/2)
}

// LJEwaldGrid returns the grid part of the geometric LJ-Ewald dispersion
// with unit C6, v = (1 - exp(-y)(1+y+y^2/2))/r^6 at y = beta^2*rsq, and its
// force divided by r. Both stay finite for rsq -> 0, where they tend to
// beta^6/6 and beta^8/4.
func LJEwaldGrid(beta, rsq float64) (v, f float64) {
	b2 := beta * beta
	b6 := b2 * b2 * b2
	y := b2 * rsq
	h, g := ljEwaldSeries(y)
	return b6 * h, b6 * b2 * g
}

// ljEwaldSeries returns H(y) = (1 - exp(-y) P2(y))/y^3 and
// G(y) = 6 (1 - exp(-y) P3(y))/y^4, where Pn is the n-th order Taylor
// polynomial of exp(y).
func ljEwaldSeries(y float64) (h, g float64) {
	ex := math.Exp(-y)
	if y < EwaldSeriesLimit {
		// 1 - exp(-y) Pn(y) = exp(-y) sum_{k>n} y^k/k!
		th, tg := 1.0/6, 1.0/24
		sh, sg := 0.0, 0.0
		for k := 0; k < seriesTerms; k++ {
			sh += th
			sg += tg
			th *= y / float64(k+4)
			tg *= y / float64(k+5)
		}
		return ex * sh, 6 * ex * sg
	}
	p2 := 1 + y + y*y/2
	p3 := p2 + y*y*y/6
	y3 := y * y * y
	return (1 - ex*p2) / y3, 6 * (1 - ex*p3) / (y3 * y)
}

// EwaldCoeff returns the Coulomb screening coefficient beta for which
// erfc(beta*rc) equals rtol.
func EwaldCoeff(rc, rtol float64) (float64, error) {
	return bisectCoeff(rc, rtol, func(x float64) float64 { return math.Erfc(x) })
}

// EwaldCoeffLJ returns the LJ-Ewald screening coefficient beta for which
// the short-range dispersion fraction exp(-x^2)(1+x^2+x^4/2), x = beta*rc,
// equals rtol.
func EwaldCoeffLJ(rc, rtol float64) (float64, error) {
	return bisectCoeff(rc, rtol, func(x float64) float64 { return ljEwaldScreen(x * x) })
}

// bisectCoeff solves screen(beta*rc) = rtol for a decreasing screen.
func bisectCoeff(rc, rtol float64, screen func(float64) float64) (float64, error) {
	if !(rtol > 0 && rtol < 1) {
		return 0, fmt.Errorf("%w: tolerance %g not in (0, 1)", ErrEwald, rtol)
	}
	if !(rc > 0) {
		return 0, fmt.Errorf("%w: cutoff %g", ErrCutoff, rc)
	}
	hi := 5.0
	for screen(hi*rc) > rtol {
		hi *= 2
	}
	lo := 0.0
	for range 60 {
		mid := (lo + hi) / 2
		if screen(mid*rc) > rtol {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
