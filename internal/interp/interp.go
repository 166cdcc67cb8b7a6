// Package interp provides the interpolation primitives behind the
// tabulated interaction kernels.
//
// Tables are sampled at a fixed spacing h = 1/scale. A lookup at distance r
// uses index floor(r*scale) and fraction r*scale - index.
package interp

// Linear2 interpolates between x0 (t=0) and x1 (t=1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point (Catmull-Rom) interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// Hermite4Deriv returns d/dt of [Hermite4] for the same points. Multiply
// by the table scale to get the derivative with respect to r.
func Hermite4Deriv(t, xm1, x0, x1, x2 float64) float64 {
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return (3*c3*t+2*c2)*t + c1
}

// TrapezoidStep integrates a linearly interpolated force from the node at
// t=0 to t: it returns v0 - halfStep*t*(f0+ft), where halfStep is h/2 and
// ft the interpolated force at t. This keeps table energies consistent
// with linear table forces.
func TrapezoidStep(t, v0, f0, ft, halfStep float64) float64 {
	return v0 - halfStep*t*(f0+ft)
}
