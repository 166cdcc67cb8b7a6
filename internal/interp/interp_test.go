package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
		if d := Hermite4Deriv(tc.t, xm1, x0, x1, x2); math.Abs(d-1) > 1e-12 {
			t.Fatalf("t=%v: derivative got %v want 1", tc.t, d)
		}
	}
}

func TestHermite4DerivMatchesFiniteDifference(t *testing.T) {
	xm1, x0, x1, x2 := 0.3, -1.2, 2.5, 0.7
	const h = 1e-6
	for _, tt := range []float64{0.1, 0.4, 0.9} {
		fd := (Hermite4(tt+h, xm1, x0, x1, x2) - Hermite4(tt-h, xm1, x0, x1, x2)) / (2 * h)
		if d := Hermite4Deriv(tt, xm1, x0, x1, x2); math.Abs(d-fd) > 1e-7 {
			t.Fatalf("t=%v: derivative %v, finite difference %v", tt, d, fd)
		}
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("got %v want 2.5", got)
	}
}

func TestTrapezoidStepIntegratesConstantForce(t *testing.T) {
	// V' = -F with F = 2 and h = 0.1: V(t) = v0 - 2*0.1*t.
	got := TrapezoidStep(0.5, 1, 2, 2, 0.05)
	if math.Abs(got-0.9) > 1e-15 {
		t.Fatalf("got %v want 0.9", got)
	}
}
