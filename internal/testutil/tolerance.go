// Package testutil holds helpers shared by the kernel tests: tolerance
// checks and deterministic particle systems.
package testutil

import (
	"fmt"
	"math"
	"testing"
)

// Close reports whether got is within rel*max(|got|,|want|) + abs of want.
func Close(got, want, rel, abs float64) bool {
	return math.Abs(got-want) <= rel*math.Max(math.Abs(got), math.Abs(want))+abs
}

// RequireClose fails t unless got is close to want.
func RequireClose(t testing.TB, got, want, rel, abs float64, what string) {
	t.Helper()
	if !Close(got, want, rel, abs) {
		t.Fatalf("%s: got %.15g, want %.15g (diff %.3g)", what, got, want, got-want)
	}
}

// RequireVectorsClose fails t if the vector lists differ in length or any
// component is not close. Relative errors are taken against the largest
// component magnitude in want, so small components of large forces do not
// fail on cancellation noise.
func RequireVectorsClose(t testing.TB, got, want [][3]float64, rel, abs float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	scale := 0.0
	for _, w := range want {
		scale = math.Max(scale, math.Max(math.Abs(w[0]), math.Max(math.Abs(w[1]), math.Abs(w[2]))))
	}
	for i := range got {
		for d := range 3 {
			if diff := math.Abs(got[i][d] - want[i][d]); diff > rel*scale+abs {
				t.Fatalf("vector %d component %d: got %.15g, want %.15g (diff %.3g)", i, d, got[i][d], want[i][d], diff)
			}
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}
