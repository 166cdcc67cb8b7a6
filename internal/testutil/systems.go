package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
)

// RandomAtoms places n particles uniformly in box, keeping every pair at
// least minDist apart without periodic images. Charges alternate between
// +0.4 and -0.4 with a neutral total for even n; types cycle through
// [0, ntypes). The same seed always gives the same system.
func RandomAtoms(seed int64, n int, box [3]float64, ntypes int, minDist float64) []atomdata.Atom {
	rng := rand.New(rand.NewSource(seed))
	atoms := make([]atomdata.Atom, 0, n)
	min2 := minDist * minDist
	for len(atoms) < n {
		pos := [3]float64{rng.Float64() * box[0], rng.Float64() * box[1], rng.Float64() * box[2]}
		if tooClose(atoms, pos, min2) {
			continue
		}
		i := len(atoms)
		q := 0.4
		if i%2 == 1 {
			q = -0.4
		}
		atoms = append(atoms, atomdata.Atom{Pos: pos, Charge: q, Type: rng.Intn(max(ntypes, 1))})
	}
	if n%2 == 1 {
		atoms[n-1].Charge = 0
	}
	return atoms
}

func tooClose(atoms []atomdata.Atom, pos [3]float64, min2 float64) bool {
	for _, a := range atoms {
		var r2 float64
		for d := range 3 {
			x := a.Pos[d] - pos[d]
			r2 += x * x
		}
		if r2 < min2 {
			return true
		}
	}
	return false
}

// LJMatrix returns the Lorentz-Berthelot c6 and c12 matrices of types with
// the given sigma and epsilon. A type with zero epsilon does not interact.
func LJMatrix(sigma, eps []float64) (c6, c12 []float64) {
	n := len(sigma)
	c6 = make([]float64, n*n)
	c12 = make([]float64, n*n)
	for i := range n {
		for j := range n {
			s := 0.5 * (sigma[i] + sigma[j])
			e := math.Sqrt(eps[i] * eps[j])
			s6 := math.Pow(s, 6)
			c6[i*n+j] = 4 * e * s6
			c12[i*n+j] = 4 * e * s6 * s6
		}
	}
	return c6, c12
}

// GeometricMatrix returns c6 and c12 matrices that follow the geometric
// rule for the given per-type self parameters.
func GeometricMatrix(c6ii, c12ii []float64) (c6, c12 []float64) {
	n := len(c6ii)
	c6 = make([]float64, n*n)
	c12 = make([]float64, n*n)
	for i := range n {
		for j := range n {
			c6[i*n+j] = math.Sqrt(c6ii[i] * c6ii[j])
			c12[i*n+j] = math.Sqrt(c12ii[i] * c12ii[j])
		}
	}
	return c6, c12
}

// Forces returns the forces of the real particles of atoms from a slot
// force array.
func Forces(atoms *atomdata.Atoms, f []float64) [][3]float64 {
	out := make([][3]float64, atoms.NumAtoms)
	for i := range out {
		x := atomdata.XIndex(i)
		out[i] = [3]float64{f[x], f[x+1], f[x+2]}
	}
	return out
}
