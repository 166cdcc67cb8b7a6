package lane

import "math"

// CmpLT returns a < b per lane.
func CmpLT[W Width](a, b Real[W]) Bool[W] {
	var m Bool[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		m[l] = a[l] < b[l]
	}
	return m
}

// True returns a mask with every active lane set.
func True[W Width]() Bool[W] {
	var m Bool[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		m[l] = true
	}
	return m
}

// And returns a && b.
func And[W Width](a, b Bool[W]) Bool[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = a[l] && b[l]
	}
	return a
}

// AndNot returns a && !b.
func AndNot[W Width](a, b Bool[W]) Bool[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = a[l] && !b[l]
	}
	return a
}

// Any reports whether any active lane of m is set.
func Any[W Width](m Bool[W]) bool {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		if m[l] {
			return true
		}
	}
	return false
}

// Select keeps a where m is set and zeroes the other lanes.
func Select[W Width](m Bool[W], a Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		if !m[l] {
			a[l] = 0
		}
	}
	return a
}

// ToReal converts m to 1.0 (set) and 0.0 (clear) lanes.
func ToReal[W Width](m Bool[W]) Real[W] {
	var r Real[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		if m[l] {
			r[l] = 1
		}
	}
	return r
}

// FromBits sets lane l when bit first+l of bits is set. This is the
// exclusion filter: bits are the cluster-pair interaction mask.
func FromBits[W Width](bits uint64, first int) Bool[W] {
	var m Bool[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		m[l] = bits>>(uint(first+l))&1 != 0
	}
	return m
}

// Floor splits a into its integer part and fractional remainder.
// Lanes must be non-negative.
func Floor[W Width](a Real[W]) (Int[W], Real[W]) {
	var idx Int[W]
	var frac Real[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		f := math.Floor(a[l])
		idx[l] = int(f)
		frac[l] = a[l] - f
	}
	return idx, frac
}

// TransposeSum adds lane l of a into dst[(first+l)/rowLen]. With pair
// slots laid out row-major (one row per i-particle) it folds lanes into
// one scalar per i-particle. first must be a multiple of Lanes[W]() and,
// when rowLen >= Lanes[W](), rowLen must be one too.
func TransposeSum[W Width](dst []float64, a Real[W], first, rowLen int) {
	n := Lanes[W]()
	if rowLen >= n {
		dst[first/rowLen] += Reduce(a)
		return
	}
	for l := 0; l < n; l++ {
		dst[(first+l)/rowLen] += a[l]
	}
}

// ColumnSum adds lane l of a into dst[(first+l)%rowLen], folding lanes
// into one scalar per j-particle.
func ColumnSum[W Width](dst []float64, a Real[W], first, rowLen int) {
	n := Lanes[W]()
	if c := first % rowLen; c+n <= rowLen {
		Store(dst[c:], Add(Load[W](dst[c:]), a))
		return
	}
	for l := 0; l < n; l++ {
		dst[(first+l)%rowLen] += a[l]
	}
}

// Count returns the number of set lanes.
func Count[W Width](m Bool[W]) int {
	c := 0
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		if m[l] {
			c++
		}
	}
	return c
}
