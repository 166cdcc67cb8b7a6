package lane

import "math"

// MaxWidth is the storage size of every register. Only the first
// Lanes[W]() entries of a register are active.
const MaxWidth = 8

// Width selects the number of active lanes at compile time.
type Width interface {
	Lanes() int
}

type (
	// W1 is the scalar width.
	W1 struct{}
	// W2 matches 128-bit float64 registers (SSE2, NEON).
	W2 struct{}
	// W4 matches 256-bit float64 registers (AVX2).
	W4 struct{}
	// W8 matches 512-bit float64 registers (AVX-512).
	W8 struct{}
)

func (W1) Lanes() int { return 1 }
func (W2) Lanes() int { return 2 }
func (W4) Lanes() int { return 4 }
func (W8) Lanes() int { return 8 }

// Real is a register of float64 lanes.
type Real[W Width] [MaxWidth]float64

// Bool is a per-lane predicate.
type Bool[W Width] [MaxWidth]bool

// Int holds per-lane integer values such as table indices.
type Int[W Width] [MaxWidth]int

// Offsets maps lanes to element offsets for Gather.
type Offsets [MaxWidth]int

// Lanes returns the number of active lanes for W.
func Lanes[W Width]() int {
	var w W
	return w.Lanes()
}

// Zero returns a register with all lanes cleared.
func Zero[W Width]() Real[W] {
	return Real[W]{}
}

// Set1 broadcasts x into every active lane.
func Set1[W Width](x float64) Real[W] {
	var r Real[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		r[l] = x
	}
	return r
}

// Load reads Lanes[W]() consecutive values from src.
func Load[W Width](src []float64) Real[W] {
	var r Real[W]
	n := Lanes[W]()
	_ = src[n-1]
	for l := 0; l < n; l++ {
		r[l] = src[l]
	}
	return r
}

// Store writes the active lanes of a to dst.
func Store[W Width](dst []float64, a Real[W]) {
	n := Lanes[W]()
	_ = dst[n-1]
	for l := 0; l < n; l++ {
		dst[l] = a[l]
	}
}

// Gather loads src[base+off[l]] into lane l.
func Gather[W Width](src []float64, base int, off *Offsets) Real[W] {
	var r Real[W]
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		r[l] = src[base+off[l]]
	}
	return r
}

// Add returns a+b.
func Add[W Width](a, b Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] += b[l]
	}
	return a
}

// Sub returns a-b.
func Sub[W Width](a, b Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] -= b[l]
	}
	return a
}

// Mul returns a*b.
func Mul[W Width](a, b Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] *= b[l]
	}
	return a
}

// FMA returns a*b + c.
func FMA[W Width](a, b, c Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		c[l] += a[l] * b[l]
	}
	return c
}

// FNMA returns c - a*b.
func FNMA[W Width](a, b, c Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		c[l] -= a[l] * b[l]
	}
	return c
}

// Neg returns -a.
func Neg[W Width](a Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = -a[l]
	}
	return a
}

// InvSqrt returns 1/sqrt(a).
func InvSqrt[W Width](a Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = 1 / math.Sqrt(a[l])
	}
	return a
}

// Exp returns e**a.
func Exp[W Width](a Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = math.Exp(a[l])
	}
	return a
}

// Erf returns the error function of a.
func Erf[W Width](a Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		a[l] = math.Erf(a[l])
	}
	return a
}

// Max returns the lane-wise maximum of a and b.
func Max[W Width](a, b Real[W]) Real[W] {
	n := Lanes[W]()
	for l := 0; l < n; l++ {
		if b[l] > a[l] {
			a[l] = b[l]
		}
	}
	return a
}

// Reduce returns the horizontal sum of the active lanes.
func Reduce[W Width](a Real[W]) float64 {
	n := Lanes[W]()
	s := 0.0
	for l := 0; l < n; l++ {
		s += a[l]
	}
	return s
}
