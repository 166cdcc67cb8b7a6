package interaction

import (
	"fmt"
	"math"
)

// combTolerance is the relative tolerance used when matching a matrix
// against a combination rule.
const combTolerance = 1e-6

// ljTypes is the LJ matrix extended by one all-zero padding type.
type ljTypes struct {
	n      int
	stride int
	comb   Combination
	c6     []float64
	c12    []float64
	params []float64
	grid   []float64
	hasLJ  []bool
}

func newLJTypes(n int, c6, c12 []float64, comb Combination) (ljTypes, error) {
	if err := validateMatrix(n, c6, c12); err != nil {
		return ljTypes{}, err
	}

	detected := DetectCombination(n, c6, c12)
	switch comb {
	case CombDetect:
		comb = detected
	case CombNone:
	case CombGeometric, CombLorentzBerthelot:
		if !matchesRule(comb, n, c6, c12) {
			return ljTypes{}, fmt.Errorf("%w: %s requested, detected %s", ErrCombination, comb, detected)
		}
	default:
		return ljTypes{}, fmt.Errorf("%w: unknown rule %d", ErrCombination, comb)
	}

	s := n + 1
	t := ljTypes{
		n:      n,
		stride: s,
		comb:   comb,
		c6:     make([]float64, s*s),
		c12:    make([]float64, s*s),
		params: make([]float64, 2*s),
		grid:   make([]float64, s),
		hasLJ:  make([]bool, s),
	}
	for i := range n {
		for j := range n {
			t.c6[i*s+j] = c6[i*n+j]
			t.c12[i*s+j] = c12[i*n+j]
			if c6[i*n+j] != 0 || c12[i*n+j] != 0 {
				t.hasLJ[i] = true
			}
		}
		c6ii, c12ii := c6[i*n+i], c12[i*n+i]
		t.grid[i] = math.Sqrt(c6ii)
		switch comb {
		case CombGeometric:
			t.params[2*i] = math.Sqrt(c6ii)
			t.params[2*i+1] = math.Sqrt(c12ii)
		case CombLorentzBerthelot:
			sigma, eps := sigmaEpsilon(c6ii, c12ii)
			t.params[2*i] = 0.5 * sigma
			t.params[2*i+1] = math.Sqrt(eps)
		}
	}
	return t, nil
}

func validateMatrix(n int, c6, c12 []float64) error {
	if n < 0 {
		return fmt.Errorf("%w: %d types", ErrTypes, n)
	}
	if len(c6) != n*n || len(c12) != n*n {
		return fmt.Errorf("%w: %d types need %d entries, got %d and %d", ErrTypes, n, n*n, len(c6), len(c12))
	}
	for i := range n {
		if c6[i*n+i] < 0 || c12[i*n+i] < 0 {
			return fmt.Errorf("%w: negative self parameters for type %d", ErrTypes, i)
		}
		for j := range n {
			a, b := c6[i*n+j], c12[i*n+j]
			if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
				return fmt.Errorf("%w: non-finite entry (%d,%d)", ErrTypes, i, j)
			}
			if a != c6[j*n+i] || b != c12[j*n+i] {
				return fmt.Errorf("%w: asymmetric entry (%d,%d)", ErrTypes, i, j)
			}
		}
	}
	return nil
}

// sigmaEpsilon converts self parameters to LJ sigma and epsilon. Types
// without attraction or repulsion get zero for both.
func sigmaEpsilon(c6, c12 float64) (sigma, eps float64) {
	if c6 <= 0 || c12 <= 0 {
		return 0, 0
	}
	return math.Pow(c12/c6, 1.0/6), c6 * c6 / (4 * c12)
}

// DetectCombination returns the rule that reproduces the n x n matrices:
// [CombGeometric] if it matches, then [CombLorentzBerthelot], else
// [CombNone].
func DetectCombination(n int, c6, c12 []float64) Combination {
	if n == 0 {
		return CombGeometric
	}
	for _, rule := range []Combination{CombGeometric, CombLorentzBerthelot} {
		if matchesRule(rule, n, c6, c12) {
			return rule
		}
	}
	return CombNone
}

func matchesRule(rule Combination, n int, c6, c12 []float64) bool {
	for i := range n {
		for j := range n {
			w6, w12 := Combine(rule, c6[i*n+i], c12[i*n+i], c6[j*n+j], c12[j*n+j])
			if !nearlyEqual(c6[i*n+j], w6) || !nearlyEqual(c12[i*n+j], w12) {
				return false
			}
		}
	}
	return true
}

// Combine returns the pair parameters of two types with the given self
// parameters under rule. [CombNone] and [CombDetect] return zeros.
func Combine(rule Combination, c6i, c12i, c6j, c12j float64) (c6, c12 float64) {
	switch rule {
	case CombGeometric:
		return math.Sqrt(c6i * c6j), math.Sqrt(c12i * c12j)
	case CombLorentzBerthelot:
		si, ei := sigmaEpsilon(c6i, c12i)
		sj, ej := sigmaEpsilon(c6j, c12j)
		sigma := 0.5 * (si + sj)
		eps := math.Sqrt(ei * ej)
		s6 := math.Pow(sigma, 6)
		return 4 * eps * s6, 4 * eps * s6 * s6
	default:
		return 0, 0
	}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= combTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// NumTypes returns the number of LJ types, excluding the padding type.
func (p *Params) NumTypes() int {
	return p.types.n
}

// PaddingType is the type index of padding slots. It interacts with
// nothing.
func (p *Params) PaddingType() int {
	return p.types.n
}

// TypeStride is the row length of [Params.C6Matrix] and
// [Params.C12Matrix].
func (p *Params) TypeStride() int {
	return p.types.stride
}

// Combination returns the rule in effect.
func (p *Params) Combination() Combination {
	return p.types.comb
}

// C6 returns the dispersion coefficient of a type pair.
func (p *Params) C6(ti, tj int) float64 {
	return p.types.c6[ti*p.types.stride+tj]
}

// C12 returns the repulsion coefficient of a type pair.
func (p *Params) C12(ti, tj int) float64 {
	return p.types.c12[ti*p.types.stride+tj]
}

// C6Matrix returns the dispersion matrix including the padding row and
// column. The slice is shared and must not be modified.
func (p *Params) C6Matrix() []float64 {
	return p.types.c6
}

// C12Matrix returns the repulsion matrix including the padding row and
// column. The slice is shared and must not be modified.
func (p *Params) C12Matrix() []float64 {
	return p.types.c12
}

// CombParams returns the per-type combination parameters: (sqrt(C6),
// sqrt(C12)) for the geometric rule, (sigma/2, sqrt(epsilon)) for
// Lorentz-Berthelot, zeros otherwise.
func (p *Params) CombParams(t int) (a, b float64) {
	return p.types.params[2*t], p.types.params[2*t+1]
}

// GridC6 returns the per-type LJ-Ewald grid parameter sqrt(C6_tt). The
// grid coefficient of a pair is the product of both parameters.
func (p *Params) GridC6(t int) float64 {
	return p.types.grid[t]
}

// HasLJ reports whether type t has any non-zero LJ interaction.
func (p *Params) HasLJ(t int) bool {
	return p.types.hasLJ[t]
}
