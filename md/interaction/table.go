package interaction

import (
	"fmt"

	"github.com/cwbudde/algo-nbnxm/internal/interp"
)

// Table samples the long-range Coulomb correction at r = i/Scale.
//
// V holds erf(beta*r)/r. In linear mode F holds the matching force
// -dV/dr and energies are integrated from the interpolated force, so both
// stay consistent. In cubic mode only V is used and the force is the
// derivative of the interpolating polynomial.
type Table struct {
	Scale  float64
	Interp Interp
	F      []float64
	V      []float64
}

// NewEwaldTable tabulates the Ewald correction with screening coefficient
// beta up to at least rmax. beta == 0 yields an all-zero table.
func NewEwaldTable(beta, rmax, scale float64, mode Interp) (*Table, error) {
	if !(scale > 0) || !(rmax > 0) {
		return nil, fmt.Errorf("%w: scale %g, range %g", ErrTable, scale, rmax)
	}
	n := int(rmax*scale) + 3
	if n > 1<<24 {
		return nil, fmt.Errorf("%w: %d points", ErrTable, n)
	}

	t := &Table{Scale: scale, Interp: mode, V: make([]float64, n)}
	if mode == InterpLinear {
		t.F = make([]float64, n)
	}
	for i := range n {
		r := float64(i) / scale
		v, f := EwaldCorrection(beta, r)
		t.V[i] = v
		if t.F != nil {
			t.F[i] = f * r
		}
	}
	return t, nil
}

// Validate checks the table arrays.
func (t *Table) Validate() error {
	if !(t.Scale > 0) {
		return fmt.Errorf("%w: scale %g", ErrTable, t.Scale)
	}
	if len(t.V) < 3 {
		return fmt.Errorf("%w: %d points", ErrTable, len(t.V))
	}
	switch t.Interp {
	case InterpLinear:
		if len(t.F) != len(t.V) {
			return fmt.Errorf("%w: %d force and %d energy points", ErrTable, len(t.F), len(t.V))
		}
	case InterpCubic:
	default:
		return fmt.Errorf("%w: unknown interpolation %d", ErrTable, t.Interp)
	}
	return nil
}

// Len returns the number of table points.
func (t *Table) Len() int {
	return len(t.V)
}

// Covers reports whether every r < rmax can be looked up.
func (t *Table) Covers(rmax float64) bool {
	if t.Validate() != nil {
		return false
	}
	need := int(rmax*t.Scale) + 2
	if t.Interp == InterpCubic {
		need++
	}
	return len(t.V) >= need
}

// Lookup interpolates at index ri plus fraction frac and returns the
// force -dV/dr and the potential V.
func (t *Table) Lookup(ri int, frac float64) (f, v float64) {
	if t.Interp == InterpCubic {
		xm1 := t.V[1]
		if ri > 0 {
			xm1 = t.V[ri-1]
		}
		x0, x1, x2 := t.V[ri], t.V[ri+1], t.V[ri+2]
		v = interp.Hermite4(frac, xm1, x0, x1, x2)
		f = -t.Scale * interp.Hermite4Deriv(frac, xm1, x0, x1, x2)
		return f, v
	}
	f0 := t.F[ri]
	f = interp.Linear2(frac, f0, t.F[ri+1])
	v = interp.TrapezoidStep(frac, t.V[ri], f0, f, 0.5/t.Scale)
	return f, v
}

// Eval interpolates the table at distance r.
func (t *Table) Eval(r float64) (f, v float64) {
	rs := r * t.Scale
	ri := int(rs)
	return t.Lookup(ri, rs-float64(ri))
}
