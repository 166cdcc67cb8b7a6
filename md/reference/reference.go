// Package reference evaluates the same short-range interactions as the
// cluster kernels with a plain double loop over particle pairs. It is
// slow and exists to check the kernels.
package reference

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

// ErrBox reports a periodic box too small for the cutoff.
var ErrBox = errors.New("reference: box shorter than twice the cutoff")

// System is a set of particles, optionally in a rectangular periodic box.
type System struct {
	Atoms []atomdata.Atom
	// Box enables periodic boundaries when non-nil.
	Box        *[3]float64
	Exclusions *pairlist.Exclusions
}

// Result holds per-particle forces and energies.
type Result struct {
	F   [][3]float64
	VLJ float64
	VC  float64

	// GroupVLJ and GroupVC are NumGroups x NumGroups with the energy
	// between groups g1 >= g2 stored at g1*NumGroups+g2.
	NumGroups int
	GroupVLJ  []float64
	GroupVC   []float64

	// Virial is -1/2 sum over pairs of d (x) f, d the pair displacement
	// and f the force on its first particle.
	Virial [3][3]float64

	// Pairs counts the particle pairs within the cutoff, excluded pairs
	// with a long-range correction included.
	Pairs int
}

// Compute evaluates sys under params.
func Compute(params *interaction.Params, sys System) (*Result, error) {
	n := len(sys.Atoms)
	ng := 1
	for i, a := range sys.Atoms {
		if a.Type < 0 || a.Type >= params.NumTypes() || a.EnergyGroup < 0 {
			return nil, fmt.Errorf("%w: atom %d", atomdata.ErrAtom, i)
		}
		ng = max(ng, a.EnergyGroup+1)
	}
	rc := params.RCoulomb
	var images [][3]float64
	if sys.Box != nil {
		b := *sys.Box
		if b[0] < 2*rc || b[1] < 2*rc || b[2] < 2*rc {
			return nil, fmt.Errorf("%w: box %v, cutoff %g", ErrBox, b, rc)
		}
		images = pairlist.NewRectangularShifts(b).Vec
	} else {
		images = [][3]float64{{}}
	}

	res := &Result{
		F:         make([][3]float64, n),
		NumGroups: ng,
		GroupVLJ:  make([]float64, ng*ng),
		GroupVC:   make([]float64, ng*ng),
	}
	ev := evaluator{p: params, rc2: rc * rc, rvdw2: params.RVdW * params.RVdW}
	corrected := params.HasCoulombCorrection() || params.HasLJCorrection()

	for i := range n {
		for j := i + 1; j < n; j++ {
			ai, aj := sys.Atoms[i], sys.Atoms[j]
			d, r2 := nearestImage(ai.Pos, aj.Pos, images)
			if r2 >= ev.rc2 {
				continue
			}
			excluded := sys.Exclusions.Excluded(i, j)
			if !excluded || corrected {
				res.Pairs++
			}
			fscal, vlj, vc := ev.pair(ai, aj, r2, excluded)
			for k := range 3 {
				res.F[i][k] += fscal * d[k]
				res.F[j][k] -= fscal * d[k]
				for m := range 3 {
					res.Virial[k][m] -= 0.5 * d[k] * fscal * d[m]
				}
			}
			res.add(ai.EnergyGroup, aj.EnergyGroup, vlj, vc)
		}
	}

	coulSelf := params.CoulombSelf()
	ljSelf := params.LJEwaldSelf()
	for _, a := range sys.Atoms {
		g := params.GridC6(a.Type)
		res.add(a.EnergyGroup, a.EnergyGroup, g*g*ljSelf, -params.EpsFac*a.Charge*a.Charge*coulSelf)
	}
	return res, nil
}

func (r *Result) add(gi, gj int, vlj, vc float64) {
	r.VLJ += vlj
	r.VC += vc
	b := max(gi, gj)*r.NumGroups + min(gi, gj)
	r.GroupVLJ[b] += vlj
	r.GroupVC[b] += vc
}

// nearestImage returns xi - xj for the closest image of xi.
func nearestImage(xi, xj [3]float64, images [][3]float64) (d [3]float64, r2 float64) {
	r2 = math.Inf(1)
	for _, s := range images {
		var e [3]float64
		for k := range 3 {
			e[k] = xi[k] + s[k] - xj[k]
		}
		if q := e[0]*e[0] + e[1]*e[1] + e[2]*e[2]; q < r2 {
			d, r2 = e, q
		}
	}
	return d, r2
}

type evaluator struct {
	p     *interaction.Params
	rc2   float64
	rvdw2 float64
}

// pair returns the scalar force divided by r and the energies of a pair
// at squared distance r2 inside the Coulomb cutoff.
func (e *evaluator) pair(ai, aj atomdata.Atom, r2 float64, excluded bool) (fscal, vlj, vc float64) {
	p := e.p
	r := math.Sqrt(r2)
	qq := p.EpsFac * ai.Charge * aj.Charge

	fc, vc := e.coulomb(qq, r, r2, excluded)
	fscal = fc
	if r2 < e.rvdw2 {
		c6, c12 := p.C6(ai.Type, aj.Type), p.C12(ai.Type, aj.Type)
		c6grid := p.GridC6(ai.Type) * p.GridC6(aj.Type)
		var fr float64
		fr, vlj = e.lj(c6, c12, c6grid, r, r2, excluded)
		if r2 > 0 {
			fscal += fr / r2
		}
	}
	return fscal, vlj, vc
}

func (e *evaluator) coulomb(qq, r, r2 float64, excluded bool) (fscal, v float64) {
	p := e.p
	if p.Coulomb == interaction.CoulombReactionField {
		if excluded {
			return -2 * qq * p.KRF, qq * (p.KRF*r2 - p.CRF)
		}
		return qq * (1/(r*r2) - 2*p.KRF), qq * (1/r + p.KRF*r2 - p.CRF)
	}

	var vlr, flr float64
	if p.Coulomb == interaction.CoulombTable {
		var ft float64
		ft, vlr = p.Table.Eval(r)
		if r > 0 {
			flr = ft / r
		}
	} else {
		vlr, flr = interaction.EwaldCorrection(p.BetaQ, r)
	}
	if excluded {
		return -qq * flr, -qq * vlr
	}
	return qq * (1/(r*r2) - flr), qq * (1/r - p.ShEwald - vlr)
}

// lj returns the LJ force times r and the energy.
func (e *evaluator) lj(c6, c12, c6grid, r, r2 float64, excluded bool) (fr, v float64) {
	p := e.p
	if !excluded {
		ir6 := 1 / (r2 * r2 * r2)
		ir12 := ir6 * ir6
		switch p.VdW {
		case interaction.VdWPotSwitch:
			v0 := c12*ir12 - c6*ir6
			f0 := 12*c12*ir12 - 6*c6*ir6
			sw, dsw := p.Switch.Eval(math.Max(r-p.RVdWSwitch, 0))
			fr, v = f0*sw-v0*dsw*r, v0*sw
		case interaction.VdWForceSwitch:
			t := math.Max(r-p.RVdWSwitch, 0)
			d, q := p.Dispersion, p.Repulsion
			f6 := 6*ir6 + (d.A*t*t+d.B*t*t*t)*r
			f12 := 12*ir12 + (q.A*t*t+q.B*t*t*t)*r
			v6 := ir6 + d.CPot - d.A/3*t*t*t - d.B/4*t*t*t*t
			v12 := ir12 + q.CPot - q.A/3*t*t*t - q.B/4*t*t*t*t
			fr, v = c12*f12-c6*f6, c12*v12-c6*v6
		default:
			fr = 12*c12*ir12 - 6*c6*ir6
			v = c12*(ir12+p.Repulsion.CPot) - c6*(ir6+p.Dispersion.CPot)
		}
	}
	if p.VdW == interaction.VdWEwald {
		vg, fg := interaction.LJEwaldGrid(p.BetaLJ, r2)
		if !excluded {
			vg += p.ShLJEwald
		}
		fr += c6grid * fg * r2
		v += c6grid * vg
	}
	return fr, v
}
