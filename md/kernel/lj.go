package kernel

import (
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/lane"
)

// pairData holds the per-lane inputs of one chunk of particle pairs.
// interact is 1 for pairs that interact directly and 0 for excluded pairs
// that only contribute a long-range correction. rinv is zero on lanes
// outside the cutoff.
type pairData[W lane.Width] struct {
	rsq      lane.Real[W]
	rinv     lane.Real[W]
	rinvsq   lane.Real[W]
	interact lane.Real[W]

	c6     lane.Real[W]
	c12    lane.Real[W]
	c6grid lane.Real[W]
	qq     lane.Real[W]
}

// ljModel evaluates the Lennard-Jones interaction of a chunk. fr is the
// scalar force times r; v is only valid when energy is set.
type ljModel[W lane.Width] interface {
	usesGrid() bool
	eval(p *pairData[W], energy bool) (fr, v lane.Real[W])
}

func cube[W lane.Width](a lane.Real[W]) lane.Real[W] {
	return lane.Mul(lane.Mul(a, a), a)
}

// ljCut is a plain cutoff with constant potential shifts.
type ljCut[W lane.Width] struct {
	cpot6  float64
	cpot12 float64
}

func newLJCut[W lane.Width](p *interaction.Params) ljCut[W] {
	return ljCut[W]{cpot6: p.Dispersion.CPot, cpot12: p.Repulsion.CPot}
}

func (ljCut[W]) usesGrid() bool { return false }

func (m ljCut[W]) eval(p *pairData[W], energy bool) (fr, v lane.Real[W]) {
	rinvsix := lane.Mul(p.interact, cube(p.rinvsq))
	fr6 := lane.Mul(p.c6, rinvsix)
	fr12 := lane.Mul(p.c12, lane.Mul(rinvsix, rinvsix))
	fr = lane.FNMA(lane.Set1[W](6), fr6, lane.Mul(lane.Set1[W](12), fr12))
	if energy {
		v12 := lane.FMA(p.c12, lane.Mul(p.interact, lane.Set1[W](m.cpot12)), fr12)
		v6 := lane.FMA(p.c6, lane.Mul(p.interact, lane.Set1[W](m.cpot6)), fr6)
		v = lane.Sub(v12, v6)
	}
	return fr, v
}

// ljPotSwitch multiplies the unshifted potential by a quintic switch
// between rsw and the cutoff.
type ljPotSwitch[W lane.Width] struct {
	rsw float64
	sw  interaction.PotSwitch
}

func (ljPotSwitch[W]) usesGrid() bool { return false }

func (m ljPotSwitch[W]) eval(p *pairData[W], _ bool) (fr, v lane.Real[W]) {
	r := lane.Mul(p.rsq, p.rinv)
	t := lane.Max(lane.Sub(r, lane.Set1[W](m.rsw)), lane.Zero[W]())

	var sw, dsw lane.Real[W]
	n := lane.Lanes[W]()
	for l := 0; l < n; l++ {
		sw[l], dsw[l] = m.sw.Eval(t[l])
	}

	rinvsix := lane.Mul(p.interact, cube(p.rinvsq))
	fr6 := lane.Mul(p.c6, rinvsix)
	fr12 := lane.Mul(p.c12, lane.Mul(rinvsix, rinvsix))
	v0 := lane.Sub(fr12, fr6)
	fr0 := lane.FNMA(lane.Set1[W](6), fr6, lane.Mul(lane.Set1[W](12), fr12))

	// F = F0*sw - V0*dsw/dr, times r
	fr = lane.FNMA(lane.Mul(v0, dsw), r, lane.Mul(fr0, sw))
	v = lane.Mul(v0, sw)
	return fr, v
}

// ljForceSwitch switches the force of each power term smoothly to zero
// between rsw and the cutoff.
type ljForceSwitch[W lane.Width] struct {
	rsw  float64
	disp interaction.Shift
	rep  interaction.Shift
}

func (ljForceSwitch[W]) usesGrid() bool { return false }

func (m ljForceSwitch[W]) eval(p *pairData[W], energy bool) (fr, v lane.Real[W]) {
	r := lane.Mul(p.rsq, p.rinv)
	t := lane.Max(lane.Sub(r, lane.Set1[W](m.rsw)), lane.Zero[W]())
	t2 := lane.Mul(t, t)
	t3 := lane.Mul(t2, t)

	c6 := lane.Mul(p.c6, p.interact)
	c12 := lane.Mul(p.c12, p.interact)
	rinvsix := cube(p.rinvsq)
	rinv12 := lane.Mul(rinvsix, rinvsix)

	sw6 := lane.FMA(lane.Set1[W](m.disp.A), t2, lane.Mul(lane.Set1[W](m.disp.B), t3))
	sw12 := lane.FMA(lane.Set1[W](m.rep.A), t2, lane.Mul(lane.Set1[W](m.rep.B), t3))
	f6 := lane.FMA(sw6, r, lane.Mul(lane.Set1[W](6), rinvsix))
	f12 := lane.FMA(sw12, r, lane.Mul(lane.Set1[W](12), rinv12))
	fr = lane.FNMA(c6, f6, lane.Mul(c12, f12))

	if energy {
		t4 := lane.Mul(t3, t)
		v6 := switchedTerm(rinvsix, m.disp, t3, t4)
		v12 := switchedTerm(rinv12, m.rep, t3, t4)
		v = lane.FNMA(c6, v6, lane.Mul(c12, v12))
	}
	return fr, v
}

// switchedTerm returns r^-p + CPot - A/3 t^3 - B/4 t^4.
func switchedTerm[W lane.Width](rinvp lane.Real[W], s interaction.Shift, t3, t4 lane.Real[W]) lane.Real[W] {
	v := lane.Add(rinvp, lane.Set1[W](s.CPot))
	v = lane.FNMA(lane.Set1[W](s.A/3), t3, v)
	return lane.FNMA(lane.Set1[W](s.B/4), t4, v)
}

// ljEwald is the shifted plain cutoff plus the removal of the geometric
// dispersion handled on the reciprocal-space grid. The grid term also
// applies to excluded pairs.
type ljEwald[W lane.Width] struct {
	cut    ljCut[W]
	beta   float64
	shGrid float64
}

func (ljEwald[W]) usesGrid() bool { return true }

func (m ljEwald[W]) eval(p *pairData[W], energy bool) (fr, v lane.Real[W]) {
	fr, v = m.cut.eval(p, energy)

	// with y = beta^2 r^2: vg = (1 - e^-y P2(y))/r^6, fg = 6 (1 - e^-y P3(y))/r^8
	y := lane.Mul(p.rsq, lane.Set1[W](m.beta*m.beta))
	ex := lane.Exp(lane.Neg(y))
	y2h := lane.Mul(lane.Mul(y, y), lane.Set1[W](0.5))
	p2 := lane.Add(lane.Add(lane.Set1[W](1), y), y2h)
	p3 := lane.FMA(lane.Mul(y2h, y), lane.Set1[W](1.0/3), p2)
	rinvsix := cube(p.rinvsq)
	vg := lane.Mul(lane.FNMA(ex, p2, lane.Set1[W](1)), rinvsix)
	fg := lane.Mul(lane.FNMA(ex, p3, lane.Set1[W](1)), lane.Mul(lane.Set1[W](6), lane.Mul(rinvsix, p.rinvsq)))
	if short := lane.CmpLT(y, lane.Set1[W](interaction.EwaldSeriesLimit)); lane.Any(short) {
		n := lane.Lanes[W]()
		for l := 0; l < n; l++ {
			if short[l] {
				vg[l], fg[l] = interaction.LJEwaldGrid(m.beta, p.rsq[l])
			}
		}
	}
	fr = lane.FMA(p.c6grid, lane.Mul(fg, p.rsq), fr)
	if energy {
		vg = lane.FMA(p.interact, lane.Set1[W](m.shGrid), vg)
		v = lane.FMA(p.c6grid, vg, v)
	}
	return fr, v
}
