package kernel

import (
	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/lane"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

// chunkOffsets maps the lanes of one chunk to i- and j-particle offsets
// in arrays with one, two and three values per particle.
type chunkOffsets struct {
	i1, j1 lane.Offsets
	i2, j2 lane.Offsets
	i3, j3 lane.Offsets
}

// setup is the policy-independent part of a configured kernel.
type setup struct {
	layout  atomdata.Layout
	lanes   int
	nChunks int
	// halfChunks is the number of chunks holding at least one pair of the
	// first half of the i-cluster; lowerHalf has the bits of those pairs.
	halfChunks int
	lowerHalf  uint64
	off        []chunkOffsets
	all        uint64
	// diagMask[off+ClusterJ] is the diagonal mask for slot offset off.
	diagMask []uint64

	comb       interaction.Combination
	c6, c12    []float64
	typeStride int

	rc2           float64
	rvdw2         float64
	ljCutoffCheck bool
	hasCorrection bool

	epsfac   float64
	coulSelf float64
	ljSelf   float64

	shiftForces bool
}

func newSetup(p *interaction.Params, layout atomdata.Layout, lanes int, cfg Config) *setup {
	ci, cj := layout.ClusterI, layout.ClusterJ
	st := &setup{
		layout:        layout,
		lanes:         lanes,
		nChunks:       layout.PairSlots() / lanes,
		all:           layout.InteractAll(),
		diagMask:      make([]uint64, ci+cj),
		comb:          p.Combination(),
		c6:            p.C6Matrix(),
		c12:           p.C12Matrix(),
		typeStride:    p.TypeStride(),
		rc2:           p.RCoulomb * p.RCoulomb,
		rvdw2:         p.RVdW * p.RVdW,
		ljCutoffCheck: p.RVdW < p.RCoulomb,
		hasCorrection: p.HasCoulombCorrection() || p.HasLJCorrection(),
		epsfac:        p.EpsFac,
		coulSelf:      p.CoulombSelf(),
		ljSelf:        p.LJEwaldSelf(),
		shiftForces:   cfg.ShiftForces,
	}

	half := ci / 2 * cj
	st.halfChunks = (half + lanes - 1) / lanes
	st.lowerHalf = 1<<uint(half) - 1

	st.off = make([]chunkOffsets, st.nChunks)
	for c := range st.off {
		o := &st.off[c]
		for l := range lanes {
			p := c*lanes + l
			i, j := p/cj, p%cj
			o.i1[l], o.j1[l] = i, j
			o.i2[l], o.j2[l] = 2*i, 2*j
			o.i3[l], o.j3[l] = 3*i, 3*j
		}
	}
	for off := -cj + 1; off < ci; off++ {
		st.diagMask[off+cj] = layout.DiagonalMask(off)
	}
	return st
}

// input bundles the read-only arguments of a kernel call.
type input struct {
	list   *pairlist.List
	atoms  *atomdata.Atoms
	shifts pairlist.Shifts
}

// scratch is the per-worker state of the pair loop.
type scratch[W lane.Width] struct {
	out *Output

	xi    []float64
	qi    []float64
	ti    []int
	combI []float64
	gridI []float64
	egI   []int
	egJ   []int

	fi    [3][]lane.Real[W]
	fiSum [3][]float64
	fj    [3][]float64

	vlj, vc lane.Real[W]
	pairs   int
}

func newScratch[W lane.Width](st *setup) *scratch[W] {
	ci, cj := st.layout.ClusterI, st.layout.ClusterJ
	s := &scratch[W]{
		xi:    make([]float64, 3*ci),
		qi:    make([]float64, ci),
		ti:    make([]int, ci),
		combI: make([]float64, 2*ci),
		gridI: make([]float64, ci),
		egI:   make([]int, ci),
	}
	for d := range 3 {
		s.fi[d] = make([]lane.Real[W], st.nChunks)
		s.fiSum[d] = make([]float64, ci)
		s.fj[d] = make([]float64, cj)
	}
	return s
}

// loadI copies i-cluster ci, translated by shift vector sv, into s.
func (s *scratch[W]) loadI(st *setup, atoms *atomdata.Atoms, ci int, sv [3]float64) {
	for i := range st.layout.ClusterI {
		slot := st.layout.ISlot(ci, i)
		x := atomdata.XIndex(slot)
		for d := range 3 {
			s.xi[3*i+d] = atoms.X[x+d] + sv[d]
		}
		s.qi[i] = st.epsfac * atoms.Q[slot]
		s.ti[i] = atoms.Type[slot]
		s.combI[2*i] = atoms.LJComb[2*slot]
		s.combI[2*i+1] = atoms.LJComb[2*slot+1]
		s.gridI[i] = atoms.LJGrid[slot]
		s.egI[i] = atoms.EnergyGroup[slot]
	}
}
