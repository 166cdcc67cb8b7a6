package kernel

import (
	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/lane"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

// loop is the pair loop for one combination of LJ model, Coulomb model and
// energy sink. The zero values of L, C and E are not usable; they carry the
// constants of their model.
type loop[W lane.Width, L ljModel[W], C coulombModel[W], E energySink[W]] struct {
	st   *setup
	lj   L
	coul C
	sink E
}

// ljMode selects the i-particles of a cluster that get LJ.
type ljMode uint8

const (
	// ljHalf restricts LJ to the first half of the i-cluster.
	ljHalf ljMode = iota
	ljAll
)

// cluster evaluates all j-cluster entries of one CI entry.
func (lp *loop[W, L, C, E]) cluster(in *input, s *scratch[W], ci *pairlist.CI, mode ljMode) {
	st := lp.st
	layout := st.layout
	central := ci.Shift == in.shifts.Central
	s.loadI(st, in.atoms, ci.Cluster, in.shifts.Vec[ci.Shift])
	for d := range 3 {
		clear(s.fi[d])
	}

	cjs := in.list.CJ[ci.CJStart:ci.CJEnd]
	if central && len(cjs) > 0 {
		if _, ok := layout.Diagonal(ci.Cluster, cjs[0].Cluster); ok {
			lp.selfEnergy(s, in.atoms, ci.Cluster, mode)
		}
	}

	k := 0
	for ; k < len(cjs) && cjs[k].Excl != st.all; k++ {
		diag := st.all
		if central {
			if off, ok := layout.Diagonal(ci.Cluster, cjs[k].Cluster); ok {
				diag = st.diagMask[off+layout.ClusterJ]
			}
		}
		interactBits := cjs[k].Excl & diag
		activeBits := interactBits
		if st.hasCorrection {
			activeBits = diag
		}
		lp.pairs(in, s, cjs[k].Cluster, interactBits, activeBits, true, mode)
	}
	for ; k < len(cjs); k++ {
		lp.pairs(in, s, cjs[k].Cluster, st.all, st.all, false, mode)
	}

	lp.reduceI(s, ci)
	lp.sink.flush(s, s.out)
}

// selfEnergy adds the interaction of each i-particle with its own
// long-range image.
func (lp *loop[W, L, C, E]) selfEnergy(s *scratch[W], atoms *atomdata.Atoms, ci int, mode ljMode) {
	if !lp.sink.enabled() {
		return
	}
	st := lp.st
	doCoul := lp.coul.enabled() && st.coulSelf != 0
	ljEnd := 0
	if st.ljSelf != 0 {
		switch mode {
		case ljAll:
			ljEnd = st.layout.ClusterI
		case ljHalf:
			ljEnd = st.layout.ClusterI / 2
		}
	}
	if !doCoul && ljEnd == 0 {
		return
	}
	for i := range st.layout.ClusterI {
		var vlj, vc float64
		if doCoul {
			vc = -s.qi[i] * atoms.Q[st.layout.ISlot(ci, i)] * st.coulSelf
		}
		if i < ljEnd {
			vlj = s.gridI[i] * s.gridI[i] * st.ljSelf
		}
		if vlj != 0 || vc != 0 {
			lp.sink.self(s.out, s.egI[i], vlj, vc)
		}
	}
}

// pairs evaluates the cluster product of the loaded i-cluster with
// j-cluster cj. With masked unset every pair interacts and the mask
// arguments are ignored.
func (lp *loop[W, L, C, E]) pairs(in *input, s *scratch[W], cj int, interactBits, activeBits uint64, masked bool, mode ljMode) {
	st := lp.st
	atoms := in.atoms
	clusterJ := st.layout.ClusterJ
	j0 := st.layout.JSlot(cj, 0)
	xj := atomdata.XIndex(j0)
	energy := lp.sink.enabled()
	doCoul := lp.coul.enabled()

	s.egJ = atoms.EnergyGroup[j0 : j0+clusterJ]
	for d := range 3 {
		clear(s.fj[d])
	}

	rc2 := lane.Set1[W](st.rc2)
	for c := range st.nChunks {
		o := &st.off[c]
		first := c * st.lanes

		dx := lane.Sub(lane.Gather[W](s.xi, 0, &o.i3), lane.Gather[W](atoms.X, xj, &o.j3))
		dy := lane.Sub(lane.Gather[W](s.xi, 1, &o.i3), lane.Gather[W](atoms.X, xj+1, &o.j3))
		dz := lane.Sub(lane.Gather[W](s.xi, 2, &o.i3), lane.Gather[W](atoms.X, xj+2, &o.j3))
		rsq := lane.FMA(dx, dx, lane.FMA(dy, dy, lane.Mul(dz, dz)))

		within := lane.CmpLT(rsq, rc2)
		interact, active := within, within
		if masked {
			interact = lane.And(lane.FromBits[W](interactBits, first), within)
			active = lane.And(lane.FromBits[W](activeBits, first), within)
			// excluded pairs may sit on top of each other
			eps := lane.Select(lane.AndNot(lane.True[W](), interact), lane.Set1[W](interaction.AvoidSingularity))
			rsq = lane.Add(rsq, eps)
		}
		if !lane.Any(active) {
			continue
		}
		s.pairs += lane.Count(active)

		p := pairData[W]{rsq: rsq, interact: lane.ToReal(interact)}
		p.rinv = lane.Select(active, lane.InvSqrt(rsq))
		p.rinvsq = lane.Mul(p.rinv, p.rinv)

		var fscal, vlj, vc lane.Real[W]
		if mode == ljAll || (mode == ljHalf && c < st.halfChunks) {
			lp.ljParams(&p, s, atoms, o, j0)
			fr, v := lp.lj.eval(&p, energy)
			ljActive := active
			if mode == ljHalf {
				// a chunk may straddle the middle of the i-cluster
				ljActive = lane.And(ljActive, lane.FromBits[W](st.lowerHalf, first))
			}
			if st.ljCutoffCheck {
				ljActive = lane.And(ljActive, lane.CmpLT(rsq, lane.Set1[W](st.rvdw2)))
			}
			fscal = lane.Select(ljActive, lane.Mul(fr, p.rinvsq))
			if energy {
				vlj = lane.Select(ljActive, v)
			}
		}
		if doCoul {
			p.qq = lane.Mul(lane.Gather[W](s.qi, 0, &o.i1), lane.Gather[W](atoms.Q, j0, &o.j1))
			f, v := lp.coul.eval(&p, energy)
			fscal = lane.Add(fscal, lane.Select(active, f))
			if energy {
				vc = lane.Select(active, v)
			}
		}
		if energy {
			lp.sink.add(s, o, vlj, vc)
		}

		tx := lane.Mul(fscal, dx)
		ty := lane.Mul(fscal, dy)
		tz := lane.Mul(fscal, dz)
		s.fi[0][c] = lane.Add(s.fi[0][c], tx)
		s.fi[1][c] = lane.Add(s.fi[1][c], ty)
		s.fi[2][c] = lane.Add(s.fi[2][c], tz)
		lane.ColumnSum(s.fj[0], tx, first, clusterJ)
		lane.ColumnSum(s.fj[1], ty, first, clusterJ)
		lane.ColumnSum(s.fj[2], tz, first, clusterJ)
	}

	f := s.out.F
	for j := range clusterJ {
		x := xj + atomdata.XStride*j
		f[x] -= s.fj[0][j]
		f[x+1] -= s.fj[1][j]
		f[x+2] -= s.fj[2][j]
	}
}

// ljParams fills the pair coefficients of a chunk.
func (lp *loop[W, L, C, E]) ljParams(p *pairData[W], s *scratch[W], atoms *atomdata.Atoms, o *chunkOffsets, j0 int) {
	st := lp.st
	switch st.comb {
	case interaction.CombGeometric:
		p.c6 = lane.Mul(lane.Gather[W](s.combI, 0, &o.i2), lane.Gather[W](atoms.LJComb, 2*j0, &o.j2))
		p.c12 = lane.Mul(lane.Gather[W](s.combI, 1, &o.i2), lane.Gather[W](atoms.LJComb, 2*j0+1, &o.j2))
	case interaction.CombLorentzBerthelot:
		sigma := lane.Add(lane.Gather[W](s.combI, 0, &o.i2), lane.Gather[W](atoms.LJComb, 2*j0, &o.j2))
		eps := lane.Mul(lane.Gather[W](s.combI, 1, &o.i2), lane.Gather[W](atoms.LJComb, 2*j0+1, &o.j2))
		sig6 := cube(lane.Mul(sigma, sigma))
		p.c6 = lane.Mul(lane.Mul(lane.Set1[W](4), eps), sig6)
		p.c12 = lane.Mul(p.c6, sig6)
	default:
		n := lane.Lanes[W]()
		for l := 0; l < n; l++ {
			t := s.ti[o.i1[l]]*st.typeStride + atoms.Type[j0+o.j1[l]]
			p.c6[l] = st.c6[t]
			p.c12[l] = st.c12[t]
		}
	}
	if lp.lj.usesGrid() {
		p.c6grid = lane.Mul(lane.Gather[W](s.gridI, 0, &o.i1), lane.Gather[W](atoms.LJGrid, j0, &o.j1))
	}
}

// reduceI folds the lane accumulators into per-particle forces.
func (lp *loop[W, L, C, E]) reduceI(s *scratch[W], ci *pairlist.CI) {
	st := lp.st
	for d := range 3 {
		clear(s.fiSum[d])
		for c := range st.nChunks {
			lane.TransposeSum(s.fiSum[d], s.fi[d][c], c*st.lanes, st.layout.ClusterJ)
		}
	}

	f := s.out.F
	for i := range st.layout.ClusterI {
		x := atomdata.XIndex(st.layout.ISlot(ci.Cluster, i))
		for d := range 3 {
			f[x+d] += s.fiSum[d][i]
		}
	}
	if st.shiftForces && s.out.FShift != nil {
		fs := s.out.FShift[3*ci.Shift:]
		for d := range 3 {
			for i := range st.layout.ClusterI {
				fs[d] += s.fiSum[d][i]
			}
		}
	}
}
