package kernel

import (
	"sync"

	"github.com/cwbudde/algo-nbnxm/md/lane"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

// runner evaluates a shard of CI entries into out.
type runner interface {
	run(in *input, out *Output, cis []pairlist.CI) Stats
}

// driver owns the three loop variants of one model combination and a pool
// of per-worker scratch state.
type driver[W lane.Width, L ljModel[W], C coulombModel[W], E energySink[W]] struct {
	st     *setup
	full   loop[W, L, C, E]
	ljOnly loop[W, L, coulNone[W], E]
	pool   sync.Pool
}

func newDriver[W lane.Width, L ljModel[W], C coulombModel[W], E energySink[W]](st *setup, lj L, coul C, sink E) *driver[W, L, C, E] {
	d := &driver[W, L, C, E]{
		st:     st,
		full:   loop[W, L, C, E]{st: st, lj: lj, coul: coul, sink: sink},
		ljOnly: loop[W, L, coulNone[W], E]{st: st, lj: lj, sink: sink},
	}
	d.pool.New = func() any {
		return newScratch[W](st)
	}
	return d
}

func (d *driver[W, L, C, E]) run(in *input, out *Output, cis []pairlist.CI) Stats {
	s := d.pool.Get().(*scratch[W])
	defer d.pool.Put(s)
	s.out = out
	s.pairs = 0
	s.vlj = lane.Zero[W]()
	s.vc = lane.Zero[W]()

	var stats Stats
	for n := range cis {
		ci := &cis[n]
		doLJ := ci.Flags.Has(pairlist.FlagDoLJ)
		doCoul := ci.Flags.Has(pairlist.FlagDoCoulomb)
		if !doLJ && !doCoul {
			continue
		}
		stats.IClusters++
		stats.ClusterPairs += ci.CJEnd - ci.CJStart

		switch {
		case !doCoul:
			d.ljOnly.cluster(in, s, ci, ljAll)
		case ci.Flags.Has(pairlist.FlagHalfLJ) || !doLJ:
			d.full.cluster(in, s, ci, ljHalf)
		default:
			d.full.cluster(in, s, ci, ljAll)
		}
	}
	stats.Pairs = s.pairs
	s.out = nil
	s.egJ = nil
	return stats
}
