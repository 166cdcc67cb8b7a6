package kernel

import "github.com/cwbudde/algo-nbnxm/md/lane"

// energySink decides where chunk energies go.
type energySink[W lane.Width] interface {
	enabled() bool
	add(s *scratch[W], o *chunkOffsets, vlj, vc lane.Real[W])
	flush(s *scratch[W], out *Output)
	self(out *Output, gi int, vlj, vc float64)
}

// noEnergy drops energies; the models skip computing them.
type noEnergy[W lane.Width] struct{}

func (noEnergy[W]) enabled() bool { return false }
func (noEnergy[W]) add(*scratch[W], *chunkOffsets, lane.Real[W], lane.Real[W]) {}
func (noEnergy[W]) flush(*scratch[W], *Output) {}
func (noEnergy[W]) self(*Output, int, float64, float64) {}

// totalEnergy keeps lane accumulators per i-cluster and reduces them into
// the two totals.
type totalEnergy[W lane.Width] struct{}

func (totalEnergy[W]) enabled() bool { return true }

func (totalEnergy[W]) add(s *scratch[W], _ *chunkOffsets, vlj, vc lane.Real[W]) {
	s.vlj = lane.Add(s.vlj, vlj)
	s.vc = lane.Add(s.vc, vc)
}

func (totalEnergy[W]) flush(s *scratch[W], out *Output) {
	out.VLJ += lane.Reduce(s.vlj)
	out.VC += lane.Reduce(s.vc)
	s.vlj = lane.Zero[W]()
	s.vc = lane.Zero[W]()
}

func (totalEnergy[W]) self(out *Output, _ int, vlj, vc float64) {
	out.VLJ += vlj
	out.VC += vc
}

// groupEnergy adds each pair energy into the bucket of its group pair.
type groupEnergy[W lane.Width] struct{}

func (groupEnergy[W]) enabled() bool { return true }

func (groupEnergy[W]) add(s *scratch[W], o *chunkOffsets, vlj, vc lane.Real[W]) {
	ng := s.out.NumGroups
	n := lane.Lanes[W]()
	for l := 0; l < n; l++ {
		b := s.egI[o.i1[l]]*ng + s.egJ[o.j1[l]]
		s.out.GroupVLJ[b] += vlj[l]
		s.out.GroupVC[b] += vc[l]
	}
}

func (groupEnergy[W]) flush(*scratch[W], *Output) {}

func (groupEnergy[W]) self(out *Output, gi int, vlj, vc float64) {
	b := gi*out.NumGroups + gi
	out.GroupVLJ[b] += vlj
	out.GroupVC[b] += vc
}
