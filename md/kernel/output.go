package kernel

import (
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

// Output accumulates kernel results. Kernels only add to it.
type Output struct {
	// F holds atomdata.XStride force components per slot.
	F []float64
	// FShift holds three components per shift code, or is nil.
	FShift []float64

	VLJ float64
	VC  float64

	// With energy groups, GroupVLJ and GroupVC hold one bucket per ordered
	// group pair (gi*NumGroups + gj) and VLJ/VC stay untouched.
	NumGroups int
	GroupVLJ  []float64
	GroupVC   []float64
}

// NewOutput allocates a zeroed output for numSlots slots. numShifts == 0
// disables shift forces, numGroups == 0 disables energy groups.
func NewOutput(numSlots, numShifts, numGroups int) *Output {
	o := &Output{F: make([]float64, numSlots*atomdata.XStride)}
	if numShifts > 0 {
		o.FShift = make([]float64, 3*numShifts)
	}
	if numGroups > 0 {
		o.NumGroups = numGroups
		o.GroupVLJ = make([]float64, numGroups*numGroups)
		o.GroupVC = make([]float64, numGroups*numGroups)
	}
	return o
}

// Reset zeroes all accumulators.
func (o *Output) Reset() {
	clear(o.F)
	clear(o.FShift)
	clear(o.GroupVLJ)
	clear(o.GroupVC)
	o.VLJ = 0
	o.VC = 0
}

// sameShape reports whether o and other have equally sized buffers.
func (o *Output) sameShape(other *Output) bool {
	return len(o.F) == len(other.F) &&
		len(o.FShift) == len(other.FShift) &&
		o.NumGroups == other.NumGroups
}

// Merge adds other into o.
func (o *Output) Merge(other *Output) error {
	if !o.sameShape(other) {
		return fmt.Errorf("%w: cannot merge outputs of different shape", ErrOutput)
	}
	vecmath.AddBlockInPlace(o.F, other.F)
	if o.FShift != nil {
		vecmath.AddBlockInPlace(o.FShift, other.FShift)
	}
	if o.NumGroups > 0 {
		vecmath.AddBlockInPlace(o.GroupVLJ, other.GroupVLJ)
		vecmath.AddBlockInPlace(o.GroupVC, other.GroupVC)
	}
	o.VLJ += other.VLJ
	o.VC += other.VC
	return nil
}

// Energies returns the LJ and Coulomb energy totals, summing group buckets
// when energy groups are in use.
func (o *Output) Energies() (vlj, vc float64) {
	if o.NumGroups == 0 {
		return o.VLJ, o.VC
	}
	return o.VLJ + vecmath.Sum(o.GroupVLJ), o.VC + vecmath.Sum(o.GroupVC)
}

// GroupEnergies folds the ordered group-pair buckets into the lower
// triangle: entry g1*NumGroups+g2 with g1 >= g2 holds the energy between
// groups g1 and g2 regardless of which side was the i-cluster.
func (o *Output) GroupEnergies() (vlj, vc []float64) {
	ng := o.NumGroups
	vlj = make([]float64, ng*ng)
	vc = make([]float64, ng*ng)
	for gi := range ng {
		for gj := range ng {
			lo, hi := min(gi, gj), max(gi, gj)
			vlj[hi*ng+lo] += o.GroupVLJ[gi*ng+gj]
			vc[hi*ng+lo] += o.GroupVC[gi*ng+gj]
		}
	}
	return vlj, vc
}

// Force returns the force on slot.
func (o *Output) Force(slot int) [3]float64 {
	i := atomdata.XIndex(slot)
	return [3]float64{o.F[i], o.F[i+1], o.F[i+2]}
}

// Virial returns -1/2 (sum_i x_i (x) F_i + sum_k s_k (x) FShift_k) from
// the slot positions x and the shift table the output was computed with.
// It needs shift forces unless every CI entry used the central shift.
func (o *Output) Virial(x []float64, shifts pairlist.Shifts) [3][3]float64 {
	var v [3][3]float64
	n := min(len(x), len(o.F))
	for i := 0; i+2 < n; i += atomdata.XStride {
		for a := range 3 {
			for b := range 3 {
				v[a][b] -= 0.5 * x[i+a] * o.F[i+b]
			}
		}
	}
	for k, s := range shifts.Vec {
		if 3*k+2 >= len(o.FShift) {
			break
		}
		for a := range 3 {
			for b := range 3 {
				v[a][b] -= 0.5 * s[a] * o.FShift[3*k+b]
			}
		}
	}
	return v
}
