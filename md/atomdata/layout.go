package atomdata

import (
	"errors"
	"fmt"
)

// XStride is the number of reals per slot in the position and force arrays.
const XStride = 3

var (
	// ErrClusterSize reports an unsupported i- or j-cluster size.
	ErrClusterSize = errors.New("atomdata: cluster size must be 2, 4 or 8")
	// ErrLayout reports particle arrays that do not match their layout.
	ErrLayout = errors.New("atomdata: arrays do not match cluster layout")
)

// Layout fixes the i- and j-cluster sizes. Both sides index the same slot
// arrays: i-cluster ci owns slots [ci*ClusterI, (ci+1)*ClusterI) and
// j-cluster cj owns slots [cj*ClusterJ, (cj+1)*ClusterJ).
type Layout struct {
	ClusterI int
	ClusterJ int
}

// NewLayout returns a validated Layout.
func NewLayout(clusterI, clusterJ int) (Layout, error) {
	l := Layout{ClusterI: clusterI, ClusterJ: clusterJ}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks the cluster sizes.
func (l Layout) Validate() error {
	if !validClusterSize(l.ClusterI) {
		return fmt.Errorf("%w: i-cluster size %d", ErrClusterSize, l.ClusterI)
	}
	if !validClusterSize(l.ClusterJ) {
		return fmt.Errorf("%w: j-cluster size %d", ErrClusterSize, l.ClusterJ)
	}
	return nil
}

func validClusterSize(n int) bool {
	return n == 2 || n == 4 || n == 8
}

// PairSlots is the number of (i,j) pairs in one cluster product; it is
// also the number of bits used in an interaction mask.
func (l Layout) PairSlots() int {
	return l.ClusterI * l.ClusterJ
}

// Granularity is the slot count every array is padded to a multiple of.
func (l Layout) Granularity() int {
	return max(l.ClusterI, l.ClusterJ)
}

// PaddedSlots rounds n up to the layout granularity.
func (l Layout) PaddedSlots(n int) int {
	g := l.Granularity()
	return (n + g - 1) / g * g
}

// ISlot returns the slot of particle i of i-cluster ci.
func (l Layout) ISlot(ci, i int) int {
	return ci*l.ClusterI + i
}

// JSlot returns the slot of particle j of j-cluster cj.
func (l Layout) JSlot(cj, j int) int {
	return cj*l.ClusterJ + j
}

// XIndex returns the offset of the x component of slot in a stride-3 array.
func XIndex(slot int) int {
	return slot * XStride
}

// NumIClusters returns the number of i-clusters covering nslots slots.
func (l Layout) NumIClusters(nslots int) int {
	return nslots / l.ClusterI
}

// NumJClusters returns the number of j-clusters covering nslots slots.
func (l Layout) NumJClusters(nslots int) int {
	return nslots / l.ClusterJ
}

// Diagonal reports whether i-cluster ci and j-cluster cj share slots. When
// they do, offset is the global slot distance between their first
// particles (cj*ClusterJ - ci*ClusterI).
func (l Layout) Diagonal(ci, cj int) (offset int, ok bool) {
	i0, i1 := ci*l.ClusterI, (ci+1)*l.ClusterI
	j0, j1 := cj*l.ClusterJ, (cj+1)*l.ClusterJ
	if j0 >= i1 || i0 >= j1 {
		return 0, false
	}
	return j0 - i0, true
}

// DiagonalMask returns the pair mask for a diagonal cluster pair with the
// given offset: bit i*ClusterJ+j is set when the global j-slot exceeds the
// global i-slot, which counts each unordered pair once and drops self pairs.
func (l Layout) DiagonalMask(offset int) uint64 {
	var m uint64
	for i := 0; i < l.ClusterI; i++ {
		for j := 0; j < l.ClusterJ; j++ {
			if j+offset > i {
				m |= 1 << uint(i*l.ClusterJ+j)
			}
		}
	}
	return m
}

// InteractAll is the mask with every pair of the cluster product interacting.
func (l Layout) InteractAll() uint64 {
	n := l.PairSlots()
	if n == 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}
