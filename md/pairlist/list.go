package pairlist

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
)

// Errors returned by [List.Validate] and [Builder.Build].
var (
	ErrOrdering = errors.New("pairlist: masked entry after unmasked entry")
	ErrDiagonal = errors.New("pairlist: invalid diagonal entry")
	ErrShift    = errors.New("pairlist: invalid shift")
	ErrMask     = errors.New("pairlist: mask has bits beyond the cluster product")
	ErrRange    = errors.New("pairlist: index out of range")
)

// Flags select the work done for an i-cluster.
type Flags uint8

const (
	// FlagDoLJ marks i-clusters with at least one LJ-interacting particle.
	FlagDoLJ Flags = 1 << iota
	// FlagDoCoulomb marks i-clusters with at least one charge.
	FlagDoCoulomb
	// FlagHalfLJ marks i-clusters whose LJ particles all sit in the first
	// half of the cluster.
	FlagHalfLJ
)

// Has reports whether all bits of g are set in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// CI is one i-cluster entry.
type CI struct {
	Cluster int
	Shift   int
	CJStart int
	CJEnd   int
	Flags   Flags
}

// CJ is one j-cluster entry with its interaction mask.
type CJ struct {
	Cluster int
	Excl    uint64
}

// List is a cluster pair list.
type List struct {
	ClusterI int
	ClusterJ int
	CI       []CI
	CJ       []CJ
}

// NumPairs returns the number of cluster pairs.
func (l *List) NumPairs() int {
	n := 0
	for _, ci := range l.CI {
		n += ci.CJEnd - ci.CJStart
	}
	return n
}

// Validate checks the list against the particle layout and shift table.
// The kernels rely on every property checked here and do not re-check
// them in the pair loop.
func (l *List) Validate(atoms *atomdata.Atoms, shifts Shifts) error {
	layout := atoms.Layout
	if l.ClusterI != layout.ClusterI || l.ClusterJ != layout.ClusterJ {
		return fmt.Errorf("%w: list is %dx%d, atoms are %dx%d",
			atomdata.ErrLayout, l.ClusterI, l.ClusterJ, layout.ClusterI, layout.ClusterJ)
	}
	if err := shifts.Validate(); err != nil {
		return err
	}

	all := layout.InteractAll()
	ni, nj := atoms.NumIClusters(), atoms.NumJClusters()
	for n, ci := range l.CI {
		if ci.Cluster < 0 || ci.Cluster >= ni {
			return fmt.Errorf("%w: ci entry %d has cluster %d of %d", ErrRange, n, ci.Cluster, ni)
		}
		if ci.Shift < 0 || ci.Shift >= shifts.Len() {
			return fmt.Errorf("%w: ci entry %d has shift %d of %d", ErrShift, n, ci.Shift, shifts.Len())
		}
		if ci.CJStart < 0 || ci.CJStart > ci.CJEnd || ci.CJEnd > len(l.CJ) {
			return fmt.Errorf("%w: ci entry %d has range [%d,%d) of %d", ErrRange, n, ci.CJStart, ci.CJEnd, len(l.CJ))
		}

		central := ci.Shift == shifts.Central
		unmasked := false
		leading := true
		for k := ci.CJStart; k < ci.CJEnd; k++ {
			cj := l.CJ[k]
			if cj.Cluster < 0 || cj.Cluster >= nj {
				return fmt.Errorf("%w: cj entry %d has cluster %d of %d", ErrRange, k, cj.Cluster, nj)
			}
			if cj.Excl&^all != 0 {
				return fmt.Errorf("%w: cj entry %d mask %#x", ErrMask, k, cj.Excl)
			}

			if cj.Excl == all {
				unmasked = true
			} else if unmasked {
				return fmt.Errorf("%w: ci entry %d, cj entry %d", ErrOrdering, n, k)
			}

			off, diag := layout.Diagonal(ci.Cluster, cj.Cluster)
			diag = diag && central
			if !diag {
				leading = false
				continue
			}
			if !leading {
				return fmt.Errorf("%w: ci entry %d has diagonal cj entry %d after other entries", ErrDiagonal, n, k)
			}
			if cj.Excl&^layout.DiagonalMask(off) != 0 {
				return fmt.Errorf("%w: cj entry %d has sub-diagonal bits %#x", ErrDiagonal, k, cj.Excl&^layout.DiagonalMask(off))
			}
		}
	}
	return nil
}
