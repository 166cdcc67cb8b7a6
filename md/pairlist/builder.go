package pairlist

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
)

// Builder constructs pair lists by testing every cluster pair. It is
// meant for small systems and for checking other builders.
type Builder struct {
	Shifts     Shifts
	Cutoff     float64
	Exclusions *Exclusions
}

// NewBuilder returns a builder listing cluster pairs with at least one
// particle pair closer than cutoff. The shift table must be symmetric
// (code k opposite to code Len-1-k, central code in the middle) and every
// image must be at least 2*cutoff away, so that each particle pair has at
// most one image within the cutoff.
func NewBuilder(shifts Shifts, cutoff float64, excl *Exclusions) (*Builder, error) {
	if err := shifts.Validate(); err != nil {
		return nil, err
	}
	if !(cutoff > 0) {
		return nil, fmt.Errorf("%w: list cutoff %g", interaction.ErrCutoff, cutoff)
	}
	n := shifts.Len()
	if shifts.Central != (n-1)/2 || n%2 == 0 {
		return nil, fmt.Errorf("%w: central code %d of %d is not in the middle", ErrShift, shifts.Central, n)
	}
	for k, v := range shifts.Vec {
		o := shifts.Vec[n-1-k]
		if o[0] != -v[0] || o[1] != -v[1] || o[2] != -v[2] {
			return nil, fmt.Errorf("%w: codes %d and %d are not opposite", ErrShift, k, n-1-k)
		}
		if k != shifts.Central && norm(v) < 2*cutoff {
			return nil, fmt.Errorf("%w: image %v closer than twice the cutoff %g", ErrShift, v, cutoff)
		}
	}
	return &Builder{Shifts: shifts, Cutoff: cutoff, Exclusions: excl}, nil
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Build returns the pair list of atoms. Entries are ordered diagonal
// first, then masked, then unmasked; pairs involving padding are masked
// out.
func (b *Builder) Build(atoms *atomdata.Atoms, params *interaction.Params) (*List, error) {
	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	layout := atoms.Layout
	list := &List{ClusterI: layout.ClusterI, ClusterJ: layout.ClusterJ}

	var diag, masked, full []CJ
	for ci := range atoms.NumIClusters() {
		if layout.ISlot(ci, 0) >= atoms.NumAtoms {
			break
		}
		flags := clusterFlags(atoms, params, ci)
		if flags&(FlagDoLJ|FlagDoCoulomb) == 0 {
			continue
		}

		for shift := b.Shifts.Central; shift < b.Shifts.Len(); shift++ {
			diag, masked, full = diag[:0], masked[:0], full[:0]
			for cj := range atoms.NumJClusters() {
				if layout.JSlot(cj, 0) >= atoms.NumAtoms {
					break
				}
				entry, isDiag, ok := b.pair(atoms, ci, cj, shift)
				switch {
				case !ok:
				case isDiag:
					diag = append(diag, entry)
				case entry.Excl == layout.InteractAll():
					full = append(full, entry)
				default:
					masked = append(masked, entry)
				}
			}
			if len(diag)+len(masked)+len(full) == 0 {
				continue
			}
			start := len(list.CJ)
			list.CJ = append(list.CJ, diag...)
			list.CJ = append(list.CJ, masked...)
			list.CJ = append(list.CJ, full...)
			list.CI = append(list.CI, CI{
				Cluster: ci,
				Shift:   shift,
				CJStart: start,
				CJEnd:   len(list.CJ),
				Flags:   flags,
			})
		}
	}
	return list, nil
}

// pair computes the entry for (ci, cj) under shift. ok is false when the
// pair has nothing to compute: no particle pair within the cutoff, or a
// pair counted from the other side.
func (b *Builder) pair(atoms *atomdata.Atoms, ci, cj, shift int) (entry CJ, isDiag, ok bool) {
	layout := atoms.Layout
	central := shift == b.Shifts.Central
	off, overlap := layout.Diagonal(ci, cj)
	isDiag = central && overlap
	if central && !overlap && layout.JSlot(cj, 0) < layout.ISlot(ci, 0) {
		return CJ{}, false, false
	}

	sv := b.Shifts.Vec[shift]
	cut2 := b.Cutoff * b.Cutoff
	within := false
	var mask uint64
	for i := range layout.ClusterI {
		si := layout.ISlot(ci, i)
		if atoms.IsPadding(si) {
			continue
		}
		xi := atoms.Position(si)
		for j := range layout.ClusterJ {
			sj := layout.JSlot(cj, j)
			if atoms.IsPadding(sj) || (isDiag && j+off <= i) {
				continue
			}
			xj := atoms.Position(sj)
			dx := xi[0] + sv[0] - xj[0]
			dy := xi[1] + sv[1] - xj[1]
			dz := xi[2] + sv[2] - xj[2]
			if dx*dx+dy*dy+dz*dz < cut2 {
				within = true
			}
			if !b.Exclusions.Excluded(si, sj) {
				mask |= 1 << uint(i*layout.ClusterJ+j)
			}
		}
	}
	if !within && !isDiag {
		return CJ{}, false, false
	}
	return CJ{Cluster: cj, Excl: mask}, isDiag, true
}

// clusterFlags derives the CI flags of i-cluster ci from its particles.
func clusterFlags(atoms *atomdata.Atoms, params *interaction.Params, ci int) Flags {
	layout := atoms.Layout
	var flags Flags
	upperLJ := false
	for i := range layout.ClusterI {
		s := layout.ISlot(ci, i)
		if atoms.IsPadding(s) {
			continue
		}
		if atoms.Q[s] != 0 {
			flags |= FlagDoCoulomb
		}
		if params.HasLJ(atoms.Type[s]) {
			flags |= FlagDoLJ
			if i >= layout.ClusterI/2 {
				upperLJ = true
			}
		}
	}
	if flags.Has(FlagDoLJ) && !upperLJ {
		flags |= FlagHalfLJ
	}
	return flags
}
