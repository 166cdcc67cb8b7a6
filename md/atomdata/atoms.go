package atomdata

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nbnxm/md/interaction"
)

// ErrAtom reports an invalid particle.
var ErrAtom = errors.New("atomdata: invalid particle")

const (
	// PaddingOrigin is the x coordinate of the first padding slot.
	PaddingOrigin = -1e4
	// PaddingSpacing separates consecutive padding slots along x.
	PaddingSpacing = 100.0
)

// Atom is one input particle.
type Atom struct {
	Pos         [3]float64
	Charge      float64
	Type        int
	EnergyGroup int
}

// Atoms stores particles in cluster slot order. Slots at or beyond
// NumAtoms are padding: zero charge, the padding LJ type and distinct
// positions far from everything else.
type Atoms struct {
	Layout   Layout
	NumAtoms int
	NumSlots int

	X    []float64 // XStride reals per slot
	Q    []float64
	Type []int

	// LJComb holds the two per-type combination parameters of each slot.
	LJComb []float64
	// LJGrid holds the LJ-Ewald grid parameter of each slot.
	LJGrid []float64

	EnergyGroup     []int
	NumEnergyGroups int
}

// New lays out atoms in slot order and pads them to the layout
// granularity. Per-slot LJ parameters are taken from params.
func New(layout Layout, atoms []Atom, params *interaction.Params) (*Atoms, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	n := len(atoms)
	ns := layout.PaddedSlots(n)
	a := &Atoms{
		Layout:          layout,
		NumAtoms:        n,
		NumSlots:        ns,
		X:               make([]float64, ns*XStride),
		Q:               make([]float64, ns),
		Type:            make([]int, ns),
		LJComb:          make([]float64, 2*ns),
		LJGrid:          make([]float64, ns),
		EnergyGroup:     make([]int, ns),
		NumEnergyGroups: 1,
	}

	ntypes := params.NumTypes()
	for i, at := range atoms {
		if at.Type < 0 || at.Type >= ntypes {
			return nil, fmt.Errorf("%w: atom %d has type %d, want [0, %d)", ErrAtom, i, at.Type, ntypes)
		}
		if at.EnergyGroup < 0 {
			return nil, fmt.Errorf("%w: atom %d has energy group %d", ErrAtom, i, at.EnergyGroup)
		}
		if !finite(at.Charge) || !finite(at.Pos[0]) || !finite(at.Pos[1]) || !finite(at.Pos[2]) {
			return nil, fmt.Errorf("%w: atom %d is not finite", ErrAtom, i)
		}
		copy(a.X[XIndex(i):], at.Pos[:])
		a.Q[i] = at.Charge
		a.Type[i] = at.Type
		a.EnergyGroup[i] = at.EnergyGroup
		a.NumEnergyGroups = max(a.NumEnergyGroups, at.EnergyGroup+1)
	}

	pad := params.PaddingType()
	for s := n; s < ns; s++ {
		a.X[XIndex(s)] = PaddingOrigin - float64(s-n)*PaddingSpacing
		a.Type[s] = pad
	}

	for s := range ns {
		a.LJComb[2*s], a.LJComb[2*s+1] = params.CombParams(a.Type[s])
		a.LJGrid[s] = params.GridC6(a.Type[s])
	}
	return a, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsPadding reports whether slot holds no particle.
func (a *Atoms) IsPadding(slot int) bool {
	return slot >= a.NumAtoms
}

// Position returns the coordinates of slot.
func (a *Atoms) Position(slot int) [3]float64 {
	i := XIndex(slot)
	return [3]float64{a.X[i], a.X[i+1], a.X[i+2]}
}

// UpdatePositions overwrites the coordinates of the real particles.
func (a *Atoms) UpdatePositions(pos [][3]float64) error {
	if len(pos) != a.NumAtoms {
		return fmt.Errorf("%w: %d positions for %d atoms", ErrLayout, len(pos), a.NumAtoms)
	}
	for i, p := range pos {
		copy(a.X[XIndex(i):XIndex(i)+XStride], p[:])
	}
	return nil
}

// NumIClusters returns the number of i-clusters.
func (a *Atoms) NumIClusters() int {
	return a.Layout.NumIClusters(a.NumSlots)
}

// NumJClusters returns the number of j-clusters.
func (a *Atoms) NumJClusters() int {
	return a.Layout.NumJClusters(a.NumSlots)
}

// Validate checks that the arrays match the layout.
func (a *Atoms) Validate() error {
	if err := a.Layout.Validate(); err != nil {
		return err
	}
	ns := a.NumSlots
	switch {
	case ns%a.Layout.Granularity() != 0:
		return fmt.Errorf("%w: %d slots not a multiple of %d", ErrLayout, ns, a.Layout.Granularity())
	case a.NumAtoms > ns:
		return fmt.Errorf("%w: %d atoms in %d slots", ErrLayout, a.NumAtoms, ns)
	case len(a.X) != ns*XStride, len(a.Q) != ns, len(a.Type) != ns,
		len(a.LJComb) != 2*ns, len(a.LJGrid) != ns, len(a.EnergyGroup) != ns:
		return fmt.Errorf("%w: array lengths do not match %d slots", ErrLayout, ns)
	}
	return nil
}
