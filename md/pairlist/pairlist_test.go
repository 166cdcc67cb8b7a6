package pairlist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
)

func ljParams(t *testing.T) *interaction.Params {
	t.Helper()
	p, err := interaction.New(
		interaction.WithCutoffs(0.9, 0.9),
		interaction.WithLJTypes(2, []float64{1e-3, 0, 0, 0}, []float64{1e-6, 0, 0, 0}),
	)
	require.NoError(t, err)
	return p
}

func randomAtoms(t *testing.T, layout atomdata.Layout, n int, box float64, seed uint64) *atomdata.Atoms {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 7))
	in := make([]atomdata.Atom, n)
	for i := range in {
		in[i] = atomdata.Atom{
			Pos:    [3]float64{rng.Float64() * box, rng.Float64() * box, rng.Float64() * box},
			Charge: float64(i%3 - 1),
			Type:   i % 2,
		}
	}
	a, err := atomdata.New(layout, in, ljParams(t))
	require.NoError(t, err)
	return a
}

func TestRectangularShifts(t *testing.T) {
	s := NewRectangularShifts([3]float64{2, 3, 4})
	require.NoError(t, s.Validate())
	assert.Equal(t, NumRectangularShifts, s.Len())
	assert.Equal(t, 13, s.Central)
	assert.Equal(t, [3]float64{-2, -3, -4}, s.Vec[0])
	assert.Equal(t, [3]float64{2, 0, 0}, s.Vec[14])
	for k, v := range s.Vec {
		o := s.Vec[26-k]
		assert.Equal(t, [3]float64{-v[0], -v[1], -v[2]}, o)
	}

	require.NoError(t, NoShifts().Validate())
	require.ErrorIs(t, Shifts{Vec: [][3]float64{{1, 0, 0}}}.Validate(), ErrShift)
	require.ErrorIs(t, Shifts{Central: 2, Vec: [][3]float64{{}}}.Validate(), ErrShift)
}

func TestExclusions(t *testing.T) {
	e := NewExclusions(5)
	e.Add(0, 3)
	e.Add(2, 2)
	e.AddGroup(1, 2, 4)

	assert.True(t, e.Excluded(3, 0))
	assert.True(t, e.Excluded(4, 1))
	assert.False(t, e.Excluded(2, 2))
	assert.False(t, e.Excluded(0, 1))
	assert.False(t, e.Excluded(9, 1))
	assert.Equal(t, 4, e.NumPairs())
	assert.Equal(t, []int{1, 4}, e.Of(2))
	assert.Equal(t, 5, e.Len())

	var none *Exclusions
	assert.False(t, none.Excluded(0, 1))
}

func TestValidate(t *testing.T) {
	layout, err := atomdata.NewLayout(4, 4)
	require.NoError(t, err)
	atoms := randomAtoms(t, layout, 12, 3, 1)
	shifts := NoShifts()
	all := layout.InteractAll()
	diag := layout.DiagonalMask(0)

	good := func() *List {
		return &List{
			ClusterI: 4, ClusterJ: 4,
			CI: []CI{{Cluster: 0, CJStart: 0, CJEnd: 3}},
			CJ: []CJ{{Cluster: 0, Excl: diag}, {Cluster: 1, Excl: all &^ 1}, {Cluster: 2, Excl: all}},
		}
	}
	require.NoError(t, good().Validate(atoms, shifts))

	tests := []struct {
		name   string
		modify func(l *List)
		want   error
	}{
		{"layout", func(l *List) { l.ClusterJ = 2 }, atomdata.ErrLayout},
		{"ci cluster", func(l *List) { l.CI[0].Cluster = 3 }, ErrRange},
		{"cj cluster", func(l *List) { l.CJ[2].Cluster = 3 }, ErrRange},
		{"range", func(l *List) { l.CI[0].CJEnd = 4 }, ErrRange},
		{"shift", func(l *List) { l.CI[0].Shift = 1 }, ErrShift},
		{"ordering", func(l *List) { l.CJ[1], l.CJ[2] = l.CJ[2], l.CJ[1] }, ErrOrdering},
		{"diagonal late", func(l *List) { l.CJ[0], l.CJ[1] = l.CJ[1], l.CJ[0] }, ErrDiagonal},
		{"sub-diagonal", func(l *List) { l.CJ[0].Excl |= 1 }, ErrDiagonal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := good()
			tt.modify(l)
			require.ErrorIs(t, l.Validate(atoms, shifts), tt.want)
		})
	}

	t.Run("mask", func(t *testing.T) {
		small, err := atomdata.NewLayout(2, 2)
		require.NoError(t, err)
		a := randomAtoms(t, small, 4, 3, 2)
		l := &List{
			ClusterI: 2, ClusterJ: 2,
			CI: []CI{{Cluster: 0, CJStart: 0, CJEnd: 1}},
			CJ: []CJ{{Cluster: 1, Excl: 1 << 5}},
		}
		require.ErrorIs(t, l.Validate(a, shifts), ErrMask)
	})
}

func TestNewBuilderRejectsSmallBox(t *testing.T) {
	_, err := NewBuilder(NewRectangularShifts([3]float64{3, 3, 1.5}), 0.9, nil)
	require.ErrorIs(t, err, ErrShift)

	_, err = NewBuilder(NoShifts(), 0, nil)
	require.ErrorIs(t, err, interaction.ErrCutoff)

	asym := Shifts{Vec: [][3]float64{{-3, 0, 0}, {}, {2, 0, 0}}, Central: 1}
	_, err = NewBuilder(asym, 0.9, nil)
	require.ErrorIs(t, err, ErrShift)
}

// minImage returns the squared minimum-image distance in a cubic box.
func minImage(a, b [3]float64, box float64) float64 {
	d2 := 0.0
	for k := range 3 {
		d := a[k] - b[k]
		d -= box * math.Round(d/box)
		d2 += d * d
	}
	return d2
}

func TestBuilderCoversEachPairOnce(t *testing.T) {
	const box, cutoff = 2.0, 0.9
	for _, sizes := range [][2]int{{4, 4}, {4, 2}, {2, 4}, {8, 8}, {2, 8}} {
		layout, err := atomdata.NewLayout(sizes[0], sizes[1])
		require.NoError(t, err)
		atoms := randomAtoms(t, layout, 37, box, 3)

		excl := NewExclusions(atoms.NumAtoms)
		excl.AddGroup(0, 1, 2)
		excl.Add(5, 30)

		b, err := NewBuilder(NewRectangularShifts([3]float64{box, box, box}), cutoff, excl)
		require.NoError(t, err)
		list, err := b.Build(atoms, ljParams(t))
		require.NoError(t, err)
		require.NoError(t, list.Validate(atoms, b.Shifts))

		// count (interacting or excluded) particle pairs within the cutoff
		seen := make(map[[2]int]int)
		for _, ci := range list.CI {
			sv := b.Shifts.Vec[ci.Shift]
			for k := ci.CJStart; k < ci.CJEnd; k++ {
				cj := list.CJ[k]
				off, diag := layout.Diagonal(ci.Cluster, cj.Cluster)
				diag = diag && ci.Shift == b.Shifts.Central
				for i := range layout.ClusterI {
					for j := range layout.ClusterJ {
						si, sj := layout.ISlot(ci.Cluster, i), layout.JSlot(cj.Cluster, j)
						if atoms.IsPadding(si) || atoms.IsPadding(sj) || (diag && j+off <= i) {
							continue
						}
						xi, xj := atoms.Position(si), atoms.Position(sj)
						d2 := 0.0
						for d := range 3 {
							dd := xi[d] + sv[d] - xj[d]
							d2 += dd * dd
						}
						if d2 >= cutoff*cutoff {
							continue
						}
						bit := cj.Excl>>uint(i*layout.ClusterJ+j)&1 == 1
						assert.Equal(t, !excl.Excluded(si, sj), bit, "pair %d-%d", si, sj)
						seen[[2]int{min(si, sj), max(si, sj)}]++
					}
				}
			}
		}

		want := 0
		for a := range atoms.NumAtoms {
			for c := a + 1; c < atoms.NumAtoms; c++ {
				if minImage(atoms.Position(a), atoms.Position(c), box) < cutoff*cutoff {
					want++
					assert.Equal(t, 1, seen[[2]int{a, c}], "pair %d-%d, layout %v", a, c, sizes)
				}
			}
		}
		assert.Len(t, seen, want)
	}
}

func TestBuilderDiagonalFirstAndFlags(t *testing.T) {
	layout, err := atomdata.NewLayout(4, 4)
	require.NoError(t, err)

	// type 0 has LJ, type 1 has none; the first cluster has LJ only in
	// its lower half
	in := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Type: 0},
		{Pos: [3]float64{0.1, 0, 0}, Type: 0, Charge: 1},
		{Pos: [3]float64{0.2, 0, 0}, Type: 1, Charge: -1},
		{Pos: [3]float64{0.3, 0, 0}, Type: 1},
		{Pos: [3]float64{0.4, 0, 0}, Type: 1},
		{Pos: [3]float64{0.5, 0, 0}, Type: 1, Charge: 0.5},
	}
	atoms, err := atomdata.New(layout, in, ljParams(t))
	require.NoError(t, err)

	b, err := NewBuilder(NoShifts(), 1, nil)
	require.NoError(t, err)
	list, err := b.Build(atoms, ljParams(t))
	require.NoError(t, err)
	require.NoError(t, list.Validate(atoms, b.Shifts))

	require.Len(t, list.CI, 2)
	assert.Equal(t, FlagDoLJ|FlagDoCoulomb|FlagHalfLJ, list.CI[0].Flags)
	assert.Equal(t, FlagDoCoulomb, list.CI[1].Flags)
	assert.True(t, list.CI[0].Flags.Has(FlagDoLJ|FlagHalfLJ))

	first := list.CJ[list.CI[0].CJStart]
	assert.Equal(t, 0, first.Cluster)
	assert.Equal(t, layout.DiagonalMask(0), first.Excl)

	// the second cluster holds two real particles and two padding slots
	second := list.CJ[list.CI[1].CJStart]
	assert.Equal(t, 1, second.Cluster)
	assert.Equal(t, uint64(1<<1), second.Excl)
	assert.Equal(t, 3, list.NumPairs())
}
