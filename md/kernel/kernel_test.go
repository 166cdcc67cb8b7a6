package kernel

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nbnxm/internal/testutil"
	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
	"github.com/cwbudde/algo-nbnxm/md/reference"
)

const (
	relTol = 1e-9
	absTol = 1e-9
)

var (
	testSigma = []float64{0.30, 0.34, 0.26}
	testEps   = []float64{0.65, 0.40, 0}
)

// testSystem is a particle set with its pair list.
type testSystem struct {
	params *interaction.Params
	raw    []atomdata.Atom
	atoms  *atomdata.Atoms
	shifts pairlist.Shifts
	list   *pairlist.List
	box    *[3]float64
	excl   *pairlist.Exclusions
}

func newTestSystem(t testing.TB, layout atomdata.Layout, raw []atomdata.Atom, box *[3]float64,
	excl *pairlist.Exclusions, opts ...interaction.Option,
) *testSystem {
	t.Helper()
	params, err := interaction.New(opts...)
	require.NoError(t, err)
	atoms, err := atomdata.New(layout, raw, params)
	require.NoError(t, err)

	shifts := pairlist.NoShifts()
	if box != nil {
		shifts = pairlist.NewRectangularShifts(*box)
	}
	b, err := pairlist.NewBuilder(shifts, params.RCoulomb, excl)
	require.NoError(t, err)
	list, err := b.Build(atoms, params)
	require.NoError(t, err)

	return &testSystem{params: params, raw: raw, atoms: atoms, shifts: shifts, list: list, box: box, excl: excl}
}

func (s *testSystem) reference(t testing.TB) *reference.Result {
	t.Helper()
	ref, err := reference.Compute(s.params, reference.System{Atoms: s.raw, Box: s.box, Exclusions: s.excl})
	require.NoError(t, err)
	return ref
}

func (s *testSystem) run(t testing.TB, opts ...Option) (*Kernel, *Output, Stats) {
	t.Helper()
	k, err := New(s.params, s.atoms.Layout, opts...)
	require.NoError(t, err)
	out := k.NewOutput(s.atoms, s.shifts)
	stats, err := k.Run(s.list, s.atoms, s.shifts, out)
	require.NoError(t, err)
	testutil.RequireFinite(t, out.F)
	return k, out, stats
}

func ljTypes() interaction.Option {
	c6, c12 := testutil.LJMatrix(testSigma, testEps)
	return interaction.WithLJTypes(len(testSigma), c6, c12)
}

// randomSystem returns a system with bonded-neighbour style exclusions
// and one excluded particle sitting exactly on top of particle 0.
func randomSystem(seed int64, n int, box [3]float64) ([]atomdata.Atom, *pairlist.Exclusions) {
	raw := testutil.RandomAtoms(seed, n, box, len(testSigma), 0.3)
	raw = append(raw, atomdata.Atom{Pos: raw[0].Pos, Charge: -raw[0].Charge, Type: 1})
	excl := pairlist.NewExclusions(len(raw))
	for i := 0; i+1 < n; i += 3 {
		excl.Add(i, i+1)
	}
	excl.Add(0, n)
	return raw, excl
}

type model struct {
	name string
	opts []interaction.Option
}

func testModels() []model {
	return []model{
		{"cut/reaction-field", []interaction.Option{
			interaction.WithVdW(interaction.VdWCut),
			interaction.WithReactionField(1, 62),
		}},
		{"cut/reaction-field-conducting", []interaction.Option{
			interaction.WithVdW(interaction.VdWCut),
			interaction.WithCutoffs(1.0, 0.85),
			interaction.WithReactionField(1, 0),
		}},
		{"potential-switch/table-linear", []interaction.Option{
			interaction.WithVdW(interaction.VdWPotSwitch),
			interaction.WithSwitch(0.8),
			interaction.WithCoulomb(interaction.CoulombTable),
		}},
		{"force-switch/table-cubic", []interaction.Option{
			interaction.WithVdW(interaction.VdWForceSwitch),
			interaction.WithSwitch(0.7),
			interaction.WithCoulomb(interaction.CoulombTable),
			interaction.WithTableScale(500, interaction.InterpCubic),
		}},
		{"ewald/ewald", []interaction.Option{
			interaction.WithVdW(interaction.VdWEwald),
			interaction.WithCoulomb(interaction.CoulombEwald),
		}},
		{"cut/ewald-short-vdw", []interaction.Option{
			interaction.WithCutoffs(1.0, 0.9),
			interaction.WithCoulomb(interaction.CoulombEwald),
		}},
		{"ewald/reaction-field", []interaction.Option{
			interaction.WithVdW(interaction.VdWEwald),
			interaction.WithReactionField(2, 80),
		}},
	}
}

var testLayouts = []atomdata.Layout{
	{ClusterI: 4, ClusterJ: 4},
	{ClusterI: 4, ClusterJ: 2},
	{ClusterI: 2, ClusterJ: 4},
	{ClusterI: 8, ClusterJ: 8},
	{ClusterI: 2, ClusterJ: 2},
}

func requireMatchesReference(t *testing.T, s *testSystem, out *Output, stats Stats, ref *reference.Result) {
	t.Helper()
	testutil.RequireVectorsClose(t, testutil.Forces(s.atoms, out.F), ref.F, relTol, absTol)
	vlj, vc := out.Energies()
	testutil.RequireClose(t, vlj, ref.VLJ, relTol, absTol, "VLJ")
	testutil.RequireClose(t, vc, ref.VC, relTol, absTol, "VC")
	assert.Equal(t, ref.Pairs, stats.Pairs)
}

func TestBruteForceEquivalence(t *testing.T) {
	boxes := map[string]*[3]float64{
		"open":     nil,
		"periodic": {2.5, 2.6, 2.7},
	}
	for _, m := range testModels() {
		for boxName, box := range boxes {
			// keep particles apart across the periodic boundary too
			region := [3]float64{2.2, 2.3, 2.4}
			raw, excl := randomSystem(11, 40, region)
			opts := append([]interaction.Option{ljTypes()}, m.opts...)

			for _, layout := range testLayouts {
				s := newTestSystem(t, layout, raw, box, excl, opts...)
				ref := s.reference(t)
				for _, lanes := range []int{1, 2, 4, 8} {
					if layout.PairSlots()%lanes != 0 {
						continue
					}
					name := m.name + "/" + boxName + "/" + layoutName(layout) + "/" + laneName(lanes)
					t.Run(name, func(t *testing.T) {
						_, out, stats := s.run(t, WithLaneWidth(lanes))
						requireMatchesReference(t, s, out, stats, ref)
					})
				}
			}
		}
	}
}

func layoutName(l atomdata.Layout) string {
	return fmt.Sprintf("%dx%d", l.ClusterI, l.ClusterJ)
}

func laneName(lanes int) string {
	return fmt.Sprintf("w%d", lanes)
}

func TestCombinationRules(t *testing.T) {
	c6g, c12g := testutil.GeometricMatrix([]float64{2e-3, 3e-3, 0}, []float64{3e-6, 5e-6, 0})
	c6n, c12n := testutil.LJMatrix(testSigma, testEps)
	c6n[1] *= 1.5
	c6n[3] *= 1.5

	tests := []struct {
		name     string
		c6, c12  []float64
		wantComb interaction.Combination
	}{
		{"geometric", c6g, c12g, interaction.CombGeometric},
		{"none", c6n, c12n, interaction.CombNone},
	}
	raw, excl := randomSystem(5, 32, [3]float64{2.2, 2.2, 2.2})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, excl,
				interaction.WithLJTypes(3, tt.c6, tt.c12))
			require.Equal(t, tt.wantComb, s.params.Combination())
			_, out, stats := s.run(t, WithLaneWidth(4))
			requireMatchesReference(t, s, out, stats, s.reference(t))
		})
	}
}

func TestNewtonsThirdLaw(t *testing.T) {
	raw, excl := randomSystem(3, 48, [3]float64{2.1, 2.1, 2.1})
	for _, m := range testModels() {
		t.Run(m.name, func(t *testing.T) {
			opts := append([]interaction.Option{ljTypes()}, m.opts...)
			s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, &[3]float64{2.4, 2.4, 2.4}, excl, opts...)
			_, out, _ := s.run(t)

			var sum [3]float64
			scale := 0.0
			for i := 0; i < len(out.F); i += 3 {
				for d := range 3 {
					sum[d] += out.F[i+d]
					scale = math.Max(scale, math.Abs(out.F[i+d]))
				}
			}
			for d := range 3 {
				assert.InDelta(t, 0, sum[d], 1e-10*scale, "component %d", d)
			}
		})
	}
}

func TestDiagonalCountsEachPairOnce(t *testing.T) {
	raw := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Charge: 0.5},
		{Pos: [3]float64{0.35, 0, 0}, Charge: -0.5},
		{Pos: [3]float64{0, 0.4, 0}, Charge: 0.3},
		{Pos: [3]float64{0.1, 0.2, 0.3}, Charge: -0.3, Type: 1},
	}
	for _, layout := range []atomdata.Layout{{ClusterI: 4, ClusterJ: 4}, {ClusterI: 2, ClusterJ: 4}, {ClusterI: 4, ClusterJ: 2}} {
		t.Run(layoutName(layout), func(t *testing.T) {
			s := newTestSystem(t, layout, raw, nil, nil, ljTypes())
			_, out, stats := s.run(t)
			assert.Equal(t, 6, stats.Pairs)
			requireMatchesReference(t, s, out, stats, s.reference(t))
		})
	}
}

func TestExcludedPairOutsideCutoff(t *testing.T) {
	raw := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Charge: 1},
		{Pos: [3]float64{1.5, 0, 0}, Charge: -1},
	}
	excl := pairlist.NewExclusions(2)
	excl.Add(0, 1)

	plain := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, nil, ljTypes())
	excluded := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, excl, ljTypes())
	_, a, sa := plain.run(t)
	_, b, sb := excluded.run(t)

	assert.Zero(t, sa.Pairs)
	assert.Zero(t, sb.Pairs)
	assert.Equal(t, a.F, b.F)
	assert.Equal(t, a.VC, b.VC)

	// only the reaction-field self terms remain
	p := plain.params
	assert.InDelta(t, -2*p.EpsFac*0.5*p.CRF, a.VC, 1e-12)
	for _, f := range a.F {
		assert.Zero(t, f)
	}
}

func TestExcludedPairCorrection(t *testing.T) {
	raw := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Charge: 0.8},
		{Pos: [3]float64{0.1, 0, 0}, Charge: -0.8},
	}
	excl := pairlist.NewExclusions(2)
	excl.Add(0, 1)
	s := newTestSystem(t, atomdata.Layout{ClusterI: 2, ClusterJ: 2}, raw, nil, excl,
		ljTypes(), interaction.WithCoulomb(interaction.CoulombEwald))
	_, out, stats := s.run(t)

	assert.Equal(t, 1, stats.Pairs)
	p := s.params
	qq := p.EpsFac * 0.8 * -0.8
	v, f := interaction.EwaldCorrection(p.BetaQ, 0.1)
	self := -p.EpsFac * 2 * 0.64 * p.CoulombSelf()
	testutil.RequireClose(t, out.VC, -qq*v+self, 1e-12, 0, "VC")
	// displacement x0 - x1 is -0.1
	testutil.RequireClose(t, out.Force(0)[0], qq*f*0.1, 1e-12, 0, "Fx")
	assert.Zero(t, out.VLJ)
}

// TestTwoClusterScenario checks a hand-written evaluation of two clusters
// with a plain LJ cutoff and reaction-field electrostatics.
func TestTwoClusterScenario(t *testing.T) {
	raw := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Charge: 0.5},
		{Pos: [3]float64{0.35, 0, 0}, Charge: -0.5},
		{Pos: [3]float64{0, 0.35, 0}, Charge: 0.25},
		{Pos: [3]float64{0, 0, 0.35}, Charge: -0.25},
		{Pos: [3]float64{0.6, 0.1, 0}, Charge: -0.3},
		{Pos: [3]float64{0.6, 0.45, 0}, Charge: 0.3},
		{Pos: [3]float64{0.95, 0.1, 0}, Charge: 0.4},
		{Pos: [3]float64{0.6, 0.1, 0.35}, Charge: -0.4},
	}
	const (
		c6  = 2.3e-3
		c12 = 2.1e-6
		rc  = 1.2
	)
	s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, nil,
		interaction.WithCutoffs(rc, rc),
		interaction.WithReactionField(1, 0),
		interaction.WithLJTypes(1, []float64{c6}, []float64{c12}))
	require.Len(t, s.list.CI, 2)

	p := s.params
	krf := 1 / (2 * rc * rc * rc)
	crf := 1/rc + krf*rc*rc
	var f0 [3]float64
	var vlj, vc float64
	for i := range raw {
		for j := i + 1; j < len(raw); j++ {
			var d [3]float64
			for k := range 3 {
				d[k] = raw[i].Pos[k] - raw[j].Pos[k]
			}
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			r := math.Sqrt(r2)
			qq := p.EpsFac * raw[i].Charge * raw[j].Charge
			ir6 := 1 / (r2 * r2 * r2)
			vlj += c12*(ir6*ir6-math.Pow(rc, -12)) - c6*(ir6-math.Pow(rc, -6))
			vc += qq * (1/r + krf*r2 - crf)
			fscal := (12*c12*ir6*ir6-6*c6*ir6)/r2 + qq*(1/(r*r2)-2*krf)
			if i == 0 {
				for k := range 3 {
					f0[k] += fscal * d[k]
				}
			}
		}
		vc -= 0.5 * p.EpsFac * raw[i].Charge * raw[i].Charge * crf
	}

	_, out, stats := s.run(t)
	assert.Equal(t, 28, stats.Pairs)
	for k := range 3 {
		testutil.RequireClose(t, out.Force(0)[k], f0[k], 1e-12, 1e-12, "F0")
	}
	testutil.RequireClose(t, out.VLJ, vlj, 1e-12, 1e-15, "VLJ")
	testutil.RequireClose(t, out.VC, vc, 1e-12, 1e-15, "VC")
}

func TestHalfLJ(t *testing.T) {
	// i-cluster 0 carries LJ only on its first two particles
	raw := []atomdata.Atom{
		{Pos: [3]float64{0, 0, 0}, Charge: 0.4, Type: 0},
		{Pos: [3]float64{0.3, 0, 0}, Charge: -0.4, Type: 1},
		{Pos: [3]float64{0, 0.3, 0}, Charge: 0.2, Type: 2},
		{Pos: [3]float64{0.3, 0.3, 0}, Charge: -0.2, Type: 2},
		{Pos: [3]float64{0, 0, 0.4}, Charge: 0.1, Type: 0},
		{Pos: [3]float64{0.4, 0, 0.4}, Charge: -0.1, Type: 1},
		{Pos: [3]float64{0, 0.4, 0.4}, Charge: 0.3, Type: 0},
		{Pos: [3]float64{0.4, 0.4, 0.4}, Charge: -0.3, Type: 1},
	}
	layout := atomdata.Layout{ClusterI: 4, ClusterJ: 4}
	s := newTestSystem(t, layout, raw, nil, nil, ljTypes())
	require.True(t, s.list.CI[0].Flags.Has(pairlist.FlagHalfLJ))
	require.False(t, s.list.CI[1].Flags.Has(pairlist.FlagHalfLJ))

	for _, lanes := range []int{1, 2, 4, 8} {
		t.Run(laneName(lanes), func(t *testing.T) {
			_, out, stats := s.run(t, WithLaneWidth(lanes))
			requireMatchesReference(t, s, out, stats, s.reference(t))
		})
	}

	t.Run("gates upper half", func(t *testing.T) {
		_, full, _ := s.run(t, WithLaneWidth(4))
		s.list.CI[1].Flags |= pairlist.FlagHalfLJ
		defer func() { s.list.CI[1].Flags &^= pairlist.FlagHalfLJ }()
		_, half, _ := s.run(t, WithLaneWidth(4))

		testutil.RequireClose(t, half.VC, full.VC, 1e-12, 0, "VC")
		assert.NotEqual(t, full.VLJ, half.VLJ)
	})
}

// halfLJExpected sums two-particle reference results over the pairs of
// the list, dropping LJ for pairs whose i-particle lies in the upper half
// of its cluster. It expects open boundaries.
func halfLJExpected(t *testing.T, s *testSystem) ([][3]float64, float64) {
	t.Helper()
	layout := s.atoms.Layout
	f := make([][3]float64, len(s.raw))
	vlj := 0.0
	for _, ci := range s.list.CI {
		for _, cj := range s.list.CJ[ci.CJStart:ci.CJEnd] {
			off, diag := layout.Diagonal(ci.Cluster, cj.Cluster)
			for i := range layout.ClusterI {
				si := layout.ISlot(ci.Cluster, i)
				for j := range layout.ClusterJ {
					sj := layout.JSlot(cj.Cluster, j)
					if si >= len(s.raw) || sj >= len(s.raw) || (diag && j+off <= i) {
						continue
					}
					a, b := s.raw[si], s.raw[sj]
					if i >= layout.ClusterI/2 {
						// type 2 has no LJ
						a.Type, b.Type = 2, 2
					}
					pair, err := reference.Compute(s.params, reference.System{Atoms: []atomdata.Atom{a, b}})
					require.NoError(t, err)
					for d := range 3 {
						f[si][d] += pair.F[0][d]
						f[sj][d] += pair.F[1][d]
					}
					vlj += pair.VLJ
				}
			}
		}
	}
	return f, vlj
}

func TestHalfLJStraddlingChunks(t *testing.T) {
	// every particle carries LJ, so only the flag keeps the upper half out
	raw := testutil.RandomAtoms(29, 16, [3]float64{1.6, 1.6, 1.6}, 2, 0.3)
	tests := []struct {
		layout atomdata.Layout
		lanes  []int
	}{
		{atomdata.Layout{ClusterI: 2, ClusterJ: 2}, []int{1, 2, 4}},
		{atomdata.Layout{ClusterI: 2, ClusterJ: 4}, []int{1, 2, 4, 8}},
		{atomdata.Layout{ClusterI: 4, ClusterJ: 2}, []int{1, 2, 4, 8}},
		{atomdata.Layout{ClusterI: 4, ClusterJ: 4}, []int{1, 2, 4, 8}},
	}
	for _, tt := range tests {
		for _, rvdw := range []float64{1.0, 0.8} {
			halfLJCase(t, raw, tt.layout, tt.lanes, rvdw)
		}
	}
}

func halfLJCase(t *testing.T, raw []atomdata.Atom, layout atomdata.Layout, lanes []int, rvdw float64) {
	t.Helper()
	s := newTestSystem(t, layout, raw, nil, nil, ljTypes(), interaction.WithCutoffs(1.0, rvdw))
	for n := range s.list.CI {
		require.False(t, s.list.CI[n].Flags.Has(pairlist.FlagHalfLJ))
		s.list.CI[n].Flags |= pairlist.FlagHalfLJ | pairlist.FlagDoCoulomb
	}
	wantF, wantVLJ := halfLJExpected(t, s)
	ref := s.reference(t)
	require.NotEqual(t, ref.VLJ, wantVLJ)

	for _, n := range lanes {
		t.Run(fmt.Sprintf("%s/%s/rvdw=%g", layoutName(layout), laneName(n), rvdw), func(t *testing.T) {
			_, out, _ := s.run(t, WithLaneWidth(n))
			testutil.RequireVectorsClose(t, testutil.Forces(s.atoms, out.F), wantF, relTol, absTol)
			vlj, vc := out.Energies()
			testutil.RequireClose(t, vlj, wantVLJ, relTol, absTol, "VLJ")
			testutil.RequireClose(t, vc, ref.VC, relTol, absTol, "VC")
		})
	}
}

func TestLJOnlyClusters(t *testing.T) {
	// types 0 and 1 only, so every random cluster carries LJ
	raw := testutil.RandomAtoms(21, 24, [3]float64{2, 2, 2}, 2, 0.3)
	for i := range raw {
		raw[i].Charge = 0
	}
	// no LJ and no charge: skipped entirely, and too far apart to pair
	raw = append(raw, atomdata.Atom{Pos: [3]float64{5, 5, 5}, Type: 2}, atomdata.Atom{Pos: [3]float64{5, 5, 6.5}, Type: 2})

	s := newTestSystem(t, atomdata.Layout{ClusterI: 2, ClusterJ: 2}, raw, nil, nil, ljTypes())
	inert := s.atoms.Layout.NumIClusters(len(raw)) - 1
	for _, ci := range s.list.CI {
		assert.False(t, ci.Flags.Has(pairlist.FlagDoCoulomb))
		assert.True(t, ci.Flags.Has(pairlist.FlagDoLJ))
		assert.NotEqual(t, inert, ci.Cluster)
	}
	_, out, stats := s.run(t, WithLaneWidth(2))
	requireMatchesReference(t, s, out, stats, s.reference(t))
	assert.Zero(t, out.VC)
	assert.Equal(t, len(s.list.CI), stats.IClusters)
}

func TestEnergyGroups(t *testing.T) {
	raw, excl := randomSystem(17, 36, [3]float64{2.3, 2.3, 2.3})
	for i := range raw {
		raw[i].EnergyGroup = i % 3
	}
	s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 2}, raw, nil, excl,
		ljTypes(), interaction.WithVdW(interaction.VdWEwald), interaction.WithCoulomb(interaction.CoulombEwald))
	ref := s.reference(t)

	for _, lanes := range []int{1, 2, 4, 8} {
		t.Run(laneName(lanes), func(t *testing.T) {
			_, out, stats := s.run(t, WithLaneWidth(lanes), WithEnergyGroups(true))
			require.Equal(t, 3, out.NumGroups)
			assert.Zero(t, out.VLJ)
			assert.Zero(t, out.VC)
			requireMatchesReference(t, s, out, stats, ref)

			vlj, vc := out.GroupEnergies()
			for b := range vlj {
				testutil.RequireClose(t, vlj[b], ref.GroupVLJ[b], relTol, absTol, "group VLJ")
				testutil.RequireClose(t, vc[b], ref.GroupVC[b], relTol, absTol, "group VC")
			}
		})
	}
}

func TestWithoutEnergies(t *testing.T) {
	raw, excl := randomSystem(23, 30, [3]float64{2.2, 2.2, 2.2})
	s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, excl,
		ljTypes(), interaction.WithCoulomb(interaction.CoulombTable))

	_, with, _ := s.run(t)
	_, without, _ := s.run(t, WithEnergies(false))
	assert.Equal(t, with.F, without.F)
	assert.Zero(t, without.VLJ)
	assert.Zero(t, without.VC)
}

func TestShiftForcesVirial(t *testing.T) {
	box := [3]float64{2.2, 2.3, 2.4}
	raw, excl := randomSystem(29, 40, [3]float64{1.9, 2.0, 2.1})
	for _, m := range testModels() {
		t.Run(m.name, func(t *testing.T) {
			opts := append([]interaction.Option{ljTypes()}, m.opts...)
			s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, &box, excl, opts...)
			_, out, _ := s.run(t, WithShiftForces(true))
			require.Len(t, out.FShift, 3*pairlist.NumRectangularShifts)

			got := out.Virial(s.atoms.X, s.shifts)
			want := s.reference(t).Virial
			for a := range 3 {
				for b := range 3 {
					testutil.RequireClose(t, got[a][b], want[a][b], 1e-8, 1e-8, "virial")
				}
			}
		})
	}
}

func TestAccumulatesIntoOutput(t *testing.T) {
	raw, excl := randomSystem(31, 20, [3]float64{2, 2, 2})
	s := newTestSystem(t, atomdata.Layout{ClusterI: 4, ClusterJ: 4}, raw, nil, excl, ljTypes())
	k, once, _ := s.run(t)

	twice := k.NewOutput(s.atoms, s.shifts)
	for range 2 {
		_, err := k.Run(s.list, s.atoms, s.shifts, twice)
		require.NoError(t, err)
	}
	for i := range once.F {
		assert.InDelta(t, 2*once.F[i], twice.F[i], 1e-9*math.Max(1, math.Abs(once.F[i])))
	}
	assert.InDelta(t, 2*once.VC, twice.VC, 1e-9*math.Abs(once.VC))
}

// ljPair returns the x force on the first of two uncharged type-0
// particles r apart and the LJ energy.
func ljPair(t *testing.T, r float64, opts ...interaction.Option) (float64, float64) {
	t.Helper()
	raw := []atomdata.Atom{{Pos: [3]float64{0, 0, 0}}, {Pos: [3]float64{r, 0, 0}}}
	s := newTestSystem(t, atomdata.Layout{ClusterI: 2, ClusterJ: 2}, raw, nil, nil, append([]interaction.Option{ljTypes()}, opts...)...)
	_, out, _ := s.run(t, WithLaneWidth(2))
	assert.InDelta(t, -out.F[0], out.F[3], 1e-12)
	return out.F[0], out.VLJ
}

func TestSwitchedLJAtSwitchAndCutoff(t *testing.T) {
	const (
		rsw  = 0.7
		rvdw = 0.9
	)
	c6s, c12s := testutil.LJMatrix(testSigma, testEps)
	c6, c12 := c6s[0], c12s[0]
	// plain LJ force on the first particle, which sits at -r from the second
	plainF := func(r float64) float64 { return -(12*c12*math.Pow(r, -13) - 6*c6*math.Pow(r, -7)) }

	for _, vdw := range []interaction.VdWKind{interaction.VdWPotSwitch, interaction.VdWForceSwitch} {
		t.Run(vdw.String(), func(t *testing.T) {
			opts := []interaction.Option{
				interaction.WithVdW(vdw),
				interaction.WithCutoffs(1.0, rvdw),
				interaction.WithSwitch(rsw),
			}
			params, err := interaction.New(append([]interaction.Option{ljTypes()}, opts...)...)
			require.NoError(t, err)

			f, v := ljPair(t, rsw, opts...)
			testutil.RequireClose(t, f, plainF(rsw), 1e-9, 1e-12, "force at switch")
			wantV := c12*math.Pow(rsw, -12) - c6*math.Pow(rsw, -6)
			if vdw == interaction.VdWForceSwitch {
				wantV += c12*params.Repulsion.CPot - c6*params.Dispersion.CPot
			}
			testutil.RequireClose(t, v, wantV, 1e-9, 1e-12, "energy at switch")

			const h = 1e-7
			fIn, vIn := ljPair(t, rsw-h, opts...)
			fOut, vOut := ljPair(t, rsw+h, opts...)
			assert.InDelta(t, fIn, fOut, 1e-4*math.Abs(f))
			assert.InDelta(t, vIn, vOut, 1e-4*math.Abs(v))

			fEnd, vEnd := ljPair(t, rvdw-1e-5, opts...)
			assert.InDelta(t, 0, fEnd, 1e-8)
			assert.InDelta(t, 0, vEnd, 1e-8)

			fBeyond, vBeyond := ljPair(t, 0.5*(rvdw+1.0), opts...)
			assert.Zero(t, fBeyond)
			assert.Zero(t, vBeyond)
		})
	}
}
