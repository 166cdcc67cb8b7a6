package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-nbnxm/internal/testutil"
	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/kernel"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
	"github.com/cwbudde/algo-nbnxm/md/reference"
)

var errConfig = errors.New("invalid configuration")

// fileConfig is the YAML layout of a system description.
type fileConfig struct {
	Layout struct {
		ClusterI int `yaml:"ci"`
		ClusterJ int `yaml:"cj"`
	} `yaml:"layout"`

	Interaction struct {
		Coulomb     string  `yaml:"coulomb"`
		VdW         string  `yaml:"vdw"`
		RCoulomb    float64 `yaml:"rcoulomb"`
		RVdW        float64 `yaml:"rvdw"`
		RVdWSwitch  float64 `yaml:"rvdw_switch"`
		EpsilonR    float64 `yaml:"epsilon_r"`
		EpsilonRF   float64 `yaml:"epsilon_rf"`
		EwaldRTol   float64 `yaml:"ewald_rtol"`
		EwaldRTolLJ float64 `yaml:"ewald_rtol_lj"`
		TableScale  float64 `yaml:"table_scale"`
		TableInterp string  `yaml:"table_interp"`
		Combination string  `yaml:"combination"`
	} `yaml:"interaction"`

	Types []struct {
		Name    string  `yaml:"name"`
		Sigma   float64 `yaml:"sigma"`
		Epsilon float64 `yaml:"epsilon"`
	} `yaml:"types"`

	System struct {
		Box    []float64 `yaml:"box"`
		Random *struct {
			Seed        int64     `yaml:"seed"`
			Count       int       `yaml:"count"`
			MinDistance float64   `yaml:"min_distance"`
			Origin      []float64 `yaml:"origin"`
			Region      []float64 `yaml:"region"`
			Groups      int       `yaml:"groups"`
		} `yaml:"random"`
		Atoms []struct {
			Pos    []float64 `yaml:"pos"`
			Charge float64   `yaml:"charge"`
			Type   int       `yaml:"type"`
			Group  int       `yaml:"group"`
		} `yaml:"atoms"`
		Exclusions [][]int `yaml:"exclusions"`
	} `yaml:"system"`

	Kernel struct {
		Lanes        int   `yaml:"lanes"`
		Energies     *bool `yaml:"energies"`
		EnergyGroups bool  `yaml:"energy_groups"`
		ShiftForces  bool  `yaml:"shift_forces"`
		Workers      int   `yaml:"workers"`
	} `yaml:"kernel"`
}

// loadConfig reads a YAML system description.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*fileConfig, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

type named interface {
	~int
	String() string
}

// parseKind maps name onto the value of all whose String matches.
func parseKind[T named](what, name string, def T, all ...T) (T, error) {
	if name == "" {
		return def, nil
	}
	for _, v := range all {
		if v.String() == name {
			return v, nil
		}
	}
	return def, fmt.Errorf("%w: unknown %s %q", errConfig, what, name)
}

// interactionOptions translates the interaction section.
func (c *fileConfig) interactionOptions() ([]interaction.Option, error) {
	ic := c.Interaction
	coul, err := parseKind("coulomb kind", ic.Coulomb, interaction.CoulombReactionField,
		interaction.CoulombReactionField, interaction.CoulombTable, interaction.CoulombEwald)
	if err != nil {
		return nil, err
	}
	vdw, err := parseKind("vdw kind", ic.VdW, interaction.VdWCut,
		interaction.VdWCut, interaction.VdWPotSwitch, interaction.VdWForceSwitch, interaction.VdWEwald)
	if err != nil {
		return nil, err
	}
	mode, err := parseKind("table interpolation", ic.TableInterp, interaction.InterpLinear,
		interaction.InterpLinear, interaction.InterpCubic)
	if err != nil {
		return nil, err
	}
	comb, err := parseKind("combination rule", ic.Combination, interaction.CombDetect,
		interaction.CombDetect, interaction.CombNone, interaction.CombGeometric, interaction.CombLorentzBerthelot)
	if err != nil {
		return nil, err
	}

	opts := []interaction.Option{
		interaction.WithCoulomb(coul),
		interaction.WithVdW(vdw),
		interaction.WithCombination(comb),
	}
	if ic.RCoulomb > 0 || ic.RVdW > 0 {
		rc, rvdw := ic.RCoulomb, ic.RVdW
		if rc == 0 {
			rc = rvdw
		}
		if rvdw == 0 {
			rvdw = rc
		}
		opts = append(opts, interaction.WithCutoffs(rc, rvdw))
	}
	if vdw == interaction.VdWPotSwitch || vdw == interaction.VdWForceSwitch {
		opts = append(opts, interaction.WithSwitch(ic.RVdWSwitch))
	}
	if ic.EpsilonR > 0 || ic.EpsilonRF != 0 {
		epsR := ic.EpsilonR
		if epsR == 0 {
			epsR = 1
		}
		opts = append(opts, interaction.WithReactionField(epsR, ic.EpsilonRF))
	}
	if ic.EwaldRTol > 0 || ic.EwaldRTolLJ > 0 {
		d := interaction.DefaultConfig()
		rtol, rtolLJ := ic.EwaldRTol, ic.EwaldRTolLJ
		if rtol == 0 {
			rtol = d.EwaldRTol
		}
		if rtolLJ == 0 {
			rtolLJ = d.EwaldRTolLJ
		}
		opts = append(opts, interaction.WithEwald(rtol, rtolLJ))
	}
	if ic.TableScale > 0 || mode != interaction.InterpLinear {
		scale := ic.TableScale
		if scale == 0 {
			scale = interaction.DefaultTableScale
		}
		opts = append(opts, interaction.WithTableScale(scale, mode))
	}

	sigma := make([]float64, len(c.Types))
	eps := make([]float64, len(c.Types))
	for i, t := range c.Types {
		if t.Sigma < 0 || t.Epsilon < 0 {
			return nil, fmt.Errorf("%w: type %d (%s) has negative sigma or epsilon", errConfig, i, t.Name)
		}
		sigma[i], eps[i] = t.Sigma, t.Epsilon
	}
	c6, c12 := testutil.LJMatrix(sigma, eps)
	opts = append(opts, interaction.WithLJTypes(len(c.Types), c6, c12))
	return opts, nil
}

// kernelOptions translates the kernel section.
func (c *fileConfig) kernelOptions() []kernel.Option {
	kc := c.Kernel
	opts := []kernel.Option{
		kernel.WithLaneWidth(kc.Lanes),
		kernel.WithShiftForces(kc.ShiftForces),
		kernel.WithWorkers(kc.Workers),
	}
	if kc.Energies != nil {
		opts = append(opts, kernel.WithEnergies(*kc.Energies))
	}
	if kc.EnergyGroups {
		opts = append(opts, kernel.WithEnergyGroups(true))
	}
	return opts
}

func vec3(v []float64, what string) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%w: %s needs 3 components, got %d", errConfig, what, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

// atoms returns the explicit atoms followed by the random ones.
func (c *fileConfig) atoms() ([]atomdata.Atom, error) {
	sc := c.System
	atoms := make([]atomdata.Atom, 0, len(sc.Atoms))
	for i, a := range sc.Atoms {
		pos, err := vec3(a.Pos, fmt.Sprintf("atom %d position", i))
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atomdata.Atom{Pos: pos, Charge: a.Charge, Type: a.Type, EnergyGroup: a.Group})
	}
	if r := sc.Random; r != nil {
		region, err := vec3(r.Region, "random region")
		if err != nil {
			return nil, err
		}
		if r.Count < 0 || !(r.MinDistance >= 0) {
			return nil, fmt.Errorf("%w: random count %d, min distance %g", errConfig, r.Count, r.MinDistance)
		}
		// rejection sampling cannot place more particles than fit
		if vol := region[0] * region[1] * region[2]; r.MinDistance > 0 &&
			float64(r.Count)*math.Pow(r.MinDistance, 3) > 0.5*vol {
			return nil, fmt.Errorf("%w: %d particles %g apart do not fit in %v", errConfig, r.Count, r.MinDistance, region)
		}
		var origin [3]float64
		if len(r.Origin) > 0 {
			if origin, err = vec3(r.Origin, "random origin"); err != nil {
				return nil, err
			}
		}
		random := testutil.RandomAtoms(r.Seed, r.Count, region, max(len(c.Types), 1), r.MinDistance)
		for i := range random {
			for d := range 3 {
				random[i].Pos[d] += origin[d]
			}
			if r.Groups > 1 {
				random[i].EnergyGroup = i % r.Groups
			}
		}
		atoms = append(atoms, random...)
	}
	return atoms, nil
}

// setup is a fully built system ready for the kernel.
type setup struct {
	cfg    *fileConfig
	params *interaction.Params
	raw    []atomdata.Atom
	atoms  *atomdata.Atoms
	shifts pairlist.Shifts
	box    *[3]float64
	excl   *pairlist.Exclusions
	list   *pairlist.List
}

// build turns the configuration into particle arrays and a pair list.
func (c *fileConfig) build() (*setup, error) {
	opts, err := c.interactionOptions()
	if err != nil {
		return nil, err
	}
	params, err := interaction.New(opts...)
	if err != nil {
		return nil, err
	}

	ci, cj := c.Layout.ClusterI, c.Layout.ClusterJ
	if ci == 0 && cj == 0 {
		ci, cj = 4, 4
	}
	layout, err := atomdata.NewLayout(ci, cj)
	if err != nil {
		return nil, err
	}

	raw, err := c.atoms()
	if err != nil {
		return nil, err
	}
	atoms, err := atomdata.New(layout, raw, params)
	if err != nil {
		return nil, err
	}

	s := &setup{cfg: c, params: params, raw: raw, atoms: atoms, shifts: pairlist.NoShifts()}
	if len(c.System.Box) > 0 {
		box, err := vec3(c.System.Box, "box")
		if err != nil {
			return nil, err
		}
		s.box = &box
		s.shifts = pairlist.NewRectangularShifts(box)
	}

	s.excl = pairlist.NewExclusions(len(raw))
	for _, group := range c.System.Exclusions {
		for _, id := range group {
			if id < 0 || id >= len(raw) {
				return nil, fmt.Errorf("%w: exclusion of atom %d, have %d atoms", errConfig, id, len(raw))
			}
		}
		s.excl.AddGroup(group...)
	}

	b, err := pairlist.NewBuilder(s.shifts, params.RCoulomb, s.excl)
	if err != nil {
		return nil, err
	}
	if s.list, err = b.Build(atoms, params); err != nil {
		return nil, err
	}
	return s, nil
}

// reference evaluates the system with the brute-force implementation.
func (s *setup) reference() (*reference.Result, error) {
	return reference.Compute(s.params, reference.System{Atoms: s.raw, Box: s.box, Exclusions: s.excl})
}
