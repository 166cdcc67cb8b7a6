package kernel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/registry"
	"github.com/cwbudde/algo-nbnxm/md/pairlist"
)

var (
	// ErrLaneWidth reports a forced lane width that is not 1, 2, 4 or 8 or
	// does not divide the cluster product.
	ErrLaneWidth = errors.New("kernel: unsupported lane width")
	// ErrOutput reports an output whose buffers do not match the particle
	// arrays, shift table or energy groups.
	ErrOutput = errors.New("kernel: output does not match inputs")
	// ErrParams reports missing interaction parameters.
	ErrParams = errors.New("kernel: nil interaction parameters")
)

// Kernel is a configured pair kernel. It is safe for concurrent use.
type Kernel struct {
	params  *interaction.Params
	layout  atomdata.Layout
	cfg     Config
	backend string
	lanes   int
	impl    runner
	outputs sync.Pool
}

// New configures a kernel for params and layout.
func New(params *interaction.Params, layout atomdata.Layout, opts ...Option) (*Kernel, error) {
	if params == nil {
		return nil, ErrParams
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	cfg := ApplyOptions(opts...)

	k := &Kernel{params: params, layout: layout, cfg: cfg}
	if cfg.LaneWidth != 0 {
		if !slices.Contains([]int{1, 2, 4, 8}, cfg.LaneWidth) || layout.PairSlots()%cfg.LaneWidth != 0 {
			return nil, fmt.Errorf("%w: %d lanes for %dx%d clusters",
				ErrLaneWidth, cfg.LaneWidth, layout.ClusterI, layout.ClusterJ)
		}
		k.backend = "forced"
		k.lanes = cfg.LaneWidth
	} else {
		entry := registry.Global.LookupFunc(cpu.DetectFeatures(), func(e registry.OpEntry) bool {
			return layout.PairSlots()%e.Lanes == 0
		})
		if entry == nil {
			panic("kernel: no backend registered (missing generic fallback?)")
		}
		k.backend = entry.Name
		k.lanes = entry.Lanes
	}
	k.impl = newRunner(params, layout, k.lanes, cfg)

	cfg.Logger.Debug("kernel configured",
		"backend", k.backend,
		"lanes", k.lanes,
		"cluster_i", layout.ClusterI,
		"cluster_j", layout.ClusterJ,
		"params", params.String(),
		"energies", cfg.Energies,
		"energy_groups", cfg.EnergyGroups,
		"shift_forces", cfg.ShiftForces,
	)
	return k, nil
}

// BackendInfo describes one registered backend.
type BackendInfo struct {
	Name      string
	Lanes     int
	Priority  int
	Supported bool
}

// Backends lists the registered backends in priority order and reports
// which of them the running CPU supports.
func Backends() []BackendInfo {
	features := cpu.DetectFeatures()
	entries := registry.Global.ListEntries()
	slices.SortStableFunc(entries, func(a, b registry.OpEntry) int { return b.Priority - a.Priority })

	out := make([]BackendInfo, len(entries))
	for i, e := range entries {
		out[i] = BackendInfo{
			Name:      e.Name,
			Lanes:     e.Lanes,
			Priority:  e.Priority,
			Supported: cpu.Supports(features, e.SIMDLevel),
		}
	}
	return out
}

// Backend returns the name of the selected backend.
func (k *Kernel) Backend() string { return k.backend }

// Lanes returns the lane width of the pair loop.
func (k *Kernel) Lanes() int { return k.lanes }

// Params returns the interaction parameters.
func (k *Kernel) Params() *interaction.Params { return k.params }

// Config returns the kernel settings.
func (k *Kernel) Config() Config { return k.cfg }

// NewOutput allocates an output matching atoms and shifts under the
// kernel settings.
func (k *Kernel) NewOutput(atoms *atomdata.Atoms, shifts pairlist.Shifts) *Output {
	numShifts, numGroups := 0, 0
	if k.cfg.ShiftForces {
		numShifts = shifts.Len()
	}
	if k.cfg.EnergyGroups {
		numGroups = atoms.NumEnergyGroups
	}
	return NewOutput(atoms.NumSlots, numShifts, numGroups)
}

// checkInputs validates a pair list against its particle arrays and shift
// table. It is linear in the list and particle counts.
func (k *Kernel) checkInputs(list *pairlist.List, atoms *atomdata.Atoms, shifts pairlist.Shifts) error {
	if atoms.Layout != k.layout {
		return fmt.Errorf("%w: atoms are %dx%d, kernel is %dx%d", atomdata.ErrLayout,
			atoms.Layout.ClusterI, atoms.Layout.ClusterJ, k.layout.ClusterI, k.layout.ClusterJ)
	}
	if err := atoms.Validate(); err != nil {
		return err
	}
	stride := k.params.TypeStride()
	for s, t := range atoms.Type {
		if t < 0 || t >= stride {
			return fmt.Errorf("%w: slot %d has type %d of %d", atomdata.ErrAtom, s, t, stride)
		}
	}
	return list.Validate(atoms, shifts)
}

// checkOutput validates the buffer shapes of out.
func (k *Kernel) checkOutput(in *input, out *Output) error {
	atoms, shifts := in.atoms, in.shifts
	switch {
	case out == nil:
		return fmt.Errorf("%w: nil output", ErrOutput)
	case len(out.F) != atoms.NumSlots*atomdata.XStride:
		return fmt.Errorf("%w: %d force components for %d slots", ErrOutput, len(out.F), atoms.NumSlots)
	case k.cfg.ShiftForces && len(out.FShift) != 3*shifts.Len():
		return fmt.Errorf("%w: %d shift force components for %d shifts", ErrOutput, len(out.FShift), shifts.Len())
	case k.cfg.EnergyGroups && out.NumGroups < atoms.NumEnergyGroups:
		return fmt.Errorf("%w: %d energy groups, atoms use %d", ErrOutput, out.NumGroups, atoms.NumEnergyGroups)
	case k.cfg.EnergyGroups && (len(out.GroupVLJ) != out.NumGroups*out.NumGroups || len(out.GroupVC) != len(out.GroupVLJ)):
		return fmt.Errorf("%w: energy group buckets do not match %d groups", ErrOutput, out.NumGroups)
	}
	return nil
}

// Bound is a pair list bound to its particle arrays and shift table after
// one validation pass, for repeated evaluation without re-checking them.
// Positions may change between calls through [atomdata.Atoms.UpdatePositions];
// the list, the particle types and the shift table must not.
type Bound struct {
	k  *Kernel
	in input
}

// Bind validates list, atoms and shifts once.
func (k *Kernel) Bind(list *pairlist.List, atoms *atomdata.Atoms, shifts pairlist.Shifts) (*Bound, error) {
	if err := k.checkInputs(list, atoms, shifts); err != nil {
		return nil, err
	}
	return &Bound{k: k, in: input{list: list, atoms: atoms, shifts: shifts}}, nil
}

// NewOutput allocates an output matching the bound inputs.
func (b *Bound) NewOutput() *Output {
	return b.k.NewOutput(b.in.atoms, b.in.shifts)
}

// Run evaluates every CI entry of list sequentially and adds the results
// to out. It validates the inputs on every call; use [Kernel.Bind] to
// validate once.
func (k *Kernel) Run(list *pairlist.List, atoms *atomdata.Atoms, shifts pairlist.Shifts, out *Output) (Stats, error) {
	b, err := k.Bind(list, atoms, shifts)
	if err != nil {
		return Stats{}, err
	}
	return b.Run(out)
}

// RunParallel is [Bound.RunParallel] after validating the inputs.
func (k *Kernel) RunParallel(ctx context.Context, list *pairlist.List, atoms *atomdata.Atoms, shifts pairlist.Shifts, out *Output, workers int) (Stats, error) {
	b, err := k.Bind(list, atoms, shifts)
	if err != nil {
		return Stats{}, err
	}
	return b.RunParallel(ctx, out, workers)
}

// Run evaluates every CI entry sequentially and adds the results to out.
// Only the output shape is checked.
func (b *Bound) Run(out *Output) (Stats, error) {
	if err := b.k.checkOutput(&b.in, out); err != nil {
		return Stats{}, err
	}
	return b.k.impl.run(&b.in, out, b.in.list.CI), nil
}

// RunParallel splits the CI entries into contiguous shards of similar
// cost, evaluates them on up to workers goroutines into private buffers
// and adds the buffers to out in shard order. workers <= 0 uses the
// configured worker count. A cancelled ctx stops shards that have not
// started; out is left untouched in that case.
func (b *Bound) RunParallel(ctx context.Context, out *Output, workers int) (Stats, error) {
	k, in := b.k, &b.in
	if err := k.checkOutput(in, out); err != nil {
		return Stats{}, err
	}
	if workers <= 0 {
		workers = k.cfg.Workers
	}
	shards := splitShards(in.list, workers)
	if len(shards) <= 1 {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		return k.impl.run(in, out, in.list.CI), nil
	}

	bufs := make([]*Output, len(shards))
	stats := make([]Stats, len(shards))
	defer func() {
		for _, buf := range bufs {
			if buf != nil {
				k.outputs.Put(buf)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for n, shard := range shards {
		bufs[n] = k.privateOutput(out)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats[n] = k.impl.run(in, bufs[n], shard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for n, buf := range bufs {
		if err := out.Merge(buf); err != nil {
			return total, err
		}
		total.Add(stats[n])
	}
	return total, nil
}

// privateOutput returns a zeroed buffer shaped like out.
func (k *Kernel) privateOutput(out *Output) *Output {
	if b, ok := k.outputs.Get().(*Output); ok && b.sameShape(out) {
		b.Reset()
		return b
	}
	return NewOutput(len(out.F)/atomdata.XStride, len(out.FShift)/3, out.NumGroups)
}

// splitShards cuts the CI entries into at most n contiguous shards with
// similar numbers of j-cluster entries.
func splitShards(list *pairlist.List, n int) [][]pairlist.CI {
	cis := list.CI
	n = min(n, len(cis))
	if n <= 1 {
		return [][]pairlist.CI{cis}
	}

	total := 0
	for _, ci := range cis {
		total += ci.CJEnd - ci.CJStart + 1
	}
	shards := make([][]pairlist.CI, 0, n)
	start, acc := 0, 0
	for i, ci := range cis {
		acc += ci.CJEnd - ci.CJStart + 1
		if acc*n >= total*(len(shards)+1) && len(shards) < n-1 {
			shards = append(shards, cis[start:i+1])
			start = i + 1
		}
	}
	if start < len(cis) {
		shards = append(shards, cis[start:])
	}
	return shards
}
