package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/viterin/vek"

	"github.com/cwbudde/algo-nbnxm/internal/testutil"
	"github.com/cwbudde/algo-nbnxm/md/kernel"
)

var errDeviation = errors.New("kernel deviates from reference")

// prepare loads the configuration and builds the system and kernel.
func (o *rootOptions) prepare() (*setup, *kernel.Kernel, error) {
	if o.configPath == "" {
		return nil, nil, fmt.Errorf("%w: --config is required", errConfig)
	}
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	s, err := cfg.build()
	if err != nil {
		return nil, nil, err
	}
	k, err := kernel.New(s.params, s.atoms.Layout, append(cfg.kernelOptions(), kernel.WithLogger(o.logger))...)
	if err != nil {
		return nil, nil, err
	}
	o.logger.Info("system ready",
		"atoms", s.atoms.NumAtoms,
		"slots", s.atoms.NumSlots,
		"ci_entries", len(s.list.CI),
		"cj_entries", len(s.list.CJ),
		"exclusions", s.excl.NumPairs(),
		"backend", k.Backend(),
		"lanes", k.Lanes(),
	)
	return s, k, nil
}

// evaluate runs the kernel once, in parallel when workers > 1.
func evaluate(ctx context.Context, s *setup, k *kernel.Kernel, workers int) (*kernel.Output, kernel.Stats, error) {
	out := k.NewOutput(s.atoms, s.shifts)
	var (
		stats kernel.Stats
		err   error
	)
	if workers > 1 {
		stats, err = k.RunParallel(ctx, s.list, s.atoms, s.shifts, out, workers)
	} else {
		stats, err = k.Run(s.list, s.atoms, s.shifts, out)
	}
	return out, stats, err
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		workers    int
		showForces bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate forces and energies once",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, k, err := opts.prepare()
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = k.Config().Workers
			}
			out, stats, err := evaluate(cmd.Context(), s, k, workers)
			if err != nil {
				return err
			}
			opts.logger.Debug("kernel finished", "stats", stats.String(), "workers", workers)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "backend     %s (%d lanes)\n", k.Backend(), k.Lanes())
			fmt.Fprintf(w, "stats       %s\n", stats)
			printEnergies(w, out)
			if k.Config().ShiftForces {
				v := out.Virial(s.atoms.X, s.shifts)
				for d := range 3 {
					fmt.Fprintf(w, "virial[%d]   % .6e % .6e % .6e\n", d, v[d][0], v[d][1], v[d][2])
				}
			}
			if showForces {
				printForces(w, testutil.Forces(s.atoms, out.F))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (0 uses the config value, 1 runs serially)")
	cmd.Flags().BoolVar(&showForces, "forces", false, "print per-particle forces")
	return cmd
}

func printEnergies(w io.Writer, out *kernel.Output) {
	vlj, vc := out.Energies()
	fmt.Fprintf(w, "energy lj   % .9e\n", vlj)
	fmt.Fprintf(w, "energy coul % .9e\n", vc)
	if out.NumGroups == 0 {
		return
	}
	gvlj, gvc := out.GroupEnergies()
	n := out.NumGroups
	for gi := range n {
		for gj := range gi + 1 {
			fmt.Fprintf(w, "group %d-%d   lj % .6e coul % .6e\n", gi, gj, gvlj[gi*n+gj], gvc[gi*n+gj])
		}
	}
}

func printForces(w io.Writer, f [][3]float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "atom\tfx\tfy\tfz\t")
	for i, v := range f {
		fmt.Fprintf(tw, "%d\t%.6e\t%.6e\t%.6e\t\n", i, v[0], v[1], v[2])
	}
	tw.Flush()
}

// deviation summarizes how far got is from want.
type deviation struct {
	maxAbs   float64
	maxForce float64
	worst    int
}

func forceDeviation(got, want [][3]float64) deviation {
	d := deviation{worst: -1}
	for i := range want {
		if n := vek.Norm(want[i][:]); n > d.maxForce {
			d.maxForce = n
		}
		if dist := vek.Distance(got[i][:], want[i][:]); dist > d.maxAbs || d.worst < 0 {
			d.maxAbs, d.worst = dist, i
		}
	}
	return d
}

func (d deviation) relative() float64 {
	if d.maxForce == 0 {
		return d.maxAbs
	}
	return d.maxAbs / d.maxForce
}

func relDiff(got, want float64) float64 {
	return math.Abs(got-want) / math.Max(math.Abs(want), 1)
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var tol float64
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare the kernel against a brute-force evaluation",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, k, err := opts.prepare()
			if err != nil {
				return err
			}
			out, _, err := evaluate(cmd.Context(), s, k, 1)
			if err != nil {
				return err
			}
			ref, err := s.reference()
			if err != nil {
				return err
			}

			dev := forceDeviation(testutil.Forces(s.atoms, out.F), ref.F)
			vlj, vc := out.Energies()
			dlj, dc := relDiff(vlj, ref.VLJ), relDiff(vc, ref.VC)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "force       max |dF| %.3e (atom %d), relative %.3e\n", dev.maxAbs, dev.worst, dev.relative())
			if k.Config().Energies {
				fmt.Fprintf(w, "energy lj   %.9e ref %.9e rel %.3e\n", vlj, ref.VLJ, dlj)
				fmt.Fprintf(w, "energy coul %.9e ref %.9e rel %.3e\n", vc, ref.VC, dc)
			} else {
				dlj, dc = 0, 0
			}

			if worst := max(dev.relative(), dlj, dc); worst > tol {
				return fmt.Errorf("%w: %.3e exceeds tolerance %.3e", errDeviation, worst, tol)
			}
			opts.logger.Info("kernel matches reference", "tolerance", tol)
			return nil
		},
	}
	cmd.Flags().Float64Var(&tol, "tol", 1e-6, "relative tolerance")
	return cmd
}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	var (
		iterations int
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated kernel evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				return fmt.Errorf("%w: iterations must be positive", errConfig)
			}
			s, k, err := opts.prepare()
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = k.Config().Workers
			}

			ctx := cmd.Context()
			bound, err := k.Bind(s.list, s.atoms, s.shifts)
			if err != nil {
				return err
			}
			out := bound.NewOutput()
			var stats kernel.Stats
			start := time.Now()
			for range iterations {
				out.Reset()
				if workers > 1 {
					stats, err = bound.RunParallel(ctx, out, workers)
				} else {
					stats, err = bound.Run(out)
				}
				if err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			perRun := elapsed / time.Duration(iterations)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "backend     %s (%d lanes), %d workers\n", k.Backend(), k.Lanes(), workers)
			fmt.Fprintf(w, "per run     %s\n", perRun)
			if stats.Pairs > 0 {
				fmt.Fprintf(w, "per pair    %.2f ns\n", float64(perRun.Nanoseconds())/float64(stats.Pairs))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "number of evaluations")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "parallel workers (0 uses the config value)")
	return cmd
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List kernel backends and CPU support",
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLANES\tPRIORITY\tSUPPORTED")
			for _, b := range kernel.Backends() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%t\n", b.Name, b.Lanes, b.Priority, b.Supported)
			}
			tw.Flush()
		},
	}
}
