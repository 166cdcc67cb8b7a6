package kernel

import (
	"log/slog"
	"runtime"
)

// Config holds kernel settings.
type Config struct {
	// LaneWidth forces the number of lanes; 0 selects the widest backend
	// the CPU and the cluster layout support.
	LaneWidth    int
	Energies     bool
	EnergyGroups bool
	ShiftForces  bool
	Workers      int
	Logger       *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig computes energy totals without shift forces and uses one
// worker per CPU for [Kernel.RunParallel].
func DefaultConfig() Config {
	return Config{
		Energies: true,
		Workers:  runtime.GOMAXPROCS(0),
		Logger:   slog.Default(),
	}
}

// WithLaneWidth forces the lane width (1, 2, 4 or 8).
func WithLaneWidth(lanes int) Option {
	return func(cfg *Config) {
		cfg.LaneWidth = lanes
	}
}

// WithEnergies enables or disables energy evaluation.
func WithEnergies(on bool) Option {
	return func(cfg *Config) {
		cfg.Energies = on
	}
}

// WithEnergyGroups accumulates energies per pair of energy groups instead
// of into the two totals. It implies energy evaluation.
func WithEnergyGroups(on bool) Option {
	return func(cfg *Config) {
		cfg.EnergyGroups = on
		if on {
			cfg.Energies = true
		}
	}
}

// WithShiftForces accumulates the i-cluster force sums per shift code.
func WithShiftForces(on bool) Option {
	return func(cfg *Config) {
		cfg.ShiftForces = on
	}
}

// WithWorkers sets the default worker count of [Kernel.RunParallel].
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithLogger sets the logger used for setup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
