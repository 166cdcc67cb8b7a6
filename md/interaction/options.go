package interaction

// Config collects the user-facing settings of a parameter set. Derived
// constants live in [Params].
type Config struct {
	Coulomb CoulombKind
	VdW     VdWKind

	RCoulomb   float64
	RVdW       float64
	RVdWSwitch float64

	EpsilonR  float64
	EpsilonRF float64 // 0 means infinity (conducting boundary)
	EpsFac    float64 // 0 means ElectricConversion/EpsilonR

	EwaldRTol   float64
	EwaldRTolLJ float64
	BetaQ       float64
	BetaLJ      float64
	betaQSet    bool
	betaLJSet   bool

	TableScale  float64
	TableInterp Interp
	Table       *Table

	NumTypes    int
	C6          []float64
	C12         []float64
	Combination Combination
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a reaction-field, plain-cutoff setup with unit
// cutoffs and no LJ types.
func DefaultConfig() Config {
	return Config{
		Coulomb:     CoulombReactionField,
		VdW:         VdWCut,
		RCoulomb:    1.0,
		RVdW:        1.0,
		EpsilonR:    1,
		EwaldRTol:   1e-5,
		EwaldRTolLJ: 1e-3,
		TableScale:  DefaultTableScale,
		TableInterp: InterpLinear,
		Combination: CombDetect,
	}
}

// WithCoulomb selects the electrostatics model.
func WithCoulomb(kind CoulombKind) Option {
	return func(cfg *Config) {
		cfg.Coulomb = kind
	}
}

// WithVdW selects the LJ tail treatment.
func WithVdW(kind VdWKind) Option {
	return func(cfg *Config) {
		cfg.VdW = kind
	}
}

// WithCutoffs sets the Coulomb and LJ cutoff radii.
func WithCutoffs(rcoulomb, rvdw float64) Option {
	return func(cfg *Config) {
		cfg.RCoulomb = rcoulomb
		cfg.RVdW = rvdw
	}
}

// WithSwitch sets the radius where the LJ potential or force switch starts.
func WithSwitch(rswitch float64) Option {
	return func(cfg *Config) {
		cfg.RVdWSwitch = rswitch
	}
}

// WithReactionField sets the relative dielectric constants inside and
// beyond the cutoff. epsRF == 0 selects a conducting boundary.
func WithReactionField(epsR, epsRF float64) Option {
	return func(cfg *Config) {
		cfg.EpsilonR = epsR
		cfg.EpsilonRF = epsRF
	}
}

// WithEpsFac overrides the electrostatic conversion factor.
func WithEpsFac(epsfac float64) Option {
	return func(cfg *Config) {
		if epsfac > 0 {
			cfg.EpsFac = epsfac
		}
	}
}

// WithEwald sets the relative strength of the direct-space Coulomb and LJ
// potentials at their cutoffs, from which the screening coefficients are
// derived.
func WithEwald(rtol, rtolLJ float64) Option {
	return func(cfg *Config) {
		cfg.EwaldRTol = rtol
		cfg.EwaldRTolLJ = rtolLJ
	}
}

// WithEwaldCoefficient fixes the Coulomb screening coefficient. Zero with
// CoulombTable gives a bare 1/r table.
func WithEwaldCoefficient(beta float64) Option {
	return func(cfg *Config) {
		cfg.BetaQ = beta
		cfg.betaQSet = true
	}
}

// WithEwaldCoefficientLJ fixes the LJ-Ewald screening coefficient.
func WithEwaldCoefficientLJ(beta float64) Option {
	return func(cfg *Config) {
		cfg.BetaLJ = beta
		cfg.betaLJSet = true
	}
}

// WithTableScale sets the Coulomb table density (points per length unit)
// and its interpolation order.
func WithTableScale(scale float64, mode Interp) Option {
	return func(cfg *Config) {
		if scale > 0 {
			cfg.TableScale = scale
		}
		cfg.TableInterp = mode
	}
}

// WithTable supplies a prebuilt Coulomb table instead of generating one.
func WithTable(t *Table) Option {
	return func(cfg *Config) {
		cfg.Table = t
	}
}

// WithLJTypes sets the n x n row-major LJ parameter matrices.
func WithLJTypes(n int, c6, c12 []float64) Option {
	return func(cfg *Config) {
		cfg.NumTypes = n
		cfg.C6 = c6
		cfg.C12 = c12
	}
}

// WithCombination requests a combination rule. [CombDetect] (the default)
// picks the cheapest rule reproducing the matrix.
func WithCombination(comb Combination) Option {
	return func(cfg *Config) {
		cfg.Combination = comb
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
