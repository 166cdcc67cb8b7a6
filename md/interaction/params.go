package interaction

import (
	"errors"
	"fmt"
	"math"
)

const (
	// ElectricConversion is 1/(4 pi eps0) in kJ mol^-1 nm e^-2.
	ElectricConversion = 138.935458

	// AvoidSingularity is added to r^2 of non-interacting pairs so that
	// excluded particles may coincide without overflowing 1/r.
	AvoidSingularity = 1e-36

	// DefaultTableScale is the default Coulomb table density.
	DefaultTableScale = 1000
)

// Errors returned by [New].
var (
	ErrCutoff      = errors.New("interaction: invalid cutoff")
	ErrSwitch      = errors.New("interaction: invalid switch radius")
	ErrDielectric  = errors.New("interaction: invalid dielectric constant")
	ErrEwald       = errors.New("interaction: invalid Ewald parameter")
	ErrTable       = errors.New("interaction: invalid Coulomb table")
	ErrTypes       = errors.New("interaction: invalid LJ type matrix")
	ErrCombination = errors.New("interaction: combination rule does not match LJ matrix")
)

// Shift holds the constants of one LJ power term (p = 6 or 12). The term
// energy is r^-p + CPot - A/3 t^3 - B/4 t^4 and its force is
// p r^-(p+1) + A t^2 + B t^3, with t = max(r - RVdWSwitch, 0). A and B are
// zero unless the force switch is active.
type Shift struct {
	CPot float64
	A    float64
	B    float64
}

// PotSwitch holds the quintic potential switch sw(t) = 1 + C3 t^3 + C4 t^4
// + C5 t^5.
type PotSwitch struct {
	C3, C4, C5 float64
}

// Eval returns sw(t) and dsw/dt.
func (s PotSwitch) Eval(t float64) (sw, dsw float64) {
	t2 := t * t
	sw = 1 + t2*t*(s.C3+t*(s.C4+t*s.C5))
	dsw = t2 * (3*s.C3 + t*(4*s.C4+t*5*s.C5))
	return sw, dsw
}

// Params is the validated, immutable interaction parameter set.
type Params struct {
	Coulomb CoulombKind
	VdW     VdWKind

	RCoulomb   float64
	RVdW       float64
	RVdWSwitch float64

	EpsilonR  float64
	EpsilonRF float64
	EpsFac    float64

	// Reaction-field constants.
	KRF float64
	CRF float64

	// Ewald screening coefficients and potential shifts.
	BetaQ     float64
	BetaLJ    float64
	ShEwald   float64
	ShLJEwald float64

	Dispersion Shift
	Repulsion  Shift
	Switch     PotSwitch

	Table *Table

	types ljTypes
}

// New validates the options and derives every constant the kernels need.
func New(opts ...Option) (*Params, error) {
	cfg := ApplyOptions(opts...)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	p := &Params{
		Coulomb:    cfg.Coulomb,
		VdW:        cfg.VdW,
		RCoulomb:   cfg.RCoulomb,
		RVdW:       cfg.RVdW,
		RVdWSwitch: cfg.RVdWSwitch,
		EpsilonR:   cfg.EpsilonR,
		EpsilonRF:  cfg.EpsilonRF,
		EpsFac:     cfg.EpsFac,
	}
	if p.EpsFac == 0 {
		p.EpsFac = ElectricConversion / cfg.EpsilonR
	}

	if err := p.initCoulomb(&cfg); err != nil {
		return nil, err
	}
	if err := p.initVdW(&cfg); err != nil {
		return nil, err
	}

	types, err := newLJTypes(cfg.NumTypes, cfg.C6, cfg.C12, cfg.Combination)
	if err != nil {
		return nil, err
	}
	p.types = types

	return p, nil
}

func validate(cfg *Config) error {
	if !(cfg.RVdW > 0) || math.IsInf(cfg.RVdW, 0) {
		return fmt.Errorf("%w: rvdw %g must be positive", ErrCutoff, cfg.RVdW)
	}
	if !(cfg.RCoulomb >= cfg.RVdW) || math.IsInf(cfg.RCoulomb, 0) {
		return fmt.Errorf("%w: rcoulomb %g must not be below rvdw %g", ErrCutoff, cfg.RCoulomb, cfg.RVdW)
	}
	switch cfg.VdW {
	case VdWCut, VdWEwald:
	case VdWPotSwitch, VdWForceSwitch:
		if cfg.RVdWSwitch < 0 || cfg.RVdWSwitch >= cfg.RVdW {
			return fmt.Errorf("%w: %g not in [0, %g)", ErrSwitch, cfg.RVdWSwitch, cfg.RVdW)
		}
	default:
		return fmt.Errorf("%w: unknown LJ kind %d", ErrCutoff, cfg.VdW)
	}
	switch cfg.Coulomb {
	case CoulombReactionField, CoulombTable, CoulombEwald:
	default:
		return fmt.Errorf("%w: unknown Coulomb kind %d", ErrDielectric, cfg.Coulomb)
	}
	if !(cfg.EpsilonR > 0) {
		return fmt.Errorf("%w: epsilon-r %g", ErrDielectric, cfg.EpsilonR)
	}
	if cfg.EpsilonRF < 0 {
		return fmt.Errorf("%w: epsilon-rf %g", ErrDielectric, cfg.EpsilonRF)
	}
	if cfg.betaQSet && cfg.BetaQ < 0 {
		return fmt.Errorf("%w: negative Coulomb coefficient %g", ErrEwald, cfg.BetaQ)
	}
	if cfg.betaLJSet && cfg.BetaLJ < 0 {
		return fmt.Errorf("%w: negative LJ coefficient %g", ErrEwald, cfg.BetaLJ)
	}
	return nil
}

func (p *Params) initCoulomb(cfg *Config) error {
	switch p.Coulomb {
	case CoulombReactionField:
		rc3 := p.RCoulomb * p.RCoulomb * p.RCoulomb
		if p.EpsilonRF == 0 {
			p.KRF = 1 / (2 * rc3)
		} else {
			p.KRF = (p.EpsilonRF - p.EpsilonR) / ((2*p.EpsilonRF + p.EpsilonR) * rc3)
		}
		p.CRF = 1/p.RCoulomb + p.KRF*p.RCoulomb*p.RCoulomb
		return nil

	case CoulombTable, CoulombEwald:
		beta := cfg.BetaQ
		if !cfg.betaQSet {
			var err error
			if beta, err = EwaldCoeff(p.RCoulomb, cfg.EwaldRTol); err != nil {
				return err
			}
		}
		p.BetaQ = beta
		p.ShEwald = math.Erfc(beta*p.RCoulomb) / p.RCoulomb
	}

	if p.Coulomb != CoulombTable {
		return nil
	}
	tab := cfg.Table
	if tab == nil {
		var err error
		tab, err = NewEwaldTable(p.BetaQ, p.RCoulomb, cfg.TableScale, cfg.TableInterp)
		if err != nil {
			return err
		}
	}
	if !tab.Covers(p.RCoulomb) {
		return fmt.Errorf("%w: %d points at scale %g do not reach rcoulomb %g",
			ErrTable, tab.Len(), tab.Scale, p.RCoulomb)
	}
	p.Table = tab
	return nil
}

func (p *Params) initVdW(cfg *Config) error {
	switch p.VdW {
	case VdWCut:
		p.Dispersion = Shift{CPot: -math.Pow(p.RVdW, -6)}
		p.Repulsion = Shift{CPot: -math.Pow(p.RVdW, -12)}

	case VdWPotSwitch:
		d := p.RVdW - p.RVdWSwitch
		p.Switch = PotSwitch{
			C3: -10 / (d * d * d),
			C4: 15 / (d * d * d * d),
			C5: -6 / (d * d * d * d * d),
		}

	case VdWForceSwitch:
		p.Dispersion = forceSwitch(6, p.RVdW, p.RVdWSwitch)
		p.Repulsion = forceSwitch(12, p.RVdW, p.RVdWSwitch)

	case VdWEwald:
		beta := cfg.BetaLJ
		if !cfg.betaLJSet {
			var err error
			if beta, err = EwaldCoeffLJ(p.RVdW, cfg.EwaldRTolLJ); err != nil {
				return err
			}
		}
		p.BetaLJ = beta
		p.Dispersion = Shift{CPot: -math.Pow(p.RVdW, -6)}
		p.Repulsion = Shift{CPot: -math.Pow(p.RVdW, -12)}
		y := beta * beta * p.RVdW * p.RVdW
		p.ShLJEwald = (ljEwaldScreen(y) - 1) / math.Pow(p.RVdW, 6)
	}
	return nil
}

// forceSwitch returns the constants that switch the force of r^-power
// smoothly to zero between rsw and rc.
func forceSwitch(power, rc, rsw float64) Shift {
	d := rc - rsw
	rcp2 := math.Pow(rc, power+2)
	a := -power * ((power+4)*rc - (power+1)*rsw) / (rcp2 * d * d)
	b := power * ((power+3)*rc - (power+1)*rsw) / (rcp2 * d * d * d)
	c := math.Pow(rc, -power) - a/3*d*d*d - b/4*d*d*d*d
	return Shift{CPot: -c, A: a, B: b}
}

// HasCoulombCorrection reports whether excluded pairs within the cutoff
// still contribute to the electrostatics (reaction field, or a non-zero
// Ewald screening coefficient).
func (p *Params) HasCoulombCorrection() bool {
	switch p.Coulomb {
	case CoulombReactionField:
		return true
	default:
		return p.BetaQ != 0
	}
}

// HasLJCorrection reports whether excluded pairs contribute to the LJ terms.
func (p *Params) HasLJCorrection() bool {
	return p.VdW == VdWEwald
}

// CoulombSelf returns the per-particle self-interaction constant: a
// particle with charge q adds -EpsFac*q*q*CoulombSelf() to the Coulomb
// energy.
func (p *Params) CoulombSelf() float64 {
	switch p.Coulomb {
	case CoulombReactionField:
		return 0.5 * p.CRF
	case CoulombTable:
		return 0.5 * p.Table.V[0]
	default:
		return 0.5 * p.BetaQ * 2 / math.Sqrt(math.Pi)
	}
}

// LJEwaldSelf returns the per-particle LJ-Ewald self constant: a particle
// with grid parameter g adds g*g*LJEwaldSelf() to the LJ energy.
func (p *Params) LJEwaldSelf() float64 {
	if p.VdW != VdWEwald {
		return 0
	}
	b2 := p.BetaLJ * p.BetaLJ
	return 0.5 * b2 * b2 * b2 / 6
}

// String summarizes the parameter set.
func (p *Params) String() string {
	return fmt.Sprintf("coulomb=%s vdw=%s rc=%g rvdw=%g comb=%s types=%d",
		p.Coulomb, p.VdW, p.RCoulomb, p.RVdW, p.types.comb, p.types.n)
}
