package interaction

// CoulombKind selects the electrostatics model.
type CoulombKind int

const (
	// CoulombReactionField uses a dielectric continuum beyond the cutoff.
	CoulombReactionField CoulombKind = iota
	// CoulombTable interpolates the tabulated Ewald correction. With a zero
	// screening coefficient this is a plain (shifted) 1/r cutoff.
	CoulombTable
	// CoulombEwald evaluates the Ewald-screened potential analytically.
	CoulombEwald
)

// String returns a human-readable name.
func (k CoulombKind) String() string {
	switch k {
	case CoulombReactionField:
		return "reaction-field"
	case CoulombTable:
		return "table"
	case CoulombEwald:
		return "ewald"
	default:
		return "unknown"
	}
}

// VdWKind selects the Lennard-Jones tail treatment.
type VdWKind int

const (
	// VdWCut is a plain cutoff with a constant potential shift.
	VdWCut VdWKind = iota
	// VdWPotSwitch multiplies potential and force by a quintic switch.
	VdWPotSwitch
	// VdWForceSwitch smoothly switches the force to zero.
	VdWForceSwitch
	// VdWEwald subtracts the mesh-handled geometric dispersion (LJ-PME).
	VdWEwald
)

// String returns a human-readable name.
func (k VdWKind) String() string {
	switch k {
	case VdWCut:
		return "cut"
	case VdWPotSwitch:
		return "potential-switch"
	case VdWForceSwitch:
		return "force-switch"
	case VdWEwald:
		return "ewald"
	default:
		return "unknown"
	}
}

// Combination is the LJ combination rule of the parameter matrix.
type Combination int

const (
	// CombDetect lets [New] detect the rule from the matrix.
	CombDetect Combination = iota
	// CombNone looks every pair up in the type matrix.
	CombNone
	// CombGeometric uses C6ij = sqrt(C6i*C6j), C12ij = sqrt(C12i*C12j).
	CombGeometric
	// CombLorentzBerthelot uses arithmetic sigma and geometric epsilon.
	CombLorentzBerthelot
)

// String returns a human-readable name.
func (c Combination) String() string {
	switch c {
	case CombDetect:
		return "detect"
	case CombNone:
		return "none"
	case CombGeometric:
		return "geometric"
	case CombLorentzBerthelot:
		return "lorentz-berthelot"
	default:
		return "unknown"
	}
}

// Interp is the interpolation order of a [Table].
type Interp int

const (
	// InterpLinear interpolates forces linearly and integrates energies.
	InterpLinear Interp = iota
	// InterpCubic uses 4-point cubic interpolation of the potential.
	InterpCubic
)

// String returns a human-readable name.
func (i Interp) String() string {
	switch i {
	case InterpLinear:
		return "linear"
	case InterpCubic:
		return "cubic"
	default:
		return "unknown"
	}
}
