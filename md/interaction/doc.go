// Package interaction holds the interaction parameter set of the
// non-bonded pair kernels.
//
// A [Params] value is built once with [New] from functional options,
// validated, and then shared read-only by every kernel invocation. It
// carries the cutoffs, the electrostatics model ([CoulombKind]) and the
// Lennard-Jones tail treatment ([VdWKind]) together with every constant
// derived from them: reaction-field constants, potential shifts,
// switch and force-switch polynomials, Ewald screening coefficients and
// the Coulomb interpolation [Table].
//
// The closed-form Ewald helpers [EwaldQ] and [EwaldLJGrid] are stable for
// r -> 0, which excluded pairs at coincident positions rely on.
package interaction
