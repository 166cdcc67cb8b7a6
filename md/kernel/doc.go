// Package kernel evaluates short-range non-bonded forces and energies over
// a cluster pair list.
//
// A [Kernel] is configured once from an [interaction.Params] and an
// [atomdata.Layout]. [New] picks a lane width from the CPU backends
// registered for the running architecture and instantiates the pair loop
// for the selected Lennard-Jones model, electrostatics model and energy
// output mode, so none of those choices are made inside the pair loop.
//
// Each i-cluster runs one of three loop variants chosen from its flags:
// LJ and Coulomb for all particles, LJ for the first half of the cluster
// only, or LJ without Coulomb. Every variant processes the masked prefix
// of its j-cluster range (exclusions and the self-pair diagonal applied)
// followed by the unmasked suffix.
//
// Forces and energies are accumulated into an [Output]; the kernel never
// clears it. [Kernel.RunParallel] splits the i-cluster entries into
// contiguous shards, evaluates each into a private buffer and merges the
// buffers in shard order, so results are reproducible for a fixed worker
// count.
package kernel
