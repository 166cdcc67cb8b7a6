// Package atomdata stores particles in the cluster-slot layout read by
// the pair kernels.
//
// Particles are grouped in clusters of a fixed size. The slot of particle
// l in cluster c of size C is c*C + l, and its coordinates start at
// XStride*slot. The i-side and j-side of the kernels may use different
// cluster sizes over the same slot arrays; [Layout] captures both.
package atomdata
