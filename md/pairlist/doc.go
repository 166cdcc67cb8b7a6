// Package pairlist defines the cluster pair list consumed by the kernels,
// the periodic shift-vector table and a brute-force list builder.
//
// A [List] holds one [CI] entry per (i-cluster, shift) with a contiguous
// range of [CJ] entries. Each CJ entry carries a bit mask over the
// ClusterI x ClusterJ particle pairs; bit i*ClusterJ+j set means the pair
// interacts. Within a range, entries with masks other than all-ones come
// first and entries whose j-cluster shares slots with the i-cluster under
// the central shift lead that prefix.
package pairlist
