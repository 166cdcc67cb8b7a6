// Package lane provides the vector lane layer of the pair kernels.
//
// A register ([Real], [Bool], [Int]) always stores [MaxWidth] values, but
// only the first Lanes[W]() are active. The width W is a type parameter
// ([W1], [W2], [W4], [W8]), so the scalar kernel and every wide kernel
// are the same generic code instantiated at different widths.
//
// All operations are value-in, value-out and never allocate.
//
// # Reductions
//
// Pair kernels lay the i×j cluster product out row-major: pair slot
// p = i*rowLen + j. A register covers Lanes consecutive slots.
// [TransposeSum] folds lanes into per-row (i-particle) scalars and
// [ColumnSum] folds them into per-column (j-particle) scalars. [Reduce] is
// the plain horizontal sum used for energies.
package lane
