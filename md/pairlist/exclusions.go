package pairlist

import "github.com/RoaringBitmap/roaring/v2"

// Exclusions records particle pairs that do not interact directly.
// Exclusions are symmetric.
type Exclusions struct {
	sets []*roaring.Bitmap
}

// NewExclusions returns an empty exclusion set for n particles.
func NewExclusions(n int) *Exclusions {
	e := &Exclusions{sets: make([]*roaring.Bitmap, n)}
	for i := range e.sets {
		e.sets[i] = roaring.New()
	}
	return e
}

// Len returns the number of particles.
func (e *Exclusions) Len() int {
	return len(e.sets)
}

// Add excludes the pair (i, j). Self pairs are ignored.
func (e *Exclusions) Add(i, j int) {
	if i == j {
		return
	}
	e.sets[i].Add(uint32(j))
	e.sets[j].Add(uint32(i))
}

// AddGroup excludes every pair within ids, as for the particles of a
// small rigid molecule.
func (e *Exclusions) AddGroup(ids ...int) {
	for a, i := range ids {
		for _, j := range ids[a+1:] {
			e.Add(i, j)
		}
	}
}

// Excluded reports whether (i, j) is excluded. Particles outside the set
// are never excluded.
func (e *Exclusions) Excluded(i, j int) bool {
	if e == nil || i >= len(e.sets) || j >= len(e.sets) {
		return false
	}
	return e.sets[i].Contains(uint32(j))
}

// Of returns the particles excluded with i, in increasing order.
func (e *Exclusions) Of(i int) []int {
	ids := e.sets[i].ToArray()
	out := make([]int, len(ids))
	for k, id := range ids {
		out[k] = int(id)
	}
	return out
}

// NumPairs returns the number of excluded unordered pairs.
func (e *Exclusions) NumPairs() int {
	var n uint64
	for _, s := range e.sets {
		n += s.GetCardinality()
	}
	return int(n / 2)
}
