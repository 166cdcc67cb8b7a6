package kernel

import "fmt"

// Stats counts the work done by one kernel call.
type Stats struct {
	// IClusters is the number of CI entries evaluated.
	IClusters int
	// ClusterPairs is the number of CJ entries evaluated.
	ClusterPairs int
	// Pairs is the number of particle pairs within the cutoff that were
	// evaluated, excluded pairs with a long-range correction included.
	Pairs int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.IClusters += other.IClusters
	s.ClusterPairs += other.ClusterPairs
	s.Pairs += other.Pairs
}

func (s Stats) String() string {
	return fmt.Sprintf("ci=%d cluster-pairs=%d pairs=%d", s.IClusters, s.ClusterPairs, s.Pairs)
}
