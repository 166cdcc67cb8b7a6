package pairlist

import "fmt"

// NumRectangularShifts is the size of a full 3x3x3 image table.
const NumRectangularShifts = 27

// Shifts is the translation table indexed by the shift code of a CI entry.
type Shifts struct {
	Vec     [][3]float64
	Central int
}

// NoShifts returns the table of a non-periodic system: the zero vector
// only.
func NoShifts() Shifts {
	return Shifts{Vec: [][3]float64{{}}, Central: 0}
}

// NewRectangularShifts returns the 27 images of a rectangular box. Code
// (z+1)*9 + (y+1)*3 + (x+1) translates by (x*box[0], y*box[1], z*box[2]),
// so the central code is 13 and codes k and 26-k are opposite.
func NewRectangularShifts(box [3]float64) Shifts {
	s := Shifts{Vec: make([][3]float64, 0, NumRectangularShifts), Central: 13}
	for z := -1; z <= 1; z++ {
		for y := -1; y <= 1; y++ {
			for x := -1; x <= 1; x++ {
				s.Vec = append(s.Vec, [3]float64{
					float64(x) * box[0],
					float64(y) * box[1],
					float64(z) * box[2],
				})
			}
		}
	}
	return s
}

// Len returns the number of shift codes.
func (s Shifts) Len() int {
	return len(s.Vec)
}

// Validate checks that the central code exists and is the zero vector.
func (s Shifts) Validate() error {
	if s.Central < 0 || s.Central >= len(s.Vec) {
		return fmt.Errorf("%w: central code %d of %d", ErrShift, s.Central, len(s.Vec))
	}
	if s.Vec[s.Central] != [3]float64{} {
		return fmt.Errorf("%w: central vector %v is not zero", ErrShift, s.Vec[s.Central])
	}
	return nil
}
