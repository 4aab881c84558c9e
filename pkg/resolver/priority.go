package resolver

import "fmt"

// PriorityBand is the inclusive SRV priority acceptance window for one
// monitored variable. The zero band accepts only priority zero; use FullBand
// for the default accept-everything window.
type PriorityBand struct {
	Min uint16
	Max uint16
}

// FullBand accepts the entire 0-65535 priority range
func FullBand() PriorityBand {
	return PriorityBand{Min: 0, Max: 65535}
}

// NewPriorityBand validates raw bounds and builds a band. Bounds outside
// [0, 65535] or an inverted pair are configuration errors.
func NewPriorityBand(min, max int) (PriorityBand, error) {
	if min < 0 || min > 65535 {
		return PriorityBand{}, fmt.Errorf("priority lower bound %d outside [0, 65535]", min)
	}
	if max < 0 || max > 65535 {
		return PriorityBand{}, fmt.Errorf("priority upper bound %d outside [0, 65535]", max)
	}
	if min > max {
		return PriorityBand{}, fmt.Errorf("priority lower bound %d greater than upper bound %d", min, max)
	}
	return PriorityBand{Min: uint16(min), Max: uint16(max)}, nil
}

// Contains reports whether priority p falls inside the band, boundaries included
func (b PriorityBand) Contains(p uint16) bool {
	return p >= b.Min && p <= b.Max
}

func (b PriorityBand) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}
