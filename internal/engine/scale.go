package engine

import "math"

// Scale clamps v to [dMin, dMax] and maps it linearly onto [rMin, rMax].
// A degenerate domain (dMin == dMax) maps everything to rMin.
func Scale(v, dMin, dMax, rMin, rMax float64) float64 {
	if dMin == dMax {
		return rMin
	}
	if v < dMin {
		v = dMin
	}
	if v > dMax {
		v = dMax
	}
	return (v-dMin)/(dMax-dMin)*(rMax-rMin) + rMin
}

// Axis maps observed data onto a pixel range. The domain comes from the data
// itself so no clamping is applied.
type Axis struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// NewAxis derives the domain from the observed min and max of values.
func NewAxis(values []float64, rangeMin, rangeMax float64) Axis {
	a := Axis{RangeMin: rangeMin, RangeMax: rangeMax}
	if len(values) == 0 {
		return a
	}
	a.DomainMin, a.DomainMax = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		a.DomainMin = math.Min(a.DomainMin, v)
		a.DomainMax = math.Max(a.DomainMax, v)
	}
	return a
}

func (a Axis) degenerate() bool {
	return a.DomainMin == a.DomainMax
}

func (a Axis) mid() float64 {
	return (a.RangeMin + a.RangeMax) / 2
}

// X maps v from RangeMin (domain min) to RangeMax (domain max).
func (a Axis) X(v float64) float64 {
	if a.degenerate() {
		return a.mid()
	}
	return a.RangeMin + (v-a.DomainMin)/(a.DomainMax-a.DomainMin)*(a.RangeMax-a.RangeMin)
}

// Y is X inverted: the domain min lands on RangeMax, the bottom of a
// canvas whose y grows downward.
func (a Axis) Y(v float64) float64 {
	if a.degenerate() {
		return a.mid()
	}
	return a.RangeMax - (v-a.DomainMin)/(a.DomainMax-a.DomainMin)*(a.RangeMax-a.RangeMin)
}
