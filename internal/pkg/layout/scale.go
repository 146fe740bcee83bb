// Package layout computes the chart geometry: responsive margins, the banded
// category scale, the grouped inner-band scale, and the linear value scales
// with their auto-ranging policies.
package layout

import "math"

// Range is a pixel interval along one axis.
type Range struct {
	Min float64
	Max float64
}

// Len returns the pixel extent of the range.
func (r Range) Len() float64 {
	return r.Max - r.Min
}

// BandScale maps discrete categories onto contiguous pixel bands with
// padding expressed as a fraction of the band step.
type BandScale struct {
	categories []string
	index      map[string]int
	rng        Range
	padding    float64

	step      float64
	bandwidth float64
	offset    float64
}

// NewBandScale builds a band scale over the categories in order. Duplicate
// labels keep their own bands, but Position resolves a duplicate to its first
// occurrence.
func NewBandScale(categories []string, rng Range, padding float64) BandScale {
	s := BandScale{
		categories: categories,
		index:      make(map[string]int, len(categories)),
		rng:        rng,
		padding:    padding,
	}
	for i, c := range categories {
		if _, dup := s.index[c]; !dup {
			s.index[c] = i
		}
	}

	n := float64(len(categories))
	if n == 0 {
		return s
	}

	// outer and inner padding share the same fraction, d3-band style
	s.step = rng.Len() / (n + padding)
	s.bandwidth = s.step * (1 - padding)
	s.offset = s.step * padding

	return s
}

// Position returns the left pixel edge of a category's band, or false when
// the category is unknown.
func (s BandScale) Position(category string) (float64, bool) {
	i, ok := s.index[category]
	if !ok {
		return 0, false
	}

	return s.rng.Min + s.offset/2 + float64(i)*s.step, true
}

// Bandwidth returns the pixel width of one category band.
func (s BandScale) Bandwidth() float64 {
	return s.bandwidth
}

// Categories returns the scale's domain in band order.
func (s BandScale) Categories() []string {
	return s.categories
}

// InnerScale splits a category band into side-by-side slots for grouped
// bars, with a configurable gap fraction of the band width between slots.
type InnerScale struct {
	slots     int
	bandwidth float64
	gap       float64
}

// NewInnerScale builds the grouped inner-band scale.
func NewInnerScale(slots int, bandwidth, gapFraction float64) InnerScale {
	if slots < 1 {
		slots = 1
	}

	return InnerScale{slots: slots, bandwidth: bandwidth, gap: bandwidth * gapFraction}
}

// Slot returns the pixel offset within the band and the width of slot i.
func (s InnerScale) Slot(i int) (offset, width float64) {
	n := float64(s.slots)
	width = (s.bandwidth - s.gap*(n-1)) / n
	if width < 0 {
		width = 0
	}

	return float64(i) * (width + s.gap), width
}

// LinearScale maps a value domain onto a pixel range. For vertical axes the
// range runs top-down (Min is the y of the domain maximum).
type LinearScale struct {
	DomainMin float64
	DomainMax float64
	rng       Range
	inverted  bool
}

// NewLinearScale builds a scale mapping [domainMin,domainMax] onto rng.
// When inverted, larger values map to smaller pixel positions, the usual
// orientation for a vertical screen axis.
func NewLinearScale(domainMin, domainMax float64, rng Range, inverted bool) LinearScale {
	if domainMax == domainMin {
		// degenerate domain: widen so Scale stays defined
		domainMax = domainMin + 1
	}

	return LinearScale{DomainMin: domainMin, DomainMax: domainMax, rng: rng, inverted: inverted}
}

// Scale maps a domain value to a pixel position.
func (s LinearScale) Scale(v float64) float64 {
	t := (v - s.DomainMin) / (s.DomainMax - s.DomainMin)
	if s.inverted {
		return s.rng.Max - t*s.rng.Len()
	}

	return s.rng.Min + t*s.rng.Len()
}

// Ticks returns count+1 evenly spaced domain values spanning the domain.
func (s LinearScale) Ticks(count int) []float64 {
	if count < 1 {
		count = 1
	}

	step := (s.DomainMax - s.DomainMin) / float64(count)
	out := make([]float64, 0, count+1)
	for i := 0; i <= count; i++ {
		out = append(out, s.DomainMin+float64(i)*step)
	}
	// guard against accumulation drift on the last tick
	out[len(out)-1] = s.DomainMax

	return out
}

// Rounded returns v rounded for stable pixel output.
func Rounded(v float64) float64 {
	return math.Round(v*100) / 100
}
