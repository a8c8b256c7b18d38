package event

// Sampler picks a definition with probability proportional to its
// configured Probability, using the cumulative distribution.
type Sampler struct {
	defs       []Definition
	cumulative []float64
	total      float64
}

func NewSampler(defs []Definition) *Sampler {
	s := &Sampler{defs: defs, cumulative: make([]float64, len(defs))}
	for i, d := range defs {
		if d.Probability > 0 {
			s.total += d.Probability
		}
		s.cumulative[i] = s.total
	}
	return s
}

// Pick maps u in [0, 1) onto a definition. It reports false when no
// definition carries any weight.
func (s *Sampler) Pick(u float64) (Definition, bool) {
	if s.total <= 0 {
		return Definition{}, false
	}
	target := u * s.total
	for i, c := range s.cumulative {
		if target < c && s.defs[i].Probability > 0 {
			return s.defs[i], true
		}
	}
	// u rounding up to 1
	for i := len(s.defs) - 1; i >= 0; i-- {
		if s.defs[i].Probability > 0 {
			return s.defs[i], true
		}
	}
	return Definition{}, false
}
