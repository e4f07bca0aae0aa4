package progress

// Smoother applies exponential smoothing to one noisy scalar, seeding from
// the first sample. A blend of 0.1 means new = 0.1*sample + 0.9*previous.
type Smoother struct {
	blend  float64
	value  float64
	seeded bool
}

// NewSmoother returns a smoother with the given blend constant.
func NewSmoother(blend float64) *Smoother {
	return &Smoother{blend: blend}
}

// Sample feeds one observation and returns the new smoothed value.
func (s *Smoother) Sample(v float64) float64 {
	if !s.seeded {
		s.value = v
		s.seeded = true
		return s.value
	}
	s.value = s.blend*v + (1-s.blend)*s.value
	return s.value
}

// Value returns the current smoothed value (0 before the first sample).
func (s *Smoother) Value() float64 {
	return s.value
}

// Seeded reports whether at least one sample has been fed.
func (s *Smoother) Seeded() bool {
	return s.seeded
}

// Reset clears the state back to unset. Smoothing state is per-download and
// must not leak between sessions.
func (s *Smoother) Reset() {
	s.value = 0
	s.seeded = false
}
