package model

import "iter"

// TopWallsOfSpace yields the elements closing a space from above: its own
// roofs and ceilings, and floors of other spaces lying on it.
func (m *Model) TopWallsOfSpace(spaceID string) iter.Seq[*Wall] {
	return func(yield func(*Wall) bool) {
		for i := range m.Walls {
			w := &m.Walls[i]
			var over bool
			switch w.TiltClass() {
			case Top:
				over = w.Space == spaceID
			case Bottom:
				over = w.NextTo != nil && *w.NextTo == spaceID
			}
			if over && !yield(w) {
				return
			}
		}
	}
}

// TopWallThickness averages the thickness of the elements over a space.
// Elements whose construction cannot be resolved are ignored.
func (m *Model) TopWallThickness(spaceID string) float64 {
	var sum float64
	var n int
	for w := range m.TopWallsOfSpace(spaceID) {
		c, ok := m.WallConsOf(w)
		if !ok {
			continue
		}
		sum += c.Thickness
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// NetHeight is the clear height of s, m.
func (m *Model) NetHeight(s *Space) float64 {
	return s.Height - m.TopWallThickness(s.ID)
}

// ARef is the usable floor area of habitable spaces inside the envelope, m².
func (m *Model) ARef() float64 {
	var a float64
	for i := range m.Spaces {
		s := &m.Spaces[i]
		if s.InsideTEnv && s.SpaceType != Uninhabited {
			a += s.Area * s.Multiplier
		}
	}
	return Round2(a)
}

// VolEnvGross is the gross volume of every space inside the envelope, m³.
func (m *Model) VolEnvGross() float64 {
	var v float64
	for i := range m.Spaces {
		s := &m.Spaces[i]
		if s.InsideTEnv {
			v += s.Area * s.Height * s.Multiplier
		}
	}
	return Round2(v)
}

// VolEnvNet discounts the thickness of floors and roofs from VolEnvGross, m³.
func (m *Model) VolEnvNet() float64 {
	return m.netVolume(false)
}

// VolEnvInhNet is VolEnvNet restricted to habitable spaces, m³.
func (m *Model) VolEnvInhNet() float64 {
	return m.netVolume(true)
}

func (m *Model) netVolume(habitableOnly bool) float64 {
	var v float64
	for i := range m.Spaces {
		s := &m.Spaces[i]
		if !s.InsideTEnv || (habitableOnly && s.SpaceType == Uninhabited) {
			continue
		}
		v += max(0, s.Area*m.NetHeight(s)) * s.Multiplier
	}
	return Round2(v)
}
