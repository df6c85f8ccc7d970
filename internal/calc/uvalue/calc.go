// Package uvalue resolves the thermal transmittance of opaque elements
// following ISO 6946 (air-facing elements), ISO 13370 (elements in contact
// with the ground) and ISO 13789 (elements towards unconditioned spaces).
package uvalue

import (
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

// Surface resistances, m²K/W.
const (
	RsiUp         = 0.10
	RsiHorizontal = 0.13
	RsiDown       = 0.17
	Rse           = 0.04
)

// Conductivities, W/mK.
const (
	LambdaGround     = 2.0
	LambdaInsulation = 0.035
)

// Assumed width of perimeter walls around ground slabs, m.
const perimeterWallWidth = 0.3

// Rsi returns the interior surface resistance for the heat flow direction
// of an element facing the outside.
func Rsi(t model.Tilt) float64 {
	switch t {
	case model.Top:
		return RsiUp
	case model.Bottom:
		return RsiDown
	default:
		return RsiHorizontal
	}
}

// Case is the physics case a wall falls into once its references are
// resolved. The set of cases is closed.
type Case interface {
	Name() string
	isCase()
}

type Adiabatic struct{}

type Exterior struct{ Tilt model.Tilt }

// GroundFloor is a slab on grade.
type GroundFloor struct{ Space *model.Space }

// GroundWall is a basement wall.
type GroundWall struct{ Space *model.Space }

// GroundRoof is a buried roof. The soil is part of the construction layers.
type GroundRoof struct{}

// InteriorConditioned separates two conditioned spaces.
type InteriorConditioned struct{}

// InteriorUnconditioned separates a space from an unconditioned zone.
// ConditionedSide is true when the owning space is the conditioned one.
type InteriorUnconditioned struct {
	Tilt            model.Tilt
	Zone            *model.Space
	ConditionedSide bool
}

// Unresolved marks walls with a dangling reference. They get no U.
type Unresolved struct{ Reason string }

func (Adiabatic) Name() string             { return "adiabatic" }
func (c Exterior) Name() string            { return "exterior " + c.Tilt.String() }
func (GroundFloor) Name() string           { return "ground slab" }
func (GroundWall) Name() string            { return "ground wall" }
func (GroundRoof) Name() string            { return "ground roof" }
func (InteriorConditioned) Name() string   { return "interior conditioned" }
func (InteriorUnconditioned) Name() string { return "interior unconditioned" }
func (c Unresolved) Name() string          { return "unresolved: " + c.Reason }

func (Adiabatic) isCase()             {}
func (Exterior) isCase()              {}
func (GroundFloor) isCase()           {}
func (GroundWall) isCase()            {}
func (GroundRoof) isCase()            {}
func (InteriorConditioned) isCase()   {}
func (InteriorUnconditioned) isCase() {}
func (Unresolved) isCase()            {}

// Classify resolves the references of w and picks its case from the boundary
// type, the tilt class and the conditioning of the spaces on each side.
// Construction references are not checked here.
func Classify(m *model.Model, w *model.Wall) Case {
	tilt := w.TiltClass()
	switch w.Bounds {
	case model.Adiabatic:
		return Adiabatic{}
	case model.Exterior:
		return Exterior{Tilt: tilt}
	case model.Ground:
		if tilt == model.Top {
			return GroundRoof{}
		}
		space, ok := m.WallSpace(w)
		if !ok {
			return Unresolved{Reason: "space " + w.Space}
		}
		if tilt == model.Bottom {
			return GroundFloor{Space: space}
		}
		return GroundWall{Space: space}
	case model.Interior:
		space, ok := m.WallSpace(w)
		if !ok {
			return Unresolved{Reason: "space " + w.Space}
		}
		if w.NextTo == nil {
			return Unresolved{Reason: "missing adjacent space"}
		}
		next, ok := m.Space(*w.NextTo)
		if !ok {
			return Unresolved{Reason: "adjacent space " + *w.NextTo}
		}
		if space.SpaceType == model.Conditioned && next.SpaceType == model.Conditioned {
			return InteriorConditioned{}
		}
		if next.SpaceType == model.Conditioned {
			return InteriorUnconditioned{Tilt: tilt, Zone: space, ConditionedSide: false}
		}
		return InteriorUnconditioned{Tilt: tilt, Zone: next, ConditionedSide: true}
	}
	return Unresolved{Reason: "boundary type " + string(w.Bounds)}
}

type result struct {
	u  float64
	ok bool
}

// Resolver computes U-values over one model and remembers them per wall.
// It is not safe for concurrent use.
type Resolver struct {
	m     *model.Model
	obs   diag.Observer
	cache map[*model.Wall]result
}

func NewResolver(m *model.Model, obs diag.Observer) *Resolver {
	return &Resolver{m: m, obs: diag.OrNop(obs), cache: make(map[*model.Wall]result)}
}

// U returns the thermal transmittance of w, W/m²K. ok is false when a
// reference needed by its case cannot be resolved.
func (r *Resolver) U(w *model.Wall) (u float64, ok bool) {
	if res, hit := r.cache[w]; hit {
		return res.u, res.ok
	}
	u, ok = r.resolve(w)
	r.cache[w] = result{u, ok}
	return u, ok
}

// U is a one-shot resolution without memoisation across calls.
func U(m *model.Model, w *model.Wall, obs diag.Observer) (float64, bool) {
	return NewResolver(m, obs).U(w)
}

func (r *Resolver) resolve(w *model.Wall) (float64, bool) {
	cons, ok := r.m.WallConsOf(w)
	if !ok {
		r.obs.Warnw("wall with unknown construction", "id", w.ID, "name", w.Name, "cons", w.Cons)
		return 0, false
	}
	R := cons.RIntrinsic

	switch c := Classify(r.m, w).(type) {
	case Adiabatic:
		r.obs.Debugw("adiabatic", "wall", w.Name, "u", 0.0)
		return 0, true
	case Exterior:
		u := 1 / (R + Rsi(c.Tilt) + Rse)
		r.obs.Debugw("exterior", "wall", w.Name, "tilt", c.Tilt.String(), "u", u)
		return u, true
	case GroundRoof:
		u := 1 / (R + RsiUp + Rse)
		r.obs.Debugw("ground roof", "wall", w.Name, "u", u)
		return u, true
	case GroundFloor:
		return r.groundFloor(w, c.Space, R), true
	case GroundWall:
		return r.groundWall(w, c.Space, R), true
	case InteriorConditioned:
		u := 1 / (R + 2*RsiHorizontal)
		r.obs.Debugw("interior conditioned", "wall", w.Name, "u", u)
		return u, true
	case InteriorUnconditioned:
		return r.interiorUnconditioned(w, c, R), true
	case Unresolved:
		r.obs.Warnw("wall with unresolved reference", "id", w.ID, "name", w.Name, "reason", c.Reason)
		return 0, false
	}
	return 0, false
}
