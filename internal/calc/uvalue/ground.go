package uvalue

import (
	"math"

	"Envolvente/internal/model"
)

// groundFloor follows ISO 13370 9.1 and 9.3.2 with a square floor when the
// exposed perimeter is unknown, plus the Annex B edge insulation correction.
func (r *Resolver) groundFloor(w *model.Wall, space *model.Space, R float64) float64 {
	A := space.Area
	P := 4 * math.Sqrt(A)
	if space.ExposedPerimeter != nil {
		P = *space.ExposedPerimeter
	}
	if math.Abs(P) < 0.001 {
		r.obs.Warnw("ground slab with null exposed perimeter, U = 0", "id", w.ID, "name", w.Name, "perimeter", P)
		return 0
	}
	if A <= 0 || P < 0 {
		r.obs.Warnw("ground slab with null area or negative perimeter, U = 0", "id", w.ID, "name", w.Name, "area", A, "perimeter", P)
		return 0
	}

	B := A / (0.5 * P)
	z := depth(space)
	dt := slabEquivalentThickness(R)

	var ubf float64
	if dt+0.5*z < B {
		ubf = 2 * LambdaGround / (math.Pi*B + dt + 0.5*z) * math.Log(1+math.Pi*B/(dt+0.5*z))
	} else {
		ubf = LambdaGround / (0.457*B + dt + 0.5*z)
	}

	D := r.m.Meta.DPerimInsulation
	d1 := r.m.Meta.RnPerimInsulation * (LambdaGround - LambdaInsulation)
	psi := -LambdaGround / math.Pi * (math.Log(D/dt+1) - math.Log(1+D/(dt+d1)))

	u := ubf + 2*psi/B
	r.obs.Debugw("ground slab", "wall", w.Name, "u", u,
		"area", A, "perimeter", P, "b_prime", B, "z", z, "d_t", dt, "u_bf", ubf, "psi_ge", psi)
	return u
}

// groundWall follows ISO 13370 9.3.3. The part of the wall above grade keeps
// the air-facing transmittance and the result is weighted by height.
func (r *Resolver) groundWall(w *model.Wall, space *model.Space, R float64) float64 {
	uw := 1 / (RsiHorizontal + R + Rse)
	z := depth(space)
	if z < 0.01 {
		r.obs.Warnw("ground wall above grade, using U_w", "id", w.ID, "name", w.Name, "z", z, "u_w", uw)
		return uw
	}

	dt := r.floorEquivalentThickness(space)
	dw := LambdaGround * (RsiHorizontal + R + Rse)
	dt = min(dt, dw)

	ubw := 2 * LambdaGround / (math.Pi * z) * (1 + 0.5*dt/(dt+z)) * math.Log(z/dw+1)

	hnet := r.m.NetHeight(space)
	h := max(0, hnet-z)
	u := ubw
	if h > 0 {
		u = (z*ubw + h*uw) / hnet
	}
	r.obs.Debugw("ground wall", "wall", w.Name, "u", u,
		"z", z, "h", h, "u_w", uw, "u_bw", ubw, "d_t", dt, "d_w", dw)
	return u
}

// floorEquivalentThickness averages the slab equivalent thickness of the
// floors owned by space. Floors without a known construction are skipped.
func (r *Resolver) floorEquivalentThickness(space *model.Space) float64 {
	var sum float64
	var n int
	for f := range r.m.WallsOfSpace(space.ID) {
		if f.Space != space.ID || f.TiltClass() != model.Bottom {
			continue
		}
		c, ok := r.m.WallConsOf(f)
		if !ok {
			continue
		}
		sum += slabEquivalentThickness(c.RIntrinsic)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func slabEquivalentThickness(R float64) float64 {
	return perimeterWallWidth + LambdaGround*(RsiDown+R+Rse)
}

// depth below grade, m.
func depth(s *model.Space) float64 {
	if s.Z < 0 {
		return -s.Z
	}
	return 0
}
