package uvalue

import "Envolvente/internal/model"

// interiorUnconditioned combines the element resistance with the resistance
// of the unconditioned zone behind it (ISO 13789 table 8, ISO 6946 5.4.3).
func (r *Resolver) interiorUnconditioned(w *model.Wall, c InteriorUnconditioned, R float64) float64 {
	var rf float64
	switch {
	case c.Tilt == model.Side:
		rf = R + 2*RsiHorizontal
	case (c.Tilt == model.Bottom) == c.ConditionedSide:
		// Floor of the conditioned space or ceiling of the unconditioned one:
		// heat flows down.
		rf = R + 2*RsiDown
	default:
		rf = R + 2*RsiUp
	}

	hue := r.zoneLossCoefficient(c.Zone)
	if hue <= 0 {
		r.obs.Warnw("unconditioned zone without heat losses, U = 0", "id", w.ID, "name", w.Name, "zone", c.Zone.ID)
		return 0
	}
	ru := w.Area / hue
	u := 1 / (rf + ru)
	r.obs.Debugw("interior unconditioned", "wall", w.Name, "u", u,
		"tilt", c.Tilt.String(), "r_f", rf, "r_u", ru, "h_ue", hue, "zone", c.Zone.ID)
	return u
}

// zoneLossCoefficient is H_ue of an unconditioned zone, W/K: transmission
// through its exterior and ground elements and their windows plus
// ventilation. Interior elements of the zone are never visited, so the
// recursion into U stops at one level.
func (r *Resolver) zoneLossCoefficient(zone *model.Space) float64 {
	var ua float64
	for zw := range r.m.WallsOfSpace(zone.ID) {
		if zw.Bounds != model.Exterior && zw.Bounds != model.Ground {
			continue
		}
		u, ok := r.U(zw)
		if !ok {
			continue
		}
		ua += zw.Area * u
		for win := range r.m.WindowsOf(zw) {
			wc, ok := r.m.WindowConsOf(win)
			if !ok {
				continue
			}
			ua += win.Area * wc.U
		}
	}
	v := max(0, zone.Area*r.m.NetHeight(zone))
	return ua + 0.33*r.airChanges(zone)*v
}

// airChanges is the ventilation rate of an unconditioned zone, 1/h.
func (r *Resolver) airChanges(zone *model.Space) float64 {
	if zone.NV != nil {
		return *zone.NV
	}
	q := r.m.Meta.GlobalVentilationLS
	if q == nil {
		r.obs.Warnw("unconditioned space without n_v and no global ventilation", "id", zone.ID, "name", zone.Name)
		return 0
	}
	v := r.m.VolEnvInhNet()
	if v <= 0.01 {
		r.obs.Warnw("global ventilation over a null habitable volume", "id", zone.ID, "name", zone.Name)
		return 0
	}
	return 3.6 * *q / v
}
