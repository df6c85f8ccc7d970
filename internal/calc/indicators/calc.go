// Package indicators computes whole-building envelope indicators from the
// per-element transmittances: global transmittance K, air changes at 50 Pa,
// opaque air permeability, compacity and the July solar control parameter.
package indicators

import (
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

// Empirical factor relating envelope leakage at 100 Pa to n50.
const n50Factor = 0.629

// Default opaque air permeability at 100 Pa, m³/h·m².
const (
	CoNewBuilding      = 16.0
	CoExistingBuilding = 29.0
)

// Irradiance is the accumulated July solar irradiance per orientation,
// kWh/m²·month.
type Irradiance map[model.Orientation]float64

type KDetail struct {
	K           float64 `json:"k"`
	WallsA      float64 `json:"walls_a"`
	WallsAU     float64 `json:"walls_a_u"`
	WindowsA    float64 `json:"windows_a"`
	WindowsAU   float64 `json:"windows_a_u"`
	BridgesL    float64 `json:"thermal_bridges_l"`
	BridgesPsiL float64 `json:"thermal_bridges_psi_l"`
}

type N50Detail struct {
	N50       float64 `json:"n50"`
	WallsCA   float64 `json:"walls_c_a"`
	WindowsCA float64 `json:"windows_c_a"`
	Vol       float64 `json:"vol"`
}

// Calculator evaluates indicators over one model. It shares a U-value
// resolver across calls and, like it, is not safe for concurrent use.
type Calculator struct {
	m   *model.Model
	obs diag.Observer
	u   *uvalue.Resolver
}

func New(m *model.Model, obs diag.Observer) *Calculator {
	obs = diag.OrNop(obs)
	return &Calculator{m: m, obs: obs, u: uvalue.NewResolver(m, obs)}
}

// K is the mean transmittance of the elements exchanging heat with the
// outside air or the ground, thermal bridges included, W/m²K. Walls without a
// resolvable U are left out along with their windows.
func (c *Calculator) K() KDetail {
	var d KDetail
	for w := range c.m.WallsOfEnvelope() {
		u, ok := c.u.U(w)
		if !ok {
			continue
		}
		mult := c.m.Multiplier(w)
		d.WallsA += w.Area * mult
		d.WallsAU += w.Area * u * mult
		for win := range c.m.WindowsOf(w) {
			wc, ok := c.m.WindowConsOf(win)
			if !ok {
				c.obs.Warnw("window with unknown construction", "id", win.ID, "name", win.Name, "cons", win.Cons)
				continue
			}
			d.WindowsA += win.Area * mult
			d.WindowsAU += win.Area * wc.U * mult
		}
	}
	for _, tb := range c.m.ThermalBridges {
		d.BridgesL += tb.L
		d.BridgesPsiL += tb.L * tb.Psi
	}
	if a := d.WallsA + d.WindowsA; a > 0.01 {
		d.K = (d.WallsAU + d.WindowsAU + d.BridgesPsiL) / a
	}
	c.obs.Infow("global transmittance",
		"k", d.K, "walls_a", d.WallsA, "walls_a_u", d.WallsAU,
		"windows_a", d.WindowsA, "windows_a_u", d.WindowsAU,
		"bridges_l", d.BridgesL, "bridges_psi_l", d.BridgesPsiL)
	return d
}

// CoDefault is the default opaque permeability for the building age.
func (c *Calculator) CoDefault() float64 {
	if c.m.Meta.IsNewBuilding {
		return CoNewBuilding
	}
	return CoExistingBuilding
}

// Co is the opaque permeability derived from the measured n50 when there is
// one and the default otherwise.
func (c *Calculator) Co() float64 {
	if t := c.m.Meta.N50TestACH; t != nil {
		return c.WallPermeabilityFromN50(*t)
	}
	return c.CoDefault()
}

// N50 is the measured value when there is one and the default estimate
// otherwise, 1/h.
func (c *Calculator) N50() float64 {
	if t := c.m.Meta.N50TestACH; t != nil {
		return *t
	}
	return c.N50Default().N50
}

// N50Default estimates air changes at 50 Pa from the default opaque
// permeability and the window permeability of exterior elements.
func (c *Calculator) N50Default() N50Detail {
	d := N50Detail{Vol: c.m.VolEnvNet()}
	if d.Vol <= 0.01 {
		c.obs.Infow("n50 over a null volume", "vol", d.Vol)
		return d
	}
	ao, ahch := c.exteriorLeakage()
	d.WallsCA = ao * c.CoDefault()
	d.WindowsCA = ahch
	d.N50 = n50Factor * (d.WallsCA + d.WindowsCA) / d.Vol
	c.obs.Infow("n50", "n50", d.N50, "walls_c_a", d.WallsCA, "windows_c_a", d.WindowsCA, "vol", d.Vol)
	return d
}

// WallPermeabilityFromN50 inverts N50Default: the opaque permeability that
// yields the given n50 with the current windows, m³/h·m².
func (c *Calculator) WallPermeabilityFromN50(n50 float64) float64 {
	vol := c.m.VolEnvNet()
	ao, ahch := c.exteriorLeakage()
	if ao <= 0.01 {
		c.obs.Warnw("no exterior opaque area to derive permeability from", "n50", n50)
		return 0
	}
	co := (n50*vol/n50Factor - ahch) / ao
	c.obs.Infow("opaque permeability from n50", "c_o", co, "n50", n50, "vol", vol, "a_h_c_h", ahch, "a_o", ao)
	return co
}

// exteriorLeakage sums the area of exterior envelope walls and the
// permeability-weighted area of their windows, multipliers applied.
func (c *Calculator) exteriorLeakage() (wallsA, windowsCA float64) {
	for w := range c.m.WallsOfEnvelope() {
		if w.Bounds != model.Exterior {
			continue
		}
		mult := c.m.Multiplier(w)
		wallsA += w.Area * mult
		for win := range c.m.WindowsOf(w) {
			if wc, ok := c.m.WindowConsOf(win); ok {
				windowsCA += win.Area * wc.InfCoeff100 * mult
			}
		}
	}
	return wallsA, windowsCA
}

// Compacity is the gross envelope volume over the area of walls and windows
// exchanging heat with the outside air or the ground, m³/m².
func (c *Calculator) Compacity() float64 {
	vol := c.m.VolEnvGross()
	var area float64
	for w := range c.m.WallsOfEnvelope() {
		a := w.Area
		for win := range c.m.WindowsOf(w) {
			a += win.Area
		}
		area += a * c.m.Multiplier(w)
	}
	if area == 0 {
		return 0
	}
	vc := vol / area
	c.obs.Infow("compacity", "v_a", vc, "vol", vol, "area", area)
	return vc
}

// QSolJul is the July solar control parameter, kWh/m²·month. Windows without
// a construction or whose orientation has no irradiance are left out.
func (c *Calculator) QSolJul(rad Irradiance) float64 {
	var q float64
	for win := range c.m.WindowsOfEnvelope() {
		wall, ok := c.m.WindowWall(win)
		if !ok {
			continue
		}
		wc, ok := c.m.WindowConsOf(win)
		if !ok {
			c.obs.Warnw("window with unknown construction", "id", win.ID, "name", win.Name, "cons", win.Cons)
			continue
		}
		orient := wall.Orientation()
		h, ok := rad[orient]
		if !ok {
			c.obs.Warnw("no July irradiance for window orientation", "id", win.ID, "name", win.Name, "orientation", string(orient))
			continue
		}
		c.obs.Debugw("q_sol;jul window", "window", win.Name, "area", win.Area, "orientation", string(orient),
			"ff", wc.FF, "gglshwi", wc.GGlShWi, "fshobst", win.FShObst, "h_sol_jul", h)
		q += win.FShObst * wc.GGlShWi * (1 - wc.FF) * win.Area * h
	}
	aref := c.m.ARef()
	if aref <= 0.01 {
		c.obs.Warnw("q_sol;jul over a null reference area", "a_ref", aref)
		return 0
	}
	c.obs.Infow("q_sol;jul", "q_sol_jul", q/aref, "Q_sol_jul", q, "a_ref", aref)
	return q / aref
}
