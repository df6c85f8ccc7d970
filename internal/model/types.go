package model

import (
	"fmt"
	"math"
	"strings"
)

type BoundaryType string

const (
	Exterior  BoundaryType = "EXTERIOR"
	Interior  BoundaryType = "INTERIOR"
	Ground    BoundaryType = "GROUND"
	Adiabatic BoundaryType = "ADIABATIC"
)

// ParseBoundaryType accepts the canonical names case-insensitively.
// UNDERGROUND is kept as an alias of GROUND.
func ParseBoundaryType(s string) (BoundaryType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EXTERIOR":
		return Exterior, nil
	case "INTERIOR":
		return Interior, nil
	case "GROUND", "UNDERGROUND":
		return Ground, nil
	case "ADIABATIC":
		return Adiabatic, nil
	}
	return "", fmt.Errorf("invalid boundary type %q", s)
}

// UnmarshalText lets JSON and YAML documents use the same names as
// ParseBoundaryType. An empty value stays unset.
func (b *BoundaryType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = ""
		return nil
	}
	v, err := ParseBoundaryType(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

type SpaceType string

const (
	Conditioned   SpaceType = "CONDITIONED"
	Unconditioned SpaceType = "UNCONDITIONED"
	Uninhabited   SpaceType = "UNINHABITED"
)

func ParseSpaceType(s string) (SpaceType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONDITIONED":
		return Conditioned, nil
	case "UNCONDITIONED":
		return Unconditioned, nil
	case "UNINHABITED", "UNHABITED":
		return Uninhabited, nil
	}
	return "", fmt.Errorf("invalid space type %q", s)
}

func (t *SpaceType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = ""
		return nil
	}
	v, err := ParseSpaceType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Tilt is the position class of an element: TOP faces up (roofs, ceilings),
// BOTTOM faces down (floors), SIDE is vertical.
type Tilt int

const (
	Top Tilt = iota
	Side
	Bottom
)

// TiltOf classifies a tilt angle in degrees (0 roof, 90 wall, 180 floor).
func TiltOf(deg float64) Tilt {
	t := normalize(deg, 360)
	if t > 180 {
		t = 360 - t
	}
	switch {
	case t < 45:
		return Top
	case t > 135:
		return Bottom
	default:
		return Side
	}
}

func (t Tilt) String() string {
	switch t {
	case Top:
		return "TOP"
	case Bottom:
		return "BOTTOM"
	default:
		return "SIDE"
	}
}

func (t Tilt) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tilt) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "TOP":
		*t = Top
	case "SIDE":
		*t = Side
	case "BOTTOM":
		*t = Bottom
	default:
		return fmt.Errorf("invalid tilt %q", b)
	}
	return nil
}

type Orientation string

const (
	N  Orientation = "N"
	NE Orientation = "NE"
	E  Orientation = "E"
	SE Orientation = "SE"
	S  Orientation = "S"
	SW Orientation = "SW"
	W  Orientation = "W"
	NW Orientation = "NW"
	HZ Orientation = "HZ"
)

// Orientations lists every orientation in the order used by reports.
var Orientations = []Orientation{N, NE, E, SE, S, SW, W, NW, HZ}

// OrientationOf maps an azimuth (degrees from south, positive towards east)
// to the 8-point compass used by the July irradiance tables.
func OrientationOf(azimuth float64) Orientation {
	a := normalize(azimuth, 360)
	switch {
	case a < 18:
		return S
	case a < 69:
		return SE
	case a < 114:
		return E
	case a < 157:
		return NE
	case a < 202:
		return N
	case a < 247:
		return NW
	case a < 292:
		return W
	case a < 342:
		return SW
	default:
		return S
	}
}

func normalize(v, period float64) float64 {
	r := math.Mod(v, period)
	if r < 0 {
		r += period
	}
	return r
}

// Round2 rounds to two decimals, the precision of reported areas and volumes.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Meta struct {
	Name          string `json:"name" yaml:"name"`
	IsNewBuilding bool   `json:"is_new_building" yaml:"is_new_building"`
	IsDwelling    bool   `json:"is_dwelling" yaml:"is_dwelling"`
	NumDwellings  int    `json:"num_dwellings" yaml:"num_dwellings"`
	Climate       string `json:"climate" yaml:"climate"`
	// Global ventilation of dwelling spaces, l/s.
	GlobalVentilationLS *float64 `json:"global_ventilation_l_s,omitempty" yaml:"global_ventilation_l_s,omitempty"`
	// Measured n50 from a blower door test, 1/h.
	N50TestACH *float64 `json:"n50_test_ach,omitempty" yaml:"n50_test_ach,omitempty"`
	// Width or depth of slab perimeter insulation, m.
	DPerimInsulation float64 `json:"d_perim_insulation" yaml:"d_perim_insulation"`
	// Thermal resistance of slab perimeter insulation, m²K/W.
	RnPerimInsulation float64 `json:"rn_perim_insulation" yaml:"rn_perim_insulation"`
}

// DefaultMeta mirrors a new dwelling with no perimeter insulation.
func DefaultMeta() Meta {
	return Meta{
		IsNewBuilding: true,
		IsDwelling:    true,
		NumDwellings:  1,
		Climate:       "D3",
	}
}

type Space struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Floor area, m².
	Area float64 `json:"area" yaml:"area"`
	// Gross height floor to floor, m.
	Height float64 `json:"height" yaml:"height"`
	// Exposed perimeter, m. Nil means a square floor is assumed.
	ExposedPerimeter *float64 `json:"exposed_perimeter,omitempty" yaml:"exposed_perimeter,omitempty"`
	// Floor level, m. Negative when below grade.
	Z          float64   `json:"z" yaml:"z"`
	InsideTEnv bool      `json:"inside_tenv" yaml:"inside_tenv"`
	Multiplier float64   `json:"multiplier" yaml:"multiplier"`
	SpaceType  SpaceType `json:"space_type" yaml:"space_type"`
	// Explicit air change rate, 1/h.
	NV *float64 `json:"n_v,omitempty" yaml:"n_v,omitempty"`
}

// Wall is any opaque envelope element: walls, roofs and floors.
type Wall struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Cons   string       `json:"cons" yaml:"cons"`
	Space  string       `json:"space" yaml:"space"`
	NextTo *string      `json:"nextto,omitempty" yaml:"nextto,omitempty"`
	Bounds BoundaryType `json:"bounds" yaml:"bounds"`
	// Tilt in degrees: 0 roof, 90 vertical, 180 floor.
	Tilt    float64 `json:"tilt" yaml:"tilt"`
	Azimuth float64 `json:"azimuth" yaml:"azimuth"`
	// Net area, m².
	Area float64 `json:"area" yaml:"area"`
}

func (w *Wall) TiltClass() Tilt { return TiltOf(w.Tilt) }

// Orientation is HZ for horizontal elements and the compass sector otherwise.
func (w *Wall) Orientation() Orientation {
	if w.TiltClass() != Side {
		return HZ
	}
	return OrientationOf(w.Azimuth)
}

type WallCons struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	// Total thickness, m.
	Thickness float64 `json:"thickness" yaml:"thickness"`
	// Intrinsic thermal resistance without surface films, m²K/W.
	RIntrinsic  float64 `json:"r_intrinsic" yaml:"r_intrinsic"`
	Absorptance float64 `json:"absorptance" yaml:"absorptance"`
}

type Window struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Cons string `json:"cons" yaml:"cons"`
	Wall string `json:"wall" yaml:"wall"`
	// Area, m².
	Area    float64 `json:"area" yaml:"area"`
	FShObst float64 `json:"fshobst" yaml:"fshobst"`
}

type WindowCons struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	// Overall transmittance, W/m²K.
	U float64 `json:"u" yaml:"u"`
	// Frame fraction, 0..1.
	FF float64 `json:"ff" yaml:"ff"`
	// Solar factor of glazing without shading.
	GGlWi float64 `json:"gglwi" yaml:"gglwi"`
	// Solar factor of glazing with mobile shading active.
	GGlShWi float64 `json:"gglshwi" yaml:"gglshwi"`
	// Air permeability at 100 Pa, m³/h·m².
	InfCoeff100 float64 `json:"infcoeff_100" yaml:"infcoeff_100"`
}

type ThermalBridge struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Length, m.
	L float64 `json:"l" yaml:"l"`
	// Linear transmittance, W/mK.
	Psi float64 `json:"psi" yaml:"psi"`
}
