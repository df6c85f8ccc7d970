// Package construction derives construction properties from their parts:
// the intrinsic resistance of a layered wall and the transmittance of a
// window from its frame and glazing.
package construction

import (
	"fmt"

	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/model"
)

// Layer is either a material of given thickness and conductivity or a
// component with a fixed resistance (air gaps, proprietary panels).
type Layer struct {
	Name          string  `json:"name"`
	ThicknessM    float64 `json:"thickness_m"`
	ConductivityW float64 `json:"conductivity_w_mk"`
	ResistanceM2K float64 `json:"resistance_m2k_w"`
}

type WallInput struct {
	Layers []Layer `json:"layers"`
	// Used for the reported U only. Defaults to a vertical wall.
	TiltDeg *float64 `json:"tilt_deg,omitempty"`
}

type WallResult struct {
	RIntrinsic float64 `json:"r_intrinsic"`
	ThicknessM float64 `json:"thickness_m"`
	UExterior  float64 `json:"u_exterior"`
	Notes      string  `json:"notes"`
}

func (l Layer) resistance() (float64, error) {
	switch {
	case l.ConductivityW > 0 && l.ThicknessM > 0:
		return l.ThicknessM / l.ConductivityW, nil
	case l.ResistanceM2K > 0:
		return l.ResistanceM2K, nil
	}
	return 0, fmt.Errorf("invalid layer %q", l.Name)
}

// Wall sums the layer resistances without surface films and reports the U of
// the assembly facing outside air.
func Wall(in WallInput) (WallResult, error) {
	if len(in.Layers) == 0 {
		return WallResult{}, fmt.Errorf("invalid input")
	}
	var res WallResult
	for _, l := range in.Layers {
		if l.ThicknessM < 0 {
			return WallResult{}, fmt.Errorf("invalid layer %q", l.Name)
		}
		r, err := l.resistance()
		if err != nil {
			return WallResult{}, err
		}
		res.RIntrinsic += r
		res.ThicknessM += l.ThicknessM
	}
	tilt := model.Side
	if in.TiltDeg != nil {
		tilt = model.TiltOf(*in.TiltDeg)
	}
	res.UExterior = 1 / (res.RIntrinsic + uvalue.Rsi(tilt) + uvalue.Rse)
	res.Notes = fmt.Sprintf("%d layers, ISO 6946 %s", len(in.Layers), tilt)
	return res, nil
}

type WindowInput struct {
	FrameU        float64 `json:"frame_u"`
	GlassU        float64 `json:"glass_u"`
	FrameFraction float64 `json:"frame_fraction"`
	// Increase for shutter boxes and spacers, %.
	DeltaUPercent float64 `json:"delta_u_percent"`
}

type WindowResult struct {
	U     float64 `json:"u"`
	Notes string  `json:"notes"`
}

// Window weights frame and glazing transmittances by area. Both already
// include their surface resistances.
func Window(in WindowInput) (WindowResult, error) {
	if in.FrameU <= 0 || in.GlassU <= 0 || in.FrameFraction < 0 || in.FrameFraction > 1 || in.DeltaUPercent < 0 {
		return WindowResult{}, fmt.Errorf("invalid input")
	}
	u := (1 + in.DeltaUPercent/100) * (in.FrameU*in.FrameFraction + in.GlassU*(1-in.FrameFraction))
	return WindowResult{U: u, Notes: "area-weighted frame and glazing"}, nil
}
