// Package fshobst estimates the remote obstruction factor of a window set
// back from the facade plane (DA DB-HE/1, tables 17 and 19).
package fshobst

import (
	"fmt"

	"Envolvente/internal/model"
)

type Input struct {
	TiltDeg    float64 `json:"tilt_deg"`
	AzimuthDeg float64 `json:"azimuth_deg"`
	WidthM     float64 `json:"width_m"`
	HeightM    float64 `json:"height_m"`
	SetbackM   float64 `json:"setback_m"`
}

type Result struct {
	FShObst     float64           `json:"fshobst"`
	Tilt        model.Tilt        `json:"tilt"`
	Orientation model.Orientation `json:"orientation"`
	RatioH      float64           `json:"setback_height_ratio"`
	RatioW      float64           `json:"setback_width_ratio"`
	Notes       string            `json:"notes"`
}

// Table 17, vertical windows. Rows are setback/height bands 1..4, columns
// setback/width bands 1..4.
var (
	vertS = [4][4]float64{
		{0.82, 0.74, 0.62, 0.39},
		{0.76, 0.67, 0.56, 0.35},
		{0.56, 0.51, 0.39, 0.27},
		{0.35, 0.32, 0.27, 0.17},
	}
	vertSESW = [4][4]float64{
		{0.86, 0.81, 0.72, 0.51},
		{0.79, 0.74, 0.66, 0.47},
		{0.59, 0.56, 0.47, 0.36},
		{0.38, 0.36, 0.32, 0.23},
	}
	vertEW = [4][4]float64{
		{0.91, 0.87, 0.81, 0.65},
		{0.86, 0.82, 0.76, 0.61},
		{0.71, 0.68, 0.61, 0.51},
		{0.53, 0.51, 0.48, 0.39},
	}
)

// Table 19, horizontal windows, indexed by the larger then the smaller band.
var horiz = [6][]float64{
	{0.42},
	{0.43, 0.46},
	{0.43, 0.48, 0.52},
	{0.43, 0.50, 0.55, 0.60},
	{0.44, 0.51, 0.58, 0.66, 0.75},
	{0.44, 0.52, 0.59, 0.68, 0.79, 0.85},
}

func verticalBand(r float64) int {
	switch {
	case r < 0.05:
		return 0
	case r <= 0.1:
		return 1
	case r <= 0.2:
		return 2
	case r <= 0.5:
		return 3
	default:
		return 4
	}
}

func horizontalBand(r float64) int {
	switch {
	case r <= 0.1:
		return 0
	case r <= 0.5:
		return 1
	case r <= 1:
		return 2
	case r <= 2:
		return 3
	case r <= 5:
		return 4
	default:
		return 5
	}
}

// ForSetback returns the obstruction factor of a window of the given size
// recessed setback metres, 1 when the tables give no reduction.
func ForSetback(tilt, azimuth, width, height, setback float64) float64 {
	rh := setback / height
	rw := setback / width
	switch model.TiltOf(tilt) {
	case model.Side:
		bh, bw := verticalBand(rh), verticalBand(rw)
		if bh == 0 || bw == 0 {
			return 1
		}
		switch model.OrientationOf(azimuth) {
		case model.S:
			return vertS[bh-1][bw-1]
		case model.SE, model.SW:
			return vertSESW[bh-1][bw-1]
		case model.E, model.W:
			return vertEW[bh-1][bw-1]
		}
		return 1
	case model.Top:
		bh, bw := horizontalBand(rh), horizontalBand(rw)
		return horiz[max(bh, bw)][min(bh, bw)]
	}
	return 1
}

func Calculate(in Input) (Result, error) {
	if in.WidthM <= 0 || in.HeightM <= 0 || in.SetbackM < 0 {
		return Result{}, fmt.Errorf("invalid input")
	}
	tilt := model.TiltOf(in.TiltDeg)
	orient := model.HZ
	if tilt == model.Side {
		orient = model.OrientationOf(in.AzimuthDeg)
	}
	return Result{
		FShObst:     ForSetback(in.TiltDeg, in.AzimuthDeg, in.WidthM, in.HeightM, in.SetbackM),
		Tilt:        tilt,
		Orientation: orient,
		RatioH:      in.SetbackM / in.HeightM,
		RatioW:      in.SetbackM / in.WidthM,
		Notes:       "DA DB-HE/1 setback obstruction (tables 17 and 19)",
	}, nil
}
