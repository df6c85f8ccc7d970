// Package autodesign sizes the insulation to add to an element so that it
// reaches a target transmittance.
package autodesign

import (
	"fmt"
	"math"

	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

// Commercial insulation boards come in 10 mm steps.
const boardStepM = 0.01

type InsulationInput struct {
	Boundary         model.BoundaryType `json:"boundary"`
	TiltDeg          float64            `json:"tilt_deg"`
	RIntrinsic       float64            `json:"r_intrinsic"`
	TargetU          float64            `json:"target_u"`
	InsulationLambda float64            `json:"insulation_lambda"`
}

type InsulationResult struct {
	CurrentU       float64 `json:"current_u"`
	AddedR         float64 `json:"added_r"`
	ThicknessM     float64 `json:"thickness_m"`
	BoardThickness float64 `json:"board_thickness_m"`
	ResultingU     float64 `json:"resulting_u"`
	OK             bool    `json:"ok"`
	Notes          string  `json:"notes"`
}

// films is the sum of surface resistances the element sees. Only elements
// whose U depends on their own layers alone can be sized this way.
func films(b model.BoundaryType, tilt model.Tilt) (float64, error) {
	switch b {
	case model.Exterior:
		return uvalue.Rsi(tilt) + uvalue.Rse, nil
	case model.Interior:
		return 2 * uvalue.RsiHorizontal, nil
	}
	return 0, fmt.Errorf("invalid boundary %q", b)
}

// Insulation returns the resistance and thickness to add. Elements already
// better than the target get zero.
func Insulation(in InsulationInput) (InsulationResult, error) {
	if in.TargetU <= 0 || in.RIntrinsic < 0 {
		return InsulationResult{}, fmt.Errorf("invalid input")
	}
	if in.InsulationLambda <= 0 {
		in.InsulationLambda = uvalue.LambdaInsulation
	}
	rs, err := films(in.Boundary, model.TiltOf(in.TiltDeg))
	if err != nil {
		return InsulationResult{}, err
	}

	rtot := in.RIntrinsic + rs
	added := max(0, 1/in.TargetU-rtot)
	e := added * in.InsulationLambda
	board := math.Ceil(math.Round(e/boardStepM*1e6)/1e6) * boardStepM
	res := InsulationResult{
		CurrentU:       1 / rtot,
		AddedR:         added,
		ThicknessM:     e,
		BoardThickness: board,
		ResultingU:     1 / (rtot + board/in.InsulationLambda),
	}
	res.OK = res.ResultingU <= in.TargetU+1e-9
	if added == 0 {
		res.Notes = "Element already meets the target U."
	} else {
		res.Notes = fmt.Sprintf("Add %.0f mm of insulation (lambda %.3f W/mK).", board*1000, in.InsulationLambda)
	}
	return res, nil
}

// WallPlan is the insulation needed by one wall of a model.
type WallPlan struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Tilt    model.Tilt       `json:"tilt"`
	TargetU float64          `json:"target_u"`
	Result  InsulationResult `json:"result"`
}

// Envelope sizes insulation for every exterior wall and every partition
// between conditioned spaces that has a target for its tilt class. Other
// cases depend on adjoining zones or the ground and are skipped.
func Envelope(m *model.Model, targets map[model.Tilt]float64, lambda float64, obs diag.Observer) []WallPlan {
	obs = diag.OrNop(obs)
	var plans []WallPlan
	for i := range m.Walls {
		w := &m.Walls[i]
		target, ok := targets[w.TiltClass()]
		if !ok {
			continue
		}
		switch uvalue.Classify(m, w).(type) {
		case uvalue.Exterior, uvalue.InteriorConditioned:
		default:
			continue
		}
		cons, ok := m.WallConsOf(w)
		if !ok {
			obs.Warnw("wall with unknown construction", "id", w.ID, "name", w.Name, "cons", w.Cons)
			continue
		}
		res, err := Insulation(InsulationInput{
			Boundary:         w.Bounds,
			TiltDeg:          w.Tilt,
			RIntrinsic:       cons.RIntrinsic,
			TargetU:          target,
			InsulationLambda: lambda,
		})
		if err != nil {
			obs.Warnw("cannot size insulation", "id", w.ID, "name", w.Name, "error", err.Error())
			continue
		}
		plans = append(plans, WallPlan{ID: w.ID, Name: w.Name, Tilt: w.TiltClass(), TargetU: target, Result: res})
	}
	return plans
}
