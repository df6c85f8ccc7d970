package uvalue

import (
	"fmt"

	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

// Row is the per-wall entry of a U-value table.
type Row struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Space       string             `json:"space"`
	Bounds      model.BoundaryType `json:"bounds"`
	Tilt        model.Tilt         `json:"tilt"`
	Orientation model.Orientation  `json:"orientation"`
	Case        string             `json:"case"`
	AreaM2      float64            `json:"area_m2"`
	U           float64            `json:"u_w_m2k"`
	OK          bool               `json:"ok"`
}

type Result struct {
	Walls    []Row          `json:"walls"`
	Warnings []diag.Warning `json:"warnings"`
	Notes    string         `json:"notes"`
}

// Table resolves every wall of m in declaration order.
func Table(m *model.Model, obs diag.Observer) []Row {
	r := NewResolver(m, obs)
	rows := make([]Row, 0, len(m.Walls))
	for i := range m.Walls {
		w := &m.Walls[i]
		u, ok := r.U(w)
		rows = append(rows, Row{
			ID:          w.ID,
			Name:        w.Name,
			Space:       w.Space,
			Bounds:      w.Bounds,
			Tilt:        w.TiltClass(),
			Orientation: w.Orientation(),
			Case:        Classify(m, w).Name(),
			AreaM2:      w.Area,
			U:           u,
			OK:          ok,
		})
	}
	return rows
}

func Calculate(m *model.Model, obs diag.Observer) (Result, error) {
	if m == nil || len(m.Walls) == 0 {
		return Result{}, fmt.Errorf("invalid input: model without walls")
	}
	col := &diag.Collector{}
	rows := Table(m, diag.Tee(col, obs))
	var missing int
	for _, row := range rows {
		if !row.OK {
			missing++
		}
	}
	return Result{
		Walls:    rows,
		Warnings: col.Only(diag.LevelWarning),
		Notes:    fmt.Sprintf("%d walls, %d without U (ISO 6946 / 13370 / 13789)", len(rows), missing),
	}, nil
}
