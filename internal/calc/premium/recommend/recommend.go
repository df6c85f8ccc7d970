// Package recommend compares element transmittances with the DB-HE 2019
// limits of the winter climate zone and proposes insulation for the
// elements over the limit.
package recommend

import (
	"fmt"
	"strings"

	"Envolvente/internal/calc/premium/autodesign"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

// Limit families of table 3.1.1.a-HE1.
type Family string

const (
	WallsFloors Family = "UM"  // walls and floors to outside air
	Roofs       Family = "UC"  // roofs to outside air
	Ground      Family = "UT"  // elements to ground or unconditioned spaces
	Partitions  Family = "UMD" // party walls and partitions between conditioned units
	Windows     Family = "UH"
)

// Winter zones in table order: α, A, B, C, D, E.
var zones = []string{"alpha", "A", "B", "C", "D", "E"}

var limits = map[Family][6]float64{
	WallsFloors: {0.80, 0.70, 0.56, 0.49, 0.41, 0.37},
	Roofs:       {0.55, 0.50, 0.44, 0.40, 0.35, 0.33},
	Ground:      {0.90, 0.80, 0.75, 0.70, 0.65, 0.59},
	Partitions:  {1.35, 1.25, 1.10, 0.95, 0.85, 0.80},
	Windows:     {3.2, 2.7, 2.3, 2.1, 1.8, 1.80},
}

// WinterZone extracts the winter letter from a climate zone such as "D3" or
// "alpha1". "α" is accepted for alpha.
func WinterZone(climate string) (int, error) {
	c := strings.TrimRight(strings.TrimSpace(climate), "0123456789")
	if c == "α" {
		c = "alpha"
	}
	for i, z := range zones {
		if strings.EqualFold(c, z) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid climate zone %q", climate)
}

// ULim returns the limit transmittance of a family in a climate zone.
func ULim(f Family, climate string) (float64, error) {
	z, err := WinterZone(climate)
	if err != nil {
		return 0, err
	}
	l, ok := limits[f]
	if !ok {
		return 0, fmt.Errorf("invalid limit family %q", f)
	}
	return l[z], nil
}

// FamilyOf maps a resolved wall case to its limit family. ok is false for
// elements without a limit.
func FamilyOf(c uvalue.Case) (Family, bool) {
	switch c := c.(type) {
	case uvalue.Exterior:
		if c.Tilt == model.Top {
			return Roofs, true
		}
		return WallsFloors, true
	case uvalue.GroundRoof:
		return Roofs, true
	case uvalue.GroundFloor, uvalue.GroundWall, uvalue.InteriorUnconditioned:
		return Ground, true
	case uvalue.InteriorConditioned:
		return Partitions, true
	}
	return "", false
}

type Item struct {
	ID         string                       `json:"id"`
	Name       string                       `json:"name"`
	Family     Family                       `json:"family"`
	U          float64                      `json:"u"`
	ULim       float64                      `json:"u_lim"`
	OK         bool                         `json:"ok"`
	Insulation *autodesign.InsulationResult `json:"insulation,omitempty"`
}

type Result struct {
	Climate  string         `json:"climate"`
	Items    []Item         `json:"items"`
	Failing  int            `json:"failing"`
	Warnings []diag.Warning `json:"warnings"`
	Notes    string         `json:"notes"`
}

// Envelope checks every wall and window with a limit. Walls over the limit
// whose U depends on their own layers only get an insulation proposal.
func Envelope(m *model.Model, obs diag.Observer) (Result, error) {
	if _, err := WinterZone(m.Meta.Climate); err != nil {
		return Result{}, err
	}
	col := &diag.Collector{}
	obs = diag.Tee(col, obs)
	res := Result{Climate: m.Meta.Climate}
	r := uvalue.NewResolver(m, obs)

	for i := range m.Walls {
		w := &m.Walls[i]
		c := uvalue.Classify(m, w)
		fam, ok := FamilyOf(c)
		if !ok {
			continue
		}
		u, ok := r.U(w)
		if !ok {
			continue
		}
		lim, _ := ULim(fam, m.Meta.Climate)
		it := Item{ID: w.ID, Name: w.Name, Family: fam, U: u, ULim: lim, OK: u <= lim}
		if !it.OK {
			it.Insulation = propose(m, w, c, lim)
		}
		res.add(it)
	}
	for i := range m.Windows {
		win := &m.Windows[i]
		wc, ok := m.WindowConsOf(win)
		if !ok {
			continue
		}
		lim, _ := ULim(Windows, m.Meta.Climate)
		res.add(Item{ID: win.ID, Name: win.Name, Family: Windows, U: wc.U, ULim: lim, OK: wc.U <= lim})
	}
	res.Warnings = col.Only(diag.LevelWarning)
	res.Notes = fmt.Sprintf("%d of %d elements over the DB-HE 2019 limit", res.Failing, len(res.Items))
	return res, nil
}

func (r *Result) add(it Item) {
	if !it.OK {
		r.Failing++
	}
	r.Items = append(r.Items, it)
}

func propose(m *model.Model, w *model.Wall, c uvalue.Case, target float64) *autodesign.InsulationResult {
	switch c.(type) {
	case uvalue.Exterior, uvalue.InteriorConditioned:
	default:
		return nil
	}
	cons, ok := m.WallConsOf(w)
	if !ok {
		return nil
	}
	ins, err := autodesign.Insulation(autodesign.InsulationInput{
		Boundary:   w.Bounds,
		TiltDeg:    w.Tilt,
		RIntrinsic: cons.RIntrinsic,
		TargetU:    target,
	})
	if err != nil {
		return nil
	}
	return &ins
}
