// Package importer reads envelope models from xlsx workbooks and writes
// models and results back to workbooks.
//
// A model workbook has one sheet per collection with a header row naming
// the fields (Spaces, Walls, Windows, WallCons, WindowCons, ThermalBridges)
// and a two-column Meta sheet of key/value rows.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"Envolvente/internal/model"
)

const (
	SheetMeta       = "Meta"
	SheetSpaces     = "Spaces"
	SheetWalls      = "Walls"
	SheetWindows    = "Windows"
	SheetWallCons   = "WallCons"
	SheetWindowCons = "WindowCons"
	SheetBridges    = "ThermalBridges"
)

var (
	spaceCols   = []string{"id", "name", "area", "height", "exposed_perimeter", "z", "inside_tenv", "multiplier", "space_type", "n_v"}
	wallCols    = []string{"id", "name", "cons", "space", "nextto", "bounds", "tilt", "azimuth", "area"}
	windowCols  = []string{"id", "name", "cons", "wall", "area", "fshobst"}
	wallConCols = []string{"id", "name", "group", "thickness", "r_intrinsic", "absorptance"}
	winConCols  = []string{"id", "name", "group", "u", "ff", "gglwi", "gglshwi", "infcoeff_100"}
	bridgeCols  = []string{"id", "name", "l", "psi"}
)

var ErrMissingSheet = errors.New("missing sheet")

// table is a sheet with its header resolved to column positions.
type table struct {
	sheet string
	col   map[string]int
	rows  [][]string
}

func readTable(f *excelize.File, sheet string, required bool) (*table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		if required {
			return nil, fmt.Errorf("%w %s", ErrMissingSheet, sheet)
		}
		return &table{sheet: sheet}, nil
	}
	t := &table{sheet: sheet, col: make(map[string]int), rows: rows[1:]}
	for i, h := range rows[0] {
		t.col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return t, nil
}

func (t *table) str(row []string, key string) string {
	i, ok := t.col[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) num(row []string, key string) (float64, error) {
	s := t.str(row, key)
	if s == "" {
		return 0, nil
	}
	return toFloat(s)
}

func (t *table) optNum(row []string, key string) (*float64, error) {
	if t.str(row, key) == "" {
		return nil, nil
	}
	v, err := t.num(row, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *table) optStr(row []string, key string) *string {
	s := t.str(row, key)
	if s == "" {
		return nil
	}
	return &s
}

// each calls fn for every non-empty row, numbering rows as the spreadsheet
// does.
func (t *table) each(fn func(row []string) error) error {
	for i, row := range t.rows {
		if t.str(row, "id") == "" {
			continue
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", t.sheet, i+2, err)
		}
	}
	return nil
}

func toFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(strings.Replace(s, ",", ".", 1), "%f", &v)
	return v, err
}

func toBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "si", "sí", "x":
		return true
	}
	return false
}

// nums reads several numeric columns, stopping at the first bad cell.
func (t *table) nums(row []string, keys []string, dst ...*float64) error {
	for i, k := range keys {
		v, err := t.num(row, k)
		if err != nil {
			return fmt.Errorf("column %s: %w", k, err)
		}
		*dst[i] = v
	}
	return nil
}

// ReadModel parses a model workbook. Spaces, Walls and WallCons are
// required. Meta values absent from the workbook keep their defaults.
func ReadModel(r io.Reader) (*model.Model, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	m := model.Model{Meta: model.DefaultMeta()}
	if err := readMeta(f, &m.Meta); err != nil {
		return nil, err
	}

	t, err := readTable(f, SheetSpaces, true)
	if err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		var err error
		s := model.Space{ID: t.str(row, "id"), Name: t.str(row, "name"), InsideTEnv: toBool(t.str(row, "inside_tenv"))}
		if err := t.nums(row, []string{"area", "height", "z", "multiplier"}, &s.Area, &s.Height, &s.Z, &s.Multiplier); err != nil {
			return err
		}
		if s.ExposedPerimeter, err = t.optNum(row, "exposed_perimeter"); err != nil {
			return err
		}
		if s.NV, err = t.optNum(row, "n_v"); err != nil {
			return err
		}
		s.SpaceType = model.Conditioned
		if v := t.str(row, "space_type"); v != "" {
			if s.SpaceType, err = model.ParseSpaceType(v); err != nil {
				return err
			}
		}
		m.Spaces = append(m.Spaces, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t, err = readTable(f, SheetWalls, true); err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		var err error
		w := model.Wall{
			ID: t.str(row, "id"), Name: t.str(row, "name"), Cons: t.str(row, "cons"),
			Space: t.str(row, "space"), NextTo: t.optStr(row, "nextto"),
		}
		if w.Bounds, err = model.ParseBoundaryType(t.str(row, "bounds")); err != nil {
			return err
		}
		if err := t.nums(row, []string{"tilt", "azimuth", "area"}, &w.Tilt, &w.Azimuth, &w.Area); err != nil {
			return err
		}
		m.Walls = append(m.Walls, w)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t, err = readTable(f, SheetWindows, false); err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		w := model.Window{ID: t.str(row, "id"), Name: t.str(row, "name"), Cons: t.str(row, "cons"), Wall: t.str(row, "wall"), FShObst: 1}
		if err := t.nums(row, []string{"area"}, &w.Area); err != nil {
			return err
		}
		if t.str(row, "fshobst") != "" {
			if err := t.nums(row, []string{"fshobst"}, &w.FShObst); err != nil {
				return err
			}
		}
		m.Windows = append(m.Windows, w)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t, err = readTable(f, SheetWallCons, true); err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		c := model.WallCons{ID: t.str(row, "id"), Name: t.str(row, "name"), Group: t.str(row, "group")}
		if err := t.nums(row, []string{"thickness", "r_intrinsic", "absorptance"}, &c.Thickness, &c.RIntrinsic, &c.Absorptance); err != nil {
			return err
		}
		m.WallCons = append(m.WallCons, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t, err = readTable(f, SheetWindowCons, false); err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		c := model.WindowCons{ID: t.str(row, "id"), Name: t.str(row, "name"), Group: t.str(row, "group")}
		if err := t.nums(row, []string{"u", "ff", "gglwi", "gglshwi", "infcoeff_100"}, &c.U, &c.FF, &c.GGlWi, &c.GGlShWi, &c.InfCoeff100); err != nil {
			return err
		}
		m.WindowCons = append(m.WindowCons, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if t, err = readTable(f, SheetBridges, false); err != nil {
		return nil, err
	}
	err = t.each(func(row []string) error {
		b := model.ThermalBridge{ID: t.str(row, "id"), Name: t.str(row, "name")}
		if err := t.nums(row, []string{"l", "psi"}, &b.L, &b.Psi); err != nil {
			return err
		}
		m.ThermalBridges = append(m.ThermalBridges, b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return model.Build(m), nil
}

func readMeta(f *excelize.File, meta *model.Meta) error {
	rows, err := f.GetRows(SheetMeta)
	if err != nil {
		return nil
	}
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		key, val := strings.ToLower(strings.TrimSpace(row[0])), strings.TrimSpace(row[1])
		if val == "" {
			continue
		}
		if err := setMeta(meta, key, val); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", SheetMeta, i+1, err)
		}
	}
	return nil
}

func setMeta(meta *model.Meta, key, val string) error {
	num := func(dst *float64) error {
		v, err := toFloat(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
		return nil
	}
	switch key {
	case "name":
		meta.Name = val
	case "climate":
		meta.Climate = val
	case "is_new_building":
		meta.IsNewBuilding = toBool(val)
	case "is_dwelling":
		meta.IsDwelling = toBool(val)
	case "num_dwellings":
		var n float64
		if err := num(&n); err != nil {
			return err
		}
		meta.NumDwellings = int(n)
	case "global_ventilation_l_s":
		meta.GlobalVentilationLS = new(float64)
		return num(meta.GlobalVentilationLS)
	case "n50_test_ach":
		meta.N50TestACH = new(float64)
		return num(meta.N50TestACH)
	case "d_perim_insulation":
		return num(&meta.DPerimInsulation)
	case "rn_perim_insulation":
		return num(&meta.RnPerimInsulation)
	}
	return nil
}
