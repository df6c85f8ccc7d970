package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/model"
)

func optCell[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}

// sheetWriter appends rows to sheets of a new workbook.
type sheetWriter struct {
	f    *excelize.File
	next map[string]int
	err  error
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{f: excelize.NewFile(), next: make(map[string]int)}
}

func (s *sheetWriter) row(sheet string, cells ...any) {
	if s.err != nil {
		return
	}
	if _, ok := s.next[sheet]; !ok {
		if _, s.err = s.f.NewSheet(sheet); s.err != nil {
			return
		}
		s.next[sheet] = 1
	}
	cell, err := excelize.CoordinatesToCellName(1, s.next[sheet])
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(sheet, cell, &cells)
	s.next[sheet]++
}

func (s *sheetWriter) header(sheet string, cols []string) {
	cells := make([]any, len(cols))
	for i, c := range cols {
		cells[i] = c
	}
	s.row(sheet, cells...)
}

func (s *sheetWriter) flush(w io.Writer) error {
	defer s.f.Close()
	if s.err != nil {
		return s.err
	}
	if err := s.f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	s.f.SetActiveSheet(0)
	return s.f.Write(w)
}

// WriteModel writes m in the layout ReadModel expects.
func WriteModel(w io.Writer, m *model.Model) error {
	s := newSheetWriter()
	meta := m.Meta
	s.row(SheetMeta, "key", "value")
	s.row(SheetMeta, "name", meta.Name)
	s.row(SheetMeta, "climate", meta.Climate)
	s.row(SheetMeta, "is_new_building", meta.IsNewBuilding)
	s.row(SheetMeta, "is_dwelling", meta.IsDwelling)
	s.row(SheetMeta, "num_dwellings", meta.NumDwellings)
	s.row(SheetMeta, "global_ventilation_l_s", optCell(meta.GlobalVentilationLS))
	s.row(SheetMeta, "n50_test_ach", optCell(meta.N50TestACH))
	s.row(SheetMeta, "d_perim_insulation", meta.DPerimInsulation)
	s.row(SheetMeta, "rn_perim_insulation", meta.RnPerimInsulation)

	s.header(SheetSpaces, spaceCols)
	for _, sp := range m.Spaces {
		s.row(SheetSpaces, sp.ID, sp.Name, sp.Area, sp.Height, optCell(sp.ExposedPerimeter), sp.Z,
			sp.InsideTEnv, sp.Multiplier, string(sp.SpaceType), optCell(sp.NV))
	}
	s.header(SheetWalls, wallCols)
	for _, wl := range m.Walls {
		s.row(SheetWalls, wl.ID, wl.Name, wl.Cons, wl.Space, optCell(wl.NextTo), string(wl.Bounds), wl.Tilt, wl.Azimuth, wl.Area)
	}
	s.header(SheetWindows, windowCols)
	for _, win := range m.Windows {
		s.row(SheetWindows, win.ID, win.Name, win.Cons, win.Wall, win.Area, win.FShObst)
	}
	s.header(SheetWallCons, wallConCols)
	for _, c := range m.WallCons {
		s.row(SheetWallCons, c.ID, c.Name, c.Group, c.Thickness, c.RIntrinsic, c.Absorptance)
	}
	s.header(SheetWindowCons, winConCols)
	for _, c := range m.WindowCons {
		s.row(SheetWindowCons, c.ID, c.Name, c.Group, c.U, c.FF, c.GGlWi, c.GGlShWi, c.InfCoeff100)
	}
	s.header(SheetBridges, bridgeCols)
	for _, b := range m.ThermalBridges {
		s.row(SheetBridges, b.ID, b.Name, b.L, b.Psi)
	}
	return s.flush(w)
}

// WriteResults writes the U-value table, the indicators and the warnings of
// an evaluation.
func WriteResults(w io.Writer, rows []uvalue.Row, sum indicators.Summary) error {
	s := newSheetWriter()
	s.row("Results", "id", "name", "space", "bounds", "tilt", "orientation", "case", "area_m2", "u_w_m2k", "ok")
	for _, r := range rows {
		s.row("Results", r.ID, r.Name, r.Space, string(r.Bounds), r.Tilt.String(), string(r.Orientation), r.Case, r.AreaM2, r.U, r.OK)
	}

	s.row("Indicators", "indicator", "value", "unit")
	s.row("Indicators", "A_ref", sum.ARef, "m²")
	s.row("Indicators", "V_gross", sum.VolEnvGross, "m³")
	s.row("Indicators", "V_net", sum.VolEnvNet, "m³")
	s.row("Indicators", "Compacity", sum.Compacity, "m³/m²")
	s.row("Indicators", "K", sum.K.K, "W/m²K")
	s.row("Indicators", "n50", sum.N50, "1/h")
	s.row("Indicators", "C_o", sum.Co, "m³/h·m²")
	if sum.QSolJul != nil {
		s.row("Indicators", "q_sol;jul", *sum.QSolJul, "kWh/m²·month")
	}

	s.row("Warnings", "level", "id", "message")
	for _, wn := range sum.Warnings {
		s.row("Warnings", string(wn.Level), wn.ID, wn.Msg)
	}
	if err := s.flush(w); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
