// Package check reports dangling and repeated references in a model. It never
// changes results: the calculators already leave the affected elements out.
package check

import (
	"fmt"

	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

type Result struct {
	Warnings []diag.Warning `json:"warnings"`
	Notes    string         `json:"notes"`
}

// Model lists the walls with an unknown space, construction or adjacent
// space, the windows with an unknown wall or construction and the repeated
// ids. Lookups resolve a repeated id to its first element, so later ones are
// only reachable by position.
func Model(m *model.Model) []diag.Warning {
	var out []diag.Warning
	warn := func(id, format string, args ...any) {
		out = append(out, diag.Warning{Level: diag.LevelWarning, ID: id, Msg: fmt.Sprintf(format, args...)})
	}

	for i := range m.Walls {
		w := &m.Walls[i]
		if _, ok := m.WallSpace(w); !ok {
			warn(w.ID, "wall %s (%s) references unknown space %s", w.ID, w.Name, w.Space)
		}
		if _, ok := m.WallConsOf(w); !ok {
			warn(w.ID, "wall %s (%s) references unknown construction %s", w.ID, w.Name, w.Cons)
		}
		if w.NextTo != nil {
			if _, ok := m.WallNextTo(w); !ok {
				warn(w.ID, "wall %s (%s) references unknown adjacent space %s", w.ID, w.Name, *w.NextTo)
			}
		}
	}
	for i := range m.Windows {
		win := &m.Windows[i]
		if _, ok := m.WindowWall(win); !ok {
			warn(win.ID, "window %s (%s) references unknown wall %s", win.ID, win.Name, win.Wall)
		}
		if _, ok := m.WindowConsOf(win); !ok {
			warn(win.ID, "window %s (%s) references unknown construction %s", win.ID, win.Name, win.Cons)
		}
	}

	repeated(m.Spaces, func(s model.Space) string { return s.ID }, "space", warn)
	repeated(m.Walls, func(w model.Wall) string { return w.ID }, "wall", warn)
	repeated(m.Windows, func(w model.Window) string { return w.ID }, "window", warn)
	repeated(m.WallCons, func(c model.WallCons) string { return c.ID }, "wall construction", warn)
	repeated(m.WindowCons, func(c model.WindowCons) string { return c.ID }, "window construction", warn)
	return out
}

func repeated[T any](items []T, id func(T) string, kind string, warn func(id, format string, args ...any)) {
	seen := make(map[string]int, len(items))
	for i, it := range items {
		k := id(it)
		if first, ok := seen[k]; ok {
			warn(k, "%s %s at position %d repeats the id of position %d and is shadowed", kind, k, i, first)
			continue
		}
		seen[k] = i
	}
}

// Calculate runs the check and forwards every warning to obs.
func Calculate(m *model.Model, obs diag.Observer) (Result, error) {
	if m == nil {
		return Result{}, fmt.Errorf("invalid input")
	}
	obs = diag.OrNop(obs)
	ws := Model(m)
	for _, w := range ws {
		obs.Warnw(w.Msg, "id", w.ID)
	}
	notes := "model references are consistent"
	if len(ws) > 0 {
		notes = fmt.Sprintf("%d dangling references, affected elements are ignored", len(ws))
	}
	return Result{Warnings: ws, Notes: notes}, nil
}
