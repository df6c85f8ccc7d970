// Package model holds the building envelope registry: spaces, opaque and
// transparent elements, their constructions and thermal bridges.
//
// Cross references are identifiers resolved through id-keyed indexes, so a
// dangling reference is an absent lookup result, never a crash. A Model is
// treated as read-only once built with New or Decode.
package model

import "iter"

type Model struct {
	Meta           Meta            `json:"meta" yaml:"meta"`
	Spaces         []Space         `json:"spaces" yaml:"spaces"`
	Walls          []Wall          `json:"walls" yaml:"walls"`
	Windows        []Window        `json:"windows" yaml:"windows"`
	WallCons       []WallCons      `json:"wallcons" yaml:"wallcons"`
	WindowCons     []WindowCons    `json:"wincons" yaml:"wincons"`
	ThermalBridges []ThermalBridge `json:"thermal_bridges" yaml:"thermal_bridges"`

	idx *index
}

type index struct {
	spaces       map[string]int
	spaceNames   map[string]int
	walls        map[string]int
	wallNames    map[string]int
	wallCons     map[string]int
	windowCons   map[string]int
	windowsByWal map[string][]int
}

// New indexes the collections of m and returns the frozen registry.
// The first element wins when an id is repeated.
func New(m Model) *Model {
	m.idx = buildIndex(&m)
	return &m
}

func buildIndex(m *Model) *index {
	ix := &index{
		spaces:       make(map[string]int, len(m.Spaces)),
		spaceNames:   make(map[string]int, len(m.Spaces)),
		walls:        make(map[string]int, len(m.Walls)),
		wallNames:    make(map[string]int, len(m.Walls)),
		wallCons:     make(map[string]int, len(m.WallCons)),
		windowCons:   make(map[string]int, len(m.WindowCons)),
		windowsByWal: make(map[string][]int),
	}
	for i, s := range m.Spaces {
		putFirst(ix.spaces, s.ID, i)
		putFirst(ix.spaceNames, s.Name, i)
	}
	for i, w := range m.Walls {
		putFirst(ix.walls, w.ID, i)
		putFirst(ix.wallNames, w.Name, i)
	}
	for i, c := range m.WallCons {
		putFirst(ix.wallCons, c.ID, i)
	}
	for i, c := range m.WindowCons {
		putFirst(ix.windowCons, c.ID, i)
	}
	for i, w := range m.Windows {
		ix.windowsByWal[w.Wall] = append(ix.windowsByWal[w.Wall], i)
	}
	return ix
}

func putFirst(m map[string]int, key string, i int) {
	if _, ok := m[key]; !ok {
		m[key] = i
	}
}

// ix returns the prebuilt index, or a throwaway one for models assembled
// as literals without New.
func (m *Model) ix() *index {
	if m.idx != nil {
		return m.idx
	}
	return buildIndex(m)
}

func (m *Model) Space(id string) (*Space, bool) {
	i, ok := m.ix().spaces[id]
	if !ok {
		return nil, false
	}
	return &m.Spaces[i], true
}

func (m *Model) SpaceByName(name string) (*Space, bool) {
	i, ok := m.ix().spaceNames[name]
	if !ok {
		return nil, false
	}
	return &m.Spaces[i], true
}

func (m *Model) Wall(id string) (*Wall, bool) {
	i, ok := m.ix().walls[id]
	if !ok {
		return nil, false
	}
	return &m.Walls[i], true
}

func (m *Model) WallByName(name string) (*Wall, bool) {
	i, ok := m.ix().wallNames[name]
	if !ok {
		return nil, false
	}
	return &m.Walls[i], true
}

// WallSpace returns the space that owns w.
func (m *Model) WallSpace(w *Wall) (*Space, bool) {
	return m.Space(w.Space)
}

// WallNextTo returns the adjacent space of an interior wall.
func (m *Model) WallNextTo(w *Wall) (*Space, bool) {
	if w.NextTo == nil {
		return nil, false
	}
	return m.Space(*w.NextTo)
}

func (m *Model) WallConsOf(w *Wall) (*WallCons, bool) {
	i, ok := m.ix().wallCons[w.Cons]
	if !ok {
		return nil, false
	}
	return &m.WallCons[i], true
}

func (m *Model) WindowConsOf(win *Window) (*WindowCons, bool) {
	i, ok := m.ix().windowCons[win.Cons]
	if !ok {
		return nil, false
	}
	return &m.WindowCons[i], true
}

// WindowWall returns the wall hosting win.
func (m *Model) WindowWall(win *Window) (*Wall, bool) {
	return m.Wall(win.Wall)
}

// WindowsOfWall yields the windows hosted by the wall with the given id.
func (m *Model) WindowsOfWall(wallID string) iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for _, i := range m.ix().windowsByWal[wallID] {
			if !yield(&m.Windows[i]) {
				return
			}
		}
	}
}

// WindowsOf yields the windows hosted by w. Windows reference walls by id, so
// they belong to the first wall with that id and a later wall repeating it
// hosts none.
func (m *Model) WindowsOf(w *Wall) iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		i, ok := m.ix().walls[w.ID]
		if !ok || &m.Walls[i] != w {
			return
		}
		for win := range m.WindowsOfWall(w.ID) {
			if !yield(win) {
				return
			}
		}
	}
}

// WallsOfSpace yields the walls owned by the space and the interior walls of
// other spaces whose nextto is this space.
func (m *Model) WallsOfSpace(spaceID string) iter.Seq[*Wall] {
	return func(yield func(*Wall) bool) {
		for i := range m.Walls {
			w := &m.Walls[i]
			if w.Space == spaceID || (w.NextTo != nil && *w.NextTo == spaceID) {
				if !yield(w) {
					return
				}
			}
		}
	}
}

// WallsOfEnvelope yields walls in contact with outside air or the ground whose
// owning space is inside the thermal envelope. Walls without a resolvable
// space are left out.
func (m *Model) WallsOfEnvelope() iter.Seq[*Wall] {
	return func(yield func(*Wall) bool) {
		for i := range m.Walls {
			w := &m.Walls[i]
			if w.Bounds != Exterior && w.Bounds != Ground {
				continue
			}
			if !m.insideEnvelope(w) {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

// WindowsOfEnvelope yields windows hosted by exterior walls of spaces inside
// the thermal envelope.
func (m *Model) WindowsOfEnvelope() iter.Seq[*Window] {
	return func(yield func(*Window) bool) {
		for i := range m.Walls {
			w := &m.Walls[i]
			if w.Bounds != Exterior || !m.insideEnvelope(w) {
				continue
			}
			for win := range m.WindowsOf(w) {
				if !yield(win) {
					return
				}
			}
		}
	}
}

func (m *Model) insideEnvelope(w *Wall) bool {
	s, ok := m.WallSpace(w)
	return ok && s.InsideTEnv
}

// Multiplier of the space owning w, 1 when the space is unknown.
func (m *Model) Multiplier(w *Wall) float64 {
	if s, ok := m.WallSpace(w); ok {
		return s.Multiplier
	}
	return 1.0
}
