package indicators

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

func ptr[T any](v T) *T { return &v }

// cube is a single conditioned space of side 3 m with six exterior faces and
// a 2 m² window on the south face.
func cube() model.Model {
	face := func(id string, tilt, az float64) model.Wall {
		return model.Wall{ID: id, Name: id, Cons: "c", Space: "s", Bounds: model.Exterior, Tilt: tilt, Azimuth: az, Area: 9}
	}
	return model.Model{
		Meta:   model.DefaultMeta(),
		Spaces: []model.Space{{ID: "s", Name: "cube", Area: 9, Height: 3, InsideTEnv: true, Multiplier: 1, SpaceType: model.Conditioned}},
		Walls: []model.Wall{
			face("roof", 0, 0), face("floor", 180, 0),
			face("south", 90, 0), face("east", 90, 90), face("north", 90, 180), face("west", 90, 270),
		},
		Windows:        []model.Window{{ID: "win", Name: "win", Cons: "wc", Wall: "south", Area: 2, FShObst: 0.8}},
		WallCons:       []model.WallCons{{ID: "c", RIntrinsic: 1}},
		WindowCons:     []model.WindowCons{{ID: "wc", U: 2.5, FF: 0.2, GGlShWi: 0.5, InfCoeff100: 9}},
		ThermalBridges: []model.ThermalBridge{{ID: "tb", L: 10, Psi: 0.1}},
	}
}

func TestCompacityOfCube(t *testing.T) {
	m := cube()
	m.Windows = nil
	c := New(model.New(m), nil)
	assert.InDelta(t, 3.0/6, c.Compacity(), 1e-9)
}

func TestCompacityDegenerate(t *testing.T) {
	c := New(model.New(model.Model{}), nil)
	assert.Zero(t, c.Compacity())

	m := cube()
	m.Spaces[0].Height = 0
	assert.Zero(t, New(model.New(m), nil).Compacity())
}

func TestK(t *testing.T) {
	c := New(model.New(cube()), nil)
	d := c.K()

	wallsAU := 9/1.14 + 4*9/1.17 + 9/1.21
	assert.InDelta(t, 54, d.WallsA, 1e-9)
	assert.InDelta(t, wallsAU, d.WallsAU, 1e-9)
	assert.InDelta(t, 2, d.WindowsA, 1e-9)
	assert.InDelta(t, 5, d.WindowsAU, 1e-9)
	assert.InDelta(t, 1, d.BridgesPsiL, 1e-9)
	assert.InDelta(t, (wallsAU+5+1)/56, d.K, 1e-9)
}

func TestKMultiplierAndExclusions(t *testing.T) {
	base := New(model.New(cube()), nil).K()

	m := cube()
	m.Spaces[0].Multiplier = 2
	m.ThermalBridges = nil
	m.Walls = append(m.Walls, model.Wall{ID: "orphan", Cons: "c", Space: "nowhere", Bounds: model.Exterior, Tilt: 90, Area: 50})
	m.Walls = append(m.Walls, model.Wall{ID: "nocons", Cons: "nope", Space: "s", Bounds: model.Exterior, Tilt: 90, Area: 50})
	m.Windows = append(m.Windows, model.Window{ID: "lost", Cons: "nope", Wall: "south", Area: 4})
	col := &diag.Collector{}
	d := New(model.New(m), col).K()

	assert.InDelta(t, 2*base.WallsA, d.WallsA, 1e-9)
	assert.InDelta(t, 2*base.WindowsA, d.WindowsA, 1e-9)
	assert.InDelta(t, (base.WallsAU+base.WindowsAU)/(base.WallsA+base.WindowsA), d.K, 1e-9)
	assert.Len(t, col.Only(diag.LevelWarning), 2)
}

func TestKEmptyEnvelope(t *testing.T) {
	d := New(model.New(model.Model{ThermalBridges: []model.ThermalBridge{{L: 5, Psi: 1}}}), nil).K()
	assert.Zero(t, d.K)
	assert.InDelta(t, 5, d.BridgesPsiL, 1e-9)
}

func TestN50Default(t *testing.T) {
	c := New(model.New(cube()), nil)
	d := c.N50Default()
	assert.InDelta(t, 27, d.Vol, 1e-9)
	assert.InDelta(t, 54*16, d.WallsCA, 1e-9)
	assert.InDelta(t, 18, d.WindowsCA, 1e-9)
	assert.InDelta(t, 0.629*(864+18)/27, d.N50, 1e-9)
	assert.Equal(t, d.N50, c.N50())

	m := cube()
	m.Meta.IsNewBuilding = false
	assert.Equal(t, CoExistingBuilding, New(model.New(m), nil).CoDefault())
}

func TestN50IgnoresGroundElements(t *testing.T) {
	m := cube()
	m.Walls[1].Bounds = model.Ground
	d := New(model.New(m), nil).N50Default()
	assert.InDelta(t, 45*16, d.WallsCA, 1e-9)
}

func TestN50NullVolume(t *testing.T) {
	m := cube()
	m.Spaces[0].InsideTEnv = false
	d := New(model.New(m), nil).N50Default()
	assert.Zero(t, d.N50)
	assert.Zero(t, d.WallsCA)
}

func TestPermeabilityRoundTrip(t *testing.T) {
	for _, isNew := range []bool{true, false} {
		m := cube()
		m.Meta.IsNewBuilding = isNew
		c := New(model.New(m), nil)
		n50 := c.N50Default().N50
		assert.InDelta(t, c.CoDefault(), c.WallPermeabilityFromN50(n50), 1e-6)
	}
}

func TestMeasuredN50(t *testing.T) {
	m := cube()
	m.Meta.N50TestACH = ptr(3.0)
	c := New(model.New(m), nil)
	assert.Equal(t, 3.0, c.N50())
	co := c.Co()
	assert.InDelta(t, (3.0*27/0.629-18)/54, co, 1e-9)
}

func TestPermeabilityWithoutOpaqueArea(t *testing.T) {
	m := cube()
	for i := range m.Walls {
		m.Walls[i].Bounds = model.Adiabatic
	}
	col := &diag.Collector{}
	assert.Zero(t, New(model.New(m), col).WallPermeabilityFromN50(5))
	assert.Len(t, col.Only(diag.LevelWarning), 1)
}

func TestQSolJul(t *testing.T) {
	c := New(model.New(cube()), nil)
	q := c.QSolJul(Irradiance{model.S: 100})
	assert.InDelta(t, 0.8*0.5*0.8*2*100/9, q, 1e-9)

	col := &diag.Collector{}
	c = New(model.New(cube()), col)
	assert.Zero(t, c.QSolJul(Irradiance{model.N: 100}))
	require.Len(t, col.Only(diag.LevelWarning), 1)
	assert.Equal(t, "win", col.Only(diag.LevelWarning)[0].ID)
}

func TestQSolJulNullReferenceArea(t *testing.T) {
	m := cube()
	m.Spaces[0].SpaceType = model.Uninhabited
	assert.Zero(t, New(model.New(m), nil).QSolJul(Irradiance{model.S: 100}))
}

func TestSummarize(t *testing.T) {
	m := model.New(cube())
	s := Summarize(m, nil, nil)
	assert.Equal(t, 9.0, s.ARef)
	assert.Equal(t, 27.0, s.VolEnvGross)
	assert.InDelta(t, 0.5, s.Compacity, 1e-9)
	assert.Nil(t, s.QSolJul)
	assert.Empty(t, s.Warnings)

	s = Summarize(m, Irradiance{model.S: 100}, nil)
	require.NotNil(t, s.QSolJul)
	assert.Greater(t, *s.QSolJul, 0.0)
}

func TestCalculateRejectsEmptyModel(t *testing.T) {
	_, err := Calculate(Input{}, nil)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	body := `{"model":{"spaces":[{"id":"s","area":9,"height":3,"inside_tenv":true,"space_type":"CONDITIONED"}],
"walls":[{"id":"w","cons":"c","space":"s","bounds":"EXTERIOR","tilt":90,"area":54}],
"wallcons":[{"id":"c","r_intrinsic":1}]},"irradiance_jul":{"S":120}}`
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"compacity":0.5`)
	assert.Contains(t, rec.Body.String(), `"q_soljul":0`)

	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"model":{}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWindowsOfRepeatedWallIDCountOnce(t *testing.T) {
	base := New(model.New(cube()), nil)

	m := cube()
	twin := m.Walls[2]
	twin.Area = 0
	m.Walls = append(m.Walls, twin)
	c := New(model.New(m), nil)

	assert.InDelta(t, base.K().WindowsA, c.K().WindowsA, 1e-9)
	assert.InDelta(t, base.Compacity(), c.Compacity(), 1e-9)
	assert.InDelta(t, base.N50Default().WindowsCA, c.N50Default().WindowsCA, 1e-9)
}

func TestFiniteOnDegenerateGeometry(t *testing.T) {
	tests := map[string]func(m *model.Model){
		"ground space without area": func(m *model.Model) {
			m.Spaces = append(m.Spaces, model.Space{ID: "pit", Area: 0, Height: 3, ExposedPerimeter: ptr(12.0), InsideTEnv: true, Multiplier: 1, SpaceType: model.Conditioned})
			m.Walls = append(m.Walls, model.Wall{ID: "pitfloor", Cons: "c", Space: "pit", Bounds: model.Ground, Tilt: 180, Area: 0})
		},
		"ground slab with negative perimeter": func(m *model.Model) {
			m.Spaces[0].ExposedPerimeter = ptr(-12.0)
			m.Walls[1].Bounds = model.Ground
		},
		"null net volume with measured n50": func(m *model.Model) {
			m.Spaces[0].Height = 0
			m.Meta.N50TestACH = ptr(4.0)
		},
		"floors thicker than the space is tall": func(m *model.Model) {
			m.WallCons[0].Thickness = 5
			m.Meta.N50TestACH = ptr(4.0)
		},
	}
	finite := func(t *testing.T, name string, v float64) {
		t.Helper()
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", name, v)
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := cube()
			mutate(&m)
			c := New(model.New(m), nil)
			k := c.K()
			finite(t, "K", k.K)
			finite(t, "walls A·U", k.WallsAU)
			finite(t, "n50", c.N50())
			finite(t, "default n50", c.N50Default().N50)
			finite(t, "C_o", c.Co())
			finite(t, "C_o from n50", c.WallPermeabilityFromN50(6))
			finite(t, "compacity", c.Compacity())
			assert.GreaterOrEqual(t, c.m.VolEnvNet(), 0.0)
		})
	}
}
