package uvalue

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

func single(bounds model.BoundaryType, tilt, r float64) (*model.Model, *model.Wall) {
	m := model.New(model.Model{
		Spaces:   []model.Space{{ID: "s", Area: 100, Height: 3, InsideTEnv: true, Multiplier: 1, SpaceType: model.Conditioned}},
		Walls:    []model.Wall{{ID: "w", Name: "w", Cons: "c", Space: "s", Bounds: bounds, Tilt: tilt, Area: 10}},
		WallCons: []model.WallCons{{ID: "c", RIntrinsic: r}},
	})
	return m, &m.Walls[0]
}

// conditionedOverUnconditioned: A (conditioned, 100 m², 3 m) lies on B
// (unconditioned, 100 m², 2.5 m, n_v 0.5) which has a 20 m² exterior wall
// with U = 1.
func conditionedOverUnconditioned(nv *float64) *model.Model {
	return model.New(model.Model{
		Meta: model.DefaultMeta(),
		Spaces: []model.Space{
			{ID: "A", Name: "A", Area: 100, Height: 3, InsideTEnv: true, Multiplier: 1, SpaceType: model.Conditioned},
			{ID: "B", Name: "B", Area: 100, Height: 2.5, Multiplier: 1, SpaceType: model.Unconditioned, NV: nv},
		},
		Walls: []model.Wall{
			{ID: "floor", Name: "floor A", Cons: "slab", Space: "A", NextTo: ptr("B"), Bounds: model.Interior, Tilt: 180, Area: 100},
			{ID: "wb", Name: "wall B", Cons: "brick", Space: "B", Bounds: model.Exterior, Tilt: 90, Area: 20},
			{ID: "ceil", Name: "ceiling B", Cons: "slab", Space: "B", NextTo: ptr("A"), Bounds: model.Interior, Tilt: 0, Area: 100},
		},
		WallCons: []model.WallCons{
			{ID: "slab", RIntrinsic: 1.0},
			{ID: "brick", RIntrinsic: 0.83},
		},
	})
}

func TestExteriorVertical(t *testing.T) {
	m, w := single(model.Exterior, 90, 2.0)
	u, ok := U(m, w, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.460, u, 5e-4)
}

func TestExteriorByTilt(t *testing.T) {
	for tilt, rsi := range map[float64]float64{0: RsiUp, 90: RsiHorizontal, 180: RsiDown} {
		m, w := single(model.Exterior, tilt, 1.5)
		u, ok := U(m, w, nil)
		require.True(t, ok)
		assert.InDelta(t, 1/(1.5+rsi+Rse), u, 1e-12, "tilt %v", tilt)
	}
}

func TestExteriorDecreasesWithResistance(t *testing.T) {
	prev := 1e9
	for _, r := range []float64{0, 0.5, 1, 2, 5, 20, 1000} {
		m, w := single(model.Exterior, 90, r)
		u, ok := U(m, w, nil)
		require.True(t, ok)
		assert.Less(t, u, prev)
		prev = u
	}
	assert.Less(t, prev, 0.001)
}

func TestAdiabaticIsZero(t *testing.T) {
	for _, tilt := range []float64{0, 60, 90, 180} {
		m, w := single(model.Adiabatic, tilt, 0.2)
		u, ok := U(m, w, nil)
		require.True(t, ok)
		assert.Zero(t, u)
	}
}

func TestGroundRoofLikeExteriorRoof(t *testing.T) {
	m, w := single(model.Ground, 0, 2.5)
	u, ok := U(m, w, nil)
	require.True(t, ok)
	assert.InDelta(t, 1/(2.5+RsiUp+Rse), u, 1e-12)
}

func TestGroundSlab(t *testing.T) {
	m, w := single(model.Ground, 180, 1.0)
	m.Spaces[0].ExposedPerimeter = ptr(40.0)

	u, ok := U(m, w, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.41529, u, 1e-4)

	// Square floor assumed when the perimeter is unknown: 4·√100 = 40.
	m.Spaces[0].ExposedPerimeter = nil
	u2, _ := U(m, w, nil)
	assert.InDelta(t, u, u2, 1e-12)

	m.Meta.DPerimInsulation = 1
	m.Meta.RnPerimInsulation = 1
	u3, _ := U(m, w, nil)
	assert.InDelta(t, 0.38483, u3, 1e-4)
}

func TestGroundSlabWellInsulated(t *testing.T) {
	m, w := single(model.Ground, 180, 1.0)
	m.Spaces[0].Area = 4
	m.Spaces[0].ExposedPerimeter = ptr(8.0)
	u, ok := U(m, w, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.62952, u, 1e-4)
}

func TestGroundSlabNullPerimeter(t *testing.T) {
	m, w := single(model.Ground, 180, 1.0)
	m.Spaces[0].ExposedPerimeter = ptr(0.0)
	col := &diag.Collector{}
	u, ok := U(m, w, col)
	require.True(t, ok)
	assert.Zero(t, u)
	require.Len(t, col.Warnings(), 1)
	assert.Equal(t, "w", col.Warnings()[0].ID)
}

func TestGroundSlabZeroArea(t *testing.T) {
	for _, d := range []float64{0, 1} {
		m, w := single(model.Ground, 180, 1.0)
		m.Spaces[0].Area = 0
		m.Spaces[0].ExposedPerimeter = ptr(12.0)
		m.Meta.DPerimInsulation = d
		m.Meta.RnPerimInsulation = d
		col := &diag.Collector{}
		u, ok := U(m, w, col)
		require.True(t, ok)
		assert.Zero(t, u, "D=%v", d)
		require.Len(t, col.Warnings(), 1)
		assert.Equal(t, "w", col.Warnings()[0].ID)
	}
}

func TestGroundWall(t *testing.T) {
	m := model.New(model.Model{
		Spaces: []model.Space{{ID: "cellar", Area: 100, Height: 3, Z: -2, Multiplier: 1, SpaceType: model.Unconditioned}},
		Walls: []model.Wall{
			{ID: "w", Cons: "c", Space: "cellar", Bounds: model.Ground, Tilt: 90, Area: 30},
			{ID: "slab", Cons: "c", Space: "cellar", Bounds: model.Ground, Tilt: 180, Area: 100},
			{ID: "broken", Cons: "nope", Space: "cellar", Bounds: model.Ground, Tilt: 180, Area: 1},
		},
		WallCons: []model.WallCons{{ID: "c", RIntrinsic: 1.0}},
	})
	u, ok := U(m, &m.Walls[0], nil)
	require.True(t, ok)
	assert.InDelta(t, 0.61775, u, 1e-4)

	// Fully buried: height equal to depth.
	m.Spaces[0].Height = 2
	u, ok = U(m, &m.Walls[0], nil)
	require.True(t, ok)
	assert.InDelta(t, 0.49927, u, 1e-4)
}

func TestGroundWallAboveGrade(t *testing.T) {
	m, w := single(model.Ground, 90, 1.0)
	col := &diag.Collector{}
	u, ok := U(m, w, col)
	require.True(t, ok)
	assert.InDelta(t, 1/1.17, u, 1e-12)
	assert.Len(t, col.Warnings(), 1)
}

func TestInteriorConditioned(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.5))
	m.Spaces[1].SpaceType = model.Conditioned
	u, ok := U(m, &m.Walls[0], nil)
	require.True(t, ok)
	assert.InDelta(t, 1/(1.0+2*RsiHorizontal), u, 1e-12)
	assert.IsType(t, InteriorConditioned{}, Classify(m, &m.Walls[0]))
}

func TestInteriorTowardsUnconditioned(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.5))
	floor := &m.Walls[0]

	c, ok := Classify(m, floor).(InteriorUnconditioned)
	require.True(t, ok)
	assert.Equal(t, "B", c.Zone.ID)
	assert.True(t, c.ConditionedSide)

	u, ok := U(m, floor, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.3364, u, 1e-3)
	assert.Less(t, u, 1/(1.0+2*RsiDown))

	// Seen from below, the ceiling of B is the same element.
	ceil := &m.Walls[2]
	c, ok = Classify(m, ceil).(InteriorUnconditioned)
	require.True(t, ok)
	assert.False(t, c.ConditionedSide)
	uc, ok := U(m, ceil, nil)
	require.True(t, ok)
	assert.InDelta(t, u, uc, 1e-12)
}

func TestInteriorVentilationFallbacks(t *testing.T) {
	m := conditionedOverUnconditioned(nil)
	col := &diag.Collector{}
	u, ok := U(m, &m.Walls[0], col)
	require.True(t, ok)
	// Only the exterior wall of B counts: H_ue = 20.
	assert.InDelta(t, 0.15773, u, 1e-4)
	assert.NotEmpty(t, col.Only(diag.LevelWarning))

	// 30 l/s over 300 m³ of habitable volume is 0.36 1/h.
	m.Meta.GlobalVentilationLS = ptr(30.0)
	u, ok = U(m, &m.Walls[0], nil)
	require.True(t, ok)
	hue := 20 + 0.33*0.36*250
	assert.InDelta(t, 1/(1.34+100/hue), u, 1e-9)
}

func TestInteriorZoneWithoutLosses(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.0))
	m.Walls[1].Bounds = model.Adiabatic
	col := &diag.Collector{}
	u, ok := U(m, &m.Walls[0], col)
	require.True(t, ok)
	assert.Zero(t, u)
	assert.NotEmpty(t, col.Warnings())
}

func TestInteriorZoneWindowsCount(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.5))
	m.Windows = []model.Window{
		{ID: "win", Cons: "wc", Wall: "wb", Area: 2},
		{ID: "ghost", Cons: "nope", Wall: "wb", Area: 50},
	}
	m.WindowCons = []model.WindowCons{{ID: "wc", U: 2.5}}
	m = model.New(*m)
	u, ok := U(m, &m.Walls[0], nil)
	require.True(t, ok)
	assert.InDelta(t, 1/(1.34+100/(61.25+5)), u, 1e-9)
}

func TestUnresolvedReferences(t *testing.T) {
	cases := map[string]func(m *model.Model){
		"construction":  func(m *model.Model) { m.Walls[0].Cons = "nope" },
		"owning space":  func(m *model.Model) { m.Walls[0].Space = "nope" },
		"no nextto":     func(m *model.Model) { m.Walls[0].NextTo = nil },
		"bad nextto":    func(m *model.Model) { m.Walls[0].NextTo = ptr("nope") },
		"ground space":  func(m *model.Model) { m.Walls[0].Bounds = model.Ground; m.Walls[0].Space = "nope" },
		"unknown bound": func(m *model.Model) { m.Walls[0].Bounds = "SKY" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			base := conditionedOverUnconditioned(ptr(0.5))
			mutate(base)
			m := model.New(*base)
			col := &diag.Collector{}
			_, ok := U(m, &m.Walls[0], col)
			assert.False(t, ok)
			require.NotEmpty(t, col.Warnings())
			assert.Equal(t, "floor", col.Warnings()[0].ID)
		})
	}
}

func TestResolverMemoises(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.5))
	r := NewResolver(m, nil)
	u1, _ := r.U(&m.Walls[0])
	u2, _ := r.U(&m.Walls[0])
	assert.Equal(t, u1, u2)
	// The floor and the exterior wall of B, visited through the zone.
	assert.Len(t, r.cache, 2)
}

func TestCalculateTable(t *testing.T) {
	m := conditionedOverUnconditioned(ptr(0.5))
	m.Walls = append(m.Walls, model.Wall{ID: "bad", Cons: "nope", Space: "A", Bounds: model.Exterior, Tilt: 90})
	m = model.New(*m)

	res, err := Calculate(m, nil)
	require.NoError(t, err)
	require.Len(t, res.Walls, 4)
	assert.Equal(t, "interior unconditioned", res.Walls[0].Case)
	assert.Equal(t, model.Bottom, res.Walls[0].Tilt)
	assert.InDelta(t, 1.0, res.Walls[1].U, 1e-9)
	assert.False(t, res.Walls[3].OK)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "bad", res.Warnings[0].ID)

	_, err = Calculate(model.New(model.Model{}), nil)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	h := &Handler{}
	body := `{"spaces":[{"id":"s","area":10,"height":3,"inside_tenv":true,"space_type":"CONDITIONED"}],
"walls":[{"id":"w","cons":"c","space":"s","bounds":"EXTERIOR","tilt":90,"area":10}],
"wallcons":[{"id":"c","r_intrinsic":2}]}`
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tilt":"SIDE"`)
	assert.Contains(t, rec.Body.String(), `"case":"exterior SIDE"`)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiniteOnDegenerateGeometry(t *testing.T) {
	cases := map[string]func() (*model.Model, *model.Wall){
		"slab over zero area space": func() (*model.Model, *model.Wall) {
			m, w := single(model.Ground, 180, 1)
			m.Spaces[0].Area = 0
			m.Spaces[0].ExposedPerimeter = ptr(12.0)
			return m, w
		},
		"slab with negative perimeter": func() (*model.Model, *model.Wall) {
			m, w := single(model.Ground, 180, 1)
			m.Spaces[0].ExposedPerimeter = ptr(-40.0)
			return m, w
		},
		"buried wall of zero height space": func() (*model.Model, *model.Wall) {
			m, w := single(model.Ground, 90, 1)
			m.Spaces[0].Height = 0
			m.Spaces[0].Z = -2
			return m, w
		},
		"zone with negative net height": func() (*model.Model, *model.Wall) {
			m := conditionedOverUnconditioned(ptr(0.5))
			m.Spaces[1].Height = 0
			m.WallCons[0].Thickness = 0.3
			return m, &m.Walls[0]
		},
		"zone without area or losses": func() (*model.Model, *model.Wall) {
			m := conditionedOverUnconditioned(ptr(0.5))
			m.Spaces[1].Area = 0
			m.Walls[1].Area = 0
			return m, &m.Walls[0]
		},
		"zone with global ventilation and null volume": func() (*model.Model, *model.Wall) {
			m := conditionedOverUnconditioned(nil)
			m.Meta.GlobalVentilationLS = ptr(30.0)
			m.Spaces[0].Height = 0
			return m, &m.Walls[0]
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			m, w := build()
			u, ok := U(m, w, nil)
			require.True(t, ok)
			assert.False(t, math.IsNaN(u) || math.IsInf(u, 0), "U = %v", u)
			assert.GreaterOrEqual(t, u, 0.0)
		})
	}
}
