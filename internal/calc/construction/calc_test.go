package construction

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWall(t *testing.T) {
	res, err := Wall(WallInput{Layers: []Layer{
		{Name: "brick", ThicknessM: 0.115, ConductivityW: 0.85},
		{Name: "air gap", ThicknessM: 0.02, ResistanceM2K: 0.17},
		{Name: "mineral wool", ThicknessM: 0.07, ConductivityW: 0.035},
		{Name: "plaster", ThicknessM: 0.015, ConductivityW: 0.57},
	}})
	require.NoError(t, err)
	r := 0.115/0.85 + 0.17 + 2.0 + 0.015/0.57
	assert.InDelta(t, r, res.RIntrinsic, 1e-12)
	assert.InDelta(t, 0.22, res.ThicknessM, 1e-12)
	assert.InDelta(t, 1/(r+0.17), res.UExterior, 1e-12)
}

func TestWallRoofFilms(t *testing.T) {
	roof := 0.0
	res, err := Wall(WallInput{Layers: []Layer{{ResistanceM2K: 1}}, TiltDeg: &roof})
	require.NoError(t, err)
	assert.InDelta(t, 1/1.14, res.UExterior, 1e-12)
	assert.Zero(t, res.ThicknessM)
}

func TestWallInvalid(t *testing.T) {
	for _, in := range []WallInput{
		{},
		{Layers: []Layer{{Name: "empty"}}},
		{Layers: []Layer{{ThicknessM: -0.1, ConductivityW: 1}}},
	} {
		_, err := Wall(in)
		assert.Error(t, err)
	}
}

func TestWindow(t *testing.T) {
	res, err := Window(WindowInput{FrameU: 3.2, GlassU: 1.4, FrameFraction: 0.25, DeltaUPercent: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.1*(0.8+1.05), res.U, 1e-12)

	_, err = Window(WindowInput{FrameU: 3, GlassU: 1, FrameFraction: 1.5})
	assert.Error(t, err)
}

func TestHandlers(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Wall(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"layers":[{"resistance_m2k_w":2}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"r_intrinsic":2`)

	rec = httptest.NewRecorder()
	h.Window(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"frame_u":0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
