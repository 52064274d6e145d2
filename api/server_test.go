package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/pkg/api"
)

func testServer() *Server {
	return NewServer(nil, nil, nil, nil)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleCalculate(t *testing.T) {
	h := testServer().routes()

	rec := postJSON(t, h, "/api/v1/massbalance", CalculateRequest{
		Intake: api.Intake{
			ProjectType: api.ProjectWastewater,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "municipal wastewater", Volume: "1.0", Unit: "MGD",
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CalculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "wastewater", resp.ProjectType)
	require.NotNil(t, resp.Results)
	assert.NotEmpty(t, resp.Results.LiquidStages)
	assert.Nil(t, resp.Cost)
}

func TestHandleCalculateWithCost(t *testing.T) {
	h := testServer().routes()

	rec := postJSON(t, h, "/api/v1/massbalance", CalculateRequest{
		Intake: api.Intake{
			ProjectType: api.ProjectDigestion,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "food waste", Volume: "100", Unit: "tons/day",
			}},
		},
		IncludeCost: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CalculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Cost)
	assert.NotEmpty(t, resp.Cost.Drivers)
	assert.False(t, resp.Cost.IsIncomplete)
}

func TestHandleCalculateBadJSON(t *testing.T) {
	h := testServer().routes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/massbalance", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCost(t *testing.T) {
	h := testServer().routes()

	rec := postJSON(t, h, "/api/v1/cost", api.Intake{
		ProjectType: api.ProjectGasUpgrading,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "digester gas", Volume: "600", Unit: "scfm",
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "total_capital")
	assert.Contains(t, body, "drivers")
}

func TestScenarioEndpointsWithoutStore(t *testing.T) {
	h := testServer().routes()

	rec := postJSON(t, h, "/api/v1/scenarios", ScenarioRequest{Name: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealth(t *testing.T) {
	h := testServer().routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Ready with no stores configured is trivially ready.
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := testServer().routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/massbalance", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
