package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/game"
	"github.com/talgya/chronotrade/internal/persistence"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Server{
		Engine: game.NewEngine(config.Default(), rand.New(rand.NewSource(1))),
		DB:     db,
	}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("{}")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	w := httptest.NewRecorder()
	handler(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %s", w.Body.String())
	}
	return w, env
}

func TestHandleSummary(t *testing.T) {
	s := testServer(t)
	w, env := doJSON(t, s.handleSummary, http.MethodGet, "/api/v1/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var sum game.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 1000.0, sum.Cash)
	assert.Equal(t, 1, sum.MajorTurn)
}

func TestHandleTravelFlow(t *testing.T) {
	s := testServer(t)

	w, env := doJSON(t, s.handleTravel, http.MethodPost, "/api/v1/travel",
		`{"years": 10, "distance": 10}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var res game.PurchaseResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 100.0, res.Investment)
	assert.NotEmpty(t, res.Items)

	// The inventory endpoint reflects the purchase, with breakdowns.
	_, env = doJSON(t, s.handleInventory, http.MethodGet, "/api/v1/inventory", "")
	require.True(t, env.Success)
	var inv struct {
		Count       int            `json:"count"`
		ByGenre     map[string]int `json:"by_genre"`
		ByRarity    map[string]int `json:"by_rarity"`
		ByCondition map[string]int `json:"by_condition"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, len(res.Items), inv.Count)

	total := 0
	for _, n := range inv.ByGenre {
		total += n
	}
	assert.Equal(t, inv.Count, total)
	assert.NotEmpty(t, inv.ByRarity)
	assert.NotEmpty(t, inv.ByCondition)
}

func TestHandleTravelErrors(t *testing.T) {
	s := testServer(t)

	w, env := doJSON(t, s.handleTravel, http.MethodPost, "/api/v1/travel",
		`{"years": 0, "distance": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_parameters", env.Error.Kind)

	w, env = doJSON(t, s.handleTravel, http.MethodPost, "/api/v1/travel",
		`{"years": 1000, "distance": 1000}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "insufficient_funds", env.Error.Kind)
}

func TestHandleTravelRequiresPost(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/travel", nil)
	w := httptest.NewRecorder()
	s.handleTravel(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleTravelPreviewQueryParams(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/travel/preview?years=10&distance=10", nil)
	w := httptest.NewRecorder()
	s.handleTravelPreview(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)

	var est game.TravelEstimate
	require.NoError(t, json.Unmarshal(env.Data, &est))
	assert.Equal(t, 100.0, est.Investment)
	assert.True(t, est.Affordable)
}

func TestAuctionEndpoints(t *testing.T) {
	s := testServer(t)

	_, env := doJSON(t, s.handleTravel, http.MethodPost, "/api/v1/travel",
		`{"years": 10, "distance": 10}`)
	require.True(t, env.Success)
	var res game.PurchaseResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	itemID := res.Items[0].ID

	// List, preview, cancel.
	w, env := doJSON(t, s.handleAuctionList, http.MethodPost, "/api/v1/auction/list",
		`{"item_id": `+strings.TrimSpace(jsonInt(itemID))+`, "start_price": 20}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	_, env = doJSON(t, s.handleAuctionListings, http.MethodGet, "/api/v1/auction", "")
	require.True(t, env.Success)
	var active struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, 1, active.Count)

	_, env = doJSON(t, s.handleAuctionPreview, http.MethodGet, "/api/v1/auction/preview", "")
	require.True(t, env.Success)

	w, env = doJSON(t, s.handleAuctionCancel, http.MethodPost, "/api/v1/auction/cancel",
		`{"item_id": `+jsonInt(itemID)+`}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	// Running with nothing listed is a 404.
	w, env = doJSON(t, s.handleAuctionRun, http.MethodPost, "/api/v1/auction/run", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Kind)
}

func TestSaveLoadEndpoints(t *testing.T) {
	s := testServer(t)

	_, env := doJSON(t, s.handleTravel, http.MethodPost, "/api/v1/travel",
		`{"years": 10, "distance": 10}`)
	require.True(t, env.Success)
	cashAfterTravel := s.Engine.State().Cash

	w, env := doJSON(t, s.handleSave, http.MethodPost, "/api/v1/save?slot=test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	_, env = doJSON(t, s.handleReset, http.MethodPost, "/api/v1/reset", "")
	require.True(t, env.Success)
	assert.Equal(t, 1000.0, s.Engine.State().Cash)

	w, env = doJSON(t, s.handleLoad, http.MethodPost, "/api/v1/load?slot=test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	assert.Equal(t, cashAfterTravel, s.Engine.State().Cash)

	_, env = doJSON(t, s.handleListSaves, http.MethodGet, "/api/v1/saves", "")
	require.True(t, env.Success)
	var saves []persistence.SaveInfo
	require.NoError(t, json.Unmarshal(env.Data, &saves))
	require.Len(t, saves, 1)
	assert.Equal(t, "test", saves[0].Slot)

	// Loading an empty slot is a 404.
	w, env = doJSON(t, s.handleLoad, http.MethodPost, "/api/v1/load?slot=empty", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Kind)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
