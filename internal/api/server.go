// Package api serves the game over HTTP. All gameplay endpoints live
// under /api/v1 and answer with a uniform success/error envelope; a
// websocket channel pushes the refreshed state after every mutation.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/chronotrade/internal/game"
	"github.com/talgya/chronotrade/internal/persistence"
)

// Server owns the engine behind a single mutex. The engine itself is
// not concurrent-safe; every handler takes the lock.
type Server struct {
	Engine *game.Engine
	DB     *persistence.DB
	Port   int

	mu  sync.Mutex
	hub *Hub
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.hub = NewHub()
	go s.hub.Run()

	// Auction runs and resets are the heavy mutations; bound them.
	mutateLimiter := NewRateLimiter(600, time.Hour)

	mux := http.NewServeMux()

	// Read endpoints.
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/summary", s.handleSummary)
	mux.HandleFunc("/api/v1/inventory", s.handleInventory)
	mux.HandleFunc("/api/v1/turn", s.handleTurn)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/travel/preview", s.handleTravelPreview)
	mux.HandleFunc("/api/v1/auction", s.handleAuctionListings)
	mux.HandleFunc("/api/v1/auction/preview", s.handleAuctionPreview)
	mux.HandleFunc("/api/v1/saves", s.handleListSaves)

	// Mutations.
	mux.HandleFunc("/api/v1/travel", s.handleTravel)
	mux.HandleFunc("/api/v1/auction/list", s.handleAuctionList)
	mux.HandleFunc("/api/v1/auction/cancel", s.handleAuctionCancel)
	mux.HandleFunc("/api/v1/auction/run", RateLimitMiddleware(mutateLimiter, s.handleAuctionRun))
	mux.HandleFunc("/api/v1/reset", RateLimitMiddleware(mutateLimiter, s.handleReset))
	mux.HandleFunc("/api/v1/save", s.handleSave)
	mux.HandleFunc("/api/v1/load", s.handleLoad)

	// Websocket state feed.
	mux.HandleFunc("/ws", s.handleWS)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins;
// localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a success envelope.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

// writeError maps an engine error onto its kind and HTTP status.
func writeError(w http.ResponseWriter, err error) {
	kind := game.KindOf(err)

	status := http.StatusBadRequest
	switch kind {
	case "not_found":
		status = http.StatusNotFound
	case "insufficient_funds", "too_many_listings":
		status = http.StatusConflict
	case "internal":
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"kind":    kind,
			"message": err.Error(),
		},
	})
}

// requirePost rejects non-POST methods. Mutations are POST-only.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// broadcastState pushes the fresh state to websocket clients. Callers
// hold the engine lock.
func (s *Server) broadcastState() {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(map[string]any{
		"type": "state",
		"data": s.Engine.State(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Engine.State())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Engine.Summary())
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.Engine.Inventory()

	byGenre := map[string]int{}
	byRarity := map[string]int{}
	byCondition := map[string]int{}
	for _, it := range items {
		byGenre[it.Genre]++
		byRarity[it.RarityTier]++
		byCondition[it.ConditionName]++
	}

	writeJSON(w, map[string]any{
		"items":        items,
		"count":        len(items),
		"by_genre":     byGenre,
		"by_rarity":    byRarity,
		"by_condition": byCondition,
	})
}

func (s *Server) handleAuctionListings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings := s.Engine.Listings()
	writeJSON(w, map[string]any{
		"listings": listings,
		"count":    len(listings),
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Engine.State().Turn)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Engine.Stats())
}

// parseTravelParams accepts years/distance from a JSON body (POST) or
// query params (GET preview).
func parseTravelParams(r *http.Request) (years, distance int, err error) {
	if r.Method == http.MethodPost {
		var req struct {
			Years    int `json:"years"`
			Distance int `json:"distance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, 0, fmt.Errorf("%w: invalid json body", game.ErrInvalidParameters)
		}
		return req.Years, req.Distance, nil
	}

	years, err1 := strconv.Atoi(r.URL.Query().Get("years"))
	distance, err2 := strconv.Atoi(r.URL.Query().Get("distance"))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: years and distance query params required", game.ErrInvalidParameters)
	}
	return years, distance, nil
}

func (s *Server) handleTravelPreview(w http.ResponseWriter, r *http.Request) {
	years, distance, err := parseTravelParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	est, err := s.Engine.PreviewTravel(years, distance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, est)
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	years, distance, err := parseTravelParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.Engine.Purchase(years, distance)
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcastState()
	writeJSON(w, result)
}

func (s *Server) handleAuctionList(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		ItemID     int64   `json:"item_id"`
		StartPrice float64 `json:"start_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", game.ErrInvalidParameters))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listing, err := s.Engine.ListForAuction(req.ItemID, req.StartPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcastState()
	writeJSON(w, listing)
}

func (s *Server) handleAuctionCancel(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		ItemID int64 `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", game.ErrInvalidParameters))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.Engine.CancelListing(req.ItemID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcastState()
	writeJSON(w, it)
}

func (s *Server) handleAuctionRun(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.Engine.RunAuction()
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcastState()
	writeJSON(w, outcome)
}

func (s *Server) handleAuctionPreview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, err := s.Engine.PreviewAuction()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, preview)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Engine.Reset()
	s.broadcastState()
	writeJSON(w, s.Engine.State())
}

// slotName pulls the save slot from the query or JSON body, defaulting
// to "default".
func slotName(r *http.Request) string {
	if slot := r.URL.Query().Get("slot"); slot != "" {
		return slot
	}
	var req struct {
		Slot string `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Slot != "" {
		return req.Slot
	}
	return "default"
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	slot := slotName(r)

	s.mu.Lock()
	state := s.Engine.Export()
	s.mu.Unlock()

	info, err := s.DB.Save(slot, state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	slot := slotName(r)

	blob, err := s.DB.Load(slot)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", game.ErrNotFound, err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Engine.Import(blob); err != nil {
		writeError(w, err)
		return
	}
	s.broadcastState()
	writeJSON(w, s.Engine.State())
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence not available", http.StatusServiceUnavailable)
		return
	}
	saves, err := s.DB.ListSaves()
	if err != nil {
		writeError(w, err)
		return
	}
	if saves == nil {
		saves = []persistence.SaveInfo{}
	}
	writeJSON(w, saves)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	client, err := s.hub.ServeWS(w, r)
	if err != nil {
		return
	}

	// Greet the new client with the current state.
	s.mu.Lock()
	state := s.Engine.State()
	s.mu.Unlock()

	if msg, err := json.Marshal(map[string]any{"type": "state", "data": state}); err == nil {
		client.Send(msg)
	}
}
