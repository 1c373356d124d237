package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/bridge"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/shared"
)

const maxIntakeBody = 1 << 20

// Publisher accepts play requests. [bridge.Bus] implements it.
type Publisher interface {
	Publish(ctx context.Context, req bridge.PlayRequested) error
}

// SnapshotSource reports what the player is doing. [player.Engine] implements it.
type SnapshotSource interface {
	Snapshot() player.Snapshot
}

// IntakeHandler exposes the headless player over HTTP.
type IntakeHandler struct {
	bus     Publisher
	player  SnapshotSource
	logger  *log.Logger
	play    http.Handler
	current http.Handler
}

// NewIntakeHandler creates an [IntakeHandler] publishing to bus and reporting from src.
func NewIntakeHandler(bus Publisher, src SnapshotSource, logger *log.Logger) *IntakeHandler {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	h := &IntakeHandler{bus: bus, player: src, logger: logger}
	h.play = allowMethods(http.HandlerFunc(h.handlePlay), http.MethodPost)
	h.current = allowMethods(http.HandlerFunc(h.handleNowPlaying), http.MethodGet, http.MethodHead)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *IntakeHandler) Routes() []string {
	return []string{"/api/play", "/api/now-playing"}
}

// ServeHTTP dispatches on the request path.
func (h *IntakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/play":
		h.play.ServeHTTP(w, r)
	case "/api/now-playing":
		h.current.ServeHTTP(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handlePlay publishes {"track_id": n, "playlist": [...]} and answers 202 once the bus accepts it.
//
// The playlist defaults to the requested track alone.
func (h *IntakeHandler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req bridge.PlayRequested
	dec := json.NewDecoder(io.LimitReader(r.Body, maxIntakeBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.TrackID <= 0 {
		writeError(w, http.StatusBadRequest, "track_id is required")
		return
	}
	if len(req.Playlist) == 0 {
		req.Playlist = []int64{req.TrackID}
	}

	if err := h.bus.Publish(r.Context(), req); err != nil {
		h.logger.Warn("play request not accepted", "track", req.TrackID, "error", err)
		if errors.Is(err, shared.ErrBusClosed) {
			writeError(w, http.StatusServiceUnavailable, "player is shutting down")
			return
		}
		writeError(w, http.StatusRequestTimeout, err.Error())
		return
	}

	h.logger.Debug("play request queued", "track", req.TrackID, "playlist", len(req.Playlist))
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "track_id": req.TrackID})
}

func (h *IntakeHandler) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}
