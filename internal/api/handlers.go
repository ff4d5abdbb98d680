// Package api provides HTTP handlers for growth coach endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/localspark/growthcoach/internal/metrics"
	"github.com/localspark/growthcoach/internal/models"
)

// CoachStateResult is the response payload for coaching-state resolution. The
// greeting is a presentation detail computed from the server clock, kept
// outside the resolver so resolution stays pure.
type CoachStateResult struct {
	Greeting string               `json:"greeting"`
	State    models.CoachingState `json:"state"`
}

// RouteResult is the response payload for task routing.
type RouteResult struct {
	ToolID string `json:"tool_id"`
}

func (s *Server) coachStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.coachStateHandler: processing request", "path", r.URL.Path)

	var snap models.ProfileSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		slog.Warn("Server.coachStateHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if snap.UserID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}

	state := s.resolver.Resolve(snap)
	metrics.StageResolutions.WithLabelValues(string(state.Stage)).Inc()
	slog.Info("Server.coachStateHandler: resolved coaching state", "userID", snap.UserID, "stage", state.Stage)
	writeJSONResponse(w, http.StatusOK, models.Success(CoachStateResult{
		Greeting: greetingForHour(time.Now().Hour()),
		State:    state,
	}))
}

func (s *Server) coachRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.coachRouteHandler: processing request", "path", r.URL.Path)

	var task models.GrowthTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		slog.Warn("Server.coachRouteHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	toolID := s.router.Route(task)
	writeJSONResponse(w, http.StatusOK, models.Success(RouteResult{ToolID: toolID}))
}

func (s *Server) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.openSessionHandler: processing request", "path", r.URL.Path)

	var req models.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.openSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.openSessionHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	view, err := s.chatMgr.Open(r.Context(), req)
	if err != nil {
		slog.Error("Server.openSessionHandler: failed to open session", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to open session"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(view))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := s.chatMgr.Get(id)
	if err != nil {
		writeSessionError(w, id, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(view))
}

func (s *Server) disposeSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.chatMgr.Dispose(id); err != nil {
		writeSessionError(w, id, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	id := r.PathValue("id")
	slog.Debug("Server.sendMessageHandler: processing request", "sessionID", id)

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sendMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.sendMessageHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	update, err := s.chatMgr.Send(r.Context(), id, req.Text)
	if err != nil {
		writeSessionError(w, id, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(update))
}

// writeSessionError maps chat session errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		slog.Warn("Server: session not found", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
	case errors.Is(err, models.ErrSessionDisposed):
		slog.Debug("Server: session disposed", "sessionID", sessionID)
		writeJSONResponse(w, http.StatusGone, models.Error("Session has been closed"))
	default:
		slog.Error("Server: session operation failed", "error", err, "sessionID", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Internal server error"))
	}
}

// greetingForHour returns the time-of-day salutation shown above the coaching
// message.
func greetingForHour(hour int) string {
	switch {
	case hour < 5:
		return "Working late"
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
