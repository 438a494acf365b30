package driver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/circuitbreaker"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

// ScheduleHTTPHandler serves programme guide lookups and cache management.
type ScheduleHTTPHandler struct {
	service *application.ScheduleService
	logger  *slog.Logger
	now     func() time.Time
}

// NewScheduleHTTPHandler creates a new HTTP handler for the programme guide.
func NewScheduleHTTPHandler(service *application.ScheduleService, logger *slog.Logger) *ScheduleHTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleHTTPHandler{service: service, logger: logger, now: time.Now}
}

// programmeResponse represents a programme in JSON format.
type programmeResponse struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type scheduleResponse struct {
	Channel string             `json:"channel"`
	Current programmeResponse  `json:"current"`
	Next    *programmeResponse `json:"next,omitempty"`
}

type refreshResponse struct {
	Source    string    `json:"source"`
	Channels  int       `json:"channels"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type cacheInfoResponse struct {
	HasCache    bool       `json:"has_cache"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toProgrammeResponse(p schedule.Programme) programmeResponse {
	return programmeResponse{Title: p.Title, Start: p.Start, End: p.End}
}

// ServeHTTP routes /schedule, /schedule/refresh and /schedule/cache
func (h *ScheduleHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/schedule")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.handleLookup(w, r)
	case path == "/refresh" && r.Method == http.MethodPost:
		h.handleRefresh(w, r)
	case path == "/cache" && r.Method == http.MethodGet:
		h.handleCacheInfo(w, r)
	case path == "/cache" && r.Method == http.MethodDelete:
		h.handleClearCache(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleLookup handles GET /schedule?name=
func (h *ScheduleHTTPHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	current, ok := h.service.Lookup(name, now)
	if !ok {
		writeError(w, http.StatusNotFound, "no programme on air")
		return
	}

	resp := scheduleResponse{Channel: name, Current: toProgrammeResponse(current)}
	if next, ok := h.service.Upcoming(name, now); ok {
		p := toProgrammeResponse(next)
		resp.Next = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh handles POST /schedule/refresh?force=
func (h *ScheduleHTTPHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = parsed
	}

	res, err := h.service.Refresh(r.Context(), force)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrRefreshInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrHalfOpenLimitReached):
			writeError(w, http.StatusServiceUnavailable, "guide source temporarily unavailable")
		default:
			writeError(w, http.StatusBadGateway, "failed to download guide")
		}
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Source:    res.Source,
		Channels:  res.Channels,
		FetchedAt: res.FetchedAt,
		ExpiresAt: res.ExpiresAt,
	})
}

// handleCacheInfo handles GET /schedule/cache
func (h *ScheduleHTTPHandler) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	info := h.service.CacheInfo(r.Context())

	resp := cacheInfoResponse{HasCache: info.HasCache}
	if info.HasCache {
		resp.LastUpdated = &info.LastUpdated
		resp.ExpiresAt = &info.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClearCache handles DELETE /schedule/cache
func (h *ScheduleHTTPHandler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context()); err != nil {
		h.logger.Error("failed to clear guide cache", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
