package driver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alorle/m3u8-editor/internal/application"
)

// ChannelHTTPHandler handles HTTP requests that edit individual channels.
type ChannelHTTPHandler struct {
	service *application.EditorService
}

// NewChannelHTTPHandler creates a new HTTP handler for channels.
func NewChannelHTTPHandler(service *application.EditorService) *ChannelHTTPHandler {
	return &ChannelHTTPHandler{service: service}
}

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// moveChannelRequest represents the JSON body for moving one channel.
type moveChannelRequest struct {
	ChannelID string `json:"channel_id"`
	GroupID   string `json:"group_id"`
	Index     int    `json:"index"`
}

// moveSelectedRequest represents the JSON body for moving a block of channels.
type moveSelectedRequest struct {
	ChannelIDs []string `json:"channel_ids"`
	GroupID    string   `json:"group_id"`
	Index      int      `json:"index"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *ChannelHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/channels")

	// POST /channels/move - move one channel into a group
	if r.Method == http.MethodPost && path == "/move" {
		h.handleMove(w, r)
		return
	}

	// POST /channels/move-selected - move a block of channels into a group
	if r.Method == http.MethodPost && path == "/move-selected" {
		h.handleMoveSelected(w, r)
		return
	}

	id, action, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	// DELETE /channels/{id} - delete a channel
	if r.Method == http.MethodDelete && action == "" {
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.DeleteChannel(r.Context(), id)))
		return
	}

	// POST /channels/{id}/toggle - flip selection
	if r.Method == http.MethodPost && action == "toggle" {
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.ToggleSelection(r.Context(), id)))
		return
	}

	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// handleMove handles POST /channels/move
func (h *ChannelHTTPHandler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := h.service.MoveChannelToGroupAtIndex(r.Context(), req.ChannelID, req.GroupID, req.Index)
	writeJSON(w, http.StatusOK, toPlaylistResponse(p))
}

// handleMoveSelected handles POST /channels/move-selected
func (h *ChannelHTTPHandler) handleMoveSelected(w http.ResponseWriter, r *http.Request) {
	var req moveSelectedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := h.service.MoveSelectedChannelsToGroupAtIndex(r.Context(), req.ChannelIDs, req.GroupID, req.Index)
	writeJSON(w, http.StatusOK, toPlaylistResponse(p))
}
