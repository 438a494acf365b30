package driver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alorle/m3u8-editor/internal/application"
)

// GroupHTTPHandler handles HTTP requests that edit groups.
type GroupHTTPHandler struct {
	service *application.EditorService
}

// NewGroupHTTPHandler creates a new HTTP handler for groups.
func NewGroupHTTPHandler(service *application.EditorService) *GroupHTTPHandler {
	return &GroupHTTPHandler{service: service}
}

// groupRequest represents the JSON body for creating a group.
type groupRequest struct {
	Name string `json:"name"`
}

// reorderRequest moves the item From onto the position of To.
type reorderRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *GroupHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/groups")

	// POST /groups - add a group
	if r.Method == http.MethodPost && path == "" {
		h.handleCreate(w, r)
		return
	}

	// POST /groups/reorder - reorder groups
	if r.Method == http.MethodPost && path == "/reorder" {
		var req reorderRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.ReorderGroups(r.Context(), req.From, req.To)))
		return
	}

	id, action, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if id == "" {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch {
	// DELETE /groups/{id} - delete a group and its channels
	case r.Method == http.MethodDelete && action == "":
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.DeleteGroup(r.Context(), id)))

	// POST /groups/{id}/sort - sort channels by name
	case r.Method == http.MethodPost && action == "sort":
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.SortGroupChannels(r.Context(), id)))

	// POST /groups/{id}/channels/reorder - reorder channels inside the group
	case r.Method == http.MethodPost && action == "channels/reorder":
		var req reorderRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p := h.service.ReorderChannelWithinGroup(r.Context(), id, req.From, req.To)
		writeJSON(w, http.StatusOK, toPlaylistResponse(p))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreate handles POST /groups
func (h *GroupHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.AddGroup(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, application.ErrEmptyGroupName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toPlaylistResponse(p))
}
