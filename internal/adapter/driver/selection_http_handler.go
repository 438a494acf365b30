package driver

import (
	"net/http"

	"github.com/alorle/m3u8-editor/internal/application"
)

// SelectionHTTPHandler handles HTTP requests on the channel selection.
type SelectionHTTPHandler struct {
	service *application.EditorService
}

// NewSelectionHTTPHandler creates a new HTTP handler for the selection.
func NewSelectionHTTPHandler(service *application.EditorService) *SelectionHTTPHandler {
	return &SelectionHTTPHandler{service: service}
}

// selectRequest represents the JSON body for a substring selection.
type selectRequest struct {
	Term string `json:"term"`
}

// ServeHTTP handles /selection and /selection/channels
func (h *SelectionHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	// POST /selection - select channels whose name contains term
	case r.URL.Path == "/selection" && r.Method == http.MethodPost:
		var req selectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.SelectBySubstring(r.Context(), req.Term)))

	// DELETE /selection - clear the selection
	case r.URL.Path == "/selection" && r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.ClearSelection(r.Context())))

	// DELETE /selection/channels - delete every selected channel
	case r.URL.Path == "/selection/channels" && r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.DeleteSelectedChannels(r.Context())))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
