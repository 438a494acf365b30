package driver

import (
	"net/http"

	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/dnd"
)

// DragHTTPHandler drives the drag-and-drop gesture.
type DragHTTPHandler struct {
	service *application.EditorService
}

// NewDragHTTPHandler creates a new HTTP handler for drag gestures.
func NewDragHTTPHandler(service *application.EditorService) *DragHTTPHandler {
	return &DragHTTPHandler{service: service}
}

// itemPayload identifies a draggable item or drop target.
type itemPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type dragEndRequest struct {
	Over *itemPayload `json:"over"`
}

type dragStateResponse struct {
	Active *itemPayload `json:"active"`
}

type intentResponse struct {
	Op         string   `json:"op"`
	GroupID    string   `json:"group_id,omitempty"`
	FromID     string   `json:"from_id,omitempty"`
	ToID       string   `json:"to_id,omitempty"`
	ChannelIDs []string `json:"channel_ids,omitempty"`
	Index      int      `json:"index"`
}

type dragEndResponse struct {
	Intent   intentResponse   `json:"intent"`
	Playlist playlistResponse `json:"playlist"`
}

func (p itemPayload) toItem() (dnd.Item, error) {
	kind, err := dnd.ParseKind(p.Kind)
	if err != nil {
		return dnd.Item{}, err
	}
	return dnd.Item{Kind: kind, ID: p.ID}, nil
}

// ServeHTTP routes /drag, /drag/start, /drag/end and /drag/cancel
func (h *DragHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/drag" && r.Method == http.MethodGet:
		h.writeState(w)

	// POST /drag/start - pick up an item
	case r.URL.Path == "/drag/start" && r.Method == http.MethodPost:
		var req itemPayload
		if !decodeJSON(w, r, &req) {
			return
		}
		item, err := req.toItem()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.service.StartDrag(item)
		h.writeState(w)

	// POST /drag/end - drop the item over a target, or nowhere
	case r.URL.Path == "/drag/end" && r.Method == http.MethodPost:
		h.handleEnd(w, r)

	// POST /drag/cancel - abandon the gesture
	case r.URL.Path == "/drag/cancel" && r.Method == http.MethodPost:
		h.service.CancelDrag()
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *DragHTTPHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req dragEndRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var over *dnd.Item
	if req.Over != nil {
		item, err := req.Over.toItem()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		over = &item
	}

	intent, p := h.service.EndDrag(r.Context(), over)
	writeJSON(w, http.StatusOK, dragEndResponse{
		Intent: intentResponse{
			Op:         string(intent.Op),
			GroupID:    intent.GroupID,
			FromID:     intent.FromID,
			ToID:       intent.ToID,
			ChannelIDs: intent.ChannelIDs,
			Index:      intent.Index,
		},
		Playlist: toPlaylistResponse(p),
	})
}

func (h *DragHTTPHandler) writeState(w http.ResponseWriter) {
	var resp dragStateResponse
	if item, ok := h.service.ActiveDrag(); ok {
		resp.Active = &itemPayload{Kind: string(item.Kind), ID: item.ID}
	}
	writeJSON(w, http.StatusOK, resp)
}
