package driver

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/m3u"
	"github.com/alorle/m3u8-editor/internal/playlist"
)

// maxImportSize bounds uploaded playlist bodies.
const maxImportSize = 64 << 20

// PlaylistHTTPHandler handles import and export of the working playlist.
type PlaylistHTTPHandler struct {
	service *application.EditorService
	logger  *slog.Logger
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.EditorService, logger *slog.Logger) *PlaylistHTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistHTTPHandler{service: service, logger: logger}
}

// channelResponse represents a channel in JSON format.
type channelResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	URL      string `json:"url"`
	TVGRec   string `json:"tvg_rec,omitempty"`
	Selected bool   `json:"selected"`
}

// groupResponse represents a group in JSON format.
type groupResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Channels []channelResponse `json:"channels"`
}

// playlistResponse represents the whole playlist in JSON format.
type playlistResponse struct {
	Groups        []groupResponse `json:"groups"`
	SelectedCount int             `json:"selected_count"`
	ChannelCount  int             `json:"channel_count"`
}

// toPlaylistResponse converts the playlist to an API response.
func toPlaylistResponse(p playlist.Playlist) playlistResponse {
	resp := playlistResponse{
		Groups:        make([]groupResponse, len(p.Groups)),
		SelectedCount: len(p.SelectedIDs()),
		ChannelCount:  p.ChannelCount(),
	}
	for i, g := range p.Groups {
		channels := make([]channelResponse, len(g.Channels))
		for j, ch := range g.Channels {
			channels[j] = channelResponse{
				ID:       ch.ID,
				Name:     ch.Name,
				Group:    ch.Group,
				URL:      ch.URL,
				TVGRec:   ch.TVGRec,
				Selected: ch.Selected,
			}
		}
		resp.Groups[i] = groupResponse{ID: g.ID, Name: g.Name, Channels: channels}
	}
	return resp
}

// ServeHTTP handles GET and PUT /playlist and GET /playlist.m3u8
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/playlist.m3u8" && r.Method == http.MethodGet:
		h.handleExport(w, r)
	case r.URL.Path == "/playlist" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, toPlaylistResponse(h.service.Current()))
	case r.URL.Path == "/playlist" && r.Method == http.MethodPut:
		h.handleImport(w, r)
	case r.URL.Path == "/playlist" || r.URL.Path == "/playlist.m3u8":
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleImport handles PUT /playlist
func (h *PlaylistHTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportSize)

	p, err := h.service.Load(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "playlist too large")
			return
		}
		if errors.Is(err, m3u.ErrUnreadable) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toPlaylistResponse(p))
}

// handleExport handles GET /playlist.m3u8
func (h *PlaylistHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		h.logger.Error("failed to export playlist", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", m3u.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="playlist.m3u8"`)
	w.WriteHeader(http.StatusOK)

	dw := newDeadlineWriter(w, exportWriteTimeout, h.logger)
	if _, err := buf.WriteTo(dw); err != nil {
		h.logger.Warn("playlist download interrupted", "bytes_written", dw.BytesWritten(), "error", err)
	}
}
