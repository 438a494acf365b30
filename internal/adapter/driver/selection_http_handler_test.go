package driver

import (
	"net/http"
	"slices"
	"testing"
)

func TestSelectionHTTPHandler(t *testing.T) {
	handler := NewSelectionHTTPHandler(newTestEditor(t))

	resp := decodePlaylist(t, serve(handler, http.MethodPost, "/selection", `{"term":"n"}`))
	if resp.SelectedCount != 2 {
		t.Errorf("selected_count = %d, want 2", resp.SelectedCount)
	}

	resp = decodePlaylist(t, serve(handler, http.MethodDelete, "/selection", ""))
	if resp.SelectedCount != 0 {
		t.Errorf("selected_count after clear = %d, want 0", resp.SelectedCount)
	}

	serve(handler, http.MethodPost, "/selection", `{"term":"cnn"}`)
	resp = decodePlaylist(t, serve(handler, http.MethodDelete, "/selection/channels", ""))
	if got := channelNamesOf(resp, "News"); !slices.Equal(got, []string{"BBC"}) {
		t.Errorf("News channels = %v, want [BBC]", got)
	}
	if resp.ChannelCount != 2 {
		t.Errorf("channel_count = %d, want 2", resp.ChannelCount)
	}

	if rec := serve(handler, http.MethodGet, "/selection", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}
