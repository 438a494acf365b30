package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alorle/m3u8-editor/internal/application"
	"github.com/alorle/m3u8-editor/internal/playlist"
	"github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

// mockPlaylistRepository is a mock implementation of driven.PlaylistRepository for testing.
type mockPlaylistRepository struct {
	saveFunc func(ctx context.Context, p playlist.Playlist) error
	loadFunc func(ctx context.Context) (playlist.Playlist, error)
	pingFunc func(ctx context.Context) error
}

func (m *mockPlaylistRepository) Save(ctx context.Context, p playlist.Playlist) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	return nil
}

func (m *mockPlaylistRepository) Load(ctx context.Context) (playlist.Playlist, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return playlist.Playlist{}, driven.ErrSnapshotNotFound
}

func (m *mockPlaylistRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// mockGuideFetcher is a mock implementation of driven.GuideFetcher for testing.
type mockGuideFetcher struct {
	fetchGuideFunc func(ctx context.Context) (schedule.Guide, error)
}

func (m *mockGuideFetcher) FetchGuide(ctx context.Context) (schedule.Guide, error) {
	if m.fetchGuideFunc != nil {
		return m.fetchGuideFunc(ctx)
	}
	return schedule.Guide{}, nil
}

// memoryGuideCache is an in-memory driven.GuideCache.
type memoryGuideCache struct {
	snapshot  *schedule.Snapshot
	deleteErr error
}

func (m *memoryGuideCache) Get(ctx context.Context) (schedule.Snapshot, error) {
	if m.snapshot == nil {
		return schedule.Snapshot{}, driven.ErrCacheMiss
	}
	return *m.snapshot, nil
}

func (m *memoryGuideCache) Set(ctx context.Context, s schedule.Snapshot) error {
	m.snapshot = &s
	return nil
}

func (m *memoryGuideCache) Delete(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.snapshot = nil
	return nil
}

type directBreaker struct{}

func (directBreaker) Execute(fn func() error) error {
	return fn()
}

type seqIDs struct {
	n int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// With seqIDs, channels get id-1..id-3 and groups News=id-4, Sports=id-5.
const sampleM3U = `#EXTM3U
#EXTINF:-1,BBC
#EXTGRP:News
http://example.com/bbc
#EXTINF:-1,CNN
#EXTGRP:News
http://example.com/cnn
#EXTINF:-1,ESPN
#EXTGRP:Sports
http://example.com/espn
`

// newTestEditor returns an editor holding sampleM3U.
func newTestEditor(t *testing.T) *application.EditorService {
	t.Helper()
	svc := application.NewEditorService(&mockPlaylistRepository{}, &seqIDs{}, newTestLogger())
	if _, err := svc.Load(context.Background(), strings.NewReader(sampleM3U)); err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	return svc
}

func newTestScheduleService(fetcher driven.GuideFetcher, cache driven.GuideCache) *application.ScheduleService {
	return application.NewScheduleService(fetcher, cache, directBreaker{}, 24*time.Hour, newTestLogger())
}

// serve runs one request through h.
func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func groupNamesOf(resp playlistResponse) []string {
	names := make([]string, len(resp.Groups))
	for i, g := range resp.Groups {
		names[i] = g.Name
	}
	return names
}

func channelNamesOf(resp playlistResponse, group string) []string {
	for _, g := range resp.Groups {
		if g.Name == group {
			names := make([]string, len(g.Channels))
			for i, ch := range g.Channels {
				names[i] = ch.Name
			}
			return names
		}
	}
	return nil
}
