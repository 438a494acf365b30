package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/alorle/m3u8-editor/internal/playlist"
	"github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

// mockPlaylistRepository is a mock implementation of driven.PlaylistRepository for testing.
type mockPlaylistRepository struct {
	saveFunc func(ctx context.Context, p playlist.Playlist) error
	loadFunc func(ctx context.Context) (playlist.Playlist, error)
	pingFunc func(ctx context.Context) error

	mu    sync.Mutex
	saved []playlist.Playlist
}

func (m *mockPlaylistRepository) Save(ctx context.Context, p playlist.Playlist) error {
	m.mu.Lock()
	m.saved = append(m.saved, p)
	m.mu.Unlock()
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

func (m *mockPlaylistRepository) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// mockGuideFetcher is a mock implementation of driven.GuideFetcher for testing.
type mockGuideFetcher struct {
	fetchGuideFunc func(ctx context.Context) (schedule.Guide, error)
	calls          int
}

func (m *mockGuideFetcher) FetchGuide(ctx context.Context) (schedule.Guide, error) {
	m.calls++
	if m.fetchGuideFunc != nil {
		return m.fetchGuideFunc(ctx)
	}
	return schedule.Guide{}, nil
}

// mockGuideCache is an in-memory driven.GuideCache with injectable failures.
type mockGuideCache struct {
	getErr    error
	setErr    error
	deleteErr error

	snapshot *schedule.Snapshot
	deletes  int
}

func (m *mockGuideCache) Get(ctx context.Context) (schedule.Snapshot, error) {
	if m.getErr != nil {
		return schedule.Snapshot{}, m.getErr
	}
	if m.snapshot == nil {
		return schedule.Snapshot{}, driven.ErrCacheMiss
	}
	return *m.snapshot, nil
}

func (m *mockGuideCache) Set(ctx context.Context, s schedule.Snapshot) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.snapshot = &s
	return nil
}

func (m *mockGuideCache) Delete(ctx context.Context) error {
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.snapshot = nil
	return nil
}

// passthroughBreaker runs every call.
type passthroughBreaker struct{}

func (passthroughBreaker) Execute(fn func() error) error {
	return fn()
}

// seqIDs hands out predictable identifiers.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
