package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alorle/m3u8-editor/internal/circuitbreaker"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

var guideNow = time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)

func testGuide(t *testing.T, title string) schedule.Guide {
	t.Helper()
	p, err := schedule.NewProgramme(title, guideNow.Add(-30*time.Minute), guideNow.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("NewProgramme() unexpected error = %v", err)
	}
	next, err := schedule.NewProgramme("Later", guideNow.Add(30*time.Minute), guideNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewProgramme() unexpected error = %v", err)
	}
	return schedule.NewGuide([]schedule.Entry{{Name: "Первый канал", Programmes: []schedule.Programme{p, next}}})
}

func newTestScheduleService(fetcher *mockGuideFetcher, cache *mockGuideCache) *ScheduleService {
	svc := NewScheduleService(fetcher, cache, passthroughBreaker{}, 24*time.Hour, newTestLogger())
	svc.now = func() time.Time { return guideNow }
	return svc
}

func TestScheduleService_Refresh(t *testing.T) {
	t.Run("fetches and caches on miss", func(t *testing.T) {
		fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
			return testGuide(t, "Новости"), nil
		}}
		cache := &mockGuideCache{}
		svc := newTestScheduleService(fetcher, cache)

		res, err := svc.Refresh(context.Background(), false)
		if err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}
		if res.Source != SourceUpstream || res.Channels != 1 {
			t.Errorf("Refresh() = %+v", res)
		}
		if !res.ExpiresAt.Equal(guideNow.Add(24 * time.Hour)) {
			t.Errorf("ExpiresAt = %v", res.ExpiresAt)
		}
		if cache.snapshot == nil || !cache.snapshot.FetchedAt.Equal(guideNow) {
			t.Errorf("snapshot not cached: %+v", cache.snapshot)
		}

		p, ok := svc.Lookup("первый канал", guideNow)
		if !ok || p.Title != "Новости" {
			t.Errorf("Lookup() = %q, %v", p.Title, ok)
		}
		if next, ok := svc.Upcoming("Первый канал", guideNow); !ok || next.Title != "Later" {
			t.Errorf("Upcoming() = %q, %v", next.Title, ok)
		}
	})

	t.Run("uses fresh cache", func(t *testing.T) {
		fetcher := &mockGuideFetcher{}
		cache := &mockGuideCache{snapshot: &schedule.Snapshot{
			Guide:     testGuide(t, "Из кеша"),
			FetchedAt: guideNow.Add(-time.Hour),
		}}
		svc := newTestScheduleService(fetcher, cache)

		res, err := svc.Refresh(context.Background(), false)
		if err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}
		if res.Source != SourceCache {
			t.Errorf("Source = %q, want cache", res.Source)
		}
		if fetcher.calls != 0 {
			t.Errorf("fetcher called %d times, want 0", fetcher.calls)
		}
		if p, ok := svc.Lookup("Первый канал", guideNow); !ok || p.Title != "Из кеша" {
			t.Errorf("Lookup() = %q, %v", p.Title, ok)
		}
	})

	t.Run("expired cache is deleted and refetched", func(t *testing.T) {
		fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
			return testGuide(t, "Свежий"), nil
		}}
		cache := &mockGuideCache{snapshot: &schedule.Snapshot{
			Guide:     testGuide(t, "Старый"),
			FetchedAt: guideNow.Add(-25 * time.Hour),
		}}
		svc := newTestScheduleService(fetcher, cache)

		res, err := svc.Refresh(context.Background(), false)
		if err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}
		if res.Source != SourceUpstream || fetcher.calls != 1 || cache.deletes != 1 {
			t.Errorf("Refresh() = %+v, calls = %d, deletes = %d", res, fetcher.calls, cache.deletes)
		}
	})

	t.Run("force skips cache", func(t *testing.T) {
		fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
			return testGuide(t, "Свежий"), nil
		}}
		cache := &mockGuideCache{snapshot: &schedule.Snapshot{
			Guide:     testGuide(t, "Из кеша"),
			FetchedAt: guideNow,
		}}
		svc := newTestScheduleService(fetcher, cache)

		if _, err := svc.Refresh(context.Background(), true); err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}
		if fetcher.calls != 1 {
			t.Errorf("fetcher called %d times, want 1", fetcher.calls)
		}
	})

	t.Run("cache write failure still installs guide", func(t *testing.T) {
		fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
			return testGuide(t, "Новости"), nil
		}}
		cache := &mockGuideCache{setErr: errors.New("redis down"), getErr: errors.New("redis down")}
		svc := newTestScheduleService(fetcher, cache)

		if _, err := svc.Refresh(context.Background(), false); err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}
		if !svc.Status().Loaded {
			t.Error("guide not loaded")
		}
	})

	t.Run("fetch failure keeps previous guide", func(t *testing.T) {
		fetchErr := errors.New("upstream unavailable")
		fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
			return testGuide(t, "Первый"), nil
		}}
		svc := newTestScheduleService(fetcher, &mockGuideCache{})
		if _, err := svc.Refresh(context.Background(), true); err != nil {
			t.Fatalf("Refresh() unexpected error = %v", err)
		}

		fetcher.fetchGuideFunc = func(ctx context.Context) (schedule.Guide, error) {
			return schedule.Guide{}, fetchErr
		}
		_, err := svc.Refresh(context.Background(), true)
		if !errors.Is(err, fetchErr) {
			t.Errorf("Refresh() error = %v, want %v", err, fetchErr)
		}
		if p, ok := svc.Lookup("Первый канал", guideNow); !ok || p.Title != "Первый" {
			t.Errorf("Lookup() = %q, %v", p.Title, ok)
		}
	})
}

func TestScheduleService_RefreshInProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
		close(started)
		<-release
		return schedule.Guide{}, nil
	}}
	svc := newTestScheduleService(fetcher, &mockGuideCache{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), true)
		done <- err
	}()
	<-started

	if !svc.Status().Refreshing {
		t.Error("Status().Refreshing = false during refresh")
	}
	if _, err := svc.Refresh(context.Background(), true); !errors.Is(err, ErrRefreshInProgress) {
		t.Errorf("concurrent Refresh() error = %v, want ErrRefreshInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh() unexpected error = %v", err)
	}
	if svc.Status().Refreshing {
		t.Error("Status().Refreshing = true after refresh")
	}
}

func TestScheduleService_BreakerOpen(t *testing.T) {
	fetcher := &mockGuideFetcher{fetchGuideFunc: func(ctx context.Context) (schedule.Guide, error) {
		return schedule.Guide{}, errors.New("timeout")
	}}
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "guide-test",
		FailureThreshold: 1,
		Timeout:          time.Hour,
		Logger:           newTestLogger(),
	})
	svc := NewScheduleService(fetcher, &mockGuideCache{}, breaker, time.Hour, newTestLogger())

	if _, err := svc.Refresh(context.Background(), true); err == nil {
		t.Fatal("first Refresh() error = nil")
	}
	_, err := svc.Refresh(context.Background(), true)
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("second Refresh() error = %v, want ErrCircuitOpen", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}

func TestScheduleService_CacheInfoAndClear(t *testing.T) {
	cache := &mockGuideCache{snapshot: &schedule.Snapshot{
		Guide:     testGuide(t, "Новости"),
		FetchedAt: guideNow,
	}}
	svc := newTestScheduleService(&mockGuideFetcher{}, cache)
	if _, err := svc.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() unexpected error = %v", err)
	}

	info := svc.CacheInfo(context.Background())
	if !info.HasCache || !info.LastUpdated.Equal(guideNow) || !info.ExpiresAt.Equal(guideNow.Add(24*time.Hour)) {
		t.Errorf("CacheInfo() = %+v", info)
	}

	if err := svc.ClearCache(context.Background()); err != nil {
		t.Fatalf("ClearCache() unexpected error = %v", err)
	}
	if info := svc.CacheInfo(context.Background()); info.HasCache {
		t.Errorf("CacheInfo() after clear = %+v", info)
	}
	if svc.Status().Loaded {
		t.Error("guide still loaded after ClearCache")
	}
	if _, ok := svc.Lookup("Первый канал", guideNow); ok {
		t.Error("Lookup() found programme after ClearCache")
	}

	cache.deleteErr = errors.New("read-only")
	if err := svc.ClearCache(context.Background()); err == nil {
		t.Error("ClearCache() error = nil, want error")
	}
}

func TestScheduleService_CacheInfoReadError(t *testing.T) {
	svc := newTestScheduleService(&mockGuideFetcher{}, &mockGuideCache{getErr: errors.New("boom")})
	if info := svc.CacheInfo(context.Background()); info.HasCache {
		t.Errorf("CacheInfo() = %+v, want empty", info)
	}
}
