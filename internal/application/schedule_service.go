package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alorle/m3u8-editor/internal/metrics"
	"github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

// ErrRefreshInProgress is returned when a guide refresh is already running.
var ErrRefreshInProgress = errors.New("guide refresh already in progress")

// Refresh sources.
const (
	SourceCache    = "cache"
	SourceUpstream = "upstream"
)

// CircuitBreaker guards calls to an unreliable upstream.
type CircuitBreaker interface {
	Execute(fn func() error) error
}

// RefreshResult describes the guide installed by a refresh.
type RefreshResult struct {
	Source    string
	Channels  int
	FetchedAt time.Time
	ExpiresAt time.Time
}

// CacheInfo describes the stored guide snapshot.
type CacheInfo struct {
	HasCache    bool
	LastUpdated time.Time
	ExpiresAt   time.Time
}

// GuideStatus describes the guide held in memory.
type GuideStatus struct {
	Loaded     bool
	Channels   int
	FetchedAt  time.Time
	Refreshing bool
}

// ScheduleService keeps the programme guide used to annotate channels. A
// downloaded guide is cached for ttl; refreshes read the cache first unless
// forced. Only one refresh runs at a time.
type ScheduleService struct {
	fetcher driven.GuideFetcher
	cache   driven.GuideCache
	breaker CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	refreshing atomic.Bool

	mu       sync.RWMutex
	snapshot schedule.Snapshot
	loaded   bool
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(fetcher driven.GuideFetcher, cache driven.GuideCache, breaker CircuitBreaker, ttl time.Duration, logger *slog.Logger) *ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleService{
		fetcher: fetcher,
		cache:   cache,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Refresh installs a guide, from the cache when a fresh snapshot is stored and
// from upstream otherwise. force skips the cache.
func (s *ScheduleService) Refresh(ctx context.Context, force bool) (RefreshResult, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	if !force {
		if snap, ok := s.cached(ctx); ok {
			s.install(snap)
			metrics.RecordGuideRefresh(SourceCache)
			s.logger.Info("guide loaded from cache", "channels", snap.Guide.Len(), "fetched_at", snap.FetchedAt)
			return s.result(SourceCache, snap), nil
		}
	}

	start := s.now()
	var guide schedule.Guide
	err := s.breaker.Execute(func() error {
		var fetchErr error
		guide, fetchErr = s.fetcher.FetchGuide(ctx)
		return fetchErr
	})
	if err != nil {
		metrics.RecordGuideRefresh("error")
		s.logger.Error("guide refresh failed", "error", err)
		return RefreshResult{}, fmt.Errorf("refreshing guide: %w", err)
	}

	snap := schedule.Snapshot{Guide: guide, FetchedAt: s.now()}
	s.install(snap)

	if err := s.cache.Set(context.WithoutCancel(ctx), snap); err != nil {
		s.logger.Warn("failed to cache guide", "error", err)
	}

	metrics.RecordGuideRefresh(SourceUpstream)
	s.logger.Info("guide refreshed",
		"channels", guide.Len(),
		"duration", s.now().Sub(start),
	)
	return s.result(SourceUpstream, snap), nil
}

// cached returns the stored snapshot if it has not expired. An expired
// snapshot is removed.
func (s *ScheduleService) cached(ctx context.Context) (schedule.Snapshot, bool) {
	snap, err := s.cache.Get(ctx)
	if errors.Is(err, driven.ErrCacheMiss) {
		return schedule.Snapshot{}, false
	}
	if err != nil {
		s.logger.Warn("failed to read guide cache", "error", err)
		return schedule.Snapshot{}, false
	}
	if snap.Expired(s.ttl, s.now()) {
		s.logger.Info("cached guide expired", "fetched_at", snap.FetchedAt)
		if err := s.cache.Delete(ctx); err != nil {
			s.logger.Warn("failed to delete expired guide", "error", err)
		}
		return schedule.Snapshot{}, false
	}
	return snap, true
}

func (s *ScheduleService) install(snap schedule.Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.loaded = true
	s.mu.Unlock()

	metrics.SetGuideChannels(snap.Guide.Len())
}

func (s *ScheduleService) result(source string, snap schedule.Snapshot) RefreshResult {
	return RefreshResult{
		Source:    source,
		Channels:  snap.Guide.Len(),
		FetchedAt: snap.FetchedAt,
		ExpiresAt: snap.ExpiresAt(s.ttl),
	}
}

// Lookup returns the programme on air for the named channel at the given time.
func (s *ScheduleService) Lookup(name string, at time.Time) (schedule.Programme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Guide.Current(name, at)
}

// Upcoming returns the next programme for the named channel after the given time.
func (s *ScheduleService) Upcoming(name string, at time.Time) (schedule.Programme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Guide.Next(name, at)
}

// ClearCache drops the stored snapshot and the guide held in memory.
func (s *ScheduleService) ClearCache(ctx context.Context) error {
	if err := s.cache.Delete(ctx); err != nil {
		return fmt.Errorf("clearing guide cache: %w", err)
	}

	s.mu.Lock()
	s.snapshot = schedule.Snapshot{}
	s.loaded = false
	s.mu.Unlock()

	metrics.SetGuideChannels(0)
	s.logger.Info("guide cache cleared")
	return nil
}

// CacheInfo reports on the stored snapshot. Read errors are reported as an
// empty cache.
func (s *ScheduleService) CacheInfo(ctx context.Context) CacheInfo {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		if !errors.Is(err, driven.ErrCacheMiss) {
			s.logger.Warn("failed to read guide cache", "error", err)
		}
		return CacheInfo{}
	}
	return CacheInfo{
		HasCache:    true,
		LastUpdated: snap.FetchedAt,
		ExpiresAt:   snap.ExpiresAt(s.ttl),
	}
}

// Status describes the guide held in memory.
func (s *ScheduleService) Status() GuideStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GuideStatus{
		Loaded:     s.loaded,
		Channels:   s.snapshot.Guide.Len(),
		FetchedAt:  s.snapshot.FetchedAt,
		Refreshing: s.refreshing.Load(),
	}
}
