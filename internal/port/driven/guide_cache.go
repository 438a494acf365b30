package driven

import (
	"context"
	"errors"

	"github.com/alorle/m3u8-editor/internal/schedule"
)

// ErrCacheMiss is returned by GuideCache.Get when no snapshot is stored.
var ErrCacheMiss = errors.New("guide cache miss")

// GuideCache stores the most recently downloaded guide.
type GuideCache interface {
	// Get returns the stored snapshot, or ErrCacheMiss.
	Get(ctx context.Context) (schedule.Snapshot, error)

	// Set replaces the stored snapshot.
	Set(ctx context.Context, s schedule.Snapshot) error

	// Delete removes the stored snapshot. Deleting an empty cache is not an error.
	Delete(ctx context.Context) error
}
