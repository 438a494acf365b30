package driven

import (
	"context"

	"github.com/alorle/m3u8-editor/internal/schedule"
)

// GuideFetcher defines the interface for downloading programme guides from external sources.
// This is a driven port that will be implemented by concrete adapters (e.g., HTTP client, file reader).
type GuideFetcher interface {
	// FetchGuide retrieves the complete guide from the configured source.
	FetchGuide(ctx context.Context) (schedule.Guide, error)
}
