package driven

import (
	"context"
	"errors"

	"github.com/alorle/m3u8-editor/internal/playlist"
)

// ErrSnapshotNotFound is returned by PlaylistRepository.Load when nothing has
// been saved yet.
var ErrSnapshotNotFound = errors.New("playlist snapshot not found")

// PlaylistRepository defines the interface for persisting the working playlist.
// This is a driven port that will be implemented by concrete adapters (e.g., BoltDB).
type PlaylistRepository interface {
	// Save replaces the stored snapshot with p.
	Save(ctx context.Context, p playlist.Playlist) error

	// Load returns the stored snapshot. Returns ErrSnapshotNotFound if nothing
	// has been saved.
	Load(ctx context.Context) (playlist.Playlist, error)

	// Ping checks if the repository (database) is accessible and operational.
	Ping(ctx context.Context) error
}
