package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/alorle/m3u8-editor/internal/playlist"
	port "github.com/alorle/m3u8-editor/internal/port/driven"
)

const (
	playlistsBucket = "playlists"
	currentKey      = "current"
)

// PlaylistBoltDBRepository implements the PlaylistRepository port using BoltDB.
// It keeps a single snapshot of the working playlist.
type PlaylistBoltDBRepository struct {
	db *bbolt.DB
}

// NewPlaylistBoltDBRepository creates a new BoltDB-backed playlist repository.
// It initializes the required bucket if it doesn't exist.
func NewPlaylistBoltDBRepository(db *bbolt.DB) (*PlaylistBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playlistsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PlaylistBoltDBRepository{db: db}, nil
}

// playlistDTO is used for JSON serialization.
type playlistDTO struct {
	Groups []groupDTO `json:"groups"`
}

type groupDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Channels []channelDTO `json:"channels"`
}

type channelDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	TVGRec   string `json:"tvg_rec,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

func playlistToDTO(p playlist.Playlist) playlistDTO {
	dto := playlistDTO{Groups: make([]groupDTO, len(p.Groups))}
	for i, g := range p.Groups {
		channels := make([]channelDTO, len(g.Channels))
		for j, ch := range g.Channels {
			channels[j] = channelDTO{
				ID:       ch.ID,
				Name:     ch.Name,
				URL:      ch.URL,
				TVGRec:   ch.TVGRec,
				Selected: ch.Selected,
			}
		}
		dto.Groups[i] = groupDTO{ID: g.ID, Name: g.Name, Channels: channels}
	}
	return dto
}

// dtoToPlaylist rebuilds the playlist. A channel's group label is not stored;
// it is always the name of the group holding it.
func dtoToPlaylist(dto playlistDTO) playlist.Playlist {
	groups := make([]playlist.Group, len(dto.Groups))
	for i, g := range dto.Groups {
		channels := make([]playlist.Channel, len(g.Channels))
		for j, ch := range g.Channels {
			channels[j] = playlist.Channel{
				ID:       ch.ID,
				Name:     ch.Name,
				Group:    g.Name,
				URL:      ch.URL,
				TVGRec:   ch.TVGRec,
				Selected: ch.Selected,
			}
		}
		groups[i] = playlist.Group{ID: g.ID, Name: g.Name, Channels: channels}
	}
	return playlist.Playlist{Groups: groups}
}

// Save replaces the stored snapshot.
func (r *PlaylistBoltDBRepository) Save(ctx context.Context, p playlist.Playlist) error {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(playlistToDTO(p))
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playlistsBucket))
		if bucket == nil {
			return errors.New("playlists bucket not found")
		}
		return bucket.Put([]byte(currentKey), data)
	})
}

// Load returns the stored snapshot.
func (r *PlaylistBoltDBRepository) Load(ctx context.Context) (playlist.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return playlist.Playlist{}, err
	}

	var dto playlistDTO

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playlistsBucket))
		if bucket == nil {
			return errors.New("playlists bucket not found")
		}

		data := bucket.Get([]byte(currentKey))
		if data == nil {
			return port.ErrSnapshotNotFound
		}

		return json.Unmarshal(data, &dto)
	})
	if err != nil {
		return playlist.Playlist{}, err
	}

	return dtoToPlaylist(dto), nil
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *PlaylistBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(playlistsBucket)) == nil {
			return errors.New("playlists bucket not found")
		}
		return nil
	})
}
