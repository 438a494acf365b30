package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/alorle/m3u8-editor/internal/dnd"
	"github.com/alorle/m3u8-editor/internal/m3u"
	"github.com/alorle/m3u8-editor/internal/metrics"
	"github.com/alorle/m3u8-editor/internal/playlist"
	"github.com/alorle/m3u8-editor/internal/port/driven"
)

// ErrEmptyGroupName is returned when a group name is blank.
var ErrEmptyGroupName = errors.New("group name cannot be empty")

// Operation names used for metrics and logs.
const (
	opImport            = "import"
	opAddGroup          = "add_group"
	opDeleteGroup       = "delete_group"
	opDeleteChannel     = "delete_channel"
	opDeleteSelected    = "delete_selected"
	opToggleSelection   = "toggle_selection"
	opSelectBySubstring = "select_by_substring"
	opClearSelection    = "clear_selection"
	opSortGroup         = "sort_group"
	opReorderChannel    = "reorder_channel"
	opMoveChannel       = "move_channel"
	opMoveSelected      = "move_selected"
	opReorderGroups     = "reorder_groups"
	dragOpPrefix        = "drag_"
)

// EditorService owns the working playlist and applies edits to it one at a
// time, in the order they arrive. After every edit the new playlist is saved
// to the repository; a failed save is logged and never undoes the edit.
type EditorService struct {
	repo   driven.PlaylistRepository
	ids    playlist.IDGenerator
	logger *slog.Logger

	mu      sync.Mutex
	current playlist.Playlist
	drag    dnd.Resolver
}

// NewEditorService creates an EditorService holding an empty playlist.
func NewEditorService(repo driven.PlaylistRepository, ids playlist.IDGenerator, logger *slog.Logger) *EditorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditorService{
		repo:    repo,
		ids:     ids,
		logger:  logger,
		current: playlist.Playlist{Groups: []playlist.Group{}},
	}
}

// Current returns the working playlist.
func (s *EditorService) Current() playlist.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Restore replaces the working playlist with the saved snapshot, if any.
func (s *EditorService) Restore(ctx context.Context) error {
	p, err := s.repo.Load(ctx)
	if errors.Is(err, driven.ErrSnapshotNotFound) {
		s.logger.Info("no saved playlist, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring playlist: %w", err)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	metrics.SetPlaylistSize(len(p.Groups), p.ChannelCount())
	s.logger.Info("playlist restored", "groups", len(p.Groups), "channels", p.ChannelCount())
	return nil
}

// Load parses M3U8 text from r and makes it the working playlist. On a parse
// failure the previous playlist is kept and the error wraps m3u.ErrUnreadable.
func (s *EditorService) Load(ctx context.Context, r io.Reader) (playlist.Playlist, error) {
	p, err := m3u.NewDecoder(s.ids).Decode(r)
	if err != nil {
		metrics.RecordImport("error")
		s.logger.Warn("playlist import failed", "error", err)
		return playlist.Playlist{}, err
	}
	metrics.RecordImport("ok")

	return s.apply(ctx, opImport, func(playlist.Playlist) playlist.Playlist {
		return p
	}), nil
}

// Export writes the working playlist as M3U8 text.
func (s *EditorService) Export(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m3u.NewEncoder(w).Encode(s.Current())
}

// AddGroup appends an empty group. The name is trimmed and must not be blank.
func (s *EditorService) AddGroup(ctx context.Context, name string) (playlist.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return playlist.Playlist{}, ErrEmptyGroupName
	}
	return s.apply(ctx, opAddGroup, func(p playlist.Playlist) playlist.Playlist {
		return p.AddGroup(s.ids, name)
	}), nil
}

// DeleteGroup removes a group and its channels.
func (s *EditorService) DeleteGroup(ctx context.Context, id string) playlist.Playlist {
	return s.apply(ctx, opDeleteGroup, func(p playlist.Playlist) playlist.Playlist {
		return p.DeleteGroup(id)
	})
}

// DeleteChannel removes one channel.
func (s *EditorService) DeleteChannel(ctx context.Context, id string) playlist.Playlist {
	return s.apply(ctx, opDeleteChannel, func(p playlist.Playlist) playlist.Playlist {
		return p.DeleteChannel(id)
	})
}

// DeleteSelectedChannels removes every selected channel.
func (s *EditorService) DeleteSelectedChannels(ctx context.Context) playlist.Playlist {
	return s.apply(ctx, opDeleteSelected, playlist.Playlist.DeleteSelectedChannels)
}

// ToggleSelection flips the selection of one channel.
func (s *EditorService) ToggleSelection(ctx context.Context, id string) playlist.Playlist {
	return s.apply(ctx, opToggleSelection, func(p playlist.Playlist) playlist.Playlist {
		return p.ToggleSelection(id)
	})
}

// SelectBySubstring adds every channel whose name contains term to the selection.
func (s *EditorService) SelectBySubstring(ctx context.Context, term string) playlist.Playlist {
	return s.apply(ctx, opSelectBySubstring, func(p playlist.Playlist) playlist.Playlist {
		return p.SelectBySubstring(term)
	})
}

// ClearSelection deselects every channel.
func (s *EditorService) ClearSelection(ctx context.Context) playlist.Playlist {
	return s.apply(ctx, opClearSelection, playlist.Playlist.ClearSelection)
}

// SortGroupChannels sorts one group's channels by name.
func (s *EditorService) SortGroupChannels(ctx context.Context, groupID string) playlist.Playlist {
	return s.apply(ctx, opSortGroup, func(p playlist.Playlist) playlist.Playlist {
		return p.SortGroupChannels(groupID)
	})
}

// ReorderChannelWithinGroup moves a channel onto another channel's position.
func (s *EditorService) ReorderChannelWithinGroup(ctx context.Context, groupID, fromID, toID string) playlist.Playlist {
	return s.apply(ctx, opReorderChannel, func(p playlist.Playlist) playlist.Playlist {
		return p.ReorderChannelWithinGroup(groupID, fromID, toID)
	})
}

// MoveChannelToGroupAtIndex moves one channel into a group at index.
func (s *EditorService) MoveChannelToGroupAtIndex(ctx context.Context, channelID, groupID string, index int) playlist.Playlist {
	return s.apply(ctx, opMoveChannel, func(p playlist.Playlist) playlist.Playlist {
		return p.MoveChannelToGroupAtIndex(channelID, groupID, index)
	})
}

// MoveSelectedChannelsToGroupAtIndex moves channels as one block into a group at index.
func (s *EditorService) MoveSelectedChannelsToGroupAtIndex(ctx context.Context, channelIDs []string, groupID string, index int) playlist.Playlist {
	return s.apply(ctx, opMoveSelected, func(p playlist.Playlist) playlist.Playlist {
		return p.MoveSelectedChannelsToGroupAtIndex(channelIDs, groupID, index)
	})
}

// ReorderGroups moves a group onto another group's position.
func (s *EditorService) ReorderGroups(ctx context.Context, fromID, toID string) playlist.Playlist {
	return s.apply(ctx, opReorderGroups, func(p playlist.Playlist) playlist.Playlist {
		return p.ReorderGroups(fromID, toID)
	})
}

// StartDrag records the item picked up by the user.
func (s *EditorService) StartDrag(item dnd.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Start(item)
}

// ActiveDrag returns the item currently being dragged.
func (s *EditorService) ActiveDrag() (dnd.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Active()
}

// CancelDrag abandons the current drag.
func (s *EditorService) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
}

// EndDrag finishes the current drag over the given target (nil for none)
// and applies the resulting edit.
func (s *EditorService) EndDrag(ctx context.Context, over *dnd.Item) (dnd.Intent, playlist.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent := s.drag.End(s.current, over)
	metrics.RecordDragIntent(string(intent.Op))
	if intent.Op == dnd.OpNone {
		return intent, s.current
	}

	s.logger.Debug("drag resolved", "op", intent.Op, "group_id", intent.GroupID, "from", intent.FromID, "to", intent.ToID)
	return intent, s.commit(ctx, dragOpPrefix+string(intent.Op), intent.Apply(s.current))
}

func (s *EditorService) apply(ctx context.Context, op string, fn func(playlist.Playlist) playlist.Playlist) playlist.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, op, fn(s.current))
}

// commit installs next as the working playlist and saves it.
// Must be called with lock held
func (s *EditorService) commit(ctx context.Context, op string, next playlist.Playlist) playlist.Playlist {
	s.current = next

	metrics.RecordMutation(op)
	metrics.SetPlaylistSize(len(next.Groups), next.ChannelCount())

	// The edit stands even if the client has gone away.
	if err := s.repo.Save(context.WithoutCancel(ctx), next); err != nil {
		metrics.RecordSnapshotSaveFailure()
		s.logger.Error("failed to save playlist snapshot", "operation", op, "error", err)
	}

	return next
}
