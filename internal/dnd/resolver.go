package dnd

import (
	"github.com/alorle/m3u8-editor/internal/ordered"
	"github.com/alorle/m3u8-editor/internal/playlist"
)

// Resolver tracks one drag gesture at a time: idle, then dragging an item,
// then idle again once the gesture ends or is cancelled.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	active   Item
	dragging bool
}

// Start records the picked-up item, replacing any gesture in progress.
func (r *Resolver) Start(item Item) {
	r.active = item
	r.dragging = true
}

// Active returns the item being dragged, if any.
func (r *Resolver) Active() (Item, bool) {
	return r.active, r.dragging
}

// Cancel abandons the current gesture.
func (r *Resolver) Cancel() {
	r.active = Item{}
	r.dragging = false
}

// End finishes the gesture and resolves it against p. A nil over means the
// item was released outside any drop target. The resolver is idle afterwards.
func (r *Resolver) End(p playlist.Playlist, over *Item) Intent {
	source, ok := r.Active()
	r.Cancel()
	if !ok || over == nil {
		return None
	}
	return Resolve(p, source, *over)
}

// Resolve classifies a source and destination pair into one intent.
// Targets that no longer exist resolve to None.
func Resolve(p playlist.Playlist, source, over Item) Intent {
	switch source.Kind {
	case KindGroupHandle:
		return resolveGroup(source, over)
	case KindChannel:
		return resolveChannel(p, source, over)
	default:
		return None
	}
}

// Groups may only be reordered against other sidebar entries.
func resolveGroup(source, over Item) Intent {
	if over.Kind != KindGroupHandle || over.ID == source.ID {
		return None
	}
	return Intent{Op: OpReorderGroups, FromID: source.ID, ToID: over.ID}
}

func resolveChannel(p playlist.Playlist, source, over Item) Intent {
	active, sourceGroupID, ok := p.FindChannel(source.ID)
	if !ok {
		return None
	}

	selected := p.SelectedIDs()
	multi := active.Selected && len(selected) > 1

	if over.Kind.IsGroup() {
		target, ok := p.FindGroup(over.ID)
		if !ok {
			return None
		}
		end := len(ordered.RemoveAll(target.Channels, ordered.Set(selected)))
		return move(source.ID, selected, multi, target.ID, end)
	}

	if over.Kind != KindChannel {
		return None
	}
	dest, targetGroupID, ok := p.FindChannel(over.ID)
	if !ok {
		return None
	}
	if multi && dest.Selected {
		return None
	}
	if !multi && sourceGroupID == targetGroupID {
		return Intent{Op: OpReorderChannel, GroupID: targetGroupID, FromID: source.ID, ToID: over.ID}
	}

	target, _ := p.FindGroup(targetGroupID)
	return move(source.ID, selected, multi, targetGroupID, ordered.Index(target.Channels, over.ID))
}

func move(channelID string, selected []string, multi bool, groupID string, index int) Intent {
	if multi {
		return Intent{Op: OpMoveSelected, ChannelIDs: selected, GroupID: groupID, Index: index}
	}
	return Intent{Op: OpMoveChannel, FromID: channelID, GroupID: groupID, Index: index}
}
