package dnd

import "github.com/alorle/m3u8-editor/internal/playlist"

// Op names the playlist operation an intent dispatches to.
type Op string

const (
	OpNone           Op = "none"
	OpReorderGroups  Op = "reorder_groups"
	OpReorderChannel Op = "reorder_channel"
	OpMoveChannel    Op = "move_channel"
	OpMoveSelected   Op = "move_selected"
)

// Intent is the single edit a drag gesture resolves to.
//
// Field use depends on Op:
//
//	OpReorderGroups   FromID, ToID are group IDs
//	OpReorderChannel  GroupID; FromID, ToID are channel IDs
//	OpMoveChannel     FromID is the channel; GroupID, Index the destination
//	OpMoveSelected    ChannelIDs; GroupID, Index the destination
type Intent struct {
	Op         Op
	GroupID    string
	FromID     string
	ToID       string
	ChannelIDs []string
	Index      int
}

// None is the intent that changes nothing.
var None = Intent{Op: OpNone}

// Apply performs the intent on p.
func (i Intent) Apply(p playlist.Playlist) playlist.Playlist {
	switch i.Op {
	case OpReorderGroups:
		return p.ReorderGroups(i.FromID, i.ToID)
	case OpReorderChannel:
		return p.ReorderChannelWithinGroup(i.GroupID, i.FromID, i.ToID)
	case OpMoveChannel:
		return p.MoveChannelToGroupAtIndex(i.FromID, i.GroupID, i.Index)
	case OpMoveSelected:
		return p.MoveSelectedChannelsToGroupAtIndex(i.ChannelIDs, i.GroupID, i.Index)
	default:
		return p
	}
}
