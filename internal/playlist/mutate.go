package playlist

import (
	"strings"

	"github.com/alorle/m3u8-editor/internal/ordered"
)

// Unknown group or channel IDs never cause an error: the operations below
// return the receiver unchanged, since stale IDs come from benign UI races.

// AddGroup appends a new empty group with a fresh ID.
func (p Playlist) AddGroup(ids IDGenerator, name string) Playlist {
	out := p.Clone()
	out.Groups = append(out.Groups, Group{ID: ids.NewID(), Name: name, Channels: []Channel{}})
	return out
}

// DeleteGroup removes a group together with all of its channels.
func (p Playlist) DeleteGroup(id string) Playlist {
	groups, _, ok := ordered.Remove(p.Groups, id)
	if !ok {
		return p
	}
	return Playlist{Groups: groups}.Clone()
}

// DeleteChannel removes one channel from whichever group owns it.
func (p Playlist) DeleteChannel(id string) Playlist {
	if _, _, ok := p.FindChannel(id); !ok {
		return p
	}
	return p.mapChannels(func(g Group) []Channel {
		rest, _, _ := ordered.Remove(g.Channels, id)
		return rest
	})
}

// DeleteSelectedChannels removes every selected channel across all groups.
func (p Playlist) DeleteSelectedChannels() Playlist {
	return p.mapChannels(func(g Group) []Channel {
		rest := make([]Channel, 0, len(g.Channels))
		for _, ch := range g.Channels {
			if !ch.Selected {
				rest = append(rest, ch)
			}
		}
		return rest
	})
}

// ToggleSelection flips the selection flag of exactly one channel.
func (p Playlist) ToggleSelection(id string) Playlist {
	if _, _, ok := p.FindChannel(id); !ok {
		return p
	}
	return p.mapChannels(func(g Group) []Channel {
		out := append([]Channel(nil), g.Channels...)
		for i := range out {
			if out[i].ID == id {
				out[i].Selected = !out[i].Selected
			}
		}
		return out
	})
}

// SelectBySubstring selects every channel whose name contains term,
// ignoring case. Channels that do not match keep their current selection.
// An empty term matches every channel.
func (p Playlist) SelectBySubstring(term string) Playlist {
	needle := strings.ToLower(term)
	return p.mapChannels(func(g Group) []Channel {
		out := append([]Channel(nil), g.Channels...)
		for i := range out {
			if strings.Contains(strings.ToLower(out[i].Name), needle) {
				out[i].Selected = true
			}
		}
		return out
	})
}

// ClearSelection deselects every channel.
func (p Playlist) ClearSelection() Playlist {
	return p.mapChannels(func(g Group) []Channel {
		out := append([]Channel(nil), g.Channels...)
		for i := range out {
			out[i].Selected = false
		}
		return out
	})
}

// ReorderChannelWithinGroup moves channel fromID to the position held by
// toID inside one group, using the same adjacency rule as ReorderGroups.
func (p Playlist) ReorderChannelWithinGroup(groupID, fromID, toID string) Playlist {
	i := ordered.Index(p.Groups, groupID)
	if i < 0 {
		return p
	}
	channels, ok := ordered.Move(p.Groups[i].Channels, fromID, toID)
	if !ok {
		return p
	}

	out := p.Clone()
	out.Groups[i].Channels = place(channels, out.Groups[i].Name, false)
	return out
}

// MoveChannelToGroupAtIndex relocates a channel into the target group at
// index. The index is clamped against the target's length after the channel
// has been removed from wherever it was. The moved channel is deselected.
func (p Playlist) MoveChannelToGroupAtIndex(channelID, targetGroupID string, index int) Playlist {
	ch, _, found := p.FindChannel(channelID)
	if !found || !ordered.Contains(p.Groups, targetGroupID) {
		return p
	}

	out := Playlist{Groups: make([]Group, len(p.Groups))}
	for i, g := range p.Groups {
		rest, _, _ := ordered.Remove(g.Channels, channelID)
		if g.ID == targetGroupID {
			rest = ordered.Insert(rest, index, place([]Channel{ch}, g.Name, true)...)
		}
		out.Groups[i] = Group{ID: g.ID, Name: g.Name, Channels: rest}
	}
	return out
}

// MoveSelectedChannelsToGroupAtIndex moves every channel listed in ids into
// the target group as one contiguous block starting at index. The block keeps
// the channels' document order, independent of the order of ids. The index is
// clamped against the target's length after removal, and every moved channel
// is deselected.
func (p Playlist) MoveSelectedChannelsToGroupAtIndex(ids []string, targetGroupID string, index int) Playlist {
	if !ordered.Contains(p.Groups, targetGroupID) {
		return p
	}

	set := ordered.Set(ids)
	var block []Channel
	for _, g := range p.Groups {
		for _, ch := range g.Channels {
			if _, ok := set[ch.ID]; ok {
				block = append(block, ch)
			}
		}
	}

	out := Playlist{Groups: make([]Group, len(p.Groups))}
	for i, g := range p.Groups {
		rest := ordered.RemoveAll(g.Channels, set)
		if g.ID == targetGroupID {
			rest = ordered.Insert(rest, index, place(block, g.Name, true)...)
		}
		out.Groups[i] = Group{ID: g.ID, Name: g.Name, Channels: rest}
	}
	return out
}

// ReorderGroups removes group fromID and reinserts it at the former index of
// toID (minus one when moving right). Given [g1 g2 g3], moving g1 onto g3
// yields [g2 g1 g3].
func (p Playlist) ReorderGroups(fromID, toID string) Playlist {
	groups, ok := ordered.Move(p.Groups, fromID, toID)
	if !ok {
		return p
	}
	return Playlist{Groups: groups}.Clone()
}

// mapChannels rebuilds every group's channel list with fn and resyncs the
// channels' Group field.
func (p Playlist) mapChannels(fn func(Group) []Channel) Playlist {
	out := Playlist{Groups: make([]Group, len(p.Groups))}
	for i, g := range p.Groups {
		out.Groups[i] = Group{ID: g.ID, Name: g.Name, Channels: place(fn(g), g.Name, false)}
	}
	return out
}

// place returns a copy of channels assigned to the named group.
func place(channels []Channel, groupName string, deselect bool) []Channel {
	out := make([]Channel, len(channels))
	for i, ch := range channels {
		ch.Group = groupName
		if deselect {
			ch.Selected = false
		}
		out[i] = ch
	}
	return out
}
