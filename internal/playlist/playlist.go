// Package playlist holds the editor's domain model: a playlist is an ordered
// list of groups, and a group is an ordered list of channels.
//
// Values are treated as immutable. Every operation in this package returns a
// new Playlist that shares no mutable slices with its receiver, so a caller
// holding an older value never observes later edits.
package playlist

// UngroupedName is the label given to channels that carry no group.
const UngroupedName = "Без группы"

// Channel is one playable stream entry.
type Channel struct {
	ID   string
	Name string
	// Group mirrors the Name of the owning Group. Every operation that places
	// a channel into a group rewrites it.
	Group    string
	URL      string
	TVGRec   string
	Selected bool
}

// Key returns the channel ID.
func (c Channel) Key() string {
	return c.ID
}

// Group is a named, ordered bucket of channels. Names are not unique.
type Group struct {
	ID       string
	Name     string
	Channels []Channel
}

// Key returns the group ID.
func (g Group) Key() string {
	return g.ID
}

// Playlist is the unit of load and save.
type Playlist struct {
	Groups []Group
}

// Clone returns a deep copy of p.
func (p Playlist) Clone() Playlist {
	groups := make([]Group, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = Group{
			ID:       g.ID,
			Name:     g.Name,
			Channels: append([]Channel(nil), g.Channels...),
		}
	}
	return Playlist{Groups: groups}
}

// FindGroup returns the group with the given ID.
func (p Playlist) FindGroup(id string) (Group, bool) {
	for _, g := range p.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// FindChannel returns the channel with the given ID and the ID of its group.
func (p Playlist) FindChannel(id string) (Channel, string, bool) {
	for _, g := range p.Groups {
		for _, ch := range g.Channels {
			if ch.ID == id {
				return ch, g.ID, true
			}
		}
	}
	return Channel{}, "", false
}

// SelectedIDs returns the IDs of selected channels in document order.
func (p Playlist) SelectedIDs() []string {
	var ids []string
	for _, g := range p.Groups {
		for _, ch := range g.Channels {
			if ch.Selected {
				ids = append(ids, ch.ID)
			}
		}
	}
	return ids
}

// ChannelIDs returns every channel ID in document order.
func (p Playlist) ChannelIDs() []string {
	ids := make([]string, 0, p.ChannelCount())
	for _, g := range p.Groups {
		for _, ch := range g.Channels {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// ChannelCount returns the number of channels across all groups.
func (p Playlist) ChannelCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Channels)
	}
	return n
}
