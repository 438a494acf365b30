package playlist

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortLanguage is the collation used when sorting channel names.
var SortLanguage = language.Russian

// SortGroupChannels orders one group's channels by name, ascending, using
// Russian collation. Channels with equal names keep their relative order.
func (p Playlist) SortGroupChannels(groupID string) Playlist {
	out := p.Clone()
	for i, g := range out.Groups {
		if g.ID != groupID {
			continue
		}
		// A Collator is not safe for concurrent use; build one per call.
		c := collate.New(SortLanguage)
		slices.SortStableFunc(out.Groups[i].Channels, func(a, b Channel) int {
			return c.CompareString(a.Name, b.Name)
		})
		out.Groups[i].Channels = place(out.Groups[i].Channels, g.Name, false)
		return out
	}
	return p
}
