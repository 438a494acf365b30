package driven

import (
	"encoding/json"
	"time"

	"github.com/alorle/m3u8-editor/internal/schedule"
)

// snapshotDTO is the JSON form of a guide snapshot shared by the guide caches.
type snapshotDTO struct {
	FetchedAt time.Time  `json:"fetched_at"`
	Channels  []entryDTO `json:"channels"`
}

type entryDTO struct {
	Name       string         `json:"name"`
	Programmes []programmeDTO `json:"programmes"`
}

type programmeDTO struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func encodeSnapshot(s schedule.Snapshot) ([]byte, error) {
	entries := s.Guide.Entries()
	dto := snapshotDTO{
		FetchedAt: s.FetchedAt,
		Channels:  make([]entryDTO, len(entries)),
	}
	for i, e := range entries {
		programmes := make([]programmeDTO, len(e.Programmes))
		for j, p := range e.Programmes {
			programmes[j] = programmeDTO{Title: p.Title, Start: p.Start, End: p.End}
		}
		dto.Channels[i] = entryDTO{Name: e.Name, Programmes: programmes}
	}
	return json.Marshal(dto)
}

func decodeSnapshot(data []byte) (schedule.Snapshot, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return schedule.Snapshot{}, err
	}

	entries := make([]schedule.Entry, len(dto.Channels))
	for i, e := range dto.Channels {
		programmes := make([]schedule.Programme, len(e.Programmes))
		for j, p := range e.Programmes {
			programmes[j] = schedule.Programme{Title: p.Title, Start: p.Start, End: p.End}
		}
		entries[i] = schedule.Entry{Name: e.Name, Programmes: programmes}
	}

	return schedule.Snapshot{
		Guide:     schedule.NewGuide(entries),
		FetchedAt: dto.FetchedAt,
	}, nil
}
