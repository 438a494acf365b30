// Package schedule models programme-guide data used to annotate channels with
// what is currently on air. The guide is optional enrichment: lookups report
// absence, never failure.
package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Domain errors for schedule data.
var (
	ErrEmptyTitle     = errors.New("programme title cannot be empty")
	ErrInvalidRange   = errors.New("programme must end after it starts")
	ErrInvalidTime    = errors.New("invalid xmltv time")
	ErrGuideNotLoaded = errors.New("programme guide not loaded")
)

// Programme is one broadcast slot.
type Programme struct {
	Title string
	Start time.Time
	End   time.Time
}

// NewProgramme validates and creates a Programme.
func NewProgramme(title string, start, end time.Time) (Programme, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Programme{}, ErrEmptyTitle
	}
	if !end.After(start) {
		return Programme{}, ErrInvalidRange
	}
	return Programme{Title: title, Start: start, End: end}, nil
}

// OnAir reports whether the programme is running at t. Start is inclusive,
// End exclusive.
func (p Programme) OnAir(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Entry is the listing for one channel name.
type Entry struct {
	Name       string
	Programmes []Programme
}

// Guide maps channel names to their programmes. Names match ignoring case and
// surrounding whitespace. A zero Guide is empty and ready to use.
type Guide struct {
	listings map[string]Entry
}

// NewGuide builds a guide from entries. Entries whose names normalize to the
// same key are merged. Programmes are kept sorted by start time.
func NewGuide(entries []Entry) Guide {
	listings := make(map[string]Entry, len(entries))
	for _, e := range entries {
		key := normalize(e.Name)
		if key == "" {
			continue
		}
		cur, ok := listings[key]
		if !ok {
			cur = Entry{Name: strings.TrimSpace(e.Name)}
		}
		cur.Programmes = append(cur.Programmes, e.Programmes...)
		listings[key] = cur
	}
	for key, e := range listings {
		slices.SortStableFunc(e.Programmes, func(a, b Programme) int {
			return a.Start.Compare(b.Start)
		})
		listings[key] = e
	}
	return Guide{listings: listings}
}

// Current returns the programme on air for the named channel at now.
func (g Guide) Current(name string, now time.Time) (Programme, bool) {
	for _, p := range g.listings[normalize(name)].Programmes {
		if p.OnAir(now) {
			return p, true
		}
	}
	return Programme{}, false
}

// Next returns the first programme starting after now.
func (g Guide) Next(name string, now time.Time) (Programme, bool) {
	for _, p := range g.listings[normalize(name)].Programmes {
		if p.Start.After(now) {
			return p, true
		}
	}
	return Programme{}, false
}

// Has reports whether the guide lists the named channel.
func (g Guide) Has(name string) bool {
	_, ok := g.listings[normalize(name)]
	return ok
}

// Len returns the number of listed channels.
func (g Guide) Len() int {
	return len(g.listings)
}

// Entries returns the listings sorted by name.
func (g Guide) Entries() []Entry {
	out := make([]Entry, 0, len(g.listings))
	for _, e := range g.listings {
		out = append(out, Entry{Name: e.Name, Programmes: slices.Clone(e.Programmes)})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Snapshot is a guide together with the moment it was downloaded.
type Snapshot struct {
	Guide     Guide
	FetchedAt time.Time
}

// ExpiresAt returns when the snapshot goes stale under ttl.
func (s Snapshot) ExpiresAt(ttl time.Duration) time.Time {
	return s.FetchedAt.Add(ttl)
}

// Expired reports whether the snapshot is older than ttl at now.
func (s Snapshot) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(s.ExpiresAt(ttl))
}

var xmltvLayouts = []string{
	"20060102150405 -0700",
	"20060102150405",
	"200601021504 -0700",
	"200601021504",
}

// ParseXMLTVTime parses an XMLTV timestamp such as "20240131183000 +0300".
// Stamps without an offset are taken as UTC.
func ParseXMLTVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range xmltvLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
