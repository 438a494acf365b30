// Package m3u reads and writes the M3U8 subset used by the editor:
// #EXTM3U, #EXTINF with an optional tvg-rec attribute, #EXTGRP and a bare
// stream URL line.
package m3u

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alorle/m3u8-editor/internal/playlist"
)

const (
	// ContentType is the MIME type of exported playlists.
	ContentType = "application/x-mpegURL"

	maxLineSize = 1024 * 1024

	prefixEXTINF = "#EXTINF:"
	prefixEXTGRP = "#EXTGRP:"
	prefixURL    = "http"
)

// Extensions lists the file extensions accepted for import.
var Extensions = []string{".m3u8", ".m3u"}

// ErrUnreadable is returned when the input cannot be read as text at all.
// Malformed individual lines never produce an error; they are skipped.
var ErrUnreadable = errors.New("playlist is not readable text")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns M3U8 text into a playlist.
type Decoder struct {
	ids playlist.IDGenerator
}

// NewDecoder creates a decoder that assigns IDs from ids.
func NewDecoder(ids playlist.IDGenerator) *Decoder {
	return &Decoder{ids: ids}
}

// entry accumulates the lines belonging to one channel.
type entry struct {
	channel playlist.Channel
	hasName bool
}

// Decode reads the whole of r and parses it.
func (d *Decoder) Decode(r io.Reader) (playlist.Playlist, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return playlist.Playlist{}, fmt.Errorf("%w: invalid UTF-8", ErrUnreadable)
	}

	var channels []playlist.Channel
	var cur entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, prefixEXTINF):
			info, name, ok := splitEXTINF(line)
			if !ok {
				continue
			}
			cur = entry{
				channel: playlist.Channel{
					ID:     d.ids.NewID(),
					Name:   name,
					TVGRec: tvgRec(info),
				},
				hasName: true,
			}
		case strings.HasPrefix(line, prefixEXTGRP):
			cur.channel.Group = strings.TrimSpace(strings.TrimPrefix(line, prefixEXTGRP))
		case strings.HasPrefix(line, prefixURL):
			cur.channel.URL = line
			if cur.hasName {
				channels = append(channels, cur.channel)
				cur = entry{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return playlist.Playlist{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return d.partition(channels), nil
}

// Parse is Decode over a string.
func (d *Decoder) Parse(text string) (playlist.Playlist, error) {
	return d.Decode(strings.NewReader(text))
}

// splitEXTINF splits "#EXTINF:<info>,<name>" at the first comma. The name
// must be non-empty.
func splitEXTINF(line string) (info, name string, ok bool) {
	rest := strings.TrimPrefix(line, prefixEXTINF)
	info, name, found := strings.Cut(rest, ",")
	if !found || name == "" {
		return "", "", false
	}
	return info, name, true
}

// partition groups channels by their group label, keeping the first-seen
// order of labels and the original order of channels within each label.
func (d *Decoder) partition(channels []playlist.Channel) playlist.Playlist {
	var groups []playlist.Group
	index := map[string]int{}

	for _, ch := range channels {
		name := ch.Group
		if name == "" {
			name = playlist.UngroupedName
		}
		ch.Group = name

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, playlist.Group{ID: d.ids.NewID(), Name: name})
		}
		groups[i].Channels = append(groups[i].Channels, ch)
	}

	if groups == nil {
		groups = []playlist.Group{}
	}
	return playlist.Playlist{Groups: groups}
}
