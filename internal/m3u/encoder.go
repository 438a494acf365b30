package m3u

import (
	"fmt"
	"io"
	"strings"

	"github.com/alorle/m3u8-editor/internal/playlist"
)

// Encoder writes playlists as M3U8 text. Every channel is written as three
// lines: EXTINF (duration always 0), EXTGRP with the owning group's name, and
// the URL.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the header followed by every channel in document order.
func (e *Encoder) Encode(p playlist.Playlist) error {
	if _, err := fmt.Fprint(e.w, "#EXTM3U\n"); err != nil {
		return err
	}

	for _, g := range p.Groups {
		for _, ch := range g.Channels {
			if err := e.encodeChannel(g.Name, ch); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Encoder) encodeChannel(group string, ch playlist.Channel) error {
	if _, err := fmt.Fprint(e.w, prefixEXTINF+"0"); err != nil {
		return err
	}

	if err := encodeTVGRec(e.w, ch.TVGRec); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(e.w, ",%s\n%s%s\n%s\n", ch.Name, prefixEXTGRP, group, ch.URL); err != nil {
		return err
	}

	return nil
}

// Generate returns p encoded as a string.
func Generate(p playlist.Playlist) string {
	var b strings.Builder
	// strings.Builder never returns a write error
	_ = NewEncoder(&b).Encode(p)
	return b.String()
}
