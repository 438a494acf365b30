package driven

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alorle/m3u8-editor/internal/schedule"
)

const (
	defaultTimeout = 60 * time.Second
	defaultURL     = "http://ru.epg.one/epg.xml.gz"
)

// ErrInvalidGuide is returned when the document has no <tv> root element.
var ErrInvalidGuide = errors.New("invalid xmltv document")

var gzipMagic = []byte{0x1f, 0x8b}

// GuideXMLTVFetcher downloads an XMLTV guide via HTTP.
// It implements the driven.GuideFetcher port.
type GuideXMLTVFetcher struct {
	url    string
	client *http.Client
}

// NewGuideXMLTVFetcher creates a new XMLTV fetcher with the given URL.
// If url is empty, it uses the default guide source.
// If client is nil, it creates a default HTTP client with a 60-second timeout.
func NewGuideXMLTVFetcher(url string, client *http.Client) *GuideXMLTVFetcher {
	if url == "" {
		url = defaultURL
	}
	if client == nil {
		client = &http.Client{
			Timeout: defaultTimeout,
		}
	}
	return &GuideXMLTVFetcher{
		url:    url,
		client: client,
	}
}

// FetchGuide retrieves and parses the guide. Gzip-compressed bodies are
// detected by their magic bytes and decompressed transparently.
// Programmes with a bad time range or without a title are skipped.
func (f *GuideXMLTVFetcher) FetchGuide(ctx context.Context) (schedule.Guide, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return schedule.Guide{}, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, application/gzip, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return schedule.Guide{}, fmt.Errorf("fetching guide: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return schedule.Guide{}, fmt.Errorf("unexpected HTTP status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := decompress(resp.Body)
	if err != nil {
		return schedule.Guide{}, err
	}

	return parseXMLTV(body)
}

func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if !bytes.Equal(magic, gzipMagic) {
		return br, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	return zr, nil
}

// parseXMLTV streams the document so large guides are never held in memory
// as a whole.
func parseXMLTV(r io.Reader) (schedule.Guide, error) {
	dec := xml.NewDecoder(r)

	var (
		sawRoot    bool
		names      = map[string][]string{}
		programmes = map[string][]schedule.Programme{}
		order      []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return schedule.Guide{}, fmt.Errorf("parsing guide XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "tv":
			sawRoot = true
		case "channel":
			var ch channelXML
			if err := dec.DecodeElement(&ch, &start); err != nil {
				return schedule.Guide{}, fmt.Errorf("parsing guide channel: %w", err)
			}
			id := strings.TrimSpace(ch.ID)
			if id == "" {
				continue
			}
			if _, seen := names[id]; !seen {
				order = append(order, id)
			}
			names[id] = append(names[id], ch.names()...)
		case "programme":
			var px programmeXML
			if err := dec.DecodeElement(&px, &start); err != nil {
				return schedule.Guide{}, fmt.Errorf("parsing guide programme: %w", err)
			}
			p, ok := px.toDomain()
			if !ok {
				continue
			}
			programmes[px.Channel] = append(programmes[px.Channel], p)
		}
	}

	if !sawRoot {
		return schedule.Guide{}, ErrInvalidGuide
	}

	var entries []schedule.Entry
	for _, id := range order {
		for _, name := range names[id] {
			entries = append(entries, schedule.Entry{Name: name, Programmes: programmes[id]})
		}
	}
	return schedule.NewGuide(entries), nil
}

// channelXML represents a channel element in the XMLTV document.
type channelXML struct {
	ID           string   `xml:"id,attr"`
	DisplayNames []string `xml:"display-name"`
}

// names returns the non-blank display names, falling back to the ID.
func (c channelXML) names() []string {
	var out []string
	for _, n := range c.DisplayNames {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(c.ID))
	}
	return out
}

// programmeXML represents a programme element in the XMLTV document.
type programmeXML struct {
	Start   string   `xml:"start,attr"`
	Stop    string   `xml:"stop,attr"`
	Channel string   `xml:"channel,attr"`
	Titles  []string `xml:"title"`
}

func (px programmeXML) toDomain() (schedule.Programme, bool) {
	if len(px.Titles) == 0 {
		return schedule.Programme{}, false
	}
	start, err := schedule.ParseXMLTVTime(px.Start)
	if err != nil {
		return schedule.Programme{}, false
	}
	stop, err := schedule.ParseXMLTVTime(px.Stop)
	if err != nil {
		return schedule.Programme{}, false
	}
	p, err := schedule.NewProgramme(px.Titles[0], start, stop)
	if err != nil {
		return schedule.Programme{}, false
	}
	return p, true
}
