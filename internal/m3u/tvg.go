package m3u

import (
	"fmt"
	"io"
	"regexp"
)

var reTVGRec = regexp.MustCompile(`tvg-rec="([^"]+)"`)

// tvgRec extracts the tvg-rec attribute from the attribute part of an EXTINF
// line. Malformed or missing attributes yield "".
func tvgRec(info string) string {
	m := reTVGRec.FindStringSubmatch(info)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func encodeTVGRec(w io.Writer, value string) error {
	if value == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, " tvg-rec=\"%s\"", value)
	return err
}
