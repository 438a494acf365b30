// Package dnd turns finished drag-and-drop gestures into playlist edits.
//
// The browser reports which item was picked up and which item it was released
// over. Items carry an explicit Kind, so the resolver never has to guess
// whether an ID names a group or a channel.
package dnd

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a drag item kind is not recognized.
var ErrUnknownKind = errors.New("unknown drag item kind")

// Kind identifies what a drag item refers to.
type Kind string

const (
	// KindGroupHandle is a group entry in the sidebar. It can be dragged and
	// dropped onto.
	KindGroupHandle Kind = "group"
	// KindGroupHeader is the header of a group section. It only accepts drops.
	KindGroupHeader Kind = "group-header"
	// KindChannel is a single channel row.
	KindChannel Kind = "channel"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindGroupHandle, KindGroupHeader, KindChannel:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// IsGroup reports whether the kind refers to a group.
func (k Kind) IsGroup() bool {
	return k == KindGroupHandle || k == KindGroupHeader
}

// Item is one end of a drag gesture.
type Item struct {
	Kind Kind
	ID   string
}
