package playlist

import "github.com/google/uuid"

// IDGenerator produces globally unique opaque identifiers for groups and
// channels. IDs are assigned once, at parse or creation time.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random (version 4) UUID strings.
type UUIDGenerator struct{}

// NewID returns a new random UUID.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
