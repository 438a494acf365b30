package driven

import (
	port "github.com/alorle/m3u8-editor/internal/port/driven"
)

// Compile-time check that GuideXMLTVFetcher implements GuideFetcher interface
var _ port.GuideFetcher = (*GuideXMLTVFetcher)(nil)

// Compile-time checks for the persistence adapters
var (
	_ port.PlaylistRepository = (*PlaylistBoltDBRepository)(nil)
	_ port.GuideCache         = (*GuideBoltDBCache)(nil)
	_ port.GuideCache         = (*GuideRedisCache)(nil)
)
