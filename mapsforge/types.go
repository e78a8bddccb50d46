package mapsforge

import (
	"github.com/paulmach/osm"
)

// HeaderFlags is the flags byte from the file header. Bits are numbered
// from the most significant bit down.
type HeaderFlags uint8

const (
	FlagDebugInfo          HeaderFlags = 0x80
	FlagStartPosition      HeaderFlags = 0x40
	FlagStartZoom          HeaderFlags = 0x20
	FlagLanguagePreference HeaderFlags = 0x10
	FlagComment            HeaderFlags = 0x08
	FlagCreatedBy          HeaderFlags = 0x04
)

func (f HeaderFlags) Has(flag HeaderFlags) bool {
	return f&flag != 0
}

// Position is a point in degrees.
type Position struct {
	Lat float64
	Lon float64
}

// ZoomInterval is one entry of the sub-file table. The sub-file itself
// (tile index and feature data) is not read here; SubfileStart and
// SubfileSize describe its byte range within the map file.
type ZoomInterval struct {
	BaseZoom     uint8
	MinZoom      uint8
	MaxZoom      uint8
	SubfileStart uint64
	SubfileSize  uint64
}

// MapFileHeader holds the header fields of a map file. All fields before
// Flags are always present. The fields after Flags are only set if the
// corresponding flag bit is set; absent fields keep their zero value.
type MapFileHeader struct {
	HeaderSize        uint32
	FileVersion       uint32
	FileSize          uint64
	CreationTimestamp uint64 // milliseconds since the unix epoch
	Bounds            osm.Bounds
	TileSize          uint16
	Projection        string
	Flags             HeaderFlags

	StartPosition      *Position
	StartZoom          *uint8
	LanguagePreference string
	Comment            string
	CreatedBy          string
}

// MapFile is the decoded result. POITags and WayTags are in file order;
// the index of a tag in its slice is the tag ID used by the sub-file
// feature records. ZoomIntervals is in file order as well.
type MapFile struct {
	Header        MapFileHeader
	POITags       []string
	WayTags       []string
	ZoomIntervals []ZoomInterval
}
