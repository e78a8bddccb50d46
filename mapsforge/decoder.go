package mapsforge

import (
	"bytes"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
)

// MagicMarker is the fixed byte sequence every mapsforge map file starts
// with. There is no length prefix in front of it.
const MagicMarker = "mapsforge binary OSM"

// coordinates are stored as microdegrees
const coordinateScale = 1000000.0

// Decode reads a whole map file header, including the tag tables and the
// zoom interval table, from r. It reads forward only and exactly as many
// bytes as the header occupies; the sub-file bodies behind it are never
// touched. On failure no partial result is returned.
func Decode(r io.Reader) (*MapFile, errorsx.Error) {
	header, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	poiTags, err := decodeTagTable(r)
	if err != nil {
		return nil, err
	}

	wayTags, err := decodeTagTable(r)
	if err != nil {
		return nil, err
	}

	zoomIntervals, err := decodeZoomIntervalTable(r)
	if err != nil {
		return nil, err
	}

	return &MapFile{
		Header:        *header,
		POITags:       poiTags,
		WayTags:       wayTags,
		ZoomIntervals: zoomIntervals,
	}, nil
}

func decodeHeader(r io.Reader) (*MapFileHeader, errorsx.Error) {
	magic := make([]byte, len(MagicMarker))
	err := readFull(r, magic)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, []byte(MagicMarker)) {
		return nil, errorsx.Wrap(ErrInvalidMagic)
	}

	header := new(MapFileHeader)

	header.HeaderSize, err = readUint32(r)
	if err != nil {
		return nil, err
	}
	header.FileVersion, err = readUint32(r)
	if err != nil {
		return nil, err
	}
	header.FileSize, err = readUint64(r)
	if err != nil {
		return nil, err
	}
	header.CreationTimestamp, err = readUint64(r)
	if err != nil {
		return nil, err
	}

	header.Bounds, err = decodeBounds(r)
	if err != nil {
		return nil, err
	}

	header.TileSize, err = readUint16(r)
	if err != nil {
		return nil, err
	}
	header.Projection, err = readString(r)
	if err != nil {
		return nil, err
	}

	flagsByte, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	header.Flags = HeaderFlags(flagsByte)

	// the debug info flag gates signature blocks inside the sub-files,
	// not any field of the header, so no read happens for it here
	err = decodeOptionalFields(r, header)
	if err != nil {
		return nil, err
	}

	return header, nil
}

func decodeBounds(r io.Reader) (osm.Bounds, errorsx.Error) {
	var coords [4]float64
	for i := range coords {
		val, err := readInt32(r)
		if err != nil {
			return osm.Bounds{}, err
		}
		coords[i] = float64(val) / coordinateScale
	}

	return osm.Bounds{
		MinLat: coords[0],
		MinLon: coords[1],
		MaxLat: coords[2],
		MaxLon: coords[3],
	}, nil
}

// decodeOptionalFields reads the flag-gated header fields. The order is
// fixed; which of them are present is decided by the flag bits alone.
func decodeOptionalFields(r io.Reader, header *MapFileHeader) errorsx.Error {
	var err errorsx.Error

	if header.Flags.Has(FlagStartPosition) {
		lat, err := readInt32(r)
		if err != nil {
			return err
		}
		lon, err := readInt32(r)
		if err != nil {
			return err
		}
		header.StartPosition = &Position{
			Lat: float64(lat) / coordinateScale,
			Lon: float64(lon) / coordinateScale,
		}
	}

	if header.Flags.Has(FlagStartZoom) {
		startZoom, err := readUint8(r)
		if err != nil {
			return err
		}
		header.StartZoom = &startZoom
	}

	if header.Flags.Has(FlagLanguagePreference) {
		header.LanguagePreference, err = readString(r)
		if err != nil {
			return err
		}
	}

	if header.Flags.Has(FlagComment) {
		header.Comment, err = readString(r)
		if err != nil {
			return err
		}
	}

	if header.Flags.Has(FlagCreatedBy) {
		header.CreatedBy, err = readString(r)
		if err != nil {
			return err
		}
	}

	return nil
}

// decodeTagTable reads a uint16 entry count followed by that many strings.
// Fewer entries than declared is a truncation, not a short table.
func decodeTagTable(r io.Reader) ([]string, errorsx.Error) {
	count, err := readUint16(r)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		tag, err := readString(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

func decodeZoomIntervalTable(r io.Reader) ([]ZoomInterval, errorsx.Error) {
	count, err := readUint8(r)
	if err != nil {
		return nil, err
	}

	intervals := make([]ZoomInterval, 0, count)
	for i := uint8(0); i < count; i++ {
		interval, err := decodeZoomInterval(r)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}

	return intervals, nil
}

func decodeZoomInterval(r io.Reader) (ZoomInterval, errorsx.Error) {
	var interval ZoomInterval
	var err errorsx.Error

	interval.BaseZoom, err = readUint8(r)
	if err != nil {
		return ZoomInterval{}, err
	}
	interval.MinZoom, err = readUint8(r)
	if err != nil {
		return ZoomInterval{}, err
	}
	interval.MaxZoom, err = readUint8(r)
	if err != nil {
		return ZoomInterval{}, err
	}
	interval.SubfileStart, err = readUint64(r)
	if err != nil {
		return ZoomInterval{}, err
	}
	interval.SubfileSize, err = readUint64(r)
	if err != nil {
		return ZoomInterval{}, err
	}

	return interval, nil
}
