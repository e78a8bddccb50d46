package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/maptags-app/mapsforge"
	"github.com/paulmach/osm"
)

// WriteMapFileReport formats one decoded map file to w. Tag order in the
// output matches the file order; the tag's position is its numeric ID.
func WriteMapFileReport(w io.Writer, name string, mapFile *mapsforge.MapFile, format Format) errorsx.Error {
	switch format {
	case FormatText:
		return writeMapFileText(w, name, mapFile)
	case FormatJSON:
		return writeMapFileJSON(w, name, mapFile)
	case FormatCSV:
		return writeMapFileCSV(w, name, mapFile)
	}
	return errorsx.Errorf("unknown format %q", format)
}

func writeMapFileText(w io.Writer, name string, mapFile *mapsforge.MapFile) errorsx.Error {
	header := mapFile.Header

	var err error
	write := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("Map file: %s\n", name)
	write("File version: %d\n", header.FileVersion)
	write("File size: %d bytes\n", header.FileSize)
	write("Bounding box: (%g, %g) to (%g, %g)\n",
		header.Bounds.MinLat, header.Bounds.MinLon, header.Bounds.MaxLat, header.Bounds.MaxLon)
	write("Tile size: %d\n", header.TileSize)
	write("Projection: %s\n", header.Projection)
	if header.StartPosition != nil {
		write("Start position: (%g, %g)\n", header.StartPosition.Lat, header.StartPosition.Lon)
	}
	if header.StartZoom != nil {
		write("Start zoom: %d\n", *header.StartZoom)
	}
	if header.LanguagePreference != "" {
		write("Language preference: %s\n", header.LanguagePreference)
	}
	if header.Comment != "" {
		write("Comment: %s\n", header.Comment)
	}
	if header.CreatedBy != "" {
		write("Created by: %s\n", header.CreatedBy)
	}

	write("\n=== POI Tags (%d) ===\n", len(mapFile.POITags))
	for i, tag := range mapFile.POITags {
		write("%d: %s\n", i, tag)
	}

	write("\n=== Way Tags (%d) ===\n", len(mapFile.WayTags))
	for i, tag := range mapFile.WayTags {
		write("%d: %s\n", i, tag)
	}

	write("\n=== Zoom Intervals (%d) ===\n", len(mapFile.ZoomIntervals))
	for i, interval := range mapFile.ZoomIntervals {
		write("%d: base zoom %d, zoom range %d-%d, subfile at %d (%d bytes)\n",
			i, interval.BaseZoom, interval.MinZoom, interval.MaxZoom, interval.SubfileStart, interval.SubfileSize)
	}

	return errorsx.Wrap(err)
}

type mapFileHeaderJSONType struct {
	FileVersion        uint32              `json:"fileVersion"`
	FileSize           uint64              `json:"fileSize"`
	CreationTimestamp  uint64              `json:"creationTimestamp"`
	Bounds             osm.Bounds          `json:"bounds"`
	TileSize           uint16              `json:"tileSize"`
	Projection         string              `json:"projection"`
	StartPosition      *mapsforge.Position `json:"startPosition,omitempty"`
	StartZoom          *uint8              `json:"startZoom,omitempty"`
	LanguagePreference string              `json:"languagePreference,omitempty"`
	Comment            string              `json:"comment,omitempty"`
	CreatedBy          string              `json:"createdBy,omitempty"`
}

type mapFileJSONType struct {
	Name          string                   `json:"name"`
	Header        mapFileHeaderJSONType    `json:"header"`
	POITags       []string                 `json:"poiTags"`
	WayTags       []string                 `json:"wayTags"`
	ZoomIntervals []mapsforge.ZoomInterval `json:"zoomIntervals"`
}

func newMapFileJSONType(name string, mapFile *mapsforge.MapFile) mapFileJSONType {
	header := mapFile.Header
	return mapFileJSONType{
		Name: name,
		Header: mapFileHeaderJSONType{
			FileVersion:        header.FileVersion,
			FileSize:           header.FileSize,
			CreationTimestamp:  header.CreationTimestamp,
			Bounds:             header.Bounds,
			TileSize:           header.TileSize,
			Projection:         header.Projection,
			StartPosition:      header.StartPosition,
			StartZoom:          header.StartZoom,
			LanguagePreference: header.LanguagePreference,
			Comment:            header.Comment,
			CreatedBy:          header.CreatedBy,
		},
		POITags:       mapFile.POITags,
		WayTags:       mapFile.WayTags,
		ZoomIntervals: mapFile.ZoomIntervals,
	}
}

func writeMapFileJSON(w io.Writer, name string, mapFile *mapsforge.MapFile) errorsx.Error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(newMapFileJSONType(name, mapFile))
	if err != nil {
		return errorsx.Wrap(err)
	}
	return nil
}

func writeMapFileCSV(w io.Writer, name string, mapFile *mapsforge.MapFile) errorsx.Error {
	csvWriter := csv.NewWriter(w)

	err := csvWriter.Write([]string{"file", "section", "id", "tag"})
	if err != nil {
		return errorsx.Wrap(err)
	}

	for i, tag := range mapFile.POITags {
		err = csvWriter.Write([]string{name, "poi", strconv.Itoa(i), tag})
		if err != nil {
			return errorsx.Wrap(err)
		}
	}
	for i, tag := range mapFile.WayTags {
		err = csvWriter.Write([]string{name, "way", strconv.Itoa(i), tag})
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	csvWriter.Flush()
	return errorsx.Wrap(csvWriter.Error())
}
