package mapsforge

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapFileBuilder builds synthetic map file bytes for tests.
type mapFileBuilder struct {
	bytes.Buffer
}

func (b *mapFileBuilder) writeUint16(val uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], val)
	b.Write(buf[:])
}

func (b *mapFileBuilder) writeUint32(val uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], val)
	b.Write(buf[:])
}

func (b *mapFileBuilder) writeUint64(val uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], val)
	b.Write(buf[:])
}

func (b *mapFileBuilder) writeInt32(val int32) {
	b.writeUint32(uint32(val))
}

func (b *mapFileBuilder) writeCoordinate(degrees float64) {
	b.writeInt32(int32(degrees * coordinateScale))
}

func (b *mapFileBuilder) writeString(str string) {
	varintBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(varintBuf, uint64(len(str)))
	b.Write(varintBuf[:n])
	b.WriteString(str)
}

// writeHeader writes everything up to and including the flags byte, with
// the fixture values from the round trip test.
func (b *mapFileBuilder) writeHeader(flags HeaderFlags) {
	b.WriteString(MagicMarker)
	b.writeUint32(0)   // header size
	b.writeUint32(5)   // file version
	b.writeUint64(100) // file size
	b.writeUint64(0)   // creation timestamp
	b.writeCoordinate(1.0)
	b.writeCoordinate(2.0)
	b.writeCoordinate(3.0)
	b.writeCoordinate(4.0)
	b.writeUint16(256)
	b.writeString("EPSG:3857")
	b.WriteByte(byte(flags))
}

func (b *mapFileBuilder) writeTagTable(tags []string) {
	b.writeUint16(uint16(len(tags)))
	for _, tag := range tags {
		b.writeString(tag)
	}
}

func (b *mapFileBuilder) writeZoomInterval(interval ZoomInterval) {
	b.WriteByte(interval.BaseZoom)
	b.WriteByte(interval.MinZoom)
	b.WriteByte(interval.MaxZoom)
	b.writeUint64(interval.SubfileStart)
	b.writeUint64(interval.SubfileSize)
}

func buildValidMapFile() *mapFileBuilder {
	builder := new(mapFileBuilder)
	builder.writeHeader(0x00)
	builder.writeTagTable([]string{"amenity=restaurant", "shop=bakery"})
	builder.writeTagTable([]string{"highway=primary"})
	builder.WriteByte(1)
	builder.writeZoomInterval(ZoomInterval{
		BaseZoom:     14,
		MinZoom:      8,
		MaxZoom:      17,
		SubfileStart: 1000,
		SubfileSize:  5000,
	})
	return builder
}

type countingReader struct {
	reader    io.Reader
	bytesRead int
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += n
	return n, err
}

func Test_Decode_roundTrip(t *testing.T) {
	builder := buildValidMapFile()

	mapFile, err := Decode(builder)
	require.Nil(t, err)

	assert.Equal(t, uint32(0), mapFile.Header.HeaderSize)
	assert.Equal(t, uint32(5), mapFile.Header.FileVersion)
	assert.Equal(t, uint64(100), mapFile.Header.FileSize)
	assert.Equal(t, uint64(0), mapFile.Header.CreationTimestamp)
	assert.Equal(t, osm.Bounds{MinLat: 1.0, MinLon: 2.0, MaxLat: 3.0, MaxLon: 4.0}, mapFile.Header.Bounds)
	assert.Equal(t, uint16(256), mapFile.Header.TileSize)
	assert.Equal(t, "EPSG:3857", mapFile.Header.Projection)
	assert.Equal(t, HeaderFlags(0), mapFile.Header.Flags)
	assert.Nil(t, mapFile.Header.StartPosition)
	assert.Nil(t, mapFile.Header.StartZoom)

	assert.Equal(t, []string{"amenity=restaurant", "shop=bakery"}, mapFile.POITags)
	assert.Equal(t, []string{"highway=primary"}, mapFile.WayTags)
	assert.Equal(t, []ZoomInterval{
		{
			BaseZoom:     14,
			MinZoom:      8,
			MaxZoom:      17,
			SubfileStart: 1000,
			SubfileSize:  5000,
		},
	}, mapFile.ZoomIntervals)
}

func Test_Decode_consumesExactlyTheHeader(t *testing.T) {
	builder := buildValidMapFile()
	headerLen := builder.Len()

	// sub-file bodies behind the header must never be touched
	builder.Write(bytes.Repeat([]byte{0xEE}, 64))

	reader := bytes.NewReader(builder.Bytes())
	_, err := Decode(reader)
	require.Nil(t, err)

	assert.Equal(t, 64, reader.Len(), "decode consumed %d bytes, header is %d bytes", builder.Len()-reader.Len(), headerLen)
}

func Test_Decode_invalidMagic(t *testing.T) {
	var builder mapFileBuilder
	builder.WriteString("mapsforge binary XXX")
	builder.writeUint32(0)

	reader := &countingReader{reader: bytes.NewReader(builder.Bytes())}
	_, err := Decode(reader)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidMagic, errorsx.Cause(err))

	assert.Equal(t, len(MagicMarker), reader.bytesRead, "no bytes beyond the magic marker may be read")
}

func Test_Decode_truncatedAfterFlags(t *testing.T) {
	var builder mapFileBuilder
	builder.writeHeader(FlagStartPosition)

	_, err := Decode(&builder)
	require.NotNil(t, err)
	assert.Equal(t, ErrTruncatedInput, errorsx.Cause(err))
}

func Test_Decode_optionalFields(t *testing.T) {
	flags := FlagDebugInfo | FlagStartPosition | FlagStartZoom | FlagLanguagePreference | FlagComment | FlagCreatedBy

	var builder mapFileBuilder
	builder.writeHeader(flags)
	builder.writeInt32(52520000) // microdegrees
	builder.writeInt32(13405000)
	builder.WriteByte(12)
	builder.writeString("de")
	builder.writeString("created for unit tests")
	builder.writeString("maptags-app")
	builder.writeTagTable(nil)
	builder.writeTagTable(nil)
	builder.WriteByte(0)

	mapFile, err := Decode(&builder)
	require.Nil(t, err)

	header := mapFile.Header
	assert.True(t, header.Flags.Has(FlagDebugInfo))
	require.NotNil(t, header.StartPosition)
	assert.Equal(t, 52.52, header.StartPosition.Lat)
	assert.Equal(t, 13.405, header.StartPosition.Lon)
	require.NotNil(t, header.StartZoom)
	assert.Equal(t, uint8(12), *header.StartZoom)
	assert.Equal(t, "de", header.LanguagePreference)
	assert.Equal(t, "created for unit tests", header.Comment)
	assert.Equal(t, "maptags-app", header.CreatedBy)

	assert.Empty(t, mapFile.POITags)
	assert.Empty(t, mapFile.WayTags)
	assert.Empty(t, mapFile.ZoomIntervals)
}

func Test_Decode_tagCountMismatch(t *testing.T) {
	var builder mapFileBuilder
	builder.writeHeader(0x00)

	// declare 3 POI tags but provide only 2
	builder.writeUint16(3)
	builder.writeString("amenity=restaurant")
	builder.writeString("shop=bakery")

	_, err := Decode(&builder)
	require.NotNil(t, err)
	assert.Equal(t, ErrTruncatedInput, errorsx.Cause(err))
}

func Test_Decode_invalidUTF8Tag(t *testing.T) {
	var builder mapFileBuilder
	builder.writeHeader(0x00)

	builder.writeUint16(1)
	builder.WriteByte(4)
	builder.Write([]byte{'n', 'a', 0xC3, 0x28}) // 0xC3 starts a sequence 0x28 can't continue

	builder.writeTagTable(nil)
	builder.WriteByte(0)

	mapFile, err := Decode(&builder)
	require.Nil(t, err)

	require.Len(t, mapFile.POITags, 1)
	assert.Contains(t, mapFile.POITags[0], "�")
	assert.Contains(t, mapFile.POITags[0], "na")
}

type failingReader struct{}

func (r failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func Test_Decode_ioFailureIsNotAFormatError(t *testing.T) {
	_, err := Decode(failingReader{})
	require.NotNil(t, err)
	assert.False(t, IsFormatError(err))
	assert.Equal(t, io.ErrClosedPipe, errorsx.Cause(err))
}
