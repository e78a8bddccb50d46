package maptagsdal

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMapFileBytes builds a minimal valid map file with the given tag
// tables and no zoom intervals.
func buildMapFileBytes(poiTags, wayTags []string) []byte {
	var buf bytes.Buffer

	writeUint := func(val uint64, width int) {
		scratch := make([]byte, 8)
		binary.BigEndian.PutUint64(scratch, val)
		buf.Write(scratch[8-width:])
	}
	writeString := func(str string) {
		varintBuf := make([]byte, binary.MaxVarintLen64)
		n := binary.PutUvarint(varintBuf, uint64(len(str)))
		buf.Write(varintBuf[:n])
		buf.WriteString(str)
	}

	buf.WriteString("mapsforge binary OSM")
	writeUint(0, 4)          // header size
	writeUint(5, 4)          // file version
	writeUint(100, 8)        // file size
	writeUint(0, 8)          // creation timestamp
	writeUint(1000000, 4)    // min lat
	writeUint(2000000, 4)    // min lon
	writeUint(3000000, 4)    // max lat
	writeUint(4000000, 4)    // max lon
	writeUint(256, 2)        // tile size
	writeString("EPSG:3857") // projection
	buf.WriteByte(0x00)      // flags

	writeUint(uint64(len(poiTags)), 2)
	for _, tag := range poiTags {
		writeString(tag)
	}
	writeUint(uint64(len(wayTags)), 2)
	for _, tag := range wayTags {
		writeString(tag)
	}
	buf.WriteByte(0) // no zoom intervals

	return buf.Bytes()
}

func Test_OpenMapFileConn(t *testing.T) {
	fs := mockfs.NewMockFs()
	err := fs.WriteFile("/maps/germany.map", buildMapFileBytes([]string{"amenity=cafe"}, []string{"highway=primary"}), 0644)
	require.Nil(t, err)

	conn, openErr := OpenMapFileConn(fs, "/maps/germany.map")
	require.Nil(t, openErr)

	assert.Equal(t, "germany.map", conn.Name())
	assert.Equal(t, []string{"amenity=cafe"}, conn.MapFile().POITags)
	assert.Equal(t, []string{"highway=primary"}, conn.MapFile().WayTags)
}

func Test_FindMapFiles(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.Nil(t, fs.MkdirAll("/maps/nested", 0755))
	require.Nil(t, fs.WriteFile("/maps/b.map", buildMapFileBytes(nil, nil), 0644))
	require.Nil(t, fs.WriteFile("/maps/a.map", buildMapFileBytes(nil, nil), 0644))
	require.Nil(t, fs.WriteFile("/maps/notes.txt", []byte("not a map"), 0644))

	filePaths, err := FindMapFiles(fs, "/maps")
	require.Nil(t, err)

	assert.Equal(t, []string{"/maps/a.map", "/maps/b.map"}, filePaths)
}

func Test_ScanFolder(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.Nil(t, fs.MkdirAll("/maps", 0755))
	require.Nil(t, fs.WriteFile("/maps/a.map", buildMapFileBytes(
		[]string{"amenity=cafe", "shop=bakery"},
		[]string{"highway=primary"},
	), 0644))
	require.Nil(t, fs.WriteFile("/maps/b.map", buildMapFileBytes(
		[]string{"amenity=cafe"},
		[]string{"waterway=river"},
	), 0644))
	require.Nil(t, fs.WriteFile("/maps/broken.map", []byte("definitely not a map file"), 0644))

	summary, err := ScanFolder(fs, "/maps", 2)
	require.Nil(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 2, summary.SuccessCount())
	assert.Equal(t, []string{"/maps/broken.map"}, summary.FailedFilePaths())

	// file order is kept, the broken file's error is recorded in place
	assert.Equal(t, "/maps/a.map", summary.Results[0].FilePath)
	assert.Equal(t, "/maps/b.map", summary.Results[1].FilePath)
	assert.Equal(t, "/maps/broken.map", summary.Results[2].FilePath)
	assert.NotNil(t, summary.Results[2].Err)

	assert.Equal(t, []string{"amenity=cafe", "shop=bakery"}, summary.UniquePOITags)
	assert.Equal(t, []string{"highway=primary", "waterway=river"}, summary.UniqueWayTags)
}

func Test_ScanFolder_emptyFolder(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.Nil(t, fs.MkdirAll("/maps", 0755))

	_, err := ScanFolder(fs, "/maps", 2)
	require.NotNil(t, err)
}
