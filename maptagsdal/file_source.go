package maptagsdal

import (
	"bufio"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/maptags-app/mapsforge"
)

// MapFileConn is one decoded map file. The file handle is closed before
// OpenMapFileConn returns; the decoded structure is all that is kept.
type MapFileConn struct {
	filePath string
	mapFile  *mapsforge.MapFile
}

func OpenMapFileConn(fs gofs.Fs, filePath string) (*MapFileConn, errorsx.Error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filePath", filePath)
	}
	defer file.Close()

	mapFile, decodeErr := mapsforge.Decode(bufio.NewReader(file))
	if decodeErr != nil {
		return nil, errorsx.Wrap(decodeErr, "filePath", filePath)
	}

	return &MapFileConn{filePath, mapFile}, nil
}

func (c *MapFileConn) Name() string {
	return filepath.Base(c.filePath)
}

func (c *MapFileConn) FilePath() string {
	return c.filePath
}

func (c *MapFileConn) MapFile() *mapsforge.MapFile {
	return c.mapFile
}
