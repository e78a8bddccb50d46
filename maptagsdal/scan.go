package maptagsdal

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/semaphore"
)

const DefaultMaxParallelDecodes = 4

// FileResult is the outcome for one file of a folder scan. Exactly one of
// Conn and Err is set.
type FileResult struct {
	FilePath string
	Conn     *MapFileConn
	Err      errorsx.Error
}

// FolderSummary aggregates a whole folder scan. Results keeps the sorted
// file order regardless of the order decodes finished in.
type FolderSummary struct {
	Results       []*FileResult
	UniquePOITags []string
	UniqueWayTags []string
}

func (s *FolderSummary) SuccessCount() int {
	count := 0
	for _, result := range s.Results {
		if result.Err == nil {
			count++
		}
	}
	return count
}

func (s *FolderSummary) FailedFilePaths() []string {
	var filePaths []string
	for _, result := range s.Results {
		if result.Err != nil {
			filePaths = append(filePaths, result.FilePath)
		}
	}
	return filePaths
}

// FindMapFiles lists the *.map files directly inside dirPath, sorted by
// name.
func FindMapFiles(fs gofs.Fs, dirPath string) ([]string, errorsx.Error) {
	dirEntries, err := fs.ReadDir(dirPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "dirPath", dirPath)
	}

	var filePaths []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		if !strings.HasSuffix(dirEntry.Name(), ".map") {
			continue
		}
		filePaths = append(filePaths, filepath.Join(dirPath, dirEntry.Name()))
	}
	sort.Strings(filePaths)

	return filePaths, nil
}

// ScanFolder decodes every *.map file in dirPath, at most maxParallel
// files at a time. A file that fails to decode is recorded in its
// FileResult and does not stop the rest of the batch.
func ScanFolder(fs gofs.Fs, dirPath string, maxParallel uint) (*FolderSummary, errorsx.Error) {
	if maxParallel == 0 {
		maxParallel = DefaultMaxParallelDecodes
	}

	filePaths, err := FindMapFiles(fs, dirPath)
	if err != nil {
		return nil, err
	}
	if len(filePaths) == 0 {
		return nil, errorsx.Errorf("no .map files found in %q", dirPath)
	}

	results := make([]*FileResult, len(filePaths))
	sema := semaphore.NewSemaphore(maxParallel)
	for i, filePath := range filePaths {
		i, filePath := i, filePath
		sema.Add()
		go func() {
			defer sema.Done()

			conn, err := OpenMapFileConn(fs, filePath)
			results[i] = &FileResult{
				FilePath: filePath,
				Conn:     conn,
				Err:      err,
			}
		}()
	}
	sema.Wait()

	summary := &FolderSummary{Results: results}
	summary.UniquePOITags, summary.UniqueWayTags = consolidateTags(results)

	return summary, nil
}

// consolidateTags merges the tag tables of all successfully decoded files
// into sorted sets of unique tags.
func consolidateTags(results []*FileResult) (poiTags, wayTags []string) {
	poiTagSet := make(map[string]struct{})
	wayTagSet := make(map[string]struct{})

	for _, result := range results {
		if result.Err != nil {
			continue
		}
		mapFile := result.Conn.MapFile()
		for _, tag := range mapFile.POITags {
			poiTagSet[tag] = struct{}{}
		}
		for _, tag := range mapFile.WayTags {
			wayTagSet[tag] = struct{}{}
		}
	}

	return sortedKeys(poiTagSet), sortedKeys(wayTagSet)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
