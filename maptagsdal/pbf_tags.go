package maptagsdal

import (
	"context"
	"runtime"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// TagCounts holds "key=value" occurrence counts per object type, gathered
// from an OSM PBF extract. Map files carry no occurrence counts, so this
// only ever comes from PBF scanning.
type TagCounts struct {
	NodeTags     map[string]int
	WayTags      map[string]int
	RelationTags map[string]int
}

func NewTagCounts() *TagCounts {
	return &TagCounts{
		NodeTags:     make(map[string]int),
		WayTags:      make(map[string]int),
		RelationTags: make(map[string]int),
	}
}

func (tc *TagCounts) TotalObjectsTagged() int {
	return len(tc.NodeTags) + len(tc.WayTags) + len(tc.RelationTags)
}

// CountPBFTags scans a whole PBF file and counts tag occurrences. The
// caller keeps ownership of file.
func CountPBFTags(ctx context.Context, file gofs.File) (*TagCounts, errorsx.Error) {
	scanner := osmpbf.New(ctx, file, runtime.NumCPU())
	defer scanner.Close()

	counts := NewTagCounts()
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			addTagOccurrences(counts.NodeTags, obj.Tags)
		case *osm.Way:
			addTagOccurrences(counts.WayTags, obj.Tags)
		case *osm.Relation:
			addTagOccurrences(counts.RelationTags, obj.Tags)
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return counts, nil
}

func addTagOccurrences(occurrences map[string]int, tags osm.Tags) {
	for _, tag := range tags {
		occurrences[tag.Key+"="+tag.Value]++
	}
}
