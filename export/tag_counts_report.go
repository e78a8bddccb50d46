package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/maptags-app/maptagsdal"
)

// WriteTagCountsReport formats PBF tag occurrence counts to w. Tags seen
// fewer than minCount times are left out.
func WriteTagCountsReport(w io.Writer, counts *maptagsdal.TagCounts, format Format, minCount int) errorsx.Error {
	switch format {
	case FormatText:
		return writeTagCountsText(w, counts, minCount)
	case FormatJSON:
		return writeTagCountsJSON(w, counts, minCount)
	case FormatCSV:
		return writeTagCountsCSV(w, counts, minCount)
	}
	return errorsx.Errorf("unknown format %q", format)
}

type tagCountEntry struct {
	Tag   string
	Count int
}

// sortedEntries orders by count descending, then tag name for stability.
func sortedEntries(occurrences map[string]int, minCount int) []tagCountEntry {
	var entries []tagCountEntry
	for tag, count := range occurrences {
		if count < minCount {
			continue
		}
		entries = append(entries, tagCountEntry{tag, count})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Count != entries[b].Count {
			return entries[a].Count > entries[b].Count
		}
		return entries[a].Tag < entries[b].Tag
	})
	return entries
}

func writeTagCountsText(w io.Writer, counts *maptagsdal.TagCounts, minCount int) errorsx.Error {
	var err error
	write := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("Minimum occurrence count: %d\n", minCount)

	sections := []struct {
		name        string
		occurrences map[string]int
	}{
		{"Node Tags", counts.NodeTags},
		{"Way Tags", counts.WayTags},
		{"Relation Tags", counts.RelationTags},
	}
	for _, section := range sections {
		entries := sortedEntries(section.occurrences, minCount)
		write("\n=== %s (%d) ===\n", section.name, len(entries))
		for _, entry := range entries {
			write("%s: %d\n", entry.Tag, entry.Count)
		}
	}

	return errorsx.Wrap(err)
}

type tagCountsJSONType struct {
	MinCount     int            `json:"minCount"`
	NodeTags     map[string]int `json:"nodeTags"`
	WayTags      map[string]int `json:"wayTags"`
	RelationTags map[string]int `json:"relationTags"`
}

func filterOccurrences(occurrences map[string]int, minCount int) map[string]int {
	filtered := make(map[string]int)
	for tag, count := range occurrences {
		if count >= minCount {
			filtered[tag] = count
		}
	}
	return filtered
}

func writeTagCountsJSON(w io.Writer, counts *maptagsdal.TagCounts, minCount int) errorsx.Error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(tagCountsJSONType{
		MinCount:     minCount,
		NodeTags:     filterOccurrences(counts.NodeTags, minCount),
		WayTags:      filterOccurrences(counts.WayTags, minCount),
		RelationTags: filterOccurrences(counts.RelationTags, minCount),
	})
	if err != nil {
		return errorsx.Wrap(err)
	}
	return nil
}

func writeTagCountsCSV(w io.Writer, counts *maptagsdal.TagCounts, minCount int) errorsx.Error {
	csvWriter := csv.NewWriter(w)

	err := csvWriter.Write([]string{"object_type", "tag", "count"})
	if err != nil {
		return errorsx.Wrap(err)
	}

	sections := []struct {
		objectType  string
		occurrences map[string]int
	}{
		{"node", counts.NodeTags},
		{"way", counts.WayTags},
		{"relation", counts.RelationTags},
	}
	for _, section := range sections {
		for _, entry := range sortedEntries(section.occurrences, minCount) {
			err = csvWriter.Write([]string{section.objectType, entry.Tag, strconv.Itoa(entry.Count)})
			if err != nil {
				return errorsx.Wrap(err)
			}
		}
	}

	csvWriter.Flush()
	return errorsx.Wrap(csvWriter.Error())
}
