package export

import (
	"fmt"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/maptags-app/maptagsdal"
)

// WriteFolderSummaryReport writes the consolidated report for a folder
// scan: per-file outcome and the unique tags across all decoded files.
func WriteFolderSummaryReport(w io.Writer, summary *maptagsdal.FolderSummary) errorsx.Error {
	var err error
	write := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("Total files: %d\n", len(summary.Results))
	write("Successful: %d\n", summary.SuccessCount())

	failedFilePaths := summary.FailedFilePaths()
	write("Failed: %d\n", len(failedFilePaths))
	for _, filePath := range failedFilePaths {
		write("  - %s\n", filePath)
	}

	write("\n=== All Unique POI Tags (%d) ===\n", len(summary.UniquePOITags))
	for i, tag := range summary.UniquePOITags {
		write("%d: %s\n", i, tag)
	}

	write("\n=== All Unique Way Tags (%d) ===\n", len(summary.UniqueWayTags))
	for i, tag := range summary.UniqueWayTags {
		write("%d: %s\n", i, tag)
	}

	return errorsx.Wrap(err)
}
