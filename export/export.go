package export

import (
	"github.com/jamesrr39/goutil/errorsx"
)

// Format selects the report output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(str string) (Format, errorsx.Error) {
	switch Format(str) {
	case FormatText, FormatJSON, FormatCSV:
		return Format(str), nil
	}
	return "", errorsx.Errorf("unknown format %q (expected one of text, json, csv)", str)
}
