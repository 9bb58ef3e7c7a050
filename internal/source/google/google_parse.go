package google

import (
	"fmt"
	"strings"

	"finboard/internal/core"
	"finboard/internal/source"
)

// parseValues turns a Sheets value matrix into records keyed by the first
// non-empty row.
func parseValues(values [][]interface{}) ([]core.RawRecord, error) {
	start := -1
	for i, row := range values {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, source.ErrNoHeader
	}
	header := toStrings(values[start])
	rows := make([][]string, 0, len(values)-start-1)
	for _, row := range values[start+1:] {
		rows = append(rows, toStrings(row))
	}
	return source.Records(header, rows), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blankRow(row []interface{}) bool {
	for _, s := range toStrings(row) {
		if s != "" {
			return false
		}
	}
	return true
}
