package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// DateRange is an ISO date window extracted from a filename.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

var filenameRangeRe = regexp.MustCompile(`(?i)from\s+(\d{1,2}-\d{1,2}-\d{4})\s+to\s+(\d{1,2}-\d{1,2}-\d{4})`)

// ExtractDateRange pulls a reporting period out of filenames like
// "Sales Rollup - From 10-01-2025 to 12-31-2025.csv". Returns nil when
// the pattern is absent; the caller must then supply dates manually.
func ExtractDateRange(filename string) *DateRange {
	match := filenameRangeRe.FindStringSubmatch(filename)
	if match == nil {
		return nil
	}

	return &DateRange{
		StartDate: toISODate(match[1]),
		EndDate:   toISODate(match[2]),
	}
}

// toISODate converts MM-DD-YYYY to YYYY-MM-DD, zero-padding as needed.
func toISODate(mdY string) string {
	parts := strings.Split(mdY, "-")
	month, day, year := parts[0], parts[1], parts[2]
	if len(month) == 1 {
		month = "0" + month
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return fmt.Sprintf("%s-%s-%s", year, month, day)
}
