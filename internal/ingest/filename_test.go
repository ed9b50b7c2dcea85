package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDateRange(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     *DateRange
	}{
		{
			name:     "standard rollup filename",
			filename: "Sales Rollup - From 10-01-2025 to 12-31-2025.csv",
			want:     &DateRange{StartDate: "2025-10-01", EndDate: "2025-12-31"},
		},
		{
			name:     "lowercase and single-digit parts",
			filename: "export from 1-5-2025 to 2-9-2025.csv",
			want:     &DateRange{StartDate: "2025-01-05", EndDate: "2025-02-09"},
		},
		{
			name:     "no pattern",
			filename: "export.csv",
			want:     nil,
		},
		{
			name:     "partial pattern",
			filename: "from 10-01-2025.csv",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDateRange(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
