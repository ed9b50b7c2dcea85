package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "East Region", "eastregion"},
		{"strips punctuation", "Store #1 - Lobby", "store1lobby"},
		{"trims whitespace", "  Midtown  ", "midtown"},
		{"empty", "", ""},
		{"only symbols", "---", ""},
		{"digits kept", "Bldg 42", "bldg42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}
