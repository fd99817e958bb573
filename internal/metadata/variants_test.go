package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleVariants(t *testing.T) {
	tests := []struct {
		name  string
		title string
		year  int
		want  []string
	}{
		{
			name:  "single word has no simpler form",
			title: "Frieren",
			want:  []string{"Frieren"},
		},
		{
			name:  "brackets removed before filler",
			title: "Mushoku Tensei [BD] Season 2",
			want: []string{
				"Mushoku Tensei [BD] Season 2",
				"Mushoku Tensei Season 2",
				"Mushoku Tensei 2",
				"Mushoku Tensei",
				"Mushoku",
			},
		},
		{
			name:  "ordinal tokens dropped with filler",
			title: "Bleach 6th TV",
			want: []string{
				"Bleach 6th TV",
				"Bleach",
			},
		},
		{
			name:  "year kept through number strip then removed",
			title: "Akira 1988",
			year:  1988,
			want: []string{
				"Akira 1988",
				"Akira",
			},
		},
		{
			name:  "non-year numbers stripped separately",
			title: "Area 88 1985",
			year:  1985,
			want: []string{
				"Area 88 1985",
				"Area 1985",
				"Area",
			},
		},
		{
			name:  "prefix truncations longest first",
			title: "Legend of the Galactic Heroes",
			want: []string{
				"Legend of the Galactic Heroes",
				"Legend of the Galactic",
				"Legend of the",
				"Legend of",
				"Legend",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titleVariants(tt.title, tt.year))
		})
	}
}

func TestTitleVariants_Deduplicates(t *testing.T) {
	// Removing brackets changes nothing here, so the variant must not repeat.
	got := titleVariants("Monster", 0)
	assert.Equal(t, []string{"Monster"}, got)

	seen := make(map[string]bool)
	for _, v := range titleVariants("Frieren Beyond Journey's End (2023)", 2023) {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}
