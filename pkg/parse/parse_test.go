package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Structured(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		season  int
		episode int
		year    int
		movie   bool
	}{
		{"Breaking.Bad.S05E14.1080p.BluRay.x264-GROUP.mkv", "Breaking Bad", 5, 14, 0, false},
		{"The.Office.3x12.HDTV.XviD.avi", "The Office", 3, 12, 0, false},
		{"Show Title Season 2 Episode 9.mkv", "Show Title", 2, 9, 0, false},
		{"Bleach.6th.TV.2007.DVDRip.EP110-nezumi.mkv", "Bleach", 6, 110, 2007, false},
		{"[SubsPlease] Frieren - 08 (1080p) [ABCD1234].mkv", "Frieren", 1, 8, 0, false},
		{"Some.Show.S01-S04.E01.mkv", "Some Show", 1, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.name)
			require.NotNil(t, info)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.season, info.Season)
			assert.Equal(t, tt.episode, info.Episode)
			assert.Equal(t, tt.year, info.Year)
			assert.Equal(t, tt.movie, info.IsMovie)
		})
	}
}

// Scenario: ordinal season token plus a bare EP episode number.
func TestParse_OrdinalSeason(t *testing.T) {
	info := Parse("/downloads/Bleach.6th.TV.2007.DVDRip.EP110-group.mkv")

	require.NotNil(t, info)
	assert.Contains(t, info.Title, "Bleach")
	assert.Equal(t, 6, info.Season)
	assert.Equal(t, 110, info.Episode)
	assert.Equal(t, 2007, info.Year)
	assert.Equal(t, ParserStructured, info.Parser)
}

func TestParse_SpecialEpisode(t *testing.T) {
	info := Parse("Show.Name.S1SP2.1080p.mkv")

	require.NotNil(t, info)
	assert.Equal(t, 0, info.Season, "specials belong to season 0")
	assert.Equal(t, 2, info.Episode)
	assert.Equal(t, "Show Name", info.Title)
	assert.Equal(t, ParserSpecial, info.Parser)
	assert.False(t, info.IsMovie)
}

func TestParse_Movie(t *testing.T) {
	tests := []struct {
		name  string
		title string
		year  int
	}{
		{"Inception.2010.1080p.BluRay.x264-SPARKS.mkv", "Inception", 2010},
		{"Blade.Runner.1982.2160p.REMUX.mkv", "Blade Runner", 1982},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.name)
			require.NotNil(t, info)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.year, info.Year)
			assert.True(t, info.IsMovie)
		})
	}
}

func TestParse_FallbackNeverEmpty(t *testing.T) {
	names := []string{
		"random_garbage_file.mkv",
		"x.mkv",
		"---.mkv",
		"no structure at all.avi",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			info := Parse(name)
			require.NotNil(t, info)
			assert.NotEmpty(t, info.Title)
			assert.GreaterOrEqual(t, info.Season, 0)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	name := "Breaking.Bad.S05E14.1080p.BluRay.x264-GROUP.mkv"
	first := Parse(name)
	second := Parse(name)
	assert.Equal(t, first, second)
}

func TestParse_YearBounds(t *testing.T) {
	// 2077 is outside the plausible range and must not be taken as a year.
	info := Parse("Cyberpunk.2077.Gameplay.S01E01.mkv")
	require.NotNil(t, info)
	assert.Equal(t, 0, info.Year)
	assert.Equal(t, 1, info.Season)
	assert.Equal(t, 1, info.Episode)
}

func TestParse_ResolutionNotYear(t *testing.T) {
	info := Parse("Show.S01E02.1920x1080.mkv")
	require.NotNil(t, info)
	assert.Equal(t, 0, info.Year)
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Title 2007 DVDRip", 2007},
		{"Title 1280 720p", 0},
		{"Title 1899", 0},
		{"Title 2031", 0},
		{"Title (1999)", 1999},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, extractYear(tt.input))
		})
	}
}
