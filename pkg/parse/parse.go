// Package parse extracts title, season, episode and year information from
// media filenames. Parsing is best-effort and never fails: a name with no
// recognizable structure still yields the cleaned stem as its title.
package parse

import (
	"path/filepath"
	"strings"
)

// Strategy names reported in Info.Parser.
const (
	ParserSpecial    = "special"
	ParserStructured = "structured"
	ParserGeneral    = "general"
	ParserFallback   = "fallback"
)

// Plausible release year bounds. Values outside are discarded.
const (
	minYear = 1900
	maxYear = 2030
)

// Info contains parsed information from a media filename.
type Info struct {
	SourcePath string
	Title      string
	Season     int // 0 is the specials season
	Episode    int // 0 when absent
	Year       int // 0 when absent
	IsMovie    bool
	Parser     string // strategy that produced the title
}

// guess is the intermediate result of one parsing strategy.
type guess struct {
	title       string
	season      int
	seasonFound bool
	episode     int
	year        int
}

var strategies = []struct {
	name string
	fn   func(stem string) (guess, bool)
}{
	{ParserSpecial, parseSpecial},
	{ParserStructured, parseStructured},
	{ParserGeneral, parseGeneral},
}

// Parse extracts information from a media file path. It tries each parsing
// strategy in order and keeps the first one that yields a non-empty title,
// falling back to a lexical cleanup of the bare stem.
func Parse(path string) *Info {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	for _, s := range strategies {
		g, ok := s.fn(stem)
		if !ok || g.title == "" {
			continue
		}

		info := &Info{
			SourcePath: path,
			Title:      g.title,
			Season:     1,
			Episode:    g.episode,
			Year:       g.year,
			Parser:     s.name,
		}
		if g.seasonFound {
			info.Season = g.season
		}
		if s.name != ParserSpecial {
			info.IsMovie = hasMovieKeyword(stem) || (!g.seasonFound && g.episode == 0)
		}
		return info
	}

	// Nothing structured anywhere. Clean the stem lexically and treat the
	// result as a movie title (no season or episode information exists).
	title := cleanStem(stem)
	if title == "" {
		title = strings.TrimSpace(stem)
	}
	if title == "" {
		title = base
	}
	return &Info{
		SourcePath: path,
		Title:      title,
		Season:     1,
		Year:       extractYear(collapseSeparators(stem)),
		IsMovie:    true,
		Parser:     ParserFallback,
	}
}
