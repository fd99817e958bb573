package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// specialRe matches explicit special-episode tokens like "S1SP2".
	specialRe = regexp.MustCompile(`(?i)\bS(\d{1,2})\s*SP(\d{1,3})\b`)

	// seasonEpisodeRe matches SxxEyy with optional ranges (S01-S04, E01-E12).
	// A range collapses to its first value.
	seasonEpisodeRe = regexp.MustCompile(`(?i)\bS(\d{1,2})(?:\s*-\s*S?\d{1,2})?\s*E(\d{1,4})(?:\s*-\s*E?\d{1,4})?\b`)

	// xFormatRe matches the 1x05 episode notation.
	xFormatRe = regexp.MustCompile(`\b(\d{1,2})x(\d{2,3})\b`)

	// seasonWordRe matches "Season 2" spelled out, with optional range.
	seasonWordRe = regexp.MustCompile(`(?i)\bseason\s*(\d{1,2})(?:\s*-\s*\d{1,2})?\b`)

	// ordinalSeasonRe matches ordinal season tokens like "6th TV".
	ordinalSeasonRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\s+(?:tv|season)\b`)

	// seasonOnlyRe matches a bare season token like "S02" with no episode.
	seasonOnlyRe = regexp.MustCompile(`(?i)\bS(\d{1,2})(?:\s*-\s*S?\d{1,2})?\b`)

	// episodeWordRe matches "Episode 9", "EP110" or "E110", with optional range.
	episodeWordRe = regexp.MustCompile(`(?i)\b(?:episode|ep|e)\s*(\d{1,4})(?:\s*-\s*(?:ep|e)?\s*\d{1,4})?\b`)

	// animeEpisodeRe matches the dash-delimited episode common in fansub
	// names, e.g. "Title - 01".
	animeEpisodeRe = regexp.MustCompile(`\s-\s*(\d{1,3})(?:\s|$)`)

	yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	movieKeywordRe = regexp.MustCompile(`(?i)\b(movie|gekijouban|theatrical|ova|oad|special)\b`)
)

// Common video widths that would otherwise parse as years.
var resolutionWidths = map[int]bool{1280: true, 1440: true, 1920: true, 2160: true}

func parseSpecial(stem string) (guess, bool) {
	m := specialRe.FindStringSubmatch(stem)
	if m == nil {
		return guess{}, false
	}

	// Specials live in season 0 regardless of the season digit in the token.
	g := guess{season: 0, seasonFound: true}
	g.episode, _ = strconv.Atoi(m[2])

	rest := specialRe.ReplaceAllString(stem, " ")
	g.year = extractYear(collapseSeparators(rest))
	g.title = cleanStem(rest)
	return g, true
}

func parseStructured(stem string) (guess, bool) {
	raw := collapseSeparators(stem)
	g := guess{year: extractYear(raw)}
	text := stripBrackets(raw)

	// Earliest structural token bounds the title on its left.
	cut := len(text)
	mark := func(idx int) {
		if idx >= 0 && idx < cut {
			cut = idx
		}
	}

	if m := seasonEpisodeRe.FindStringSubmatchIndex(text); m != nil {
		g.season = atoi(text[m[2]:m[3]])
		g.seasonFound = true
		g.episode = atoi(text[m[4]:m[5]])
		mark(m[0])
	} else if m := xFormatRe.FindStringSubmatchIndex(text); m != nil {
		g.season = atoi(text[m[2]:m[3]])
		g.seasonFound = true
		g.episode = atoi(text[m[4]:m[5]])
		mark(m[0])
	}

	if !g.seasonFound {
		if m := seasonWordRe.FindStringSubmatchIndex(text); m != nil {
			g.season = atoi(text[m[2]:m[3]])
			g.seasonFound = true
			mark(m[0])
		} else if m := ordinalSeasonRe.FindStringSubmatchIndex(text); m != nil {
			g.season = atoi(text[m[2]:m[3]])
			g.seasonFound = true
			mark(m[0])
		} else if m := seasonOnlyRe.FindStringSubmatchIndex(text); m != nil {
			g.season = atoi(text[m[2]:m[3]])
			g.seasonFound = true
			mark(m[0])
		}
	}

	if g.episode == 0 {
		if m := episodeWordRe.FindStringSubmatchIndex(text); m != nil {
			g.episode = atoi(text[m[2]:m[3]])
			mark(m[0])
		} else if m := animeEpisodeRe.FindStringSubmatchIndex(text); m != nil {
			g.episode = atoi(text[m[2]:m[3]])
			mark(m[0])
		}
	}

	if g.year != 0 {
		mark(tokenIndex(text, strconv.Itoa(g.year)))
	}

	if !g.seasonFound && g.episode == 0 {
		return guess{}, false
	}

	g.title = cleanStem(text[:cut])
	if g.title == "" {
		// Fansub names put the title after the leading group bracket; the
		// markers may sit at position zero. Fall back to cleaning the whole
		// stem minus the markers.
		g.title = cleanStem(text)
	}
	return g, g.title != ""
}

func parseGeneral(stem string) (guess, bool) {
	raw := collapseSeparators(stem)
	g := guess{year: extractYear(raw)}
	if g.year == 0 && !hasMovieKeyword(stem) {
		return guess{}, false
	}

	text := stripBrackets(raw)
	cut := len(text)
	if g.year != 0 {
		if idx := tokenIndex(text, strconv.Itoa(g.year)); idx >= 0 {
			cut = idx
		}
	}

	g.title = cleanStem(text[:cut])
	return g, g.title != ""
}

// extractYear returns the first plausible year token, skipping values that
// are common video widths (1920, 1280, ...).
func extractYear(s string) int {
	for _, m := range yearRe.FindAllString(s, -1) {
		y, _ := strconv.Atoi(m)
		if resolutionWidths[y] {
			continue
		}
		if y >= minYear && y <= maxYear {
			return y
		}
	}
	return 0
}

func hasMovieKeyword(s string) bool {
	return movieKeywordRe.MatchString(collapseSeparators(s))
}

// tokenIndex returns the index of tok as a whole word in s, or -1.
func tokenIndex(s, tok string) int {
	idx := strings.Index(s, tok)
	for idx >= 0 {
		leftOK := idx == 0 || s[idx-1] == ' ' || s[idx-1] == '(' || s[idx-1] == '['
		right := idx + len(tok)
		rightOK := right == len(s) || s[right] == ' ' || s[right] == ')' || s[right] == ']'
		if leftOK && rightOK {
			return idx
		}
		next := strings.Index(s[idx+1:], tok)
		if next < 0 {
			return -1
		}
		idx += 1 + next
	}
	return -1
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
