package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketContentRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	numberTokenRe    = regexp.MustCompile(`^\d+$`)
	ordinalTokenRe   = regexp.MustCompile(`(?i)^\d+(st|nd|rd|th)$`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// Filler words that rarely appear in the provider's canonical titles.
var fillerWords = map[string]bool{
	"edition":    true,
	"extended":   true,
	"directors":  true,
	"director's": true,
	"cut":        true,
	"remastered": true,
	"complete":   true,
	"uncut":      true,
	"part":       true,
	"vol":        true,
	"volume":     true,
	"season":     true,
	"tv":         true,
}

// titleVariants generates the ordered, de-duplicated sequence of
// progressively simplified titles the resolver queries with: the original,
// brackets removed, filler words removed, non-year numbers stripped, the
// year stripped, then successively shorter word-prefix truncations.
// Exhausting the sequence is the normal no-result path.
func titleVariants(title string, year int) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(s string) string {
		s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
		if s == "" {
			return ""
		}
		low := strings.ToLower(s)
		if !seen[low] {
			seen[low] = true
			out = append(out, s)
		}
		return s
	}

	add(title)

	noBrackets := add(bracketContentRe.ReplaceAllString(title, " "))
	if noBrackets == "" {
		noBrackets = title
	}

	noFiller := add(removeTokens(noBrackets, func(tok string) bool {
		return fillerWords[strings.ToLower(tok)] || ordinalTokenRe.MatchString(tok)
	}))
	if noFiller == "" {
		noFiller = noBrackets
	}

	noNumbers := add(removeTokens(noFiller, func(tok string) bool {
		return numberTokenRe.MatchString(tok) && atoiOr(tok) != year
	}))
	if noNumbers == "" {
		noNumbers = noFiller
	}

	base := noNumbers
	if year > 0 {
		yearless := add(removeTokens(noNumbers, func(tok string) bool {
			return atoiOr(tok) == year
		}))
		if yearless != "" {
			base = yearless
		}
	}

	// Word-prefix truncations of the fully cleaned title, longest first.
	words := strings.Fields(base)
	for i := len(words) - 1; i >= 1; i-- {
		add(strings.Join(words[:i], " "))
	}

	return out
}

// removeTokens drops the whitespace-separated tokens drop reports true for.
func removeTokens(s string, drop func(string) bool) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, tok := range fields {
		if !drop(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func atoiOr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
