package parse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanNumeralRe matches Roman numerals II-IX when preceded by a space.
// Standalone "I" and "X" are excluded to avoid false positives like
// "I Robot" or "Hunter x Hunter".
var romanNumeralRe = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

// punctReplacer rewrites punctuation that commonly differs between a release
// name and the provider's canonical title.
var punctReplacer = strings.NewReplacer(
	"&", " and ",
	"-", " ",
	"'", "",
	".", " ",
)

var leadingArticles = [...]string{"the ", "a ", "an "}

// NormalizeRomanNumerals converts Roman numerals (II-IX) to Arabic numbers.
func NormalizeRomanNumerals(s string) string {
	return romanNumeralRe.ReplaceAllStringFunc(s, func(match string) string {
		switch strings.ToLower(strings.TrimSpace(match)) {
		case "ii":
			return " 2"
		case "iii":
			return " 3"
		case "iv":
			return " 4"
		case "v":
			return " 5"
		case "vi":
			return " 6"
		case "vii":
			return " 7"
		case "viii":
			return " 8"
		case "ix":
			return " 9"
		}
		return match
	})
}

// CleanTitle normalizes a title for matching purposes: lowercases, converts
// Roman numerals, removes accents and punctuation, strips leading articles
// and collapses whitespace. Two titles that clean to the same string are
// considered equivalent by the metadata scorer, and cleaned titles key the
// override table.
func CleanTitle(title string) string {
	s := strings.ToLower(title)

	// Numerals before accent removal, punctuation after both.
	s = NormalizeRomanNumerals(s)
	s = removeAccents(s)
	s = punctReplacer.Replace(s)

	// Handle subtitled titles ("Léon: The Professional") part by part.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range leadingArticles {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
