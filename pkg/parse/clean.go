package parse

import (
	"regexp"
	"strings"
)

var (
	separatorRe   = regexp.MustCompile(`[._]+`)
	bracketRe     = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	quotedRe      = regexp.MustCompile(`'[^']*'|"[^"]*"`)
	groupSuffixRe = regexp.MustCompile(`-\s*[A-Za-z0-9]+\s*$`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	crcRe         = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\b`)
)

// Technical tags stripped during lexical title cleanup: resolution, codec,
// audio, source, bit depth, language and release flags.
var tagPatterns = []string{
	`\b\d{3,4}[pi]\b`,
	`\b(4k|uhd)\b`,
	`\b(x26[45]|h\s?26[456]|hevc|avc|av1|xvid|divx|vp9)\b`,
	`\b(8bit|10bit|12bit|hi10p?|hi444pp?)\b`,
	`\b(aac|ac3|eac3|ddp?|dts(\s?hd)?(\s?ma)?|truehd|atmos|flac|opus|mp3)\b`,
	`\b\d\s?\.\s?\d(ch)?\b`,
	`\b(bluray|blu\s?ray|bdrip|bd|brrip|remux|web\s?dl|webrip|web|hdtv|dvdrip|dvd|tvrip|rerip)\b`,
	`\b(proper|repack|internal|limited|extended|uncut|remastered|complete|batch|uncensored)\b`,
	`\b(multi|dual|subbed|subs?|dubbed|dub|raw|eng|jpn|kor|ita|spa|vostfr)\b`,
}

var tagRes []*regexp.Regexp

func init() {
	tagRes = make([]*regexp.Regexp, 0, len(tagPatterns))
	for _, p := range tagPatterns {
		tagRes = append(tagRes, regexp.MustCompile(`(?i)`+p))
	}
}

// collapseSeparators turns dot/underscore separated names into spaced ones.
func collapseSeparators(s string) string {
	s = separatorRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// stripBrackets removes bracketed, parenthesized and braced chunks.
func stripBrackets(s string) string {
	s = bracketRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// cleanStem performs the lexical cleanup used when no structured parse
// succeeds, and to tidy the title fragment a structured parse leaves over.
func cleanStem(s string) string {
	s = stripBrackets(collapseSeparators(s))
	s = quotedRe.ReplaceAllString(s, " ")
	s = groupSuffixRe.ReplaceAllString(s, " ")
	s = crcRe.ReplaceAllString(s, " ")
	for _, re := range tagRes {
		s = re.ReplaceAllString(s, " ")
	}
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " -~+")
}
