package metadata

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/vmunix/sortarr/internal/tmdb"
	"github.com/vmunix/sortarr/pkg/parse"
)

// TMDB genre id for animation, the primary target content of this tool.
const animationGenreID = 16

// Scoring weights. Title similarity dominates; the year bonus breaks ties
// between same-titled entries from different eras.
const (
	yearExactBonus   = 50.0
	yearAdjacent     = 15.0
	popularityCap    = 10.0
	animationBonus   = 10.0
	spinoffPenalty   = 20.0
	lengthPenaltyCap = 10.0
)

// Keywords that mark a candidate as a spinoff or side story when the query
// itself does not contain them.
var spinoffKeywords = []string{"special", "ova", "movie", "gaiden", "recap", "side story"}

// scoreCandidate ranks a search candidate against the requested title/year.
// Higher is better. Exact cleaned-title matches score far above partials.
func scoreCandidate(query string, year int, cand tmdb.Candidate) float64 {
	qClean := parse.CleanTitle(query)
	cClean := parse.CleanTitle(cand.Title)

	var sim float64
	if qClean != "" && qClean == cClean {
		sim = 1.0
	} else {
		sim = float64(edlib.JaroWinklerSimilarity(qClean, cClean))
	}
	score := sim * 100

	if year > 0 && cand.Year() > 0 {
		diff := cand.Year() - year
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score += yearExactBonus
		case diff == 1:
			score += yearAdjacent
		}
	}

	score += math.Min(cand.Popularity/10, popularityCap)

	for _, id := range cand.GenreIDs {
		if id == animationGenreID {
			score += animationBonus
			break
		}
	}

	for _, kw := range spinoffKeywords {
		if strings.Contains(cClean, kw) && !strings.Contains(qClean, kw) {
			score -= spinoffPenalty
			break
		}
	}

	if delta := len(cClean) - len(qClean); delta > 0 {
		score -= math.Min(float64(delta), lengthPenaltyCap)
	}

	return score
}

// rankCandidates sorts candidates by score, best first, and returns at most
// limit of them.
func rankCandidates(query string, year int, candidates []tmdb.Candidate, limit int) []tmdb.Candidate {
	type scored struct {
		cand  tmdb.Candidate
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{cand: c, score: scoreCandidate(query, year, c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]tmdb.Candidate, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.cand)
	}
	return out
}
