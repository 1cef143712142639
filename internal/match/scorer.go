package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cocoamatch/backend/internal/domain"
)

// Scoring bonuses. Factors are additive and independent: no factor's
// contribution depends on another's outcome, so adding a matching token to
// a query never lowers a candidate's score.
const (
	brandPhraseBonus   = 50.0 // brand appears verbatim as a contiguous token phrase
	brandWordBonus     = 20.0 // per matching brand word
	nameWordBonus      = 25.0 // per matching candidate-name word
	multiWordNameBonus = 30.0 // extra when more than one name word matches
	percentMatchBonus  = 50.0 // exact integer cacao-percent hit
	originWordBonus    = 15.0 // per matching origin-tag word (length > 3)
)

// brandWordSplitRegex splits brand names into words on whitespace,
// ampersand, hyphen, and apostrophe.
var brandWordSplitRegex = regexp.MustCompile(`[\s&\-']+`)

// nameStopWords are generic type descriptors that appear in nearly every
// candidate name and carry no matching signal.
var nameStopWords = map[string]bool{
	"chocolate": true,
	"chocolat":  true,
	"cocoa":     true,
	"cacao":     true,
	"bar":       true,
	"bars":      true,
	"tablet":    true,
	"with":      true,
}

// minOriginWordLength is exclusive: shorter origin words are skipped.
const minOriginWordLength = 3

// Scorer computes a bounded additive match score between one normalized
// query and one candidate catalog record. It holds only the two immutable
// alias tables and is safe for concurrent use.
type Scorer struct {
	brandAliases     *AliasTable
	categorySynonyms *AliasTable
}

// NewScorer creates a scorer using the given alias and synonym tables.
// Either table may be nil, in which case that bonus is never awarded.
func NewScorer(brandAliases, categorySynonyms *AliasTable) *Scorer {
	return &Scorer{
		brandAliases:     brandAliases,
		categorySynonyms: categorySynonyms,
	}
}

// Score computes the match score for one (query, candidate) pair along with
// one human-readable reason per contributing factor, in evaluation order:
// brand, name, percent, origin, category. Deterministic for a given pair.
func (s *Scorer) Score(q NormalizedQuery, c domain.CatalogEntry) (float64, []string) {
	tokens := tokenSet(q.Tokens)

	var score float64
	var reasons []string

	if pts := s.scoreBrand(q, tokens, c.Brand); pts > 0 {
		score += pts
		reasons = append(reasons, fmt.Sprintf("brand %q matched (+%.0f)", c.Brand, pts))
	}

	if pts, hits := scoreName(tokens, c.Name); pts > 0 {
		score += pts
		reasons = append(reasons, fmt.Sprintf("%d name word(s) matched (+%.0f)", hits, pts))
	}

	if c.CacaoPct != nil {
		if _, ok := q.Percents[*c.CacaoPct]; ok {
			score += percentMatchBonus
			reasons = append(reasons, fmt.Sprintf("cacao %d%% matched (+%.0f)", *c.CacaoPct, percentMatchBonus))
		}
	}

	if pts, hits := scoreOrigins(tokens, c.Origins); pts > 0 {
		score += pts
		reasons = append(reasons, fmt.Sprintf("%d origin word(s) matched (+%.0f)", hits, pts))
	}

	if pts, hits := s.scoreCategories(q, tokens, c.Categories); pts > 0 {
		score += pts
		reasons = append(reasons, fmt.Sprintf("%d category hit(s) (+%.0f)", hits, pts))
	}

	return score, reasons
}

// scoreBrand awards the verbatim-phrase bonus, the per-word bonus, and the
// alias bonus. The three stack: each is an independent signal that the
// label really names this brand.
func (s *Scorer) scoreBrand(q NormalizedQuery, tokens map[string]struct{}, brand string) float64 {
	if brand == "" {
		return 0
	}

	var pts float64

	brandTokens := Normalize(brand).Tokens
	if len(brandTokens) > 0 && containsPhrase(q.Tokens, brandTokens) {
		pts += brandPhraseBonus
	}

	for _, word := range brandWordSplitRegex.Split(strings.ToLower(brand), -1) {
		if len(word) <= minTokenLength {
			continue
		}
		if _, ok := tokens[word]; ok {
			pts += brandWordBonus
		}
	}

	pts += s.brandAliases.Score(strings.ToLower(brand), q.Tokens)

	return pts
}

// scoreName awards the per-word bonus over non-generic candidate-name
// words, plus a fixed extra when several words confirm each other.
func scoreName(tokens map[string]struct{}, name string) (float64, int) {
	hits := 0
	for _, word := range Normalize(name).Tokens {
		if nameStopWords[word] {
			continue
		}
		if _, ok := tokens[word]; ok {
			hits++
		}
	}
	if hits == 0 {
		return 0, 0
	}

	pts := float64(hits) * nameWordBonus
	if hits > 1 {
		pts += multiWordNameBonus
	}
	return pts, hits
}

func scoreOrigins(tokens map[string]struct{}, origins []string) (float64, int) {
	hits := 0
	for _, origin := range origins {
		for _, word := range strings.Fields(strings.ToLower(origin)) {
			if len(word) <= minOriginWordLength {
				continue
			}
			if _, ok := tokens[word]; ok {
				hits++
			}
		}
	}
	return float64(hits) * originWordBonus, hits
}

// scoreCategories awards a fixed bonus per category whose canonical name or
// any configured colloquial synonym appears in the query.
func (s *Scorer) scoreCategories(q NormalizedQuery, tokens map[string]struct{}, categories []string) (float64, int) {
	hits := 0
	for _, category := range categories {
		category = strings.ToLower(category)
		if _, ok := tokens[category]; ok {
			hits++
			continue
		}
		if s.categorySynonyms.Score(category, q.Tokens) > 0 {
			hits++
		}
	}
	return float64(hits) * categorySynonymBonus, hits
}

// containsPhrase reports whether needle appears as a contiguous
// subsequence of haystack.
func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		matched := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
