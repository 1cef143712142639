package match

import (
	"fmt"
	"strings"
)

// Bonus values awarded by the two configured alias tables.
const (
	brandAliasBonus      = 60.0
	categorySynonymBonus = 25.0
)

// AliasTable maps canonical catalog values (lower-cased) to known alternate
// spellings and typos. Loaded once from configuration, immutable thereafter,
// and safe for concurrent use without locking.
type AliasTable struct {
	aliases map[string][]string
	bonus   float64
}

// NewBrandAliases builds the brand alias table from configuration.
// A malformed table is a load-time error: a broken table would silently
// corrupt every subsequent score.
func NewBrandAliases(entries map[string][]string) (*AliasTable, error) {
	return newAliasTable(entries, brandAliasBonus)
}

// NewCategorySynonyms builds the category synonym table from configuration.
func NewCategorySynonyms(entries map[string][]string) (*AliasTable, error) {
	return newAliasTable(entries, categorySynonymBonus)
}

func newAliasTable(entries map[string][]string, bonus float64) (*AliasTable, error) {
	aliases := make(map[string][]string, len(entries))

	for canonical, alts := range entries {
		key := strings.ToLower(strings.TrimSpace(canonical))
		if key == "" {
			return nil, fmt.Errorf("alias table: empty canonical name")
		}
		if len(alts) == 0 {
			return nil, fmt.Errorf("alias table: %q has no aliases", canonical)
		}

		cleaned := make([]string, 0, len(alts))
		for _, alt := range alts {
			alt = strings.ToLower(strings.TrimSpace(alt))
			if alt == "" {
				return nil, fmt.Errorf("alias table: %q has an empty alias", canonical)
			}
			cleaned = append(cleaned, alt)
		}
		aliases[key] = cleaned
	}

	return &AliasTable{aliases: aliases, bonus: bonus}, nil
}

// Score returns the table's bonus if any token is a substring of, or
// contains, any alias for the given canonical name; otherwise 0.
func (t *AliasTable) Score(canonical string, tokens []string) float64 {
	if t == nil {
		return 0
	}

	alts, ok := t.aliases[strings.ToLower(canonical)]
	if !ok {
		return 0
	}

	for _, alt := range alts {
		for _, token := range tokens {
			if strings.Contains(token, alt) || strings.Contains(alt, token) {
				return t.bonus
			}
		}
	}
	return 0
}
