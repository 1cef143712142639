package openfoodfacts

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cocoamatch/backend/internal/domain"
)

// searchResponse models the subset of the Open Food Facts search payload
// the engine consumes.
type searchResponse struct {
	Products []product `json:"products"`
	Count    int       `json:"count"`
}

type product struct {
	Code           string   `json:"code"`
	ProductName    string   `json:"product_name"`
	Brands         string   `json:"brands"`
	CategoriesTags []string `json:"categories_tags"`
	Origins        string   `json:"origins"`
	Quantity       string   `json:"quantity"`
}

// cacaoPctRegex picks a percentage figure out of free text, e.g.
// "Guanaja 70%" or "70 % cacao".
var cacaoPctRegex = regexp.MustCompile(`(\d{1,3})\s*%`)

// mapProducts normalizes external records onto the canonical catalog shape
// once, at ingestion. Records without a stable code or a name are dropped.
func mapProducts(products []product) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(products))
	for _, p := range products {
		if entry, ok := mapProduct(p); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func mapProduct(p product) (domain.CatalogEntry, bool) {
	if p.Code == "" || p.ProductName == "" {
		return domain.CatalogEntry{}, false
	}

	return domain.CatalogEntry{
		ID:         p.Code,
		Brand:      primaryBrand(p.Brands),
		Name:       p.ProductName,
		CacaoPct:   extractCacaoPct(p.ProductName, p.Quantity),
		Categories: cleanCategoryTags(p.CategoriesTags),
		Origins:    splitList(p.Origins),
	}, true
}

// primaryBrand takes the first entry of the comma-separated brands field.
func primaryBrand(brands string) string {
	if idx := strings.Index(brands, ","); idx >= 0 {
		brands = brands[:idx]
	}
	return strings.TrimSpace(brands)
}

// cleanCategoryTags strips the language prefix from taxonomy tags and
// turns dashes into spaces: "en:dark-chocolates" -> "dark chocolates".
func cleanCategoryTags(tags []string) []string {
	categories := make([]string, 0, len(tags))
	for _, tag := range tags {
		if idx := strings.Index(tag, ":"); idx >= 0 {
			tag = tag[idx+1:]
		}
		tag = strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
		if tag != "" {
			categories = append(categories, tag)
		}
	}
	if len(categories) == 0 {
		return nil
	}
	return categories
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// extractCacaoPct reads a composition percentage from the product name or,
// failing that, the quantity field. Values outside [0,100] are ignored.
func extractCacaoPct(fields ...string) *int {
	for _, field := range fields {
		m := cacaoPctRegex.FindStringSubmatch(field)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil || v < 0 || v > 100 {
			continue
		}
		return &v
	}
	return nil
}
