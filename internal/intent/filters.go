package intent

import (
	"strings"

	"github.com/cartwise/recommender/internal/models"
)

// categorySynonyms expands a parsed category into every catalog category that
// should be searched for it. Unknown categories pass through unchanged.
var categorySynonyms = map[string][]string{
	"pc":         {"pc", "laptop"},
	"desktop":    {"pc", "laptop"},
	"computer":   {"pc", "laptop"},
	"gaming pc":  {"pc", "laptop"},
	"mac":        {"pc", "laptop"},
	"macbook":    {"laptop"},
	"notebook":   {"laptop"},
	"ultrabook":  {"laptop"},
	"chromebook": {"laptop"},

	"phone":         {"smartphone"},
	"mobile":        {"smartphone"},
	"iphone":        {"smartphone"},
	"android":       {"smartphone"},
	"samsung phone": {"smartphone"},
	"pixel":         {"smartphone"},
	"oneplus":       {"smartphone"},
	"xiaomi":        {"smartphone"},

	"earphones": {"headphones"},
	"earbuds":   {"headphones"},
	"airpods":   {"headphones"},
	"headset":   {"headphones"},

	"watch":           {"smartwatch"},
	"apple watch":     {"smartwatch"},
	"galaxy watch":    {"smartwatch"},
	"fitness band":    {"smartwatch"},
	"fitness tracker": {"smartwatch"},

	"dslr":       {"camera"},
	"mirrorless": {"camera"},

	"bluetooth speaker": {"speaker"},
	"portable speaker":  {"speaker"},
	"soundbar":          {"speaker"},
}

// ExpandCategories returns all catalog categories a parsed category maps to.
func ExpandCategories(category string) []string {
	if category == "" {
		return nil
	}
	lower := strings.ToLower(category)
	if expanded, ok := categorySynonyms[lower]; ok {
		return expanded
	}
	return []string{lower}
}

// BuildFilters converts parsed intent into the payload filters applied during
// vector search. Categories are expanded via synonyms and matched with OR
// semantics. Eco and stock constraints are deliberately left off: the catalog
// is sparse on those fields and ranking handles them as soft signals.
func BuildFilters(parsed *models.ParsedIntent) models.SearchFilters {
	return models.SearchFilters{
		MaxPrice:       parsed.MaxPrice,
		MinPrice:       parsed.MinPrice,
		Categories:     ExpandCategories(parsed.Category),
		ExcludedBrands: parsed.ExcludedBrands,
	}
}

// BuildEmbeddingText enriches the raw query with parsed context so the dense
// embedding lands closer to the right catalog neighborhood.
func BuildEmbeddingText(query string, parsed *models.ParsedIntent) string {
	parts := []string{query}

	if parsed.Category != "" {
		parts = append(parts, "category: "+parsed.Category)
	}
	if parsed.UseCase != "" {
		parts = append(parts, "for "+parsed.UseCase)
	}

	return strings.Join(parts, " ")
}
