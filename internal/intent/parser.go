// Package intent extracts structured purchase intent from natural language
// queries. An LLM does the heavy lifting when available; a rule-based parser
// covers every query the LLM cannot, so query understanding never fails.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cartwise/recommender/internal/models"
)

var (
	priceRangeRe  = regexp.MustCompile(`(?:between\s*)?(\d+)\s*(?:and|-|to)\s*(\d+)`)
	priceMaxRe    = regexp.MustCompile(`(?:under|below|less\s*than|max|up\s*to|budget(?:\s*of)?)\s*\$?(\d+)`)
	priceSingleRe = regexp.MustCompile(`\$(\d+)`)
)

// brandKeywords maps a brand to the product-line terms that imply it.
var brandKeywords = map[string][]string{
	"apple":   {"apple", "macbook", "iphone", "ipad", "airpods", "mac mini", "imac"},
	"samsung": {"samsung", "galaxy"},
	"lenovo":  {"lenovo", "thinkpad", "ideapad"},
	"hp":      {"hp", "pavilion", "envy", "spectre", "omen", "victus"},
	"asus":    {"asus", "rog", "vivobook", "zenbook"},
	"dell":    {"dell", "xps", "inspiron", "alienware"},
	"sony":    {"sony", "xperia", "alpha"},
	"google":  {"google", "pixel"},
	"dji":     {"dji", "mavic"},
	"nikon":   {"nikon"},
	"canon":   {"canon", "eos"},
}

// categoryKeywords maps a normalized category to terms that imply it.
// Order matters: more specific categories are checked first.
var categoryKeywords = []struct {
	category string
	terms    []string
}{
	{"laptop", []string{"laptop", "notebook", "macbook", "chromebook", "ultrabook", "thinkpad", "ideapad", "vivobook"}},
	{"smartphone", []string{"phone", "smartphone", "iphone", "android", "mobile", "galaxy s", "pixel"}},
	{"headphones", []string{"headphone", "headphones", "earbuds", "earphones", "airpods", "earphone", "headset", "wireless earbuds"}},
	{"smartwatch", []string{"smartwatch", "watch", "wearable", "fitness band", "apple watch", "galaxy watch"}},
	{"camera", []string{"camera", "dslr", "mirrorless", "photography"}},
	{"speaker", []string{"speaker", "speakers", "bluetooth speaker", "soundbar", "audio"}},
	{"drone", []string{"drone", "drones", "quadcopter", "aerial", "mavic"}},
	{"pc", []string{"pc", "desktop", "computer", "mac mini", "imac"}},
}

var priceWords = []string{"cheap", "budget", "affordable", "low cost", "inexpensive"}
var qualityWords = []string{"best", "premium", "quality", "top", "high-end", "pro"}
var ecoWords = []string{"eco", "sustainable", "green", "environmental", "recyclable"}

var stopWords = map[string]struct{}{
	"i": {}, "want": {}, "need": {}, "looking": {}, "for": {}, "a": {},
	"an": {}, "the": {}, "me": {}, "to": {}, "with": {},
}

// ParseQuery extracts intent from a query using rules alone. It always
// produces a usable intent, which makes it the fallback when the LLM path
// errors or times out.
func ParseQuery(query string) *models.ParsedIntent {
	lower := strings.ToLower(query)

	intent := &models.ParsedIntent{
		Priority: models.PriorityBalanced,
		Keywords: ExtractKeywords(query),
	}

	intent.MinPrice, intent.MaxPrice = parsePrices(lower)

	for brand, terms := range brandKeywords {
		if containsAny(lower, terms) {
			intent.BrandPreferences = append(intent.BrandPreferences, brand)
		}
	}

	for _, ck := range categoryKeywords {
		if containsAny(lower, ck.terms) {
			intent.Category = ck.category
			break
		}
	}
	// "wireless" on its own almost always means headphones
	if intent.Category == "" && strings.Contains(lower, "wireless") {
		intent.Category = "headphones"
	}

	intent.EcoFriendly = containsAny(lower, ecoWords)

	switch {
	case containsAny(lower, priceWords):
		intent.Priority = models.PriorityPrice
	case containsAny(lower, qualityWords):
		intent.Priority = models.PriorityQuality
	case intent.EcoFriendly:
		intent.Priority = models.PriorityEco
	}

	return intent
}

// parsePrices pulls min/max price constraints out of a query. Ranges win over
// single bounds; a bare "$N" is treated as a budget ceiling.
func parsePrices(lower string) (minPrice, maxPrice float64) {
	if m := priceRangeRe.FindStringSubmatch(lower); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo < hi {
			return lo, hi
		}
	}

	if m := priceMaxRe.FindStringSubmatch(lower); m != nil {
		maxPrice, _ = strconv.ParseFloat(m[1], 64)
		return 0, maxPrice
	}

	if m := priceSingleRe.FindStringSubmatch(lower); m != nil {
		maxPrice, _ = strconv.ParseFloat(m[1], 64)
		return 0, maxPrice
	}

	return 0, 0
}

// ExtractKeywords tokenizes a query and drops filler words.
func ExtractKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'")
		if f == "" {
			continue
		}
		if _, skip := stopWords[f]; skip {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
