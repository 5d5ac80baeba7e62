// Package explain generates human-readable justifications for ranked
// recommendations. The baseline is purely template-driven: the same product,
// intent, and score breakdown always produce the same text. An optional LLM
// pass can polish the wording and degrades back to the template on any error.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cartwise/recommender/internal/models"
)

// LLMClient is the slice of the OpenAI client used for optional enrichment.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Explainer builds explanations for recommendations.
type Explainer struct {
	llm     LLMClient // nil disables enrichment
	timeout time.Duration
}

// NewExplainer creates an Explainer. llm may be nil for template-only output.
func NewExplainer(llm LLMClient, timeout time.Duration) *Explainer {
	return &Explainer{llm: llm, timeout: timeout}
}

// Explain fills in the explanation, ranking reason, and evidence for each
// recommendation in place. rank is 1-based within the response.
func (e *Explainer) Explain(ctx context.Context, recs []models.Recommendation, parsed *models.ParsedIntent) {
	for i := range recs {
		rec := &recs[i]
		rec.RankingReason = rankingReason(rec.Breakdown, i+1)
		rec.Evidence = gatherEvidence(&rec.Product, parsed, rec.Breakdown)
		rec.Explanation = buildExplanation(&rec.Product, parsed, rec.Breakdown)

		if e.llm != nil {
			rec.Explanation = e.enrich(ctx, rec.Explanation, &rec.Product)
		}
	}
}

// enrich asks the LLM to polish the template explanation. Any failure
// returns the deterministic baseline untouched.
func (e *Explainer) enrich(ctx context.Context, baseline string, product *models.Product) string {
	llmCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Product: %s (%s, %s). Draft explanation: %s",
		product.Title, product.Category, product.Brand, baseline)

	polished, err := e.llm.Complete(llmCtx,
		"Rewrite this product recommendation explanation in one friendly sentence. Keep every factual claim; add nothing new.",
		prompt)
	if err != nil || strings.TrimSpace(polished) == "" {
		slog.Debug("explanation enrichment failed, keeping template output", "error", err)
		return baseline
	}

	return strings.TrimSpace(polished)
}

// rankingReason names the factors that carried this product to its position.
func rankingReason(b models.ScoreBreakdown, rank int) string {
	var factors []string

	if b.Semantic > 0.8 {
		factors = append(factors, "highly relevant to your query")
	} else if b.Semantic > 0.6 {
		factors = append(factors, "a good match for your search")
	}

	if b.Value > 0.7 {
		factors = append(factors, "excellent value for money")
	} else if b.Value > 0.5 {
		factors = append(factors, "a good price-quality ratio")
	}

	if b.Preference > 0.7 {
		factors = append(factors, "matches most of your preferences")
	} else if b.Preference > 0.5 {
		factors = append(factors, "aligns with some of your preferences")
	}

	if b.Review > 0.7 {
		factors = append(factors, "highly rated by other buyers")
	} else if b.Review > 0.5 {
		factors = append(factors, "well reviewed")
	}

	position := "Ranked"
	switch rank {
	case 1:
		position = "Top"
	case 2:
		position = "Second"
	case 3:
		position = "Third"
	}

	if len(factors) == 0 {
		return fmt.Sprintf("%s match based on overall relevance", position)
	}

	return fmt.Sprintf("%s recommendation because it is %s", position, strings.Join(factors, ", "))
}

// gatherEvidence lists the concrete data points behind the score, leading
// with the attributes that drove the dominant factor.
func gatherEvidence(product *models.Product, parsed *models.ParsedIntent, b models.ScoreBreakdown) []string {
	var evidence []string

	switch dominantFactor(b) {
	case "value":
		if parsed.HasMaxPrice() {
			evidence = append(evidence, fmt.Sprintf("%.2f %s under your %.2f budget",
				parsed.MaxPrice-product.Price, product.Currency, parsed.MaxPrice))
		} else {
			evidence = append(evidence, fmt.Sprintf("Strong value at %.2f %s for a %.1f-star product",
				product.Price, product.Currency, product.Rating))
		}
	case "preference":
		if len(parsed.BrandPreferences) > 0 && product.Brand != "" {
			evidence = append(evidence, "From your preferred brand: "+product.Brand)
		}
		if parsed.EcoFriendly && product.EcoCertified {
			evidence = append(evidence, "Eco-certified as requested")
		}
	case "review":
		evidence = append(evidence, fmt.Sprintf("Rated %.1f/5 across %d reviews",
			product.Rating, product.ReviewsCount))
	}

	evidence = append(evidence, fmt.Sprintf("Price: %.2f %s", product.Price, product.Currency))

	if product.Rating > 0 {
		evidence = append(evidence, fmt.Sprintf("Rating: %.1f/5 (%d reviews)",
			product.Rating, product.ReviewsCount))
	}
	if product.EcoCertified {
		evidence = append(evidence, "Eco-certified product")
	}
	if product.InStock {
		evidence = append(evidence, "In stock")
	} else {
		evidence = append(evidence, "Currently out of stock")
	}

	// Specs in sorted key order so output is stable.
	if len(product.Specs) > 0 {
		keys := make([]string, 0, len(product.Specs))
		for k := range product.Specs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 3 {
			keys = keys[:3]
		}
		for _, k := range keys {
			evidence = append(evidence, fmt.Sprintf("%s: %s", k, product.Specs[k]))
		}
	}

	return dedupe(evidence)
}

// dominantFactor names the base factor with the highest raw score.
func dominantFactor(b models.ScoreBreakdown) string {
	best, name := b.Semantic, "semantic"
	if b.Value > best {
		best, name = b.Value, "value"
	}
	if b.Preference > best {
		best, name = b.Preference, "preference"
	}
	if b.Review > best {
		name = "review"
	}
	return name
}

func buildExplanation(product *models.Product, parsed *models.ParsedIntent, b models.ScoreBreakdown) string {
	var parts []string

	switch {
	case b.Final > 0.8:
		parts = append(parts, "Excellent match for your search.")
	case b.Final > 0.6:
		parts = append(parts, "Good match for what you're looking for.")
	default:
		parts = append(parts, "Potential option based on your criteria.")
	}

	var highlights []string
	if parsed.HasMaxPrice() && product.Price < parsed.MaxPrice {
		highlights = append(highlights, fmt.Sprintf("%.2f %s under budget",
			parsed.MaxPrice-product.Price, product.Currency))
	}
	if product.Rating >= 4.5 && product.ReviewsCount > 100 {
		highlights = append(highlights, "top rated")
	}
	if product.EcoCertified {
		highlights = append(highlights, "eco-friendly")
	}
	if len(highlights) > 0 {
		parts = append(parts, "Key highlights: "+strings.Join(highlights, ", ")+".")
	}

	parts = append(parts, fmt.Sprintf("Overall match score: %d%%.", int(b.Final*100)))

	return strings.Join(parts, " ")
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
