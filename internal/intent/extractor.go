package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/cartwise/recommender/internal/models"
)

const systemPrompt = `You are a product search query analyzer. Extract structured intent from user queries.

CATEGORY MAPPING (use these standard categories):
- "laptop" for: laptop, notebook, macbook, ultrabook, chromebook
- "pc" for: pc, desktop, gaming pc, mac mini, imac
- "smartphone" for: phone, mobile, iphone, android, samsung phone, pixel, oneplus, xiaomi
- "headphones" for: headphones, earphones, earbuds, airpods, headset
- "smartwatch" for: watch, smartwatch, apple watch, galaxy watch, fitness band
- "camera" for: camera, dslr, mirrorless
- "speaker" for: speaker, bluetooth speaker, soundbar
- "drone" for: drone, quadcopter

Output JSON with these fields:
- category: standardized category from the list above or null
- max_price: maximum budget as a number or null
- min_price: minimum price as a number or null
- eco_friendly: boolean, true if the user wants eco/sustainable products
- use_case: primary use case (coding, gaming, business, travel, etc.) or null
- priority: "price", "value", "quality", "eco", or "balanced"
- brand_preferences: list of preferred brands or empty
- excluded_brands: list of brands to avoid or empty
- keywords: important search keywords extracted from the query`

// jsonFenceRe strips a markdown code fence some models wrap JSON in.
var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// LLMClient is the slice of the OpenAI client the extractor needs.
type LLMClient interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Extractor turns a raw query into parsed intent. With an LLM configured it
// extracts via chat completion and backfills gaps from the rule parser; with
// no LLM (or on any LLM failure) the rule parser alone serves the query.
type Extractor struct {
	llm     LLMClient
	timeout time.Duration
}

// NewExtractor creates an Extractor. llm may be nil to run rules-only.
func NewExtractor(llm LLMClient, timeout time.Duration) *Extractor {
	return &Extractor{llm: llm, timeout: timeout}
}

// Understand parses the query. It never fails: LLM errors degrade to the
// rule-based parser so a provider outage cannot take down recommendations.
func (e *Extractor) Understand(ctx context.Context, query string) *models.ParsedIntent {
	fallback := ParseQuery(query)
	if e.llm == nil {
		return fallback
	}

	llmCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	parsed, err := e.llmExtract(llmCtx, query)
	if err != nil {
		slog.Warn("LLM intent extraction failed, using rule-based fallback",
			"error", err,
		)
		return fallback
	}

	return merge(parsed, fallback)
}

// llmIntent mirrors the JSON shape the system prompt asks for.
type llmIntent struct {
	Category         string   `json:"category"`
	MaxPrice         float64  `json:"max_price"`
	MinPrice         float64  `json:"min_price"`
	EcoFriendly      bool     `json:"eco_friendly"`
	UseCase          string   `json:"use_case"`
	Priority         string   `json:"priority"`
	BrandPreferences []string `json:"brand_preferences"`
	ExcludedBrands   []string `json:"excluded_brands"`
	Keywords         []string `json:"keywords"`
}

func (e *Extractor) llmExtract(ctx context.Context, query string) (*models.ParsedIntent, error) {
	content, err := e.llm.CompleteJSON(ctx, systemPrompt, query)
	if err != nil {
		return nil, err
	}

	if m := jsonFenceRe.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var raw llmIntent
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, err
	}

	priority := models.Priority(raw.Priority)
	if !priority.IsValid() {
		priority = models.PriorityBalanced
	}

	return &models.ParsedIntent{
		Category:         strings.ToLower(raw.Category),
		MaxPrice:         raw.MaxPrice,
		MinPrice:         raw.MinPrice,
		EcoFriendly:      raw.EcoFriendly,
		UseCase:          raw.UseCase,
		Priority:         priority,
		BrandPreferences: raw.BrandPreferences,
		ExcludedBrands:   raw.ExcludedBrands,
		Keywords:         raw.Keywords,
	}, nil
}

// merge fills fields the LLM left empty from the rule-based parse.
func merge(parsed, fallback *models.ParsedIntent) *models.ParsedIntent {
	if parsed.Category == "" {
		parsed.Category = fallback.Category
	}
	if parsed.MaxPrice == 0 {
		parsed.MaxPrice = fallback.MaxPrice
	}
	if parsed.MinPrice == 0 {
		parsed.MinPrice = fallback.MinPrice
	}
	if len(parsed.BrandPreferences) == 0 {
		parsed.BrandPreferences = fallback.BrandPreferences
	}
	if len(parsed.Keywords) == 0 {
		parsed.Keywords = fallback.Keywords
	}
	return parsed
}
