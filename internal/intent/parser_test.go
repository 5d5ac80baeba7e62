package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/models"
)

func TestParseQuery_Prices(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMin float64
		wantMax float64
	}{
		{"under", "laptop under 1500", 0, 1500},
		{"below", "phone below 800", 0, 800},
		{"less than", "earbuds less than 200", 0, 200},
		{"budget", "budget 1000 laptop", 0, 1000},
		{"up to", "camera up to 2500", 0, 2500},
		{"range between", "laptop between 800 and 1700", 800, 1700},
		{"range dash", "laptop 800-1700", 800, 1700},
		{"dollar sign", "headphones $150", 0, 150},
		{"no price", "a nice laptop", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseQuery(tt.query)
			assert.InDelta(t, tt.wantMin, parsed.MinPrice, 1e-9)
			assert.InDelta(t, tt.wantMax, parsed.MaxPrice, 1e-9)
		})
	}
}

func TestParseQuery_Categories(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"I need a new laptop for work", "laptop"},
		{"macbook for coding", "laptop"},
		{"iphone with good camera", "smartphone"},
		{"wireless earbuds", "headphones"},
		{"apple watch", "smartwatch"},
		{"dslr for photography", "camera"},
		{"bluetooth speaker for parties", "speaker"},
		{"drone with 4k video", "drone"},
		{"something wireless", "headphones"},
		{"a nice gift", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			parsed := ParseQuery(tt.query)
			assert.Equal(t, tt.want, parsed.Category)
		})
	}
}

func TestParseQuery_BrandsAndPriority(t *testing.T) {
	parsed := ParseQuery("cheap thinkpad for coding")

	assert.Contains(t, parsed.BrandPreferences, "lenovo")
	assert.Equal(t, models.PriorityPrice, parsed.Priority)

	parsed = ParseQuery("premium sony headphones")
	assert.Contains(t, parsed.BrandPreferences, "sony")
	assert.Equal(t, models.PriorityQuality, parsed.Priority)

	parsed = ParseQuery("sustainable laptop")
	assert.True(t, parsed.EcoFriendly)
	assert.Equal(t, models.PriorityEco, parsed.Priority)

	parsed = ParseQuery("laptop for coding")
	assert.Equal(t, models.PriorityBalanced, parsed.Priority)
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("I want a laptop for coding")

	assert.Equal(t, []string{"laptop", "coding"}, keywords)
}

func TestExpandCategories(t *testing.T) {
	assert.Equal(t, []string{"pc", "laptop"}, ExpandCategories("desktop"))
	assert.Equal(t, []string{"smartphone"}, ExpandCategories("iphone"))
	assert.Equal(t, []string{"laptop"}, ExpandCategories("laptop"))
	assert.Nil(t, ExpandCategories(""))
}

func TestBuildFilters(t *testing.T) {
	parsed := &models.ParsedIntent{
		Category:       "computer",
		MaxPrice:       2000,
		MinPrice:       500,
		ExcludedBrands: []string{"acme"},
	}

	filters := BuildFilters(parsed)

	require.Equal(t, []string{"pc", "laptop"}, filters.Categories)
	assert.InDelta(t, 2000, filters.MaxPrice, 1e-9)
	assert.InDelta(t, 500, filters.MinPrice, 1e-9)
	assert.Equal(t, []string{"acme"}, filters.ExcludedBrands)
}

func TestBuildEmbeddingText(t *testing.T) {
	parsed := &models.ParsedIntent{Category: "laptop", UseCase: "coding"}

	text := BuildEmbeddingText("light laptop", parsed)

	assert.Equal(t, "light laptop category: laptop for coding", text)
}
