package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	vecmath "github.com/cartwise/recommender/pkg/embeddings"
)

// MockClient implements the Client interface for testing and local development.
// It generates deterministic embeddings based on the input text hash, so the
// same query always retrieves the same neighborhood.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a new mock embedding client.
// Default dimensions is 1536 to match OpenAI's text-embedding-3-small.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 1536}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// GetEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	return c.generateDeterministicEmbedding(text), nil
}

// GetEmbeddings generates embeddings for multiple texts.
// Returns an error if any text is empty.
func (c *MockClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text at index %d cannot be empty", i)
		}
		embeddings[i] = c.generateDeterministicEmbedding(text)
	}
	return embeddings, nil
}

// generateDeterministicEmbedding creates a normalized embedding vector from
// the text hash. Each block of values is seeded with the block index so the
// vector does not repeat with a short period.
func (c *MockClient) generateDeterministicEmbedding(text string) []float32 {
	embedding := make([]float32, c.dimensions)

	var block [8]byte
	hash := sha256.Sum256([]byte(text))
	for i := 0; i < c.dimensions; i++ {
		if i%len(hash) == 0 && i > 0 {
			binary.BigEndian.PutUint64(block[:], uint64(i))
			hash = sha256.Sum256(append(hash[:], block[:]...))
		}
		// Map the hash byte to [-1, 1]
		embedding[i] = (float32(hash[i%len(hash)]) / 127.5) - 1.0
	}

	vecmath.NormalizeL2(embedding)

	return embedding
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
