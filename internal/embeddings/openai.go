package embeddings

import (
	"context"
	"fmt"

	"github.com/cartwise/recommender/internal/openai"
	"github.com/cartwise/recommender/internal/recerrors"
)

// OpenAIClient implements the Client interface on top of the OpenAI wrapper.
type OpenAIClient struct {
	client *openai.Client
}

// Ensure OpenAIClient implements Client interface
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates an embedding client backed by the OpenAI API.
func NewOpenAIClient(client *openai.Client) *OpenAIClient {
	return &OpenAIClient{client: client}
}

// GetEmbedding generates an embedding vector for the given text.
// API failures surface as ProviderUnavailableError so callers can
// distinguish them from an empty result.
func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	embedding, err := c.client.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, recerrors.NewProviderUnavailableError("openai", fmt.Sprintf("embedding request failed: %v", err))
	}
	return embedding, nil
}

// GetEmbeddings generates embedding vectors for multiple texts in a batch.
func (c *OpenAIClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := c.client.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, recerrors.NewProviderUnavailableError("openai", fmt.Sprintf("batch embedding request failed: %v", err))
	}
	return embeddings, nil
}
