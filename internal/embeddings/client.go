// Package embeddings abstracts text embedding generation so the retrieval
// pipeline can run against the real OpenAI API or a deterministic mock.
package embeddings

import "context"

// Client produces embedding vectors for catalog and query text. All vectors
// from one client share the same dimension; the mock additionally guarantees
// unit length.
type Client interface {
	// GetEmbedding embeds a single text.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetEmbeddings embeds a batch in one call, preserving input order.
	// Preferred for catalog upserts where per-text calls would burn the
	// provider rate limit.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
