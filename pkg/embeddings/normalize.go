// Package embeddings provides utilities for embedding vectors (e.g. L2 normalization).
package embeddings

import "math"

// NormalizeL2 normalizes a raw embedding vector to unit length in-place.
// Cosine similarity over unit vectors reduces to a dot product, so the vector
// store can compare query and product embeddings cheaply.
func NormalizeL2(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	// An all-zero vector has no direction to preserve.
	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}
