package embedding

import (
	"context"
	"fmt"
	"math"
)

// Result is one embedding with its provenance. Dim always equals len(Values);
// the embedder stage validates it against the configured dimension before any
// chunk write.
type Result struct {
	Values []float32
	Model  string
	Dim    int
}

// Provider computes a vector from text.
type Provider interface {
	Embed(ctx context.Context, text string) (*Result, error)

	// ModelId identifies the model for provenance and cache keys.
	ModelId() string
}

// ServiceError marks a failed call to an embedding endpoint.
type ServiceError struct {
	Provider  string
	Status    int
	Body      string
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s embedding error (status %d): %s", e.Provider, e.Status, e.Body)
}

// normalizeVector normalizes a vector to unit length. Cosine distance in
// pgvector needs normalized vectors for meaningful similarity scores.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
