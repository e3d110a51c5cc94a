// Package hashed is a deterministic offline embedding service: each
// significant token hashes into a fixed-size bag-of-words vector. Good enough
// for local runs where relative similarity matters more than absolute quality.
package hashed

import (
	"hash/fnv"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/embedding/openai"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

const dimensions = 256

// Service implements domain.EmbeddingService without any upstream calls.
type Service struct{}

var _ domain.EmbeddingService = Service{}

// New constructs the offline embedder.
func New() Service { return Service{} }

// Embed hashes significant tokens into vector buckets.
func (Service) Embed(_ domain.Context, text string) ([]float32, error) {
	vec := make([]float32, dimensions)
	for _, tok := range textx.SignificantTokens(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%dimensions]++
	}
	return vec, nil
}

// CosineSimilarity matches the real service's similarity scale.
func (Service) CosineSimilarity(a, b []float32) float64 {
	return openai.Cosine(a, b)
}
