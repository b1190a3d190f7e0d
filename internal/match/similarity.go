package match

import (
	"math"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// CosineSimilarity calculates the cosine similarity between two embeddings.
// Returns a value between -1 and 1, where 1 means identical direction.
// Returns 0 for vectors of different lengths or zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales an embedding to unit length. A zero vector cannot be
// normalized and fails closed with ErrInvalidEmbedding.
func Normalize(embedding []float64) ([]float64, error) {
	var norm float64
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	if norm == 0 {
		return nil, domain.ErrInvalidEmbedding
	}

	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = v / norm
	}
	return out, nil
}

// Average computes the element-wise mean of equally sized embeddings.
// The mean lives in embedding space, it is not renormalized here.
func Average(embeddings [][]float64) []float64 {
	if len(embeddings) == 0 {
		return nil
	}

	out := make([]float64, len(embeddings[0]))
	for _, emb := range embeddings {
		for i, v := range emb {
			out[i] += v
		}
	}

	n := float64(len(embeddings))
	for i := range out {
		out[i] /= n
	}
	return out
}
