// Package similarity scores embeddings against each other.
//
// Every function here fails to zero: missing, mismatched or degenerate
// vectors score 0 instead of returning an error, so a bad vector can lower a
// candidate's rank but never abort a search.
package similarity

import "math"

// Cosine returns dot(a,b) / (|a|*|b|). It returns 0 when either vector is
// empty, when the lengths differ, when either norm is 0, or when the result
// is not finite.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// Clamp01 maps a raw score into [0,1]. NaN and infinities become 0.
func Clamp01(score float64) float64 {
	switch {
	case math.IsNaN(score), math.IsInf(score, 0):
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// Normalize scales vec to unit length. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
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
