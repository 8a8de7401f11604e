package embedding

import "math"

// Cosine computes the cosine similarity of two vectors. It returns 0 when
// the dimensions differ or either norm is zero; similarity of degenerate
// vectors is defined as "not similar" rather than an error or NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score scales cosine similarity onto the 0-100 integer scale used for
// duplicate ranking. Negative similarity clamps to 0.
func Score(similarity float64) int {
	if similarity <= 0 {
		return 0
	}
	if similarity >= 1 {
		return 100
	}
	return int(math.Round(similarity * 100))
}
