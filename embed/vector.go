package embed

import "math"

// NormalizeVector returns a unit-length copy of v. Normalized vectors let the
// index use plain dot products as cosine similarity. A zero vector has no
// direction and comes back as all zeros.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	result := make([]float32, len(v))
	if sumSquares == 0 {
		return result
	}

	inv := float32(1 / math.Sqrt(sumSquares))
	for i, val := range v {
		result[i] = val * inv
	}
	return result
}
