package rag

import "math"

// Cosine returns the cosine similarity of two equal-length vectors:
// dot(a,b) / (|a| * |b|), in [-1, 1]. Mismatched lengths and zero-magnitude
// vectors yield NaN; callers treat that as "no similarity signal".
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
