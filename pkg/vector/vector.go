// Package vector provides vector math operations for vectorops.
//
// This package consolidates all distance and similarity calculations used
// throughout the codebase. Use these functions instead of implementing your
// own to ensure consistency and correctness.
//
// Main Functions:
//   - EuclideanDistance: Straight-line distance between two vectors
//   - CosineSimilarity: Angle-based similarity in [-1, 1]
//   - DotProduct: Dot product for float32 vectors
//   - Normalize: Returns normalized copy of vector
//   - NormalizeInPlace: Normalizes vector in-place (modifies input)
//
// All pairwise functions require equal-length inputs and return
// ErrDimensionMismatch otherwise. Mixing vectors produced by different
// embedding models is a caller bug; truncating to the shorter length would
// silently return a wrong value, so these functions refuse instead.
package vector

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. Distances between vectors of different dimensionality are
// meaningless, so this always indicates a caller error.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// EuclideanDistance calculates the straight-line distance between two
// float32 vectors. Returns 0 for identical vectors; the result is always
// symmetric: EuclideanDistance(a, b) == EuclideanDistance(b, a).
//
// Uses float64 accumulation for precision, even with float32 inputs.
//
// Example:
//
//	a := []float32{0, 0}
//	b := []float32{3, 4}
//	d, err := EuclideanDistance(a, b) // Returns 5.0
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}

	return math.Sqrt(sum), nil
}

// SquaredEuclidean computes squared Euclidean distance.
// Cheaper than EuclideanDistance when only relative ordering matters
// (e.g., nearest-centroid assignment). Uses 4-way loop unrolling for
// better instruction-level parallelism.
//
// The caller must guarantee len(a) == len(b).
func SquaredEuclidean(a, b []float32) float64 {
	n := len(a)
	var sum0, sum1, sum2, sum3 float64

	// Process 4 elements at a time
	i := 0
	for ; i <= n-4; i += 4 {
		d0 := float64(a[i] - b[i])
		d1 := float64(a[i+1] - b[i+1])
		d2 := float64(a[i+2] - b[i+2])
		d3 := float64(a[i+3] - b[i+3])
		sum0 += d0 * d0
		sum1 += d1 * d1
		sum2 += d2 * d2
		sum3 += d3 * d3
	}

	// Handle remaining elements
	for ; i < n; i++ {
		diff := float64(a[i] - b[i])
		sum0 += diff * diff
	}

	return sum0 + sum1 + sum2 + sum3
}

// CosineSimilarity calculates cosine similarity between two float32 vectors.
// Returns value in range [-1, 1] where 1 = identical direction,
// 0 = orthogonal, -1 = opposite.
//
// If either vector has zero magnitude the similarity is defined as 0
// (guards division by zero; never returns NaN).
//
// Example:
//
//	a := []float32{1.0, 2.0, 3.0}
//	b := []float32{4.0, 5.0, 6.0}
//	sim, err := CosineSimilarity(a, b) // Returns 0.9746318461970762
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dotProd, normA, normB float64
	for i := range a {
		dotProd += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProd / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// DotProduct calculates the dot product of two float32 vectors.
// Returns float64 for precision.
//
// For normalized vectors, dot product equals cosine similarity.
func DotProduct(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Normalize returns a normalized copy of the vector.
// The input vector is not modified. A zero vector normalizes to a zero
// vector of the same length.
func Normalize(vec []float32) []float32 {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return make([]float32, len(vec))
	}

	norm := math.Sqrt(sumSquares)
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / norm)
	}
	return normalized
}

// NormalizeInPlace normalizes a vector in-place (modifies the input).
// After normalization, the vector has unit length (magnitude = 1).
//
// WARNING: Modifies the input slice. Use Normalize() to preserve original.
func NormalizeInPlace(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= norm
	}
}
