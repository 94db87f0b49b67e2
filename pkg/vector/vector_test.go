package vector

import (
	"errors"
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
		epsilon  float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 2.0, 3.0},
			b:        []float32{1.0, 2.0, 3.0},
			expected: 0.0,
			epsilon:  0.0001,
		},
		{
			name:     "3-4-5 triangle",
			a:        []float32{0.0, 0.0},
			b:        []float32{3.0, 4.0},
			expected: 5.0,
			epsilon:  0.0001,
		},
		{
			name:     "unit apart",
			a:        []float32{0.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
			epsilon:  0.0001,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
			epsilon:  0.0001,
		},
		{
			name:     "negative components",
			a:        []float32{-1.0, -1.0},
			b:        []float32{1.0, 1.0},
			expected: 2.0 * math.Sqrt2,
			epsilon:  0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EuclideanDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("EuclideanDistance() error = %v", err)
			}
			if math.Abs(result-tt.expected) > tt.epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestEuclideanDistance_Symmetric(t *testing.T) {
	a := []float32{1.5, -2.25, 3.0, 0.125}
	b := []float32{-0.5, 4.0, 1.0, 2.5}

	ab, err := EuclideanDistance(a, b)
	if err != nil {
		t.Fatalf("EuclideanDistance(a, b) error = %v", err)
	}
	ba, err := EuclideanDistance(b, a)
	if err != nil {
		t.Fatalf("EuclideanDistance(b, a) error = %v", err)
	}

	if ab != ba {
		t.Errorf("distance not symmetric: d(a,b)=%f d(b,a)=%f", ab, ba)
	}

	aa, err := EuclideanDistance(a, a)
	if err != nil {
		t.Fatalf("EuclideanDistance(a, a) error = %v", err)
	}
	if aa != 0 {
		t.Errorf("d(a,a) = %f, want 0", aa)
	}
}

func TestEuclideanDistance_DimensionMismatch(t *testing.T) {
	_, err := EuclideanDistance([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSquaredEuclidean(t *testing.T) {
	// Exercise both the unrolled body and the remainder loop.
	for _, dims := range []int{1, 3, 4, 7, 8, 64} {
		a := make([]float32, dims)
		b := make([]float32, dims)
		for i := 0; i < dims; i++ {
			a[i] = float32(i)
			b[i] = float32(i + 2)
		}

		// Each component differs by 2, so squared distance is 4*dims.
		got := SquaredEuclidean(a, b)
		want := float64(4 * dims)
		if math.Abs(got-want) > 0.0001 {
			t.Errorf("dims=%d: expected %f, got %f", dims, want, got)
		}

		dist, err := EuclideanDistance(a, b)
		if err != nil {
			t.Fatalf("EuclideanDistance() error = %v", err)
		}
		if math.Abs(math.Sqrt(got)-dist) > 0.0001 {
			t.Errorf("dims=%d: SquaredEuclidean disagrees with EuclideanDistance", dims)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
		epsilon  float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
			epsilon:  0.001,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
			epsilon:  0.001,
		},
		{
			name:     "similar vectors",
			a:        []float32{1.0, 2.0, 3.0},
			b:        []float32{4.0, 5.0, 6.0},
			expected: 0.9746318461970762,
			epsilon:  0.001,
		},
		{
			name:     "zero vector",
			a:        []float32{0.0, 0.0, 0.0},
			b:        []float32{1.0, 2.0, 3.0},
			expected: 0,
			epsilon:  0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity() error = %v", err)
			}
			if math.Abs(result-tt.expected) > tt.epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	// Similarity stays inside [-1, 1] for arbitrary non-zero vectors.
	vectors := [][]float32{
		{1, 2, 3},
		{-4, 5, -6},
		{0.001, 0.002, 0.003},
		{100, -200, 300},
		{1, 1, 1},
	}

	for i, a := range vectors {
		for j, b := range vectors {
			sim, err := CosineSimilarity(a, b)
			if err != nil {
				t.Fatalf("CosineSimilarity() error = %v", err)
			}
			if sim < -1.0000001 || sim > 1.0000001 {
				t.Errorf("vectors %d,%d: similarity %f outside [-1, 1]", i, j, sim)
			}
		}
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1.0, 2.0}, []float32{1.0, 2.0, 3.0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestDotProduct(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{4.0, 5.0, 6.0}

	dot, err := DotProduct(a, b)
	if err != nil {
		t.Fatalf("DotProduct() error = %v", err)
	}
	if math.Abs(dot-32.0) > 0.0001 {
		t.Errorf("expected 32.0, got %f", dot)
	}

	if _, err := DotProduct(a, []float32{1.0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("3-4 vector", func(t *testing.T) {
		original := []float32{3.0, 4.0}
		normalized := Normalize(original)

		if math.Abs(float64(normalized[0])-0.6) > 0.0001 || math.Abs(float64(normalized[1])-0.8) > 0.0001 {
			t.Errorf("expected [0.6, 0.8], got %v", normalized)
		}

		// Original unchanged
		if original[0] != 3.0 || original[1] != 4.0 {
			t.Errorf("Normalize modified its input: %v", original)
		}
	})

	t.Run("zero vector", func(t *testing.T) {
		normalized := Normalize([]float32{0, 0, 0})
		for _, v := range normalized {
			if v != 0 {
				t.Errorf("zero vector should normalize to zero, got %v", normalized)
			}
		}
	})
}

func TestNormalizeInPlace(t *testing.T) {
	v := []float32{3.0, 4.0}
	NormalizeInPlace(v)

	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(mag)-1.0) > 0.0001 {
		t.Errorf("expected unit magnitude, got %f", math.Sqrt(mag))
	}

	// Zero vector is a no-op, not NaN.
	z := []float32{0, 0}
	NormalizeInPlace(z)
	if z[0] != 0 || z[1] != 0 {
		t.Errorf("zero vector should be unchanged, got %v", z)
	}
}
