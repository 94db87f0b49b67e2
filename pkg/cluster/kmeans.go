// Package cluster implements k-means clustering over embedding batches.
//
// Unlike a vector index, this package keeps no state: every call operates
// on a caller-supplied, in-memory batch of vectors and returns a fresh
// Result. There is nothing retained between calls, which makes the engine
// trivially safe to run concurrently.
//
// Algorithm per run:
//  1. Initialize k centroids by sampling input vectors uniformly at random
//     (with replacement) and copying them.
//  2. Assignment step: each vector goes to its nearest centroid by
//     Euclidean distance.
//  3. Convergence check: if no assignment changed from the previous round,
//     stop with Converged=true.
//  4. Update step: each centroid becomes the coordinate-wise mean of its
//     members. A cluster with zero members keeps its previous centroid.
//  5. Repeat until convergence or MaxIterations; hitting the cap is not an
//     error — the best assignment so far is returned with Converged=false.
//
// Complexity is O(iterations × n × k × D). SuggestK bounds the caller-side
// choice of k to keep per-request cost predictable.
//
// Usage:
//
//	result, err := cluster.KMeans(embeddings, 3, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i, c := range result.Clusters {
//		fmt.Printf("cluster %d: size=%d cohesion=%.2f\n", i, c.Size, c.Cohesion)
//	}
package cluster

import (
	"math"
	"math/rand"
	"time"

	"github.com/orneryd/vectorops/pkg/vector"
)

// ErrDimensionMismatch mirrors the vector package sentinel so callers can
// check either package.
var ErrDimensionMismatch = vector.ErrDimensionMismatch

// Config configures k-means behavior.
//
// Example:
//
//	config := &cluster.Config{
//	    MaxIterations: 50,
//	    Rand:          rand.New(rand.NewSource(42)), // reproducible
//	}
type Config struct {
	// MaxIterations limits convergence iterations (default: 100).
	MaxIterations int

	// Rand is the source used for centroid seeding. Nil means a
	// time-seeded source; tests inject a fixed seed to pin outcomes.
	Rand *rand.Rand
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxIterations: 100,
	}
}

// ClusterInfo describes one final cluster.
type ClusterInfo struct {
	// Centroid is the cluster center, same dimensionality as the input.
	Centroid []float32 `json:"centroid"`
	// Size is the number of member points.
	Size int `json:"size"`
	// AvgDistance is the mean Euclidean distance of members to the
	// centroid; 0 for an empty cluster.
	AvgDistance float64 `json:"average_distance"`
	// Cohesion is 1 - (max-min)/max over member distances: a crude
	// tightness signal in (..1]. Defined as 1 for empty clusters and for
	// clusters whose members all sit on the centroid (max distance 0).
	Cohesion float64 `json:"cohesion"`
}

// Result is the outcome of one clustering run.
type Result struct {
	// Clusters holds per-cluster centroids and statistics, k entries.
	Clusters []ClusterInfo `json:"clusters"`
	// Assignments maps each input index to its cluster id (0..k-1).
	Assignments []int `json:"assignments"`
	// Iterations is the number of assignment rounds executed.
	Iterations int `json:"iterations"`
	// Converged reports whether assignments stabilized before the cap.
	Converged bool `json:"converged"`
}

// SuggestK returns a bounded cluster count for n points: ceil(n/5) capped
// at 10, minimum 1. This keeps per-request cost predictable for callers
// that do not pick k themselves.
func SuggestK(n int) int {
	if n <= 0 {
		return 0
	}
	k := (n + 4) / 5
	if k > 10 {
		k = 10
	}
	if k < 1 {
		k = 1
	}
	return k
}

// KMeans partitions embeddings into k clusters.
//
// An empty batch or k <= 0 returns a well-defined empty Result, not an
// error. Vectors of mixed dimensionality return ErrDimensionMismatch.
// Config may be nil for defaults.
//
// Reproducibility is not guaranteed unless the caller fixes Config.Rand;
// centroid seeding is random by design.
func KMeans(embeddings [][]float32, k int, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	maxIterations := config.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 100
	}

	n := len(embeddings)
	if n == 0 || k <= 0 {
		return &Result{
			Clusters:    []ClusterInfo{},
			Assignments: []int{},
		}, nil
	}

	dims := len(embeddings[0])
	for _, emb := range embeddings[1:] {
		if len(emb) != dims {
			return nil, ErrDimensionMismatch
		}
	}

	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	centroids := initCentroids(embeddings, k, dims, rng)

	assignments := make([]int, n)
	previous := make([]int, n)
	for i := range previous {
		previous[i] = -1
	}

	// Pre-allocate centroid update buffers to avoid allocations in the
	// hot loop.
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := 0; c < k; c++ {
		sums[c] = make([]float64, dims)
	}

	iterations := 0
	converged := false

	for iter := 0; iter < maxIterations; iter++ {
		assignToCentroids(embeddings, centroids, assignments)
		iterations++

		if equalAssignments(assignments, previous) {
			converged = true
			break
		}
		copy(previous, assignments)

		updateCentroids(embeddings, centroids, assignments, sums, counts)
	}

	result := &Result{
		Clusters:    clusterStats(embeddings, centroids, assignments),
		Assignments: assignments,
		Iterations:  iterations,
		Converged:   converged,
	}

	return result, nil
}

// initCentroids seeds k centroids by sampling input indices uniformly at
// random with replacement and copying the vectors. Intentionally simple —
// no k-means++ seeding; duplicates are possible and resolve through the
// empty-cluster rule during updates.
func initCentroids(embeddings [][]float32, k, dims int, rng *rand.Rand) [][]float32 {
	n := len(embeddings)
	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		idx := rng.Intn(n)
		centroids[c] = make([]float32, dims)
		copy(centroids[c], embeddings[idx])
	}
	return centroids
}

// assignToCentroids assigns each embedding to its nearest centroid.
// Ties keep the first-seen centroid: the scan only switches on strict
// improvement.
func assignToCentroids(embeddings, centroids [][]float32, assignments []int) {
	for i, emb := range embeddings {
		minDist := math.MaxFloat64
		nearest := 0

		for c, centroid := range centroids {
			dist := vector.SquaredEuclidean(emb, centroid)
			if dist < minDist {
				minDist = dist
				nearest = c
			}
		}

		assignments[i] = nearest
	}
}

// equalAssignments reports whether two assignment vectors are identical.
func equalAssignments(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// updateCentroids recomputes centroids as the mean of assigned embeddings
// using pre-allocated buffers.
func updateCentroids(embeddings, centroids [][]float32, assignments []int, sums [][]float64, counts []int) {
	k := len(centroids)
	dims := len(centroids[0])

	// Zero out the buffers
	for c := 0; c < k; c++ {
		counts[c] = 0
		for d := 0; d < dims; d++ {
			sums[c][d] = 0
		}
	}

	// Accumulate sums and counts
	for i, emb := range embeddings {
		c := assignments[i]
		counts[c]++
		for d := 0; d < dims; d++ {
			sums[c][d] += float64(emb[d])
		}
	}

	// Compute new centroids (average)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			for d := 0; d < dims; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
		// Empty clusters keep their previous position
	}
}

// clusterStats computes per-cluster size, average member distance and
// cohesion for the final centroids.
func clusterStats(embeddings, centroids [][]float32, assignments []int) []ClusterInfo {
	clusters := make([]ClusterInfo, len(centroids))

	for c, centroid := range centroids {
		var (
			size    int
			sum     float64
			minDist = math.MaxFloat64
			maxDist = 0.0
		)

		for i, emb := range embeddings {
			if assignments[i] != c {
				continue
			}
			size++

			dist := math.Sqrt(vector.SquaredEuclidean(emb, centroid))
			sum += dist
			if dist < minDist {
				minDist = dist
			}
			if dist > maxDist {
				maxDist = dist
			}
		}

		info := ClusterInfo{
			Centroid: centroid,
			Size:     size,
			Cohesion: 1,
		}
		if size > 0 {
			info.AvgDistance = sum / float64(size)
			if maxDist > 0 {
				info.Cohesion = 1 - (maxDist-minDist)/maxDist
			}
		}
		clusters[c] = info
	}

	return clusters
}
