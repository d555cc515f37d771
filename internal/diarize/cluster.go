package diarize

import (
	"math"
)

// Agglomerative clustering over voiceprint vectors: cosine distance, average
// linkage. Every vector starts as its own cluster; the two closest clusters
// merge until the target count remains. clusterLabels takes N feature vectors
// and a cluster count and returns N integer labels.

// cosineDistance returns 1 - cosine similarity. Zero vectors are maximally
// distant from everything, matching how degenerate voiceprints should behave.
func cosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// clusterLabels groups the feature vectors into k clusters and returns one
// label per vector. Labels are arbitrary cluster identities in [0, k);
// callers impose their own ordering on top.
func clusterLabels(features [][]float64, k int) []int {
	n := len(features)
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	// Pairwise distance matrix between original points. Average linkage only
	// ever needs point-to-point distances.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := cosineDistance(features[i], features[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	// Active clusters as member index lists.
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	linkage := func(a, b []int) float64 {
		var sum float64
		for _, i := range a {
			for _, j := range b {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a)*len(b))
	}

	for len(clusters) > k {
		bestA, bestB := 0, 1
		best := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := linkage(clusters[i], clusters[j]); d < best {
					best = d
					bestA, bestB = i, j
				}
			}
		}
		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	labels := make([]int, n)
	for c, members := range clusters {
		for _, i := range members {
			labels[i] = c
		}
	}
	return labels
}
