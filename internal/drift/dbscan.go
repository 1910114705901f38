package drift

import "sort"

// cluster1D is a density-connected run of points in 1-D DBSCAN.
type cluster1D struct {
	indices []int // indices into the original (unsorted) slice
}

// dbscan1D clusters 1-D values with the given eps and minSamples. In one
// dimension, density-reachability under a fixed eps radius reduces to
// chaining consecutive sorted points whose gap is <= eps; a resulting
// chain is a genuine cluster only if it has at least minSamples points,
// otherwise its members are noise (returned in a separate "noise" slice,
// not assigned to any cluster). No pack example ships a DBSCAN
// implementation, so this is a direct hand-rolled reduction of the
// algorithm's 1-D case rather than an import (see DESIGN.md).
func dbscan1D(values []float64, eps float64, minSamples int) (clusters []cluster1D, noise []int) {
	type indexedValue struct {
		idx int
		val float64
	}
	sorted := make([]indexedValue, len(values))
	for i, v := range values {
		sorted[i] = indexedValue{idx: i, val: v}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].val < sorted[j].val })

	var chains [][]int
	current := []int{sorted[0].idx}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].val-sorted[i-1].val <= eps {
			current = append(current, sorted[i].idx)
			continue
		}
		chains = append(chains, current)
		current = []int{sorted[i].idx}
	}
	chains = append(chains, current)

	for _, c := range chains {
		if len(c) >= minSamples {
			clusters = append(clusters, cluster1D{indices: c})
		} else {
			noise = append(noise, c...)
		}
	}
	return clusters, noise
}
