// Package stats provides small statistical helpers used to bucket and scale importance values.
package stats

import (
	"math"
	"sort"
)

// TopBucket is the highest quintile bucket (highest importance)
const TopBucket = 4

// Quantile returns the quintile bucket (0..4) of v within values.
//
// Empty input yields 0 and a single-element input yields TopBucket. Otherwise
// rank is the index of the last sorted element <= v and the bucket is
// floor(rank/(n-1) * 5), clamped to [0,4].
func Quantile(values []float64, v float64) int {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return TopBucket
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := 0
	for i, value := range sorted {
		if value <= v {
			rank = i
		} else {
			break
		}
	}

	position := float64(rank) / float64(len(sorted)-1)
	bucket := int(math.Floor(position * 5))
	return ClampInt(bucket, 0, TopBucket)
}

// NormalizeToUnit min-max scales v against values into [0,1].
// Empty input yields 0; when every value is equal the result is 1.
func NormalizeToUnit(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, value := range values[1:] {
		lo = math.Min(lo, value)
		hi = math.Max(hi, value)
	}
	if lo == hi {
		return 1
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean, or 0 for empty input
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
