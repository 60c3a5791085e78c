package handlers

import "sort"

// BeatLeader weights ranked plays geometrically: the nth best play counts
// at weightFactor^(n-1) of its raw pp.
const weightFactor = 0.965

const (
	// solveEpsilon is the pp resolution of the per-play answer.
	solveEpsilon = 0.01
	// maxPlays caps the fixed-per-play search; beyond it extra plays of
	// the same raw pp no longer move the total meaningfully.
	maxPlays = 500
)

// weightedTotal folds a descending raw pp list into a profile total.
func weightedTotal(sorted []float64) float64 {
	total := 0.0
	weight := 1.0
	for _, pp := range sorted {
		total += pp * weight
		weight *= weightFactor
	}
	return total
}

// withPlays returns the descending merge of sorted with n plays of raw pp.
func withPlays(sorted []float64, raw float64, n int) []float64 {
	merged := make([]float64, 0, len(sorted)+n)
	merged = append(merged, sorted...)
	for i := 0; i < n; i++ {
		merged = append(merged, raw)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(merged)))
	return merged
}

// totalGain is the profile pp gained by adding n plays of the given raw pp.
func totalGain(sorted []float64, raw float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return weightedTotal(withPlays(sorted, raw, n)) - weightedTotal(sorted)
}

// requiredPerPlay finds the raw pp that n equal plays must each score to
// gain at least target profile pp. Gain grows without bound in the raw
// value (a big enough play always lands on top at full weight), so the
// search always converges.
func requiredPerPlay(sorted []float64, target float64, n int) float64 {
	if target <= 0 || n <= 0 {
		return 0
	}

	hi := target
	if len(sorted) > 0 && sorted[0] > hi {
		hi = sorted[0]
	}
	for totalGain(sorted, hi, n) < target {
		hi *= 2
	}

	lo := 0.0
	for hi-lo > solveEpsilon {
		mid := (lo + hi) / 2
		if totalGain(sorted, mid, n) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// playsNeeded finds how many plays of a fixed raw pp gain at least target
// profile pp. Repeated plays of the same raw value converge geometrically,
// so the target can be out of reach; ok is false then.
func playsNeeded(sorted []float64, target, perPlay float64) (int, bool) {
	if target <= 0 {
		return 0, true
	}
	if perPlay <= 0 {
		return 0, false
	}
	for n := 1; n <= maxPlays; n++ {
		if totalGain(sorted, perPlay, n) >= target {
			return n, true
		}
	}
	return 0, false
}
