package signal

import "sort"

// FindPeaks returns the indices of local maxima in xs, in ascending order.
//
// Candidates are strict local maxima (flat tops resolve to their middle
// sample). Candidates closer than minDistance samples to a higher kept peak
// are discarded first, then those whose prominence is below minProminence.
// Endpoints are never peaks.
func FindPeaks(xs []float64, minProminence float64, minDistance int) []int {
	candidates := localMaxima(xs)
	if len(candidates) == 0 {
		return nil
	}
	if minDistance > 1 {
		candidates = selectByDistance(xs, candidates, minDistance)
	}

	peaks := make([]int, 0, len(candidates))
	for _, p := range candidates {
		if Prominence(xs, p) >= minProminence {
			peaks = append(peaks, p)
		}
	}
	return peaks
}

// FindValleys returns the indices of local minima, using the same rules as
// FindPeaks on the negated signal.
func FindValleys(xs []float64, minProminence float64, minDistance int) []int {
	inv := make([]float64, len(xs))
	for i, v := range xs {
		inv[i] = -v
	}
	return FindPeaks(inv, minProminence, minDistance)
}

// Prominence is the height of xs[peak] above the higher of the two lowest
// points reachable on either side before meeting a sample above the peak.
func Prominence(xs []float64, peak int) float64 {
	if peak <= 0 || peak >= len(xs)-1 {
		return 0
	}
	h := xs[peak]

	leftMin := h
	for i := peak - 1; i >= 0; i-- {
		if xs[i] > h {
			break
		}
		if xs[i] < leftMin {
			leftMin = xs[i]
		}
	}
	rightMin := h
	for i := peak + 1; i < len(xs); i++ {
		if xs[i] > h {
			break
		}
		if xs[i] < rightMin {
			rightMin = xs[i]
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return h - base
}

func localMaxima(xs []float64) []int {
	var out []int
	n := len(xs)
	i := 1
	for i < n-1 {
		if xs[i-1] < xs[i] {
			ahead := i + 1
			for ahead < n-1 && xs[ahead] == xs[i] {
				ahead++
			}
			if xs[ahead] < xs[i] {
				out = append(out, (i+ahead-1)/2)
				i = ahead
				continue
			}
		}
		i++
	}
	return out
}

// selectByDistance keeps the highest peaks first and drops any neighbour
// within distance samples of a kept one.
func selectByDistance(xs []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return xs[peaks[order[a]]] > xs[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, idx := range order {
		if !keep[idx] {
			continue
		}
		for j := idx - 1; j >= 0 && peaks[idx]-peaks[j] < distance; j-- {
			keep[j] = false
		}
		for j := idx + 1; j < len(peaks) && peaks[j]-peaks[idx] < distance; j++ {
			keep[j] = false
		}
	}

	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
