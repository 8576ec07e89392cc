package signal

// MovingAverage smooths xs with a centred window of the given width. The
// window shrinks at the edges so the output has the same length as the input.
func MovingAverage(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	if window <= 1 || len(xs) < 2 {
		copy(out, xs)
		return out
	}

	half := window / 2
	for i := range xs {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + (window - half)
		if hi > len(xs) {
			hi = len(xs)
		}
		sum := 0.0
		for _, v := range xs[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// Resample linearly interpolates xs onto n evenly spaced points spanning the
// same extent.
func Resample(xs []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(xs) == 0:
		return out
	case len(xs) == 1 || n == 1:
		for i := range out {
			out[i] = xs[0]
		}
		return out
	}

	step := float64(len(xs)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= len(xs)-1 {
			out[i] = xs[len(xs)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = xs[lo] + (xs[lo+1]-xs[lo])*frac
	}
	return out
}
