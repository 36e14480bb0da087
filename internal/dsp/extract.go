package dsp

import "math"

// Feature extraction constants.
const (
	minFrameSize = 256
	maxFrameSize = 4096

	// Peaks below this are treated as silence; normalizing by them would
	// only amplify noise.
	peakEpsilon = 1e-6
)

// Options configures feature extraction.
type Options struct {
	// TrimThreshold is the absolute amplitude below which leading and
	// trailing samples are trimmed as silence.
	TrimThreshold float64
	// FallbackToUntrimmed reverts to the untrimmed signal when trimming
	// leaves less than one frame of audio.
	FallbackToUntrimmed bool
	// PadShort zero-pads the head of a too-short signal up to one frame.
	PadShort bool
	// NumBands is the mel filterbank size.
	NumBands int
	// NumCoeffs is the number of cepstral coefficients per frame. The
	// output feature vector has 2*NumCoeffs entries (means then stds).
	NumCoeffs int
}

// DefaultOptions returns the extraction parameters used throughout the
// pipeline: 13 cepstra over 26 mel bands, giving 26-dim feature vectors.
func DefaultOptions() Options {
	return Options{
		TrimThreshold:       0.01,
		FallbackToUntrimmed: true,
		PadShort:            true,
		NumBands:            26,
		NumCoeffs:           13,
	}
}

// FeatureDim returns the extractor output dimensionality.
func (o Options) FeatureDim() int { return 2 * o.NumCoeffs }

// Extract turns a raw mono sample window into a fixed-length feature
// vector: per-coefficient mean and sample standard deviation of MFCCs
// across overlapping frames. It never fails; degenerate input (short,
// silent, or unframeable audio) yields the all-zero vector of the same
// dimensionality. The degrade chain is: silence trim, fall back to the
// untrimmed signal, zero-pad to one frame, retry on the tail frame, and
// finally the zero vector.
func Extract(window []float32, sampleRate int, opts Options) []float64 {
	dim := opts.FeatureDim()
	fallback := make([]float64, dim)

	signal, ok := normalizePeak(window)
	if !ok {
		// Effectively silent input carries no usable signal.
		return fallback
	}
	trimmed := trimSilence(signal, opts.TrimThreshold)

	frameSize := chooseFrameSize(sampleRate)
	hop := frameSize / 2

	if len(trimmed) < frameSize && opts.FallbackToUntrimmed {
		trimmed = signal
	}
	if len(trimmed) < frameSize && opts.PadShort {
		padded := make([]float64, frameSize)
		copy(padded[frameSize-len(trimmed):], trimmed)
		trimmed = padded
	}
	if len(trimmed) < frameSize {
		return fallback
	}

	mfcc, err := NewMFCC(sampleRate, frameSize, opts.NumBands, opts.NumCoeffs)
	if err != nil {
		return fallback
	}

	var coeffs [][]float64
	for start := 0; start+frameSize <= len(trimmed); start += hop {
		c, err := mfcc.Coefficients(trimmed[start : start+frameSize])
		if err != nil {
			continue // a bad frame is skipped, not fatal
		}
		coeffs = append(coeffs, c)
	}

	// Tail retry: if no window produced coefficients, try exactly the
	// final frame before giving up.
	if len(coeffs) == 0 {
		tail := trimmed[len(trimmed)-frameSize:]
		if c, err := mfcc.Coefficients(tail); err == nil {
			coeffs = append(coeffs, c)
		}
	}
	if len(coeffs) == 0 {
		return fallback
	}

	return aggregate(coeffs, opts.NumCoeffs)
}

// IsZero reports whether v is the all-zero fallback vector.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// normalizePeak scales the signal so its peak absolute amplitude is 1,
// converting to float64. The second return is false when the peak is
// below epsilon: normalizing such a signal would only amplify noise.
func normalizePeak(window []float32) ([]float64, bool) {
	peak := 0.0
	for _, s := range window {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak < peakEpsilon {
		return nil, false
	}
	out := make([]float64, len(window))
	for i, s := range window {
		out[i] = float64(s) / peak
	}
	return out, true
}

// trimSilence drops leading and trailing samples below the threshold.
func trimSilence(signal []float64, threshold float64) []float64 {
	start := 0
	for start < len(signal) && math.Abs(signal[start]) < threshold {
		start++
	}
	end := len(signal)
	for end > start && math.Abs(signal[end-1]) < threshold {
		end--
	}
	return signal[start:end]
}

// chooseFrameSize picks the power-of-two sample count closest to a 25ms
// duration, clamped to [256, 4096].
func chooseFrameSize(sampleRate int) int {
	target := float64(sampleRate) * 0.025
	best := minFrameSize
	bestDist := math.Abs(float64(minFrameSize) - target)
	for size := minFrameSize * 2; size <= maxFrameSize; size *= 2 {
		if d := math.Abs(float64(size) - target); d < bestDist {
			best = size
			bestDist = d
		}
	}
	return best
}

// aggregate computes the per-coefficient mean and sample standard
// deviation (n-1 denominator) across frames, concatenated [means, stds].
func aggregate(coeffs [][]float64, numCoeffs int) []float64 {
	n := float64(len(coeffs))
	out := make([]float64, 2*numCoeffs)
	for j := 0; j < numCoeffs; j++ {
		sum := 0.0
		for _, c := range coeffs {
			sum += c[j]
		}
		mean := sum / n
		out[j] = mean

		if len(coeffs) > 1 {
			ss := 0.0
			for _, c := range coeffs {
				d := c[j] - mean
				ss += d * d
			}
			out[numCoeffs+j] = math.Sqrt(ss / (n - 1))
		}
	}
	return out
}
