package dsp

import (
	"fmt"
	"math"
)

// MFCC computes mel-frequency cepstral coefficients for fixed-size frames.
// All tables (Hamming window, bit-reversal permutation, mel filterbank,
// DCT cosines) are precomputed at construction for one frame size and
// sample rate, so per-frame work allocates only the output slice.
type MFCC struct {
	frameSize  int
	sampleRate int
	numCoeffs  int

	window  []float64
	perm    []int
	filters []sparseFilter
	dctCos  [][]float64

	bufRe []float64
	bufIm []float64
	power []float64
	mel   []float64
}

// sparseFilter stores only the non-zero range of a triangular mel filter.
type sparseFilter struct {
	start  int
	coeffs []float64
}

// NewMFCC builds the coefficient computer. frameSize must be a power of two.
func NewMFCC(sampleRate, frameSize, numBands, numCoeffs int) (*MFCC, error) {
	if frameSize <= 0 || frameSize&(frameSize-1) != 0 {
		return nil, fmt.Errorf("dsp: frame size %d is not a power of two", frameSize)
	}
	if numCoeffs > numBands {
		return nil, fmt.Errorf("dsp: %d coefficients exceed %d mel bands", numCoeffs, numBands)
	}

	m := &MFCC{
		frameSize:  frameSize,
		sampleRate: sampleRate,
		numCoeffs:  numCoeffs,
		bufRe:      make([]float64, frameSize),
		bufIm:      make([]float64, frameSize),
		power:      make([]float64, frameSize/2+1),
		mel:        make([]float64, numBands),
	}

	// Hamming window
	m.window = make([]float64, frameSize)
	for i := range m.window {
		m.window[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(frameSize-1))
	}

	// Bit-reversal permutation for the radix-2 FFT
	bits := 0
	for v := frameSize; v > 1; v >>= 1 {
		bits++
	}
	m.perm = make([]int, frameSize)
	for i := range m.perm {
		r := 0
		x := i
		for b := 0; b < bits; b++ {
			r = (r << 1) | (x & 1)
			x >>= 1
		}
		m.perm[i] = r
	}

	m.filters = melFilterbank(numBands, frameSize, sampleRate)

	// DCT-II cosine table
	m.dctCos = make([][]float64, numCoeffs)
	for k := 0; k < numCoeffs; k++ {
		m.dctCos[k] = make([]float64, numBands)
		for j := 0; j < numBands; j++ {
			m.dctCos[k][j] = math.Cos(math.Pi * float64(k) * (float64(j) + 0.5) / float64(numBands))
		}
	}

	return m, nil
}

// NumCoeffs returns the number of cepstral coefficients per frame.
func (m *MFCC) NumCoeffs() int { return m.numCoeffs }

// FrameSize returns the expected frame length in samples.
func (m *MFCC) FrameSize() int { return m.frameSize }

// Coefficients computes the cepstral coefficients of one frame.
// The frame must be exactly FrameSize samples long.
func (m *MFCC) Coefficients(frame []float64) ([]float64, error) {
	if len(frame) != m.frameSize {
		return nil, fmt.Errorf("dsp: frame length %d, want %d", len(frame), m.frameSize)
	}

	m.powerSpectrum(frame)

	// Log mel energies
	for i, sf := range m.filters {
		sum := 0.0
		for j, c := range sf.coeffs {
			sum += m.power[sf.start+j] * c
		}
		if sum < 1e-30 {
			sum = 1e-30
		}
		m.mel[i] = math.Log(sum)
	}

	// DCT-II
	out := make([]float64, m.numCoeffs)
	for k, row := range m.dctCos {
		sum := 0.0
		for j, c := range row {
			sum += m.mel[j] * c
		}
		out[k] = sum
	}
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("dsp: non-finite cepstral coefficient")
		}
	}
	return out, nil
}

// powerSpectrum applies the window, runs an in-place radix-2 FFT, and
// fills m.power with |X[k]|^2 / N for the positive-frequency bins.
func (m *MFCC) powerSpectrum(frame []float64) {
	n := m.frameSize
	for i := 0; i < n; i++ {
		m.bufRe[i] = frame[i] * m.window[i]
		m.bufIm[i] = 0
	}

	for i := 0; i < n; i++ {
		j := m.perm[i]
		if i < j {
			m.bufRe[i], m.bufRe[j] = m.bufRe[j], m.bufRe[i]
			m.bufIm[i], m.bufIm[j] = m.bufIm[j], m.bufIm[i]
		}
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		ang := -2 * math.Pi / float64(size)
		wRe, wIm := math.Cos(ang), math.Sin(ang)
		for start := 0; start < n; start += size {
			wnRe, wnIm := 1.0, 0.0
			for k := 0; k < half; k++ {
				i0, i1 := start+k, start+k+half
				tRe := wnRe*m.bufRe[i1] - wnIm*m.bufIm[i1]
				tIm := wnRe*m.bufIm[i1] + wnIm*m.bufRe[i1]
				m.bufRe[i1] = m.bufRe[i0] - tRe
				m.bufIm[i1] = m.bufIm[i0] - tIm
				m.bufRe[i0] += tRe
				m.bufIm[i0] += tIm
				wnRe, wnIm = wnRe*wRe-wnIm*wIm, wnRe*wIm+wnIm*wRe
			}
		}
	}

	fn := float64(n)
	for i := range m.power {
		r, im := m.bufRe[i], m.bufIm[i]
		m.power[i] = (r*r + im*im) / fn
	}
}

// melFilterbank builds triangular filters equally spaced on the mel scale
// from 0 Hz to Nyquist, in sparse form.
func melFilterbank(numFilters, fftSize, sampleRate int) []sparseFilter {
	nBins := fftSize/2 + 1
	highMel := hzToMel(float64(sampleRate) / 2)

	points := make([]int, numFilters+2)
	step := highMel / float64(numFilters+1)
	for i := range points {
		freq := melToHz(float64(i) * step)
		points[i] = int(math.Floor(freq * float64(fftSize+1) / float64(sampleRate)))
	}

	filters := make([]sparseFilter, numFilters)
	for i := 0; i < numFilters; i++ {
		left, center, right := points[i], points[i+1], points[i+2]
		if right >= nBins {
			right = nBins - 1
		}
		// Guard against degenerate filters at low frame sizes.
		if center <= left {
			center = left + 1
		}
		if right <= center {
			right = center + 1
		}
		coeffs := make([]float64, right-left+1)
		for j := left; j < center; j++ {
			coeffs[j-left] = float64(j-left) / float64(center-left)
		}
		for j := center; j <= right; j++ {
			coeffs[j-left] = float64(right-j) / float64(right-center)
		}
		// Clip the sparse range to the available bins.
		if left+len(coeffs) > nBins {
			coeffs = coeffs[:nBins-left]
		}
		filters[i] = sparseFilter{start: left, coeffs: coeffs}
	}
	return filters
}

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10, mel/2595.0) - 1.0)
}
