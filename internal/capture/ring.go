// Package capture holds the rolling microphone buffer shared between
// the audio transport and the realtime loop.
package capture

import (
	"sync"
	"time"

	"github.com/steerlab/voxsteer/internal/dsp"
)

// Ring is a bounded rolling buffer of mono float32 samples. The audio
// callback appends while the loop controller reads; both the append and
// the oldest-data trim happen under one lock so a reader can never see
// the buffer mid-trim.
type Ring struct {
	mu         sync.Mutex
	samples    []float32
	maxSamples int
	sampleRate int
}

// NewRing creates a buffer that retains at most maxDuration of audio.
func NewRing(sampleRate int, maxDuration time.Duration) *Ring {
	maxSamples := int(float64(sampleRate) * maxDuration.Seconds())
	if maxSamples < 1 {
		maxSamples = sampleRate
	}
	return &Ring{
		samples:    make([]float32, 0, maxSamples),
		maxSamples: maxSamples,
		sampleRate: sampleRate,
	}
}

// Append adds samples and discards the oldest data beyond the bound,
// atomically.
func (r *Ring) Append(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, samples...)
	if over := len(r.samples) - r.maxSamples; over > 0 {
		copy(r.samples, r.samples[over:])
		r.samples = r.samples[:r.maxSamples]
	}
}

// AppendPCM decodes Int16LE bytes and appends them.
func (r *Ring) AppendPCM(raw []byte) {
	r.Append(dsp.ToFloat32(dsp.DecodeInt16LE(raw)))
}

// Tail returns a copy of the most recent d of audio, or the whole
// buffer if it holds less.
func (r *Ring) Tail(d time.Duration) []float32 {
	want := int(float64(r.sampleRate) * d.Seconds())
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.samples)
	if want > n {
		want = n
	}
	out := make([]float32, want)
	copy(out, r.samples[n-want:])
	return out
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Clear discards all buffered audio.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = r.samples[:0]
}

// SampleRate returns the buffer's sample rate.
func (r *Ring) SampleRate() int { return r.sampleRate }
