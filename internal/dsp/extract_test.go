package dsp

import (
	"math"
	"testing"
)

func sine(n int, freq float64, sampleRate int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func TestExtractDimension(t *testing.T) {
	opts := DefaultOptions()
	v := Extract(sine(12800, 440, 16000), 16000, opts)
	if len(v) != 26 {
		t.Fatalf("feature dim = %d, want 26", len(v))
	}
	if IsZero(v) {
		t.Error("expected non-zero features for a sine wave")
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Errorf("v[%d] = %f, want finite", i, x)
		}
	}
}

func TestExtractShortWindowPadded(t *testing.T) {
	// 100 samples is far below one frame; padding must still yield a
	// full-dimensionality vector.
	opts := DefaultOptions()
	v := Extract(sine(100, 440, 16000), 16000, opts)
	if len(v) != 26 {
		t.Fatalf("feature dim = %d, want 26", len(v))
	}
}

func TestExtractSilentWindow(t *testing.T) {
	opts := DefaultOptions()
	v := Extract(make([]float32, 12800), 16000, opts)
	if len(v) != 26 {
		t.Fatalf("feature dim = %d, want 26", len(v))
	}
	if !IsZero(v) {
		t.Errorf("silent window should yield the zero fallback, got %v", v)
	}
}

func TestExtractEmptyWindow(t *testing.T) {
	opts := DefaultOptions()
	v := Extract(nil, 16000, opts)
	if len(v) != 26 || !IsZero(v) {
		t.Errorf("empty window should yield the 26-dim zero fallback, got %v", v)
	}
}

func TestExtractDeterministic(t *testing.T) {
	opts := DefaultOptions()
	w := sine(8000, 300, 16000)
	a := Extract(w, 16000, opts)
	b := Extract(w, 16000, opts)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("extraction not deterministic at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestChooseFrameSize(t *testing.T) {
	cases := []struct {
		sampleRate int
		want       int
	}{
		{8000, 256},  // target 200
		{16000, 512}, // target 400
		{44100, 1024},
		{48000, 1024},
		{96000, 2048},
	}
	for _, c := range cases {
		if got := chooseFrameSize(c.sampleRate); got != c.want {
			t.Errorf("chooseFrameSize(%d) = %d, want %d", c.sampleRate, got, c.want)
		}
	}
}

func TestTrimSilence(t *testing.T) {
	signal := []float64{0.001, 0.002, 0.5, -0.7, 0.003}
	got := trimSilence(signal, 0.01)
	if len(got) != 2 || got[0] != 0.5 || got[1] != -0.7 {
		t.Errorf("trimSilence = %v, want [0.5 -0.7]", got)
	}
	if got := trimSilence([]float64{0.001, 0.002}, 0.01); len(got) != 0 {
		t.Errorf("all-quiet signal should trim to nothing, got %v", got)
	}
}
