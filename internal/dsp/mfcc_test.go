package dsp

import (
	"math"
	"testing"
)

func TestNewMFCCRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewMFCC(16000, 500, 26, 13); err == nil {
		t.Error("expected error for non-power-of-two frame size")
	}
	if _, err := NewMFCC(16000, 512, 13, 26); err == nil {
		t.Error("expected error when coefficients exceed bands")
	}
}

func TestCoefficientsFrameLength(t *testing.T) {
	m, err := NewMFCC(16000, 512, 26, 13)
	if err != nil {
		t.Fatalf("NewMFCC: %v", err)
	}
	if _, err := m.Coefficients(make([]float64, 100)); err == nil {
		t.Error("expected error for wrong frame length")
	}
}

func TestCoefficientsFinite(t *testing.T) {
	m, err := NewMFCC(16000, 512, 26, 13)
	if err != nil {
		t.Fatalf("NewMFCC: %v", err)
	}
	frame := make([]float64, 512)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 16000)
	}
	c, err := m.Coefficients(frame)
	if err != nil {
		t.Fatalf("Coefficients: %v", err)
	}
	if len(c) != 13 {
		t.Fatalf("len = %d, want 13", len(c))
	}
	for i, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("c[%d] = %f, want finite", i, v)
		}
	}
}

func TestCoefficientsDistinguishFrequencies(t *testing.T) {
	m, err := NewMFCC(16000, 512, 26, 13)
	if err != nil {
		t.Fatalf("NewMFCC: %v", err)
	}
	low := make([]float64, 512)
	high := make([]float64, 512)
	for i := range low {
		low[i] = math.Sin(2 * math.Pi * 200 * float64(i) / 16000)
		high[i] = math.Sin(2 * math.Pi * 3000 * float64(i) / 16000)
	}
	cl, err := m.Coefficients(low)
	if err != nil {
		t.Fatalf("Coefficients(low): %v", err)
	}
	ch, err := m.Coefficients(high)
	if err != nil {
		t.Fatalf("Coefficients(high): %v", err)
	}
	diff := 0.0
	for i := range cl {
		diff += math.Abs(cl[i] - ch[i])
	}
	if diff < 1.0 {
		t.Errorf("cepstra of 200Hz and 3kHz tones nearly identical (L1 diff %f)", diff)
	}
}
