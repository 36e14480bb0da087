package model

import (
	"math"
	"testing"
)

func TestFitScalerEmpty(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Error("expected error for empty training set")
	}
}

func TestFitScalerRaggedRows(t *testing.T) {
	if _, err := FitScaler([][]float64{{1, 2}, {1}}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}

func TestFitScalerStdFloor(t *testing.T) {
	// Identical rows have std 0 in every dimension; the floor must keep
	// every entry at least epsilon.
	rows := [][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	for j, std := range s.Std {
		if std < ScaleEpsilon {
			t.Errorf("Std[%d] = %g, want >= %g", j, std, ScaleEpsilon)
		}
	}
}

func TestFitScalerSingleRow(t *testing.T) {
	s, err := FitScaler([][]float64{{4, -2}})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	if s.Mean[0] != 4 || s.Mean[1] != -2 {
		t.Errorf("Mean = %v, want [4 -2]", s.Mean)
	}
	for j, std := range s.Std {
		if std != ScaleEpsilon {
			t.Errorf("Std[%d] = %g, want epsilon floor %g", j, std, ScaleEpsilon)
		}
	}
}

func TestTransformValues(t *testing.T) {
	rows := [][]float64{{0, 10}, {2, 14}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	// mean = [1, 12]; sample std = [sqrt(2), 2*sqrt(2)]
	got := s.Transform([]float64{2, 14})
	want0 := 1.0 / math.Sqrt2
	if math.Abs(got[0]-want0) > 1e-12 {
		t.Errorf("got[0] = %f, want %f", got[0], want0)
	}
	if math.Abs(got[1]-want0) > 1e-12 {
		t.Errorf("got[1] = %f, want %f", got[1], want0)
	}
}

func TestTransformPure(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}, {5, 0}}
	s, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	a := s.Transform(rows[1])
	b := s.Transform(rows[1])
	for j := range a {
		if a[j] != b[j] {
			t.Errorf("transform not pure at %d: %f vs %f", j, a[j], b[j])
		}
	}
}
