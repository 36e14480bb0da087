package store

import (
	"errors"
	"testing"

	"github.com/steerlab/voxsteer/internal/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := newStore(t)
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)

	rec := Record{
		ModelState: []byte{1, 2, 3, 4},
		Scaler: &model.Scaler{
			Mean: []float64{0.5, -0.25},
			Std:  []float64{1.0, 2.0},
		},
		Labels: []string{"left", "right"},
	}
	if err := s.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got.ModelState) != string(rec.ModelState) {
		t.Errorf("ModelState = %v, want %v", got.ModelState, rec.ModelState)
	}
	if got.Scaler == nil || got.Scaler.Mean[1] != -0.25 || got.Scaler.Std[1] != 2.0 {
		t.Errorf("Scaler = %+v", got.Scaler)
	}
	if len(got.Labels) != 2 || got.Labels[0] != "left" {
		t.Errorf("Labels = %v", got.Labels)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt should be stamped on save")
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := newStore(t)

	if err := s.Save(Record{ModelState: []byte("old")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(Record{ModelState: []byte("new")}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if string(got.ModelState) != "new" {
		t.Errorf("ModelState = %q, want the replacement", got.ModelState)
	}
}

func TestSaveEmptyStateRejected(t *testing.T) {
	s := newStore(t)
	if err := s.Save(Record{}); err == nil {
		t.Error("saving an empty model state should fail")
	}
}

func TestClear(t *testing.T) {
	s := newStore(t)

	// Clearing an empty store is fine.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := s.Save(Record{ModelState: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Clear = %v, want ErrNotFound", err)
	}
}
