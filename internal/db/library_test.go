package db

import (
	"path/filepath"
	"testing"
)

func newLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "samples.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAddAndList(t *testing.T) {
	l := newLibrary(t)

	id, err := l.Add("left", 16000, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == 0 {
		t.Error("expected a nonzero row ID")
	}
	if _, err := l.Add("right", 16000, []byte{5, 6}); err != nil {
		t.Fatal(err)
	}

	samples, err := l.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len = %d, want 2", len(samples))
	}
	if samples[0].Label != "left" || samples[0].SampleRate != 16000 {
		t.Errorf("first sample = %+v", samples[0])
	}
	if string(samples[0].PCM) != string([]byte{1, 2, 3, 4}) {
		t.Errorf("PCM = %v", samples[0].PCM)
	}
	if samples[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
}

func TestListByLabel(t *testing.T) {
	l := newLibrary(t)
	l.Add("left", 16000, []byte{1})
	l.Add("right", 16000, []byte{2})
	l.Add("left", 16000, []byte{3})

	lefts, err := l.ListByLabel("left")
	if err != nil {
		t.Fatal(err)
	}
	if len(lefts) != 2 {
		t.Errorf("len = %d, want 2", len(lefts))
	}
	for _, s := range lefts {
		if s.Label != "left" {
			t.Errorf("label = %q", s.Label)
		}
	}
}

func TestCounts(t *testing.T) {
	l := newLibrary(t)
	l.Add("left", 16000, []byte{1})
	l.Add("left", 16000, []byte{2})
	l.Add("right", 16000, []byte{3})

	counts, err := l.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["left"] != 2 || counts["right"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestValidation(t *testing.T) {
	l := newLibrary(t)
	if _, err := l.Add("", 16000, []byte{1}); err == nil {
		t.Error("empty label should be rejected")
	}
	if _, err := l.Add("left", 16000, nil); err == nil {
		t.Error("empty recording should be rejected")
	}
}

func TestDelete(t *testing.T) {
	l := newLibrary(t)
	id, _ := l.Add("left", 16000, []byte{1})
	l.Add("left", 16000, []byte{2})
	l.Add("right", 16000, []byte{3})

	if err := l.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.DeleteLabel("right"); err != nil {
		t.Fatalf("DeleteLabel: %v", err)
	}

	samples, _ := l.List()
	if len(samples) != 1 || samples[0].Label != "left" {
		t.Errorf("remaining = %+v", samples)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.db")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Add("left", 16000, []byte{1, 2})
	l.Close()

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	samples, err := l2.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 {
		t.Errorf("len = %d after reopen, want 1", len(samples))
	}
}
