package decide

import "testing"

func TestMajorityEmpty(t *testing.T) {
	s := NewSmoother(5, 0.6)
	if label, ok := s.Majority(); ok || label != NoDecision {
		t.Errorf("Majority() on empty history = (%d, %v), want no decision", label, ok)
	}
}

func TestMajorityCounts(t *testing.T) {
	s := NewSmoother(5, 0.6)
	for _, c := range []int{1, 0, 1, 1} {
		s.Observe(c, 0.9)
	}
	if label, ok := s.Majority(); !ok || label != 1 {
		t.Errorf("Majority() = (%d, %v), want 1", label, ok)
	}
}

func TestMajorityTieBreakEarliestToReachMax(t *testing.T) {
	// [0,1,0,1] on a window of 4: both classes count 2, but class 0
	// reaches 2 first in the left-to-right scan.
	s := NewSmoother(4, 0.6)
	for _, c := range []int{0, 1, 0, 1} {
		s.Observe(c, 0.9)
	}
	if label, ok := s.Majority(); !ok || label != 0 {
		t.Errorf("Majority() = (%d, %v), want 0", label, ok)
	}
}

func TestObserveBelowThresholdDropped(t *testing.T) {
	s := NewSmoother(5, 0.6)
	s.Observe(1, 0.5)
	if _, ok := s.Majority(); ok {
		t.Error("low-confidence vote should not enter the history")
	}
}

func TestHistoryEviction(t *testing.T) {
	s := NewSmoother(3, 0.6)
	for _, c := range []int{0, 0, 0, 1, 1, 1} {
		s.Observe(c, 0.9)
	}
	// Window of 3 now holds [1,1,1]; the zeros were evicted.
	if label, _ := s.Majority(); label != 1 {
		t.Errorf("Majority() = %d, want 1 after eviction", label)
	}
}

func TestMaybeFireOncePerUtterance(t *testing.T) {
	s := NewSmoother(5, 0.6)

	fired := 0
	for i := 0; i < 20; i++ {
		s.Observe(1, 0.9)
		if _, ok := s.MaybeFire(); ok {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("fired %d times across one utterance, want exactly 1", fired)
	}

	// A new utterance allows exactly one more firing.
	s.Reset()
	fired = 0
	for i := 0; i < 20; i++ {
		s.Observe(0, 0.9)
		if _, ok := s.MaybeFire(); ok {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("fired %d times after reset, want exactly 1", fired)
	}
}

func TestMaybeFireRequiresConfidentTrigger(t *testing.T) {
	s := NewSmoother(5, 0.6)
	s.Observe(1, 0.9)
	s.Observe(1, 0.9)

	// The triggering observation is below threshold: no fire even though
	// the history holds a majority.
	s.Observe(1, 0.3)
	if _, ok := s.MaybeFire(); ok {
		t.Error("fire must not trigger from a low-confidence observation")
	}

	s.Observe(1, 0.9)
	if label, ok := s.MaybeFire(); !ok || label != 1 {
		t.Errorf("MaybeFire() = (%d, %v), want (1, true)", label, ok)
	}
}

func TestMaybeFireEmptyHistory(t *testing.T) {
	s := NewSmoother(5, 0.6)
	if _, ok := s.MaybeFire(); ok {
		t.Error("MaybeFire() on empty history should not fire")
	}
}
