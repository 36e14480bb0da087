package vad

import "testing"

func TestGateHysteresis(t *testing.T) {
	g := NewGate(0.03, 0.015)

	if g.State() != Silence {
		t.Fatal("gate should start in Silence")
	}

	// Below enter: stays silent.
	if state, entered, _ := g.Feed(0.02); state != Silence || entered {
		t.Errorf("Feed(0.02) = %v entered=%v, want Silence", state, entered)
	}

	// Crosses enter threshold.
	state, entered, exited := g.Feed(0.03)
	if state != Speech || !entered || exited {
		t.Errorf("Feed(0.03) = %v entered=%v exited=%v, want Speech edge", state, entered, exited)
	}

	// In the hysteresis band: still speech, no edge.
	state, entered, exited = g.Feed(0.02)
	if state != Speech || entered || exited {
		t.Errorf("Feed(0.02) in band = %v entered=%v exited=%v, want sustained Speech", state, entered, exited)
	}

	// Drops below exit threshold.
	state, entered, exited = g.Feed(0.01)
	if state != Silence || entered || !exited {
		t.Errorf("Feed(0.01) = %v entered=%v exited=%v, want Silence edge", state, entered, exited)
	}

	// A second speech segment produces a second enter edge.
	if _, entered, _ = g.Feed(0.05); !entered {
		t.Error("expected a fresh Silence-to-Speech edge")
	}
}

func TestGateNoEdgeOnRepeatedFeeds(t *testing.T) {
	g := NewGate(0.03, 0.015)
	g.Feed(0.05)
	for i := 0; i < 10; i++ {
		if _, entered, exited := g.Feed(0.05); entered || exited {
			t.Fatalf("feed %d: unexpected edge", i)
		}
	}
}

func TestGateThresholdOrderFixup(t *testing.T) {
	g := NewGate(0.02, 0.05)
	if g.exit >= g.enter {
		t.Errorf("exit %f should be pulled below enter %f", g.exit, g.enter)
	}
}

func TestAlwaysOpen(t *testing.T) {
	g := AlwaysOpen()

	state, entered, _ := g.Feed(0)
	if state != Speech || !entered {
		t.Errorf("first feed = %v entered=%v, want Speech edge", state, entered)
	}
	state, entered, exited := g.Feed(0)
	if state != Speech || entered || exited {
		t.Error("disabled gate should stay open without further edges")
	}

	// Reset does not close a disabled gate.
	g.Reset()
	if state, _, _ := g.Feed(0); state != Speech {
		t.Error("disabled gate should remain open after Reset")
	}
}

func TestGateReset(t *testing.T) {
	g := NewGate(0.03, 0.015)
	g.Feed(0.05)
	g.Reset()
	if g.State() != Silence {
		t.Error("Reset should force Silence")
	}
}
