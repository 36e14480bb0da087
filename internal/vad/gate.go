// Package vad implements a hysteretic voice activity gate over
// short-time RMS energy.
package vad

// State is the gate state.
type State int

const (
	Silence State = iota
	Speech
)

func (s State) String() string {
	if s == Speech {
		return "speech"
	}
	return "silence"
}

// Gate is a two-threshold energy detector. The gap between the enter
// and exit thresholds prevents flicker at the boundary: the gate opens
// at energy >= enter and closes only when energy drops below exit.
type Gate struct {
	enter   float64
	exit    float64
	enabled bool
	state   State
}

// NewGate creates a gate with the given thresholds. exit must be below
// enter; when it is not, it is pulled down to half of enter.
func NewGate(enter, exit float64) *Gate {
	if exit >= enter {
		exit = enter / 2
	}
	return &Gate{enter: enter, exit: exit, enabled: true}
}

// AlwaysOpen returns a disabled gate that treats every tick as speech.
// Useful for exercising the rest of the pipeline without a microphone.
func AlwaysOpen() *Gate {
	return &Gate{enabled: false}
}

// Feed advances the gate with the current window's energy. It returns
// the new state plus edge flags for the Silence-to-Speech and
// Speech-to-Silence transitions.
func (g *Gate) Feed(energy float64) (state State, entered, exited bool) {
	if !g.enabled {
		if g.state != Speech {
			g.state = Speech
			return Speech, true, false
		}
		return Speech, false, false
	}

	switch g.state {
	case Silence:
		if energy >= g.enter {
			g.state = Speech
			return Speech, true, false
		}
	case Speech:
		if energy < g.exit {
			g.state = Silence
			return Silence, false, true
		}
	}
	return g.state, false, false
}

// State returns the current gate state.
func (g *Gate) State() State { return g.state }

// Reset forces the gate back to Silence.
func (g *Gate) Reset() {
	if g.enabled {
		g.state = Silence
	}
}
