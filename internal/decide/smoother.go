// Package decide turns noisy per-tick classifier outputs into at most
// one stable decision per speech segment, by majority vote over a
// bounded window of recent predictions.
package decide

// NoDecision is returned when the history holds no votes yet.
const NoDecision = -1

// Smoother holds the recent-prediction history and the per-utterance
// fired flag. Reset it on every Silence-to-Speech transition.
type Smoother struct {
	history   []int
	size      int
	threshold float64

	fired   bool
	lastMet bool // the most recent observation met the confidence threshold
}

// NewSmoother creates a smoother with the given history size and
// confidence threshold.
func NewSmoother(size int, threshold float64) *Smoother {
	if size < 1 {
		size = 1
	}
	return &Smoother{
		history:   make([]int, 0, size),
		size:      size,
		threshold: threshold,
	}
}

// Reset clears the history and the fired flag for a new utterance.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
	s.fired = false
	s.lastMet = false
}

// Observe records one per-tick prediction. Votes below the confidence
// threshold are dropped; the oldest vote is evicted at capacity.
func (s *Smoother) Observe(class int, confidence float64) {
	s.lastMet = confidence >= s.threshold
	if !s.lastMet {
		return
	}
	if len(s.history) == s.size {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.size-1]
	}
	s.history = append(s.history, class)
}

// Majority returns the class with the highest vote count. Ties resolve
// to whichever class reached the maximum count first in a left-to-right
// scan. Returns (NoDecision, false) on an empty history.
func (s *Smoother) Majority() (int, bool) {
	if len(s.history) == 0 {
		return NoDecision, false
	}
	counts := make(map[int]int, len(s.history))
	best := NoDecision
	bestCount := 0
	for _, c := range s.history {
		counts[c]++
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best, true
}

// MaybeFire returns the majority label exactly once per utterance: only
// when a majority exists, the triggering observation met the threshold,
// and nothing has fired since the last Reset.
func (s *Smoother) MaybeFire() (int, bool) {
	if s.fired || !s.lastMet {
		return NoDecision, false
	}
	label, ok := s.Majority()
	if !ok {
		return NoDecision, false
	}
	s.fired = true
	return label, true
}
