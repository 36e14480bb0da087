// Package loop runs the realtime classification cycle: every tick it
// takes the most recent audio window, feeds the energy gate, extracts
// features, asks the classifier boundary for scores and pushes the
// smoothed result onto the event hub.
package loop

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/steerlab/voxsteer/internal/boundary"
	"github.com/steerlab/voxsteer/internal/capture"
	"github.com/steerlab/voxsteer/internal/decide"
	"github.com/steerlab/voxsteer/internal/dsp"
	"github.com/steerlab/voxsteer/internal/events"
	"github.com/steerlab/voxsteer/internal/logging"
	"github.com/steerlab/voxsteer/internal/vad"
)

// Config holds the loop timing and decision parameters.
type Config struct {
	// Tick is the classification interval.
	Tick time.Duration
	// Window is how much recent audio each tick classifies.
	Window time.Duration
	// Labels maps class indices to display labels.
	Labels []string
	// PredictTimeout bounds one boundary round trip. Defaults to twice
	// the tick.
	PredictTimeout time.Duration
}

// Controller drives the classification cycle. Ticks run on a single
// goroutine, so a slow tick delays the next one instead of overlapping
// it.
type Controller struct {
	cfg      Config
	ring     *capture.Ring
	gate     *vad.Gate
	smoother *decide.Smoother
	bnd      *boundary.Boundary
	hub      *events.Hub
	featOpts dsp.Options
	log      logging.Tag

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New assembles a controller. It does not start ticking; call Start.
func New(ring *capture.Ring, gate *vad.Gate, smoother *decide.Smoother, bnd *boundary.Boundary, hub *events.Hub, featOpts dsp.Options, cfg Config) *Controller {
	if cfg.Tick <= 0 {
		cfg.Tick = 250 * time.Millisecond
	}
	if cfg.Window <= 0 {
		cfg.Window = 800 * time.Millisecond
	}
	if cfg.PredictTimeout <= 0 {
		cfg.PredictTimeout = 2 * cfg.Tick
	}
	return &Controller{
		cfg:      cfg,
		ring:     ring,
		gate:     gate,
		smoother: smoother,
		bnd:      bnd,
		hub:      hub,
		featOpts: featOpts,
		log:      logging.Tagged("loop"),
	}
}

// Start begins ticking. Starting a running controller is an error.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("loop: already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.run(ctx)
	c.log.Infof("started: tick=%s window=%s", c.cfg.Tick, c.cfg.Window)
	return nil
}

// Stop halts the loop and resets the gate and smoother. An in-flight
// prediction is discarded, not delivered. Stopping a stopped controller
// is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	c.wg.Wait()
	c.gate.Reset()
	c.smoother.Reset()
	c.log.Infof("stopped")
}

// Running reports whether the loop is ticking.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	window := c.ring.Tail(c.cfg.Window)
	if len(window) == 0 {
		return
	}

	energy := dsp.RMS(window)
	state, entered, exited := c.gate.Feed(energy)
	if entered {
		// A fresh utterance gets a fresh vote history.
		c.smoother.Reset()
		c.emitGate(true, energy)
	}
	if exited {
		c.emitGate(false, energy)
	}
	if state != vad.Speech {
		c.emitPrediction(events.Prediction{Class: decide.NoDecision})
		return
	}

	vec := dsp.Extract(window, c.ring.SampleRate(), c.featOpts)
	if dsp.IsZero(vec) {
		c.emitPrediction(events.Prediction{Class: decide.NoDecision})
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.PredictTimeout)
	resp := c.bnd.Call(callCtx, boundary.Request{
		Action:  boundary.ActionPredict,
		Predict: &boundary.PredictPayload{X: vec},
	})
	cancel()
	if ctx.Err() != nil {
		// The loop stopped while the call was in flight.
		return
	}
	if !resp.OK {
		c.log.Debugf("predict failed: %s", resp.Err)
		return
	}

	scores, ok := sanitizeScores(resp.Result.Scores, len(c.cfg.Labels))
	if !ok {
		c.log.Warnf("discarding malformed scores %v", resp.Result.Scores)
		return
	}

	class, confidence := argmax(scores)
	c.emitPrediction(events.Prediction{
		Class:      class,
		Label:      c.cfg.Labels[class],
		Confidence: confidence,
	})

	c.smoother.Observe(class, confidence)
	if winner, fired := c.smoother.MaybeFire(); fired {
		c.emitDecision(events.Decision{Class: winner, Label: c.cfg.Labels[winner]})
	}
}

func (c *Controller) emitGate(speaking bool, energy float64) {
	if err := events.Emit(c.hub, events.TopicGate, events.GateChange{Speaking: speaking, Energy: energy}); err != nil {
		c.log.Debugf("%v", err)
	}
}

func (c *Controller) emitPrediction(p events.Prediction) {
	if err := events.Emit(c.hub, events.TopicPrediction, p); err != nil {
		c.log.Debugf("%v", err)
	}
}

func (c *Controller) emitDecision(d events.Decision) {
	if err := events.Emit(c.hub, events.TopicDecision, d); err != nil {
		c.log.Debugf("%v", err)
	}
}

// sanitizeScores checks arity and finiteness, clamps negatives and
// renormalizes to a distribution.
func sanitizeScores(scores []float64, arity int) ([]float64, bool) {
	if len(scores) != arity {
		return nil, false
	}
	out := make([]float64, arity)
	sum := 0.0
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, false
		}
		if s < 0 {
			s = 0
		}
		out[i] = s
		sum += s
	}
	if sum <= 0 {
		return nil, false
	}
	for i := range out {
		out[i] /= sum
	}
	return out, true
}

func argmax(scores []float64) (int, float64) {
	best, bestVal := 0, scores[0]
	for i, s := range scores[1:] {
		if s > bestVal {
			best, bestVal = i+1, s
		}
	}
	return best, bestVal
}
