package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/steerlab/voxsteer/internal/boundary"
	"github.com/steerlab/voxsteer/internal/capture"
	"github.com/steerlab/voxsteer/internal/config"
	"github.com/steerlab/voxsteer/internal/db"
	"github.com/steerlab/voxsteer/internal/decide"
	"github.com/steerlab/voxsteer/internal/dsp"
	"github.com/steerlab/voxsteer/internal/events"
	"github.com/steerlab/voxsteer/internal/logging"
	"github.com/steerlab/voxsteer/internal/loop"
	"github.com/steerlab/voxsteer/internal/server"
	"github.com/steerlab/voxsteer/internal/store"
	"github.com/steerlab/voxsteer/internal/trainer"
	"github.com/steerlab/voxsteer/internal/vad"
)

// app holds the composed pipeline for one CLI invocation.
type app struct {
	cfg  *config.Config
	lib  *db.Library
	st   *store.Store
	bnd  *boundary.Boundary
	hub  *events.Hub
	ring *capture.Ring
	ctl  *loop.Controller
	tr   *trainer.Trainer
}

// openApp wires the pipeline from the loaded config.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lib, err := db.Open(cfg.SamplesPath())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.ModelDir())
	if err != nil {
		lib.Close()
		return nil, err
	}

	bnd := boundary.New()
	if resp := bnd.Call(context.Background(), boundary.Request{Action: boundary.ActionInit}); !resp.OK {
		lib.Close()
		st.Close()
		bnd.Close()
		return nil, fmt.Errorf("classifier init: %s", resp.Err)
	}

	hub := events.NewHub()
	ring := capture.NewRing(cfg.Audio.SampleRate, time.Duration(cfg.Audio.BufferSeconds)*time.Second)

	gate := vad.AlwaysOpen()
	if cfg.VAD.Enabled {
		gate = vad.NewGate(cfg.VAD.EnterThreshold, cfg.VAD.ExitThreshold)
	}
	smoother := decide.NewSmoother(cfg.Decision.HistorySize, cfg.Decision.ConfidenceThreshold)

	ctl := loop.New(ring, gate, smoother, bnd, hub, dsp.DefaultOptions(), loop.Config{
		Tick:   time.Duration(cfg.Audio.TickMs) * time.Millisecond,
		Window: time.Duration(cfg.Audio.WindowMs) * time.Millisecond,
		Labels: cfg.Decision.Labels,
	})

	return &app{
		cfg:  cfg,
		lib:  lib,
		st:   st,
		bnd:  bnd,
		hub:  hub,
		ring: ring,
		ctl:  ctl,
		tr:   trainer.New(lib, bnd, cfg.Decision.Labels, dsp.DefaultOptions(), cfg.Model),
	}, nil
}

// restoreModel loads a persisted snapshot if one exists.
func (a *app) restoreModel(ctx context.Context) {
	labels, err := trainer.LoadModel(ctx, a.bnd, a.st)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warnf("could not restore saved model: %v", err)
		}
		return
	}
	logging.Infof("restored saved model (labels: %v)", labels)
}

func (a *app) server() *server.Server {
	return server.New(server.Deps{
		Config:   a.cfg,
		Ring:     a.ring,
		Loop:     a.ctl,
		Boundary: a.bnd,
		Library:  a.lib,
		Store:    a.st,
		Trainer:  a.tr,
		Hub:      a.hub,
	})
}

func (a *app) Close() {
	a.ctl.Stop()
	a.hub.Close()
	a.bnd.Close()
	a.st.Close()
	a.lib.Close()
}
