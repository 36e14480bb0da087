// Package server exposes the recognition pipeline over HTTP: a REST API
// for training and model management, and a websocket carrying live
// audio in and pipeline events out.
package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/steerlab/voxsteer/internal/boundary"
	"github.com/steerlab/voxsteer/internal/capture"
	"github.com/steerlab/voxsteer/internal/config"
	"github.com/steerlab/voxsteer/internal/db"
	"github.com/steerlab/voxsteer/internal/events"
	"github.com/steerlab/voxsteer/internal/logging"
	"github.com/steerlab/voxsteer/internal/loop"
	"github.com/steerlab/voxsteer/internal/store"
	"github.com/steerlab/voxsteer/internal/trainer"
)

// Deps holds everything the server needs. All fields are required.
type Deps struct {
	Config   *config.Config
	Ring     *capture.Ring
	Loop     *loop.Controller
	Boundary *boundary.Boundary
	Library  *db.Library
	Store    *store.Store
	Trainer  *trainer.Trainer
	Hub      *events.Hub
}

// Server is the HTTP front end.
type Server struct {
	deps    Deps
	httpSrv *http.Server
	log     logging.Tag
}

// New builds the server and its routes.
func New(deps Deps) *Server {
	s := &Server{
		deps: deps,
		log:  logging.Tagged("server"),
	}
	s.httpSrv = &http.Server{
		Addr:              deps.Config.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, separate from the listener so tests can
// mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/train", s.handleTrain)
		r.Post("/model/save", s.handleModelSave)
		r.Post("/model/load", s.handleModelLoad)
		r.Delete("/model", s.handleModelClear)
		r.Get("/samples", s.handleSamplesList)
		r.Delete("/samples/{label}", s.handleSamplesDelete)
		r.Post("/listen/start", s.handleListenStart)
		r.Post("/listen/stop", s.handleListenStop)
	})

	r.Get("/ws/audio", s.handleWS)
	return r
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Infof("listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and the classification loop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.deps.Loop.Stop()
	return s.httpSrv.Shutdown(ctx)
}

// isLocalOrigin accepts requests with no Origin header or one pointing
// at localhost. The pipeline carries a live microphone; it is not meant
// to be reachable cross-origin.
func isLocalOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".localhost")
}
