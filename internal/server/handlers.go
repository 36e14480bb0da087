package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/steerlab/voxsteer/internal/store"
	"github.com/steerlab/voxsteer/internal/trainer"
)

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, err error) {
	respondJSON(w, code, map[string]string{"error": err.Error()})
}

type statusResponse struct {
	Listening    bool           `json:"listening"`
	Labels       []string       `json:"labels"`
	SampleCounts map[string]int `json:"sample_counts"`
	ModelSavedAt *time.Time     `json:"model_saved_at,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	counts, err := s.deps.Library.Counts()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	resp := statusResponse{
		Listening:    s.deps.Loop.Running(),
		Labels:       s.deps.Config.Decision.Labels,
		SampleCounts: counts,
	}
	if rec, err := s.deps.Store.Load(); err == nil {
		resp.ModelSavedAt = &rec.SavedAt
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Trainer.TrainFromLibrary(r.Context())
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"trained_on": n})
}

func (s *Server) handleModelSave(w http.ResponseWriter, r *http.Request) {
	err := trainer.SaveModel(r.Context(), s.deps.Boundary, s.deps.Store, s.deps.Config.Decision.Labels)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleModelLoad(w http.ResponseWriter, r *http.Request) {
	labels, err := trainer.LoadModel(r.Context(), s.deps.Boundary, s.deps.Store)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, store.ErrNotFound) {
			code = http.StatusNotFound
		}
		respondError(w, code, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"loaded": true, "labels": labels})
}

func (s *Server) handleModelClear(w http.ResponseWriter, r *http.Request) {
	if err := trainer.ClearModel(r.Context(), s.deps.Boundary, s.deps.Store); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

type sampleSummary struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label"`
	SampleRate int       `json:"sample_rate"`
	Bytes      int       `json:"bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleSamplesList(w http.ResponseWriter, _ *http.Request) {
	samples, err := s.deps.Library.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]sampleSummary, 0, len(samples))
	for _, smp := range samples {
		out = append(out, sampleSummary{
			ID:         smp.ID,
			Label:      smp.Label,
			SampleRate: smp.SampleRate,
			Bytes:      len(smp.PCM),
			CreatedAt:  smp.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSamplesDelete(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if err := s.deps.Library.DeleteLabel(label); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListenStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.deps.Loop.Start(); err != nil {
		respondError(w, http.StatusConflict, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"listening": true})
}

func (s *Server) handleListenStop(w http.ResponseWriter, _ *http.Request) {
	s.deps.Loop.Stop()
	respondJSON(w, http.StatusOK, map[string]bool{"listening": false})
}
