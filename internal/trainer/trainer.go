// Package trainer turns the recorded sample library into a trained
// classifier, and moves model snapshots between the classifier boundary
// and the persistent store.
package trainer

import (
	"context"
	"fmt"

	"github.com/steerlab/voxsteer/internal/boundary"
	"github.com/steerlab/voxsteer/internal/db"
	"github.com/steerlab/voxsteer/internal/dsp"
	"github.com/steerlab/voxsteer/internal/logging"
	"github.com/steerlab/voxsteer/internal/model"
)

// Trainer extracts features from the sample library and trains the
// classifier behind the boundary.
type Trainer struct {
	lib       *db.Library
	bnd       *boundary.Boundary
	labels    []string
	featOpts  dsp.Options
	modelOpts model.Options
	log       logging.Tag
}

// New creates a trainer. The labels slice fixes the class index of each
// label: labels[0] is class 0 and so on.
func New(lib *db.Library, bnd *boundary.Boundary, labels []string, featOpts dsp.Options, modelOpts model.Options) *Trainer {
	return &Trainer{
		lib:       lib,
		bnd:       bnd,
		labels:    labels,
		featOpts:  featOpts,
		modelOpts: modelOpts,
		log:       logging.Tagged("trainer"),
	}
}

// TrainFromLibrary extracts features from every stored sample and
// trains the classifier. It returns the number of samples used.
// Samples whose extraction degrades to the zero vector are skipped with
// a warning; samples with labels outside the configured set fail the
// run, since their class index would be meaningless.
func (t *Trainer) TrainFromLibrary(ctx context.Context) (int, error) {
	samples, err := t.lib.List()
	if err != nil {
		return 0, fmt.Errorf("trainer: list samples: %w", err)
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("trainer: the sample library is empty")
	}

	var features [][]float64
	var classes []int
	seen := make(map[int]bool)
	for _, s := range samples {
		class := t.classIndex(s.Label)
		if class < 0 {
			return 0, fmt.Errorf("trainer: sample %d has unknown label %q", s.ID, s.Label)
		}
		vec := dsp.Extract(dsp.ToFloat32(dsp.DecodeInt16LE(s.PCM)), s.SampleRate, t.featOpts)
		if dsp.IsZero(vec) {
			t.log.Warnf("skipping sample %d (%s): no usable audio", s.ID, s.Label)
			continue
		}
		features = append(features, vec)
		classes = append(classes, class)
		seen[class] = true
	}

	if len(features) == 0 {
		return 0, fmt.Errorf("trainer: no sample produced usable features")
	}
	if len(seen) < 2 {
		return 0, fmt.Errorf("trainer: need samples for at least two labels, got %d", len(seen))
	}

	// One-hot against the full label set, so classes without samples
	// still occupy their output column.
	oneHot, err := model.OneHot(classes, len(t.labels))
	if err != nil {
		return 0, fmt.Errorf("trainer: %w", err)
	}

	resp := t.bnd.Call(ctx, boundary.Request{
		Action: boundary.ActionTrain,
		Train: &boundary.TrainPayload{
			Features: features,
			OneHot:   oneHot,
			Options:  t.modelOpts,
		},
	})
	if !resp.OK {
		return 0, fmt.Errorf("trainer: train: %s", resp.Err)
	}

	t.log.Infof("trained on %d samples across %d labels", len(features), len(seen))
	return len(features), nil
}

func (t *Trainer) classIndex(label string) int {
	for i, l := range t.labels {
		if l == label {
			return i
		}
	}
	return -1
}
