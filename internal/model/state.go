package model

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// stateVersion guards against decoding state written by an
// incompatible build.
const stateVersion = 1

// state is the transportable form of a trained classifier.
type state struct {
	Version    int         `msgpack:"version"`
	Options    Options     `msgpack:"options"`
	InDim      int         `msgpack:"in_dim"`
	NumClasses int         `msgpack:"num_classes"`
	W          [][]float64 `msgpack:"w,omitempty"`
	Bias       []float64   `msgpack:"bias,omitempty"`
	Beta       [][]float64 `msgpack:"beta"`
	Support    [][]float64 `msgpack:"support,omitempty"`
}

// MarshalState serializes the trained classifier to msgpack bytes.
func (m *Classifier) MarshalState() ([]byte, error) {
	if m.beta == nil {
		return nil, fmt.Errorf("model: cannot serialize an untrained classifier")
	}
	return msgpack.Marshal(state{
		Version:    stateVersion,
		Options:    m.opts,
		InDim:      m.inDim,
		NumClasses: m.numClasses,
		W:          m.w,
		Bias:       m.bias,
		Beta:       m.beta,
		Support:    m.support,
	})
}

// FromState reconstructs a classifier from serialized state.
func FromState(data []byte) (*Classifier, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("model: empty state")
	}
	var s state
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("model: decode state: %w", err)
	}
	if s.Version != stateVersion {
		return nil, fmt.Errorf("model: unsupported state version %d", s.Version)
	}
	if len(s.Beta) == 0 || s.InDim <= 0 || s.NumClasses < 2 {
		return nil, fmt.Errorf("model: malformed state")
	}

	opts := s.Options.Merge()
	out, err := newOutputTransform(opts.Output)
	if err != nil {
		return nil, err
	}

	m := &Classifier{
		opts:       opts,
		inDim:      s.InDim,
		numClasses: s.NumClasses,
		w:          s.W,
		bias:       s.Bias,
		beta:       s.Beta,
		support:    s.Support,
		out:        out,
	}
	switch opts.Kind {
	case KindKernel:
		if len(m.support) == 0 {
			return nil, fmt.Errorf("model: kernel state missing support vectors")
		}
	case KindLinear:
		if len(m.w) == 0 || len(m.bias) == 0 {
			return nil, fmt.Errorf("model: linear state missing projection")
		}
	}
	return m, nil
}
