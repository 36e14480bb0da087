// Package model implements the on-device classifier: a small
// extreme-learning-machine with either a random tanh hidden layer or an
// RBF kernel, trained by ridge regression against one-hot targets.
package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/steerlab/voxsteer/internal/mathx"
)

// Classifier is a trained ELM. Construct via Train or FromState.
type Classifier struct {
	opts       Options
	inDim      int
	numClasses int

	// Linear variant: random projection + bias.
	w    mathx.Mat // [hidden][inDim]
	bias mathx.Vec // [hidden]

	// Kernel variant: the (scaled) training set.
	support mathx.Mat // [n][inDim]

	// Output weights: [hidden][classes] for linear, [n][classes] for kernel.
	beta mathx.Mat

	out outputTransform
}

// Train fits a classifier on scaled feature rows and one-hot targets.
// Options are merged over the built-in defaults before use.
func Train(features, targets [][]float64, opts Options) (*Classifier, error) {
	if len(features) == 0 || len(targets) == 0 {
		return nil, fmt.Errorf("model: training requires features and targets")
	}
	if len(features) != len(targets) {
		return nil, fmt.Errorf("model: %d feature rows but %d target rows", len(features), len(targets))
	}
	inDim := len(features[0])
	numClasses := len(targets[0])
	if numClasses < 2 {
		return nil, fmt.Errorf("model: need at least 2 classes, got %d", numClasses)
	}
	for i, f := range features {
		if len(f) != inDim {
			return nil, fmt.Errorf("model: feature row %d has dim %d, want %d", i, len(f), inDim)
		}
	}

	opts = opts.Merge()
	out, err := newOutputTransform(opts.Output)
	if err != nil {
		return nil, err
	}

	m := &Classifier{
		opts:       opts,
		inDim:      inDim,
		numClasses: numClasses,
		out:        out,
	}

	switch opts.Kind {
	case KindKernel:
		err = m.trainKernel(features, targets)
	case KindLinear:
		err = m.trainLinear(features, targets)
	default:
		err = fmt.Errorf("model: unknown classifier kind %q", opts.Kind)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// trainKernel solves (K + ridge*I) beta = Y over the RBF kernel matrix.
func (m *Classifier) trainKernel(features, targets [][]float64) error {
	n := len(features)
	m.support = mathx.NewMat(n, m.inDim)
	for i, f := range features {
		copy(m.support[i], f)
	}

	k := mathx.NewMat(n, n)
	for i := 0; i < n; i++ {
		k[i][i] = 1
		for j := i + 1; j < n; j++ {
			v := m.rbf(features[i], features[j])
			k[i][j] = v
			k[j][i] = v
		}
	}
	mathx.AddDiag(k, m.opts.Ridge)

	y := mathx.NewMat(n, m.numClasses)
	for i, t := range targets {
		copy(y[i], t)
	}

	beta, err := mathx.Solve(k, y)
	if err != nil {
		return fmt.Errorf("model: kernel solve failed: %w", err)
	}
	m.beta = beta
	return nil
}

// trainLinear projects through a seeded random tanh hidden layer and
// solves the ridge system (H^T H + ridge*I) beta = H^T Y.
func (m *Classifier) trainLinear(features, targets [][]float64) error {
	hidden := m.opts.HiddenUnits
	rng := rand.New(rand.NewSource(m.opts.Seed))

	m.w = mathx.NewMat(hidden, m.inDim)
	m.bias = make(mathx.Vec, hidden)
	scale := 1.0 / math.Sqrt(float64(m.inDim))
	for i := 0; i < hidden; i++ {
		for j := 0; j < m.inDim; j++ {
			m.w[i][j] = rng.NormFloat64() * scale
		}
		m.bias[i] = rng.Float64()*2 - 1
	}

	n := len(features)
	h := mathx.NewMat(n, hidden)
	for i, f := range features {
		m.hiddenInto(f, h[i])
	}

	y := mathx.NewMat(n, m.numClasses)
	for i, t := range targets {
		copy(y[i], t)
	}

	gram := mathx.Gram(h)
	mathx.AddDiag(gram, m.opts.Ridge)
	rhs := mathx.MulMat(mathx.Transpose(h), y)

	beta, err := mathx.Solve(gram, rhs)
	if err != nil {
		return fmt.Errorf("model: ridge solve failed: %w", err)
	}
	m.beta = beta
	return nil
}

// Scores returns per-class scores for a scaled feature vector, passed
// through the configured output transform.
func (m *Classifier) Scores(x []float64) ([]float64, error) {
	if len(x) != m.inDim {
		return nil, fmt.Errorf("model: input dim %d, want %d", len(x), m.inDim)
	}
	raw := make([]float64, m.numClasses)
	switch m.opts.Kind {
	case KindKernel:
		for i, sv := range m.support {
			kv := m.rbf(x, sv)
			if kv == 0 {
				continue
			}
			for c := 0; c < m.numClasses; c++ {
				raw[c] += kv * m.beta[i][c]
			}
		}
	case KindLinear:
		h := make(mathx.Vec, m.opts.HiddenUnits)
		m.hiddenInto(x, h)
		for i, hv := range h {
			for c := 0; c < m.numClasses; c++ {
				raw[c] += hv * m.beta[i][c]
			}
		}
	}
	return m.out.apply(raw), nil
}

// NumClasses returns the class count the model was trained with.
func (m *Classifier) NumClasses() int { return m.numClasses }

// InputDim returns the expected feature dimensionality.
func (m *Classifier) InputDim() int { return m.inDim }

func (m *Classifier) rbf(a, b []float64) float64 {
	d2 := 0.0
	for i := range a {
		d := a[i] - b[i]
		d2 += d * d
	}
	return math.Exp(-m.opts.Kernel.Gamma * d2)
}

func (m *Classifier) hiddenInto(x []float64, dst mathx.Vec) {
	for i := range dst {
		dst[i] = math.Tanh(mathx.Dot(m.w[i], x) + m.bias[i])
	}
}

// OneHot converts class indices to one-hot rows. Every row sums to
// exactly 1 with exactly one 1-valued entry.
func OneHot(labels []int, numClasses int) ([][]float64, error) {
	out := make([][]float64, len(labels))
	for i, l := range labels {
		if l < 0 || l >= numClasses {
			return nil, fmt.Errorf("model: label %d out of range [0,%d)", l, numClasses)
		}
		row := make([]float64, numClasses)
		row[l] = 1
		out[i] = row
	}
	return out, nil
}

// outputTransform converts raw readout values into class scores.
type outputTransform interface {
	apply(raw []float64) []float64
	mode() OutputMode
}

func newOutputTransform(mode OutputMode) (outputTransform, error) {
	switch mode {
	case OutputProbability:
		return probabilityOutput{}, nil
	case OutputLogit:
		return logitOutput{}, nil
	case OutputRaw:
		return rawOutput{}, nil
	default:
		return nil, fmt.Errorf("model: unknown output mode %q", mode)
	}
}

type probabilityOutput struct{}

func (probabilityOutput) mode() OutputMode { return OutputProbability }

// apply clamps the regression outputs to [0, 1] and renormalizes. If
// everything clamps to zero the scores fall back to uniform.
func (probabilityOutput) apply(raw []float64) []float64 {
	out := make([]float64, len(raw))
	sum := 0.0
	for i, v := range raw {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out[i] = v
		sum += v
	}
	if sum <= 0 {
		for i := range out {
			out[i] = 1.0 / float64(len(out))
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

type logitOutput struct{}

func (logitOutput) mode() OutputMode { return OutputLogit }

func (logitOutput) apply(raw []float64) []float64 {
	maxv := math.Inf(-1)
	for _, v := range raw {
		if v > maxv {
			maxv = v
		}
	}
	out := make([]float64, len(raw))
	sum := 0.0
	for i, v := range raw {
		e := math.Exp(v - maxv)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

type rawOutput struct{}

func (rawOutput) mode() OutputMode { return OutputRaw }

func (rawOutput) apply(raw []float64) []float64 {
	out := make([]float64, len(raw))
	copy(out, raw)
	return out
}
