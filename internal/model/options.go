package model

// Kind selects the classifier variant.
type Kind string

const (
	// KindKernel trains a kernel ELM: RBF kernel over the training set
	// with ridge-regularized output weights. Deterministic and the
	// stronger of the two on small training sets.
	KindKernel Kind = "kernel"
	// KindLinear trains a standard ELM: a random tanh hidden layer with
	// a ridge-regression readout.
	KindLinear Kind = "linear"
)

// OutputMode selects how raw network outputs become class scores. The
// transform is chosen once at construction, not probed per call.
type OutputMode string

const (
	// OutputProbability treats raw outputs as near-probabilities:
	// clamped to [0, 1] and renormalized to sum to 1.
	OutputProbability OutputMode = "probability"
	// OutputLogit treats raw outputs as logits and applies softmax.
	OutputLogit OutputMode = "logit"
	// OutputRaw passes raw outputs through unchanged. Callers normalize
	// defensively.
	OutputRaw OutputMode = "raw"
)

// KernelOptions is the nested kernel sub-configuration.
type KernelOptions struct {
	// Gamma is the RBF width: K(a,b) = exp(-gamma * |a-b|^2).
	Gamma float64 `yaml:"gamma" json:"gamma" msgpack:"gamma"`
}

// Options configures classifier training. Zero values mean "use the
// default for this field".
type Options struct {
	Kind        Kind          `yaml:"kind" json:"kind" msgpack:"kind"`
	HiddenUnits int           `yaml:"hidden_units" json:"hiddenUnits" msgpack:"hidden_units"`
	Ridge       float64       `yaml:"ridge" json:"ridge" msgpack:"ridge"`
	Seed        int64         `yaml:"seed" json:"seed" msgpack:"seed"`
	Output      OutputMode    `yaml:"output" json:"output" msgpack:"output"`
	Kernel      KernelOptions `yaml:"kernel" json:"kernel" msgpack:"kernel"`
}

// DefaultOptions returns the built-in training configuration: the
// kernel classifier with a probability output head.
func DefaultOptions() Options {
	return Options{
		Kind:        KindKernel,
		HiddenUnits: 64,
		Ridge:       1e-3,
		Seed:        42,
		Output:      OutputProbability,
		Kernel:      KernelOptions{Gamma: 0.05},
	}
}

// Merge overlays o field-by-field onto the defaults. Only the nested
// kernel sub-configuration merges recursively; every other field is a
// whole-value override.
func (o Options) Merge() Options {
	d := DefaultOptions()
	if o.Kind == "" {
		o.Kind = d.Kind
	}
	if o.HiddenUnits == 0 {
		o.HiddenUnits = d.HiddenUnits
	}
	if o.Ridge == 0 {
		o.Ridge = d.Ridge
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Output == "" {
		o.Output = d.Output
	}
	if o.Kernel.Gamma == 0 {
		o.Kernel.Gamma = d.Kernel.Gamma
	}
	return o
}
