package model

import (
	"fmt"
	"math"
)

// ScaleEpsilon floors fitted standard deviations so transforming can
// never divide by zero.
const ScaleEpsilon = 1e-8

// Scaler holds per-dimension standardization parameters fitted on a
// training set. Immutable once fitted.
type Scaler struct {
	Mean []float64 `msgpack:"mean" json:"mean"`
	Std  []float64 `msgpack:"std" json:"std"`
}

// FitScaler computes the per-dimension mean and sample standard
// deviation (n-1 denominator) over the training features. Standard
// deviations that underflow are floored to ScaleEpsilon. A single row
// fits with std 0 before flooring; that is intentional.
func FitScaler(features [][]float64) (*Scaler, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("model: fit requires at least one feature row")
	}
	dim := len(features[0])
	for i, f := range features {
		if len(f) != dim {
			return nil, fmt.Errorf("model: feature row %d has dim %d, want %d", i, len(f), dim)
		}
	}

	n := float64(len(features))
	s := &Scaler{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
	}
	for j := 0; j < dim; j++ {
		sum := 0.0
		for _, f := range features {
			sum += f[j]
		}
		s.Mean[j] = sum / n
	}
	for j := 0; j < dim; j++ {
		std := 0.0
		if len(features) > 1 {
			ss := 0.0
			for _, f := range features {
				d := f[j] - s.Mean[j]
				ss += d * d
			}
			std = math.Sqrt(ss / (n - 1))
		}
		if std < ScaleEpsilon {
			std = ScaleEpsilon
		}
		s.Std[j] = std
	}
	return s, nil
}

// Transform standardizes v element-wise against the fitted parameters.
func (s *Scaler) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for j := range v {
		std := s.Std[j]
		if std < ScaleEpsilon {
			std = ScaleEpsilon
		}
		out[j] = (v[j] - s.Mean[j]) / std
	}
	return out
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, f := range features {
		out[i] = s.Transform(f)
	}
	return out
}
