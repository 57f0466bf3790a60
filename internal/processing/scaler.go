package processing

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyMatrix is returned when fitting on no rows.
var ErrEmptyMatrix = errors.New("empty training matrix")

// ScalerParameters are the per-position mean and population standard
// deviation fitted on training data.
type ScalerParameters struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Len returns the number of positions.
func (s ScalerParameters) Len() int {
	return len(s.Mean)
}

// Validate checks that both vectors have width n and are finite.
func (s ScalerParameters) Validate(n int) error {
	if len(s.Mean) != n || len(s.Std) != n {
		return fmt.Errorf("scaler width mismatch: mean=%d std=%d want=%d", len(s.Mean), len(s.Std), n)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(s.Mean[i]) || math.IsInf(s.Mean[i], 0) || math.IsNaN(s.Std[i]) || math.IsInf(s.Std[i], 0) || s.Std[i] < 0 {
			return fmt.Errorf("invalid scaler parameters at position %d", i)
		}
	}
	return nil
}

// Transform standardizes raw. A position with zero std is only centred.
func (s ScalerParameters) Transform(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		if i >= len(s.Mean) {
			out[i] = v
			continue
		}
		out[i] = v - s.Mean[i]
		if s.Std[i] != 0 {
			out[i] /= s.Std[i]
		}
	}
	return out
}

// FitScaler computes column-wise mean and population std over X.
func FitScaler(X [][]float64) (ScalerParameters, error) {
	if len(X) == 0 {
		return ScalerParameters{}, ErrEmptyMatrix
	}
	width := len(X[0])
	mean := make([]float64, width)
	std := make([]float64, width)

	for r, row := range X {
		if len(row) != width {
			return ScalerParameters{}, fmt.Errorf("row %d has %d columns, want %d", r, len(row), width)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	n := float64(len(X))
	for i := range mean {
		mean[i] /= n
	}

	for _, row := range X {
		for i, v := range row {
			d := v - mean[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
	}

	return ScalerParameters{Mean: mean, Std: std}, nil
}
