package processing

import (
	"errors"
	"fmt"

	"aquawatch/internal/models"

	"go.uber.org/zap"
)

// ErrAlreadyFitted is returned by Fit on a processor that already has
// scaler parameters.
var ErrAlreadyFitted = errors.New("feature processor already fitted")

// FeatureProcessor turns sparse sensor readings into scaled feature vectors.
// After construction or Fit it is read-only and safe for concurrent use.
type FeatureProcessor struct {
	names  []string
	scaler *ScalerParameters
	logger *zap.Logger
}

// NewFeatureProcessor creates a processor over names. scaler may be nil, in
// which case Process returns unscaled vectors until Fit is called.
func NewFeatureProcessor(names []string, scaler *ScalerParameters, logger *zap.Logger) (*FeatureProcessor, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("feature processor needs at least one feature")
	}
	if scaler != nil {
		if err := scaler.Validate(len(names)); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureProcessor{
		names:  append([]string(nil), names...),
		scaler: scaler,
		logger: logger,
	}, nil
}

// FeatureNames returns the configured order.
func (p *FeatureProcessor) FeatureNames() []string {
	return append([]string(nil), p.names...)
}

// Width is the feature vector length.
func (p *FeatureProcessor) Width() int {
	return len(p.names)
}

// Fitted reports whether scaler parameters are present.
func (p *FeatureProcessor) Fitted() bool {
	return p.scaler != nil
}

// Scaler returns a copy of the fitted parameters, or nil.
func (p *FeatureProcessor) Scaler() *ScalerParameters {
	if p.scaler == nil {
		return nil
	}
	return &ScalerParameters{
		Mean: append([]float64(nil), p.scaler.Mean...),
		Std:  append([]float64(nil), p.scaler.Std...),
	}
}

// Process resolves reading into the configured order and standardizes it.
func (p *FeatureProcessor) Process(reading models.SensorReading) []float64 {
	raw, missing := ResolveFeatures(reading, p.names)
	for _, name := range missing {
		if models.IsPrimarySensorField(name) {
			p.logger.Warn("Sensor feature missing from reading, using 0.0", zap.String("feature", name))
		}
	}

	if p.scaler == nil {
		return raw
	}
	return p.scaler.Transform(raw)
}

// Fit computes scaler parameters from the training matrix. It may run once.
func (p *FeatureProcessor) Fit(X [][]float64) (ScalerParameters, error) {
	if p.scaler != nil {
		return ScalerParameters{}, ErrAlreadyFitted
	}
	if len(X) > 0 && len(X[0]) != len(p.names) {
		return ScalerParameters{}, fmt.Errorf("training matrix has %d columns, want %d", len(X[0]), len(p.names))
	}

	params, err := FitScaler(X)
	if err != nil {
		return ScalerParameters{}, err
	}
	for i, s := range params.Std {
		if s == 0 {
			p.logger.Warn("Constant feature column, scaling will only centre it",
				zap.String("feature", p.names[i]),
				zap.Float64("mean", params.Mean[i]),
			)
		}
	}

	p.scaler = &params
	return params, nil
}

// TransformMatrix standardizes every row of X with the fitted parameters.
func (p *FeatureProcessor) TransformMatrix(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		if p.scaler == nil {
			out[i] = append([]float64(nil), row...)
			continue
		}
		out[i] = p.scaler.Transform(row)
	}
	return out
}
