package predictor

import (
	"encoding/json"
	"fmt"
	"time"

	"aquawatch/internal/processing"

	"go.uber.org/zap"
)

// ClassifierSpec is the serialized classifier.
type ClassifierSpec struct {
	Type      string    `json:"type"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold float64   `json:"threshold"`
}

// Metrics are the evaluation numbers recorded at training time.
type Metrics struct {
	TrainAccuracy     float64            `json:"train_accuracy"`
	TestAccuracy      float64            `json:"test_accuracy"`
	CVScores          []float64          `json:"cv_scores"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Artifact bundles the classifier with the feature order and scaler it was
// trained with.
type Artifact struct {
	Version      string                      `json:"version"`
	TrainedAt    time.Time                   `json:"trained_at"`
	FeatureSet   string                      `json:"feature_set"`
	FeatureNames []string                    `json:"feature_names"`
	Scaler       processing.ScalerParameters `json:"scaler"`
	Classifier   ClassifierSpec              `json:"classifier"`
	Metrics      Metrics                     `json:"metrics"`
}

// DecodeArtifact parses and validates a JSON artifact.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Encode renders the artifact as indented JSON.
func (a *Artifact) Encode() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(a, "", "  ")
}

// Validate checks the artifact is internally consistent.
func (a *Artifact) Validate() error {
	n := len(a.FeatureNames)
	if n == 0 {
		return fmt.Errorf("model artifact has no feature names")
	}
	if a.Classifier.Type != ClassifierLogistic {
		return fmt.Errorf("unsupported classifier type %q", a.Classifier.Type)
	}
	if len(a.Classifier.Weights) != n {
		return fmt.Errorf("model artifact has %d weights for %d features", len(a.Classifier.Weights), n)
	}
	if err := a.Scaler.Validate(n); err != nil {
		return fmt.Errorf("model artifact scaler: %w", err)
	}
	return nil
}

// Build reconstructs the feature processor and classifier.
func (a *Artifact) Build(logger *zap.Logger) (*processing.FeatureProcessor, Classifier, error) {
	scaler := processing.ScalerParameters{
		Mean: append([]float64(nil), a.Scaler.Mean...),
		Std:  append([]float64(nil), a.Scaler.Std...),
	}
	processor, err := processing.NewFeatureProcessor(a.FeatureNames, &scaler, logger)
	if err != nil {
		return nil, nil, err
	}
	classifier := &LogisticClassifier{
		Weights:   append([]float64(nil), a.Classifier.Weights...),
		Bias:      a.Classifier.Bias,
		Threshold: a.Classifier.Threshold,
	}
	return processor, classifier, nil
}
