package predictor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"aquawatch/internal/models"
	"aquawatch/internal/processing"

	"go.uber.org/zap"
)

// ModelInfo describes the loaded artifact.
type ModelInfo struct {
	Loaded       bool      `json:"loaded"`
	Location     string    `json:"location,omitempty"`
	Version      string    `json:"version,omitempty"`
	FeatureSet   string    `json:"feature_set,omitempty"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	TrainedAt    time.Time `json:"trained_at,omitempty"`
	TestAccuracy float64   `json:"test_accuracy,omitempty"`
}

type loadedModel struct {
	processor  *processing.FeatureProcessor
	classifier Classifier
	info       ModelInfo
	importance map[string]float64
}

// Predictor pairs a feature processor with a classifier. Once loaded the pair
// is immutable, so concurrent predictions only take a read lock.
type Predictor struct {
	source ArtifactSource
	logger *zap.Logger

	mu    sync.RWMutex
	model *loadedModel
}

// NewPredictor creates a predictor that loads its artifact from source,
// either explicitly via Load or on first prediction.
func NewPredictor(source ArtifactSource, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		source: source,
		logger: logger,
	}
}

// NewPredictorWith creates an already-loaded predictor from parts.
func NewPredictorWith(processor *processing.FeatureProcessor, classifier Classifier, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		logger: logger,
		model: &loadedModel{
			processor:  processor,
			classifier: classifier,
			info: ModelInfo{
				Loaded:       true,
				FeatureNames: processor.FeatureNames(),
			},
		},
	}
}

// Load reads, validates and installs the artifact. Any failure is reported
// as models.ErrModelNotLoaded wrapping the cause.
func (p *Predictor) Load(ctx context.Context) error {
	if p.source == nil {
		return models.ErrModelNotLoaded
	}

	data, err := p.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrModelNotLoaded, err)
	}
	artifact, err := DecodeArtifact(data)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrModelNotLoaded, err)
	}
	processor, classifier, err := artifact.Build(p.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrModelNotLoaded, err)
	}

	m := &loadedModel{
		processor:  processor,
		classifier: classifier,
		info: ModelInfo{
			Loaded:       true,
			Location:     p.source.Location(),
			Version:      artifact.Version,
			FeatureSet:   artifact.FeatureSet,
			FeatureNames: artifact.FeatureNames,
			TrainedAt:    artifact.TrainedAt,
			TestAccuracy: artifact.Metrics.TestAccuracy,
		},
		importance: artifact.Metrics.FeatureImportance,
	}

	p.mu.Lock()
	p.model = m
	p.mu.Unlock()

	p.logger.Info("Model loaded",
		zap.String("location", m.info.Location),
		zap.String("version", m.info.Version),
		zap.String("feature_set", m.info.FeatureSet),
		zap.Int("features", len(m.info.FeatureNames)),
	)
	return nil
}

// IsLoaded reports whether a model is installed.
func (p *Predictor) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}

// Info returns metadata of the installed model.
func (p *Predictor) Info() ModelInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		info := ModelInfo{}
		if p.source != nil {
			info.Location = p.source.Location()
		}
		return info
	}
	return p.model.info
}

func (p *Predictor) ensureLoaded(ctx context.Context) (*loadedModel, error) {
	p.mu.RLock()
	m := p.model
	p.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	if err := p.Load(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model, nil
}

// PredictFromSensorData scores one reading.
func (p *Predictor) PredictFromSensorData(ctx context.Context, reading models.SensorReading) (models.PredictionResult, error) {
	m, err := p.ensureLoaded(ctx)
	if err != nil {
		return models.PredictionResult{}, err
	}

	result, err := m.predict(reading)
	if err != nil {
		return models.PredictionResult{}, err
	}

	p.logger.Debug("Sensor prediction",
		zap.String("label", string(result.PotabilityLabel)),
		zap.Float64("confidence", result.Confidence),
	)
	return result, nil
}

// PredictBatch scores readings in order. It stops at the first failure.
func (p *Predictor) PredictBatch(ctx context.Context, readings []models.SensorReading) ([]models.PredictionResult, error) {
	m, err := p.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.PredictionResult, 0, len(readings))
	for i, reading := range readings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := m.predict(reading)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		results = append(results, result)
	}

	p.logger.Info("Batch prediction completed", zap.Int("count", len(results)))
	return results, nil
}

// FeatureImportance returns per-feature importance normalised to sum to 1.
func (p *Predictor) FeatureImportance(ctx context.Context) (map[string]float64, error) {
	m, err := p.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(m.info.FeatureNames))
	if len(m.importance) > 0 {
		for k, v := range m.importance {
			out[k] = v
		}
		return out, nil
	}

	lc, ok := m.classifier.(*LogisticClassifier)
	if !ok {
		p.logger.Warn("Classifier does not expose feature importance")
		return out, nil
	}
	for i, v := range lc.Importance() {
		out[m.info.FeatureNames[i]] = v
	}
	return out, nil
}

func (m *loadedModel) predict(reading models.SensorReading) (models.PredictionResult, error) {
	vec := m.processor.Process(reading)

	label, err := m.classifier.Predict(vec)
	if err != nil {
		return models.PredictionResult{}, &models.PredictionError{Cause: err}
	}
	proba, err := m.classifier.PredictProba(vec)
	if err != nil {
		return models.PredictionResult{}, &models.PredictionError{Cause: err}
	}
	if err := checkProbabilities(proba); err != nil {
		return models.PredictionResult{}, &models.PredictionError{Cause: err}
	}

	result := models.NewPredictionResult(label == 1, proba[0], proba[1])
	result.SensorData = reading
	return result, nil
}

// probabilitySumTolerance bounds |p0+p1-1|.
const probabilitySumTolerance = 1e-6

func checkProbabilities(proba [2]float64) error {
	for _, p := range proba {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidProbabilities, proba)
		}
	}
	if math.Abs(proba[0]+proba[1]-1) > probabilitySumTolerance {
		return fmt.Errorf("%w: %v does not sum to 1", ErrInvalidProbabilities, proba)
	}
	return nil
}
