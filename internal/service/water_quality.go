package service

import (
	"context"
	"errors"
	"time"

	"aquawatch/internal/evaluator"
	"aquawatch/internal/models"
	"aquawatch/internal/repository"
	"aquawatch/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Predictor is the classifier facade used by ingestion.
type Predictor interface {
	PredictFromSensorData(ctx context.Context, reading models.SensorReading) (models.PredictionResult, error)
	IsLoaded() bool
}

// EventPublisher receives an event for every persisted reading. Publish
// must not block.
type EventPublisher interface {
	Publish(evt models.ReadingEvent) bool
}

// Options carries the optional collaborators of WaterQualityService.
type Options struct {
	Stats       *store.StatisticsCache
	Devices     *store.DeviceStateCache
	Events      EventPublisher
	StatsWindow int
}

// WaterQualityService ingests readings and answers read-only queries
// over persisted data.
type WaterQualityService struct {
	predictor Predictor
	repo      repository.ReadingsRepository
	analyzer  *evaluator.ParameterAnalyzer
	risk      *evaluator.RiskEngine
	alerts    *evaluator.AlertClassifier

	stats       *store.StatisticsCache
	devices     *store.DeviceStateCache
	events      EventPublisher
	statsWindow int

	logger *zap.Logger
	now    func() time.Time
}

// NewWaterQualityService creates the service.
func NewWaterQualityService(predictor Predictor, repo repository.ReadingsRepository, opts Options, logger *zap.Logger) *WaterQualityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := opts.StatsWindow
	if window <= 0 {
		window = defaultStatsWindow
	}
	return &WaterQualityService{
		predictor:   predictor,
		repo:        repo,
		analyzer:    evaluator.NewParameterAnalyzer(),
		risk:        evaluator.NewRiskEngine(),
		alerts:      evaluator.NewAlertClassifier(),
		stats:       opts.Stats,
		devices:     opts.Devices,
		events:      opts.Events,
		statsWindow: window,
		logger:      logger,
		now:         time.Now,
	}
}

// ModelLoaded reports whether predictions can be served.
func (s *WaterQualityService) ModelLoaded() bool {
	return s.predictor != nil && s.predictor.IsLoaded()
}

// Ingest predicts, persists and reports on one reading. It never returns an
// error: failures are described by the result.
func (s *WaterQualityService) Ingest(ctx context.Context, reading models.SensorReading, src models.IngestSource) models.IngestResult {
	now := s.now()

	// 1. predict; no reading is stored without a prediction
	prediction, err := s.predict(ctx, reading)
	if err != nil {
		s.logger.Error("Failed to process reading",
			zap.String("source", src.Transport),
			zap.String("device_id", src.DeviceID),
			zap.Any("reading", reading),
			zap.Error(err),
		)
		return models.IngestResult{
			Success:   false,
			Timestamp: now,
			Error:     err.Error(),
			Message:   models.MsgIngestFailed,
			Err:       err,
		}
	}

	// 2. build the entity
	entity := &models.Reading{
		Timestamp:   now,
		DeviceID:    src.DeviceID,
		PH:          reading.GetOr(models.FieldPH, 0),
		Turbidity:   reading.GetOr(models.FieldTurbidity, 0),
		Chloramines: reading.GetOr(models.FieldChloramines, 0),
	}
	if prediction.IsPotable {
		entity.Potability = 1
	}

	// 3. persist; a failed save keeps the prediction
	result := models.IngestResult{
		Timestamp:  now,
		Prediction: &prediction,
	}
	if err := s.repo.Save(ctx, entity); err != nil {
		s.logger.Warn("Failed to save reading",
			zap.String("source", src.Transport),
			zap.String("device_id", src.DeviceID),
			zap.Error(err),
		)
		result.Error = err.Error()
		result.Message = models.MsgIngestSaveError
		result.Err = err
	} else {
		result.Success = true
		result.ReadingSaved = true
		result.ReadingID = entity.ID
		result.Message = models.MsgIngestOK
	}

	// 4. risk
	assessment := s.risk.Assess(prediction, s.analyzer.Analyze(reading))
	result.RiskLevel = assessment.RiskLevel

	s.logger.Info("Reading processed",
		zap.String("source", src.Transport),
		zap.String("device_id", src.DeviceID),
		zap.String("label", string(prediction.PotabilityLabel)),
		zap.Float64("confidence", prediction.Confidence),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.Bool("reading_saved", result.ReadingSaved),
	)

	if result.ReadingSaved {
		s.publish(*entity, prediction, assessment.RiskLevel, src)
	}
	return result
}

func (s *WaterQualityService) predict(ctx context.Context, reading models.SensorReading) (models.PredictionResult, error) {
	if s.predictor == nil {
		return models.PredictionResult{}, models.ErrModelNotLoaded
	}
	return s.predictor.PredictFromSensorData(ctx, reading)
}

func (s *WaterQualityService) publish(r models.Reading, prediction models.PredictionResult, level models.RiskLevel, src models.IngestSource) {
	if s.events == nil {
		return
	}
	evt := models.ReadingEvent{
		EventID:    uuid.NewString(),
		Source:     src.Transport,
		Reading:    r,
		Prediction: prediction,
		RiskLevel:  level,
	}
	if r.IsAlertEligible() {
		alert := s.alerts.View(r)
		evt.Alert = &alert
	}
	if !s.events.Publish(evt) {
		s.logger.Warn("Reading event dropped", zap.String("event_id", evt.EventID), zap.Int64("reading_id", r.ID))
	}
}

// Evaluate returns the detailed analysis of reading without persisting it.
func (s *WaterQualityService) Evaluate(ctx context.Context, reading models.SensorReading) (*models.Evaluation, error) {
	prediction, err := s.predict(ctx, reading)
	if err != nil {
		return nil, err
	}
	report := s.analyzer.Analyze(reading)
	assessment := s.risk.Assess(prediction, report)

	return &models.Evaluation{
		PredictionResult:  prediction,
		ParameterAnalysis: report.AsMap(),
		RiskLevel:         assessment.RiskLevel,
		Recommendations:   assessment.Recommendations,
	}, nil
}

// GetReadings returns the most recent readings with their labels.
func (s *WaterQualityService) GetReadings(ctx context.Context, limit int) ([]models.ReadingView, error) {
	readings, err := s.repo.GetReadings(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get readings", zap.Error(err))
		return nil, err
	}
	views := make([]models.ReadingView, 0, len(readings))
	for _, r := range readings {
		views = append(views, models.NewReadingView(r))
	}
	return views, nil
}

// GetAlerts returns the most recent alert-eligible readings, classified.
func (s *WaterQualityService) GetAlerts(ctx context.Context, limit int) ([]models.AlertView, error) {
	readings, err := s.repo.GetAlerts(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get alerts", zap.Error(err))
		return nil, err
	}
	views := make([]models.AlertView, 0, len(readings))
	for _, r := range readings {
		views = append(views, s.alerts.View(r))
	}
	s.logger.Debug("Alerts retrieved", zap.Int("count", len(views)))
	return views, nil
}

// GetStatistics summarises the most recent readings, served from cache when
// available.
func (s *WaterQualityService) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	if s.stats != nil {
		cached, err := s.stats.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Statistics cache read failed", zap.Error(err))
		}
	}

	readings, err := s.repo.GetReadings(ctx, s.statsWindow)
	if err != nil {
		s.logger.Error("Failed to compute statistics", zap.Error(err))
		return nil, err
	}
	stats := ComputeStatistics(readings)

	if s.stats != nil {
		if err := s.stats.Set(ctx, stats); err != nil {
			s.logger.Warn("Statistics cache write failed", zap.Error(err))
		}
	}
	s.logger.Debug("Statistics computed",
		zap.Int("total_readings", stats.TotalReadings),
		zap.Int("potable_count", stats.PotableCount),
	)
	return stats, nil
}

// ListDevices returns the latest reading of every device that reported one.
func (s *WaterQualityService) ListDevices(ctx context.Context) ([]models.ReadingView, error) {
	if s.devices == nil {
		return []models.ReadingView{}, nil
	}
	return s.devices.ListLatest(ctx)
}
