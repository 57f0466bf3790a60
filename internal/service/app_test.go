package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aquawatch/internal/config"
	"aquawatch/internal/models"
	"aquawatch/internal/predictor"
	"aquawatch/internal/processing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(modelPath string) *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.Addr = ":0"
	cfg.Model.Path = modelPath
	cfg.Model.FeatureSet = config.FeatureSetSensor
	cfg.Stats.CacheTTLSec = 10
	cfg.Stats.Window = 100
	cfg.Notify.StreamName = "water:readings:stream"
	cfg.Notify.QueueSize = 16
	return cfg
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	artifact := &predictor.Artifact{
		Version:      "app-test",
		TrainedAt:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FeatureSet:   processing.FeatureSetSensor,
		FeatureNames: processing.SensorFeatures,
		Scaler: processing.ScalerParameters{
			Mean: []float64{7, 2, 400, 4},
			Std:  []float64{1, 1, 100, 2},
		},
		Classifier: predictor.ClassifierSpec{
			Type:      predictor.ClassifierLogistic,
			Weights:   []float64{0, 0, 0, -2},
			Bias:      1,
			Threshold: 0.5,
		},
	}
	data, err := artifact.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestApp_WithoutModelServesQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(filepath.Join(t.TempDir(), "missing.json")), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	defer app.Stop()

	st := app.Status(ctx)
	assert.Equal(t, "ONLINE", st.Server)
	assert.False(t, st.Model.Loaded)
	assert.Equal(t, BackendMemory, st.Repository)
	assert.Equal(t, BackendMemory, st.Cache)
	assert.False(t, app.Service().ModelLoaded())

	result := app.Service().Ingest(ctx, models.SensorReading{"ph": 7, "turbidity": 1, "chloramines": 1}, models.IngestSource{Transport: models.SourceHTTP})
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, models.ErrModelNotLoaded)

	readings, err := app.Service().GetReadings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestApp_IngestFansOutToCaches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(writeArtifact(t)), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	defer app.Stop()

	assert.True(t, app.Status(ctx).Model.Loaded)

	svc := app.Service()
	result := svc.Ingest(ctx, models.SensorReading{"ph": 7.2, "turbidity": 3.5, "chloramines": 1.8}, models.IngestSource{
		Transport: models.SourceHTTP,
		DeviceID:  "esp32-01",
	})
	require.True(t, result.Success)
	require.NotNil(t, result.Prediction)

	require.Eventually(t, func() bool {
		devices, err := svc.ListDevices(ctx)
		return err == nil && len(devices) == 1
	}, 2*time.Second, 10*time.Millisecond)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReadings)
}

func TestNewApp_InvalidModelPath(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig("s3://"), zap.NewNop())
	assert.Error(t, err)
}
