package predictor

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"aquawatch/internal/models"
	"aquawatch/internal/processing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func separableData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		x1 := rng.Float64()*2 - 1
		x2 := rng.NormFloat64() * 0.1
		X[i] = []float64{x1, x2}
		if x1 > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func TestTrainLogistic_Separable(t *testing.T) {
	X, y := separableData(200, 7)

	model, err := TrainLogistic(X, y, DefaultTrainOptions())
	require.NoError(t, err)

	acc, err := Accuracy(model, X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.9)
	assert.Greater(t, model.Weights[0], 0.0)
}

func TestTrainLogistic_InvalidInput(t *testing.T) {
	_, err := TrainLogistic(nil, nil, DefaultTrainOptions())
	assert.ErrorIs(t, err, processing.ErrEmptyMatrix)

	_, err = TrainLogistic([][]float64{{1}}, []int{1, 0}, DefaultTrainOptions())
	assert.Error(t, err)

	_, err = TrainLogistic([][]float64{{1}}, []int{2}, DefaultTrainOptions())
	assert.Error(t, err)
}

func TestCrossValidate(t *testing.T) {
	X, y := separableData(100, 3)

	scores, err := CrossValidate(X, y, 5, 42, DefaultTrainOptions())
	require.NoError(t, err)
	assert.Len(t, scores, 5)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.7)
	}

	_, err = CrossValidate(X, y, 1, 42, DefaultTrainOptions())
	assert.Error(t, err)
}

func syntheticDataset(n int) *processing.Dataset {
	rng := rand.New(rand.NewSource(11))
	ds := &processing.Dataset{FeatureNames: processing.SensorFeatures}
	for i := 0; i < n; i++ {
		potable := i%2 == 0
		ph := 4.0 + rng.Float64()
		if potable {
			ph = 7.0 + rng.Float64()
		}
		row := []float64{ph, rng.Float64() * 4, 300 + rng.Float64()*200, rng.Float64() * 5}
		if i%17 == 0 {
			row[1] = math.NaN()
		}
		label := 0.0
		if potable {
			label = 1
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, label)
	}
	return ds
}

func TestTrain_EndToEnd(t *testing.T) {
	ctx := context.Background()

	artifact, err := Train(syntheticDataset(200), DefaultTrainConfig(processing.FeatureSetSensor), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, artifact.Validate())

	assert.Equal(t, processing.SensorFeatures, artifact.FeatureNames)
	assert.NotEmpty(t, artifact.Version)
	assert.Len(t, artifact.Metrics.CVScores, 5)
	assert.GreaterOrEqual(t, artifact.Metrics.TestAccuracy, 0.9)

	source := &FileSource{Path: filepath.Join(t.TempDir(), "model.json")}
	data, err := artifact.Encode()
	require.NoError(t, err)
	require.NoError(t, source.Write(ctx, data))

	p := NewPredictor(source, zap.NewNop())
	require.NoError(t, p.Load(ctx))

	good, err := p.PredictFromSensorData(ctx, models.SensorReading{"ph": 7.5, "chloramines": 2, "conductivity": 400, "turbidity": 2.5})
	require.NoError(t, err)
	assert.True(t, good.IsPotable)

	bad, err := p.PredictFromSensorData(ctx, models.SensorReading{"ph": 4.2, "chloramines": 2, "conductivity": 400, "turbidity": 2.5})
	require.NoError(t, err)
	assert.False(t, bad.IsPotable)
}

func TestTrain_EmptyDataset(t *testing.T) {
	_, err := Train(&processing.Dataset{}, DefaultTrainConfig(processing.FeatureSetSensor), zap.NewNop())
	assert.Error(t, err)
}
