package processing

import (
	"testing"

	"aquawatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFeatureNames(t *testing.T) {
	full, err := FeatureNames(FeatureSetFull)
	require.NoError(t, err)
	assert.Len(t, full, 9)
	assert.Equal(t, models.FieldPH, full[0])
	assert.Equal(t, models.FieldTurbidity, full[8])

	sensor, err := FeatureNames(FeatureSetSensor)
	require.NoError(t, err)
	assert.Equal(t, []string{"ph", "chloramines", "conductivity", "turbidity"}, sensor)

	// returned slices are copies
	sensor[0] = "changed"
	assert.Equal(t, models.FieldPH, SensorFeatures[0])

	_, err = FeatureNames("lab")
	assert.Error(t, err)
}

func TestResolveFeatures_MissingDefaultsToZero(t *testing.T) {
	raw, missing := ResolveFeatures(models.SensorReading{"PH": 7.0}, SensorFeatures)

	assert.Equal(t, []float64{7.0, 0, 0, 0}, raw)
	assert.Equal(t, []string{"chloramines", "conductivity", "turbidity"}, missing)
}

func TestFeatureProcessor_ProcessWithoutScalerReturnsRaw(t *testing.T) {
	p, err := NewFeatureProcessor(SensorFeatures, nil, zap.NewNop())
	require.NoError(t, err)

	vec := p.Process(models.SensorReading{"ph": 7.0})
	assert.Equal(t, []float64{7.0, 0, 0, 0}, vec)
	assert.False(t, p.Fitted())
}

func TestFeatureProcessor_WarnsOnlyForPrimarySensorFields(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, err := NewFeatureProcessor(FullFeatures, nil, zap.New(core))
	require.NoError(t, err)

	p.Process(models.SensorReading{"ph": 7.0})

	var warned []string
	for _, entry := range logs.All() {
		warned = append(warned, entry.ContextMap()["feature"].(string))
	}
	assert.ElementsMatch(t, []string{"chloramines", "conductivity", "turbidity"}, warned)
}

func TestFeatureProcessor_ProcessScales(t *testing.T) {
	scaler := &ScalerParameters{
		Mean: []float64{7, 2, 400, 4},
		Std:  []float64{1, 0.5, 100, 2},
	}
	p, err := NewFeatureProcessor(SensorFeatures, scaler, zap.NewNop())
	require.NoError(t, err)

	vec := p.Process(models.SensorReading{"ph": 8, "chloramines": 3, "conductivity": 300, "turbidity": 4})
	assert.InDeltaSlice(t, []float64{1, 2, -1, 0}, vec, 1e-9)
}

func TestFeatureProcessor_RejectsMismatchedScaler(t *testing.T) {
	_, err := NewFeatureProcessor(SensorFeatures, &ScalerParameters{Mean: []float64{1}, Std: []float64{1}}, nil)
	assert.Error(t, err)
}

func TestFeatureProcessor_FitOnce(t *testing.T) {
	p, err := NewFeatureProcessor([]string{"a", "b"}, nil, zap.NewNop())
	require.NoError(t, err)

	params, err := p.Fit([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, params.Mean)
	assert.Equal(t, []float64{1, 0}, params.Std)
	assert.True(t, p.Fitted())

	_, err = p.Fit([][]float64{{1, 1}})
	assert.ErrorIs(t, err, ErrAlreadyFitted)
}

func TestFeatureProcessor_FitWidthMismatch(t *testing.T) {
	p, err := NewFeatureProcessor([]string{"a", "b"}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = p.Fit([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestScaler_ZeroStdCentresOnly(t *testing.T) {
	s := ScalerParameters{Mean: []float64{5, 10}, Std: []float64{0, 2}}

	out := s.Transform([]float64{7, 14})
	assert.Equal(t, []float64{2, 2}, out)
}

func TestFitScaler_PopulationStd(t *testing.T) {
	params, err := FitScaler([][]float64{{2}, {4}, {4}, {4}, {5}, {5}, {7}, {9}})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, params.Mean[0], 1e-9)
	assert.InDelta(t, 2.0, params.Std[0], 1e-9)

	_, err = FitScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = FitScaler([][]float64{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestFeatureProcessor_ScalerIsCopied(t *testing.T) {
	scaler := &ScalerParameters{Mean: []float64{1}, Std: []float64{1}}
	p, err := NewFeatureProcessor([]string{"ph"}, scaler, nil)
	require.NoError(t, err)

	got := p.Scaler()
	got.Mean[0] = 99
	assert.Equal(t, 1.0, p.Scaler().Mean[0])
}

func TestFeatureProcessor_Deterministic(t *testing.T) {
	scaler := &ScalerParameters{Mean: []float64{7, 2, 400, 4}, Std: []float64{1, 1, 1, 1}}
	p, err := NewFeatureProcessor(SensorFeatures, scaler, nil)
	require.NoError(t, err)

	reading := models.SensorReading{"ph": 7.2, "turbidity": 3.5, "chloramines": 1.8}
	assert.Equal(t, p.Process(reading), p.Process(reading))
}
