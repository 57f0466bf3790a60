package processing

import (
	"encoding/json"
	"net/url"
	"testing"

	"aquawatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseSensorValues_NumbersAndStrings(t *testing.T) {
	reading, err := ParseSensorValues(map[string]interface{}{
		"ph":          7.2,
		"turbidity":   "3.5",
		"chloramines": json.Number("1.8"),
		"hardness":    "204.9",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 7.2, reading[models.FieldPH])
	assert.Equal(t, 3.5, reading[models.FieldTurbidity])
	assert.Equal(t, 1.8, reading[models.FieldChloramines])
	assert.Equal(t, 0.0, reading[models.FieldConductivity])
	assert.Equal(t, 204.9, reading[models.FieldHardness])
}

func TestParseSensorValues_ChlorineAlias(t *testing.T) {
	reading, err := ParseSensorValues(map[string]interface{}{
		"PH": 7.0, "Turbidity": 2.0, "chlorine": 1.0, "conductivity": 400,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, reading[models.FieldChloramines])
	assert.Equal(t, 400.0, reading[models.FieldConductivity])
}

func TestParseSensorValues_BlankChloraminesUsesChlorine(t *testing.T) {
	reading, err := ParseSensorValues(map[string]interface{}{
		"ph": 7.0, "turbidity": 2.0, "chloramines": "  ", "chlorine": "1.5",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.5, reading[models.FieldChloramines])

	q := url.Values{"ph": {"7"}, "turbidity": {"2"}, "chloramines": {""}, "chlorine": {"0.8"}}
	reading, err = ParseSensorQuery(q, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.8, reading[models.FieldChloramines])
}

func TestParseSensorValues_Missing(t *testing.T) {
	_, err := ParseSensorValues(map[string]interface{}{"ph": 7.0, "turbidity": ""}, nil)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "turbidity, chloramines", verr.Field)
}

func TestParseSensorValues_NonNumeric(t *testing.T) {
	cases := []map[string]interface{}{
		{"ph": "abc", "turbidity": 1, "chloramines": 1},
		{"ph": 7, "turbidity": true, "chloramines": 1},
		{"ph": 7, "turbidity": 1, "chloramines": "NaN"},
		{"ph": 7, "turbidity": 1, "chloramines": 1, "conductivity": "x"},
	}
	for _, values := range cases {
		_, err := ParseSensorValues(values, nil)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr, "%v", values)
	}
}

func TestParseSensorValues_LabFieldIgnoredWhenInvalid(t *testing.T) {
	reading, err := ParseSensorValues(map[string]interface{}{
		"ph": 7, "turbidity": 1, "chloramines": 1, "sulfate": "n/a",
	}, nil)
	require.NoError(t, err)
	_, ok := reading[models.FieldSulfate]
	assert.False(t, ok)
}

func TestParseSensorValues_RangeWarningOnly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reading, err := ParseSensorValues(map[string]interface{}{
		"ph": 15.0, "turbidity": 1.0, "chloramines": 1.0,
	}, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 15.0, reading[models.FieldPH])

	entries := logs.FilterMessage("Sensor value outside plausible range").All()
	require.Len(t, entries, 1)
	assert.Equal(t, models.FieldPH, entries[0].ContextMap()["field"])
}

func TestParseSensorQuery(t *testing.T) {
	q := url.Values{}
	q.Set("ph", "6.8")
	q.Set("turbidity", "12")
	q.Set("chlorine", "0.5")

	reading, err := ParseSensorQuery(q, nil)
	require.NoError(t, err)
	assert.Equal(t, 6.8, reading[models.FieldPH])
	assert.Equal(t, 0.5, reading[models.FieldChloramines])

	q.Del("chlorine")
	_, err = ParseSensorQuery(q, nil)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.FieldChloramines, verr.Field)
}
