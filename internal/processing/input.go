package processing

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"aquawatch/internal/models"

	"go.uber.org/zap"
)

// AliasChlorine is the name sensor devices use for chloramines.
const AliasChlorine = "chlorine"

// Plausible sensor ranges. Values outside only produce a warning.
type valueRange struct{ min, max float64 }

var plausibleRanges = map[string]valueRange{
	models.FieldPH:           {0, 14},
	models.FieldTurbidity:    {0, 1000},
	models.FieldChloramines:  {0, 10},
	models.FieldConductivity: {0, 3000},
}

var requiredFields = []string{models.FieldPH, models.FieldTurbidity, models.FieldChloramines}

var labFields = []string{
	models.FieldHardness,
	models.FieldSolids,
	models.FieldSulfate,
	models.FieldOrganicCarbon,
	models.FieldTrihalomethanes,
}

// ParseSensorValues validates a decoded JSON payload. ph, turbidity and
// chloramines (or chlorine) are required and must be numbers or numeric
// strings; conductivity defaults to 0.0; lab fields are kept when numeric.
func ParseSensorValues(values map[string]interface{}, logger *zap.Logger) (models.SensorReading, error) {
	lookup := func(key string) (interface{}, bool) {
		if v, ok := values[key]; ok {
			return v, true
		}
		for k, v := range values {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
		return nil, false
	}
	return parseSensor(lookup, logger)
}

// ParseSensorQuery validates query parameters, e.g. ?ph=7&turbidity=3&chlorine=1.
func ParseSensorQuery(q url.Values, logger *zap.Logger) (models.SensorReading, error) {
	lookup := func(key string) (interface{}, bool) {
		if _, ok := q[key]; !ok {
			return nil, false
		}
		return q.Get(key), true
	}
	return parseSensor(lookup, logger)
}

func parseSensor(lookup func(string) (interface{}, bool), logger *zap.Logger) (models.SensorReading, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	present := func(key string) (interface{}, bool) {
		v, ok := lookup(key)
		if !ok || isBlank(v) {
			return nil, false
		}
		return v, true
	}
	// a blank chloramines still falls back to chlorine
	get := func(field string) (interface{}, bool) {
		v, ok := present(field)
		if !ok && field == models.FieldChloramines {
			return present(AliasChlorine)
		}
		return v, ok
	}

	// 1. required fields
	var missing []string
	for _, field := range requiredFields {
		if _, ok := get(field); !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &models.ValidationError{
			Field:  strings.Join(missing, ", "),
			Reason: "parâmetro obrigatório ausente",
		}
	}

	reading := models.SensorReading{}
	for _, field := range requiredFields {
		raw, _ := get(field)
		v, err := toFloat(raw)
		if err != nil {
			return nil, &models.ValidationError{Field: field, Reason: "deve ser numérico"}
		}
		reading[field] = v
	}

	// 2. optional conductivity
	reading[models.FieldConductivity] = 0.0
	if raw, ok := get(models.FieldConductivity); ok {
		v, err := toFloat(raw)
		if err != nil {
			return nil, &models.ValidationError{Field: models.FieldConductivity, Reason: "deve ser numérico"}
		}
		reading[models.FieldConductivity] = v
	}

	// 3. lab fields
	for _, field := range labFields {
		raw, ok := get(field)
		if !ok {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			logger.Warn("Ignoring non-numeric field", zap.String("field", field))
			continue
		}
		reading[field] = v
	}

	// 4. range warnings
	for field, r := range plausibleRanges {
		if v := reading[field]; v < r.min || v > r.max {
			logger.Warn("Sensor value outside plausible range",
				zap.String("field", field),
				zap.Float64("value", v),
				zap.Float64("min", r.min),
				zap.Float64("max", r.max),
			)
		}
	}

	return reading, nil
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toFloat(v interface{}) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		f = n
	default:
		return 0, strconv.ErrSyntax
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
