package evaluator

import "aquawatch/internal/models"

// Values assumed for absent fields during parameter analysis.
const (
	DefaultPH          = 7.0
	DefaultTurbidity   = 4.0
	DefaultChloramines = 0.0
)

// Ideal range labels shown next to each analysed value.
const (
	IdealRangePH          = "6.5 - 8.5"
	IdealRangeTurbidity   = "< 5 NTU"
	IdealRangeChloramines = "0.2 - 2.0 ppm"
)

// ParameterAnalyzer grades ph, turbidity and chloramines against fixed ideal
// ranges. It has no state.
type ParameterAnalyzer struct{}

// NewParameterAnalyzer returns an analyzer.
func NewParameterAnalyzer() *ParameterAnalyzer {
	return &ParameterAnalyzer{}
}

// Analyze returns the report in field order ph, turbidity, chloramines.
func (a *ParameterAnalyzer) Analyze(reading models.SensorReading) models.ParameterReport {
	ph := reading.GetOr(models.FieldPH, DefaultPH)
	turbidity := reading.GetOr(models.FieldTurbidity, DefaultTurbidity)
	chloramines := reading.GetOr(models.FieldChloramines, DefaultChloramines)

	return models.ParameterReport{
		{Field: models.FieldPH, ParameterAnalysis: models.ParameterAnalysis{
			Value: ph, Status: PHStatus(ph), IdealRange: IdealRangePH,
		}},
		{Field: models.FieldTurbidity, ParameterAnalysis: models.ParameterAnalysis{
			Value: turbidity, Status: TurbidityStatus(turbidity), IdealRange: IdealRangeTurbidity,
		}},
		{Field: models.FieldChloramines, ParameterAnalysis: models.ParameterAnalysis{
			Value: chloramines, Status: ChloraminesStatus(chloramines), IdealRange: IdealRangeChloramines,
		}},
	}
}

// PHStatus: normal 6.5-8.5, atencao 6.0-6.5 or 8.5-9.0, critico otherwise.
func PHStatus(ph float64) models.ParameterStatus {
	switch {
	case ph >= 6.5 && ph <= 8.5:
		return models.StatusNormal
	case (ph >= 6.0 && ph < 6.5) || (ph > 8.5 && ph <= 9.0):
		return models.StatusAttention
	default:
		return models.StatusCritical
	}
}

// TurbidityStatus: normal <5, atencao 5-25, critico >=25 NTU.
func TurbidityStatus(ntu float64) models.ParameterStatus {
	switch {
	case ntu < 5:
		return models.StatusNormal
	case ntu < 25:
		return models.StatusAttention
	default:
		return models.StatusCritical
	}
}

// ChloraminesStatus: normal 0.2-2.0, atencao 0.1-0.2 or 2.0-4.0, critico
// otherwise (ppm).
func ChloraminesStatus(ppm float64) models.ParameterStatus {
	switch {
	case ppm >= 0.2 && ppm <= 2.0:
		return models.StatusNormal
	case (ppm >= 0.1 && ppm < 0.2) || (ppm > 2.0 && ppm <= 4.0):
		return models.StatusAttention
	default:
		return models.StatusCritical
	}
}
