package models

// ParameterStatus is the per-field tier from the fixed ideal-range table.
type ParameterStatus string

const (
	StatusNormal    ParameterStatus = "normal"
	StatusAttention ParameterStatus = "atencao"
	StatusCritical  ParameterStatus = "critico"
)

// ParameterAnalysis describes one monitored field.
type ParameterAnalysis struct {
	Value      float64         `json:"value"`
	Status     ParameterStatus `json:"status"`
	IdealRange string          `json:"ideal_range"`
}

// AnalyzedParameter pairs a field name with its analysis, keeping order.
type AnalyzedParameter struct {
	Field string `json:"field"`
	ParameterAnalysis
}

// ParameterReport is the ordered analysis of ph, turbidity and chloramines.
type ParameterReport []AnalyzedParameter

// Lookup returns the analysis for field.
func (p ParameterReport) Lookup(field string) (ParameterAnalysis, bool) {
	for _, a := range p {
		if a.Field == field {
			return a.ParameterAnalysis, true
		}
	}
	return ParameterAnalysis{}, false
}

// Count returns how many fields are in status.
func (p ParameterReport) Count(status ParameterStatus) int {
	n := 0
	for _, a := range p {
		if a.Status == status {
			n++
		}
	}
	return n
}

// AsMap renders the report keyed by field, the shape the dashboard consumes.
func (p ParameterReport) AsMap() map[string]ParameterAnalysis {
	out := make(map[string]ParameterAnalysis, len(p))
	for _, a := range p {
		out[a.Field] = a.ParameterAnalysis
	}
	return out
}

// RiskLevel is the four-tier combined risk.
type RiskLevel string

const (
	RiskVeryLow RiskLevel = "muito_baixo"
	RiskLow     RiskLevel = "baixo"
	RiskMedium  RiskLevel = "medio"
	RiskHigh    RiskLevel = "alto"
)

// RiskAssessment is the risk level plus human-readable recommendations.
type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
}

// Evaluation is the detailed, non-persisting analysis of one reading.
type Evaluation struct {
	PredictionResult
	ParameterAnalysis map[string]ParameterAnalysis `json:"parameter_analysis"`
	RiskLevel         RiskLevel                    `json:"risk_level"`
	Recommendations   []string                     `json:"recommendations"`
}
