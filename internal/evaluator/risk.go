package evaluator

import (
	"fmt"

	"aquawatch/internal/models"
)

// Recommendation texts.
const (
	RecNotRecommended = "⚠️ ÁGUA NÃO RECOMENDADA PARA CONSUMO"
	RecSeekAlternate  = "Procure fonte alternativa de água potável"
	RecWithinStandard = "✅ Água dentro dos padrões de qualidade"
)

// RiskEngine combines the classifier decision with parameter statuses.
type RiskEngine struct{}

// NewRiskEngine returns a risk engine.
func NewRiskEngine() *RiskEngine {
	return &RiskEngine{}
}

// Assess applies the first matching rule:
//  1. not potable -> alto
//  2. any critico -> alto
//  3. two or more atencao -> medio
//  4. one atencao -> baixo
//  5. otherwise muito_baixo
func (e *RiskEngine) Assess(prediction models.PredictionResult, report models.ParameterReport) models.RiskAssessment {
	level := e.level(prediction, report)
	return models.RiskAssessment{
		RiskLevel:       level,
		Recommendations: e.recommendations(report, level),
	}
}

func (e *RiskEngine) level(prediction models.PredictionResult, report models.ParameterReport) models.RiskLevel {
	if !prediction.IsPotable {
		return models.RiskHigh
	}

	critical := report.Count(models.StatusCritical)
	attention := report.Count(models.StatusAttention)
	switch {
	case critical > 0:
		return models.RiskHigh
	case attention >= 2:
		return models.RiskMedium
	case attention == 1:
		return models.RiskLow
	default:
		return models.RiskVeryLow
	}
}

func (e *RiskEngine) recommendations(report models.ParameterReport, level models.RiskLevel) []string {
	var recs []string
	if level == models.RiskHigh {
		recs = append(recs, RecNotRecommended, RecSeekAlternate)
	}

	for _, p := range report {
		if p.Status != models.StatusCritical {
			continue
		}
		switch p.Field {
		case models.FieldPH:
			recs = append(recs, fmt.Sprintf("pH crítico (%.2f) - considere tratamento", p.Value))
		case models.FieldTurbidity:
			recs = append(recs, fmt.Sprintf("Turbidez alta (%.2f NTU) - filtração necessária", p.Value))
		case models.FieldChloramines:
			recs = append(recs, fmt.Sprintf("Nível de cloro inadequado (%.2f ppm) - corrija a dosagem", p.Value))
		}
	}

	if level == models.RiskVeryLow || level == models.RiskLow {
		recs = append(recs, RecWithinStandard)
	}
	// medio with no critical field: say what needs watching
	if len(recs) == 0 {
		for _, p := range report {
			if p.Status == models.StatusAttention {
				recs = append(recs, fmt.Sprintf("Monitorar %s (%.2f) - fora da faixa ideal %s", p.Field, p.Value, p.IdealRange))
			}
		}
	}
	return recs
}
