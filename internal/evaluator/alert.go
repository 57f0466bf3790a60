package evaluator

import (
	"fmt"
	"strings"

	"aquawatch/internal/models"
)

// Severity thresholds. Turbidity escalates at 100 NTU, the alert message
// still mentions anything above 25.
const (
	severityTurbidityMax = 100.0
	messageTurbidityMax  = 25.0
)

// MsgOutOfStandard is used when no single field explains the alert.
const MsgOutOfStandard = "Parâmetros fora dos padrões de potabilidade"

// AlertClassifier derives severity and message for an alert-eligible reading.
type AlertClassifier struct{}

// NewAlertClassifier returns an alert classifier.
func NewAlertClassifier() *AlertClassifier {
	return &AlertClassifier{}
}

// Classify counts abnormal fields: >=2 critica, 1 alta, 0 media.
func (c *AlertClassifier) Classify(r models.Reading) models.AlertClassification {
	return models.AlertClassification{
		Severity: c.severity(r),
		Message:  c.message(r),
	}
}

// View classifies r and returns the alert view.
func (c *AlertClassifier) View(r models.Reading) models.AlertView {
	return models.NewAlertView(r, c.Classify(r))
}

func (c *AlertClassifier) severity(r models.Reading) models.AlertSeverity {
	count := 0
	if r.PH < models.AlertPHMin || r.PH > models.AlertPHMax {
		count++
	}
	if r.Turbidity > severityTurbidityMax {
		count++
	}
	if r.Chloramines < models.AlertChloraminesMin || r.Chloramines > models.AlertChloraminesMax {
		count++
	}

	switch {
	case count >= 2:
		return models.SeverityCritical
	case count == 1:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func (c *AlertClassifier) message(r models.Reading) string {
	var parts []string

	if r.PH < models.AlertPHMin {
		parts = append(parts, fmt.Sprintf("pH muito ácido (%.2f)", r.PH))
	} else if r.PH > models.AlertPHMax {
		parts = append(parts, fmt.Sprintf("pH muito alcalino (%.2f)", r.PH))
	}

	if r.Turbidity > messageTurbidityMax {
		parts = append(parts, fmt.Sprintf("Turbidez elevada (%.2f NTU)", r.Turbidity))
	}

	if r.Chloramines < models.AlertChloraminesMin {
		parts = append(parts, fmt.Sprintf("Cloro insuficiente (%.2f ppm)", r.Chloramines))
	} else if r.Chloramines > models.AlertChloraminesMax {
		parts = append(parts, fmt.Sprintf("Cloro em excesso (%.2f ppm)", r.Chloramines))
	}

	if len(parts) == 0 {
		return MsgOutOfStandard
	}
	return strings.Join(parts, "; ")
}
