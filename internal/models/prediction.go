package models

// PotabilityLabel is the user-facing classifier outcome.
type PotabilityLabel string

const (
	LabelPotable    PotabilityLabel = "POTAVEL"
	LabelNotPotable PotabilityLabel = "NAO_POTAVEL"
)

// LabelFor maps the binary decision to its label.
func LabelFor(isPotable bool) PotabilityLabel {
	if isPotable {
		return LabelPotable
	}
	return LabelNotPotable
}

// Probabilities holds the two class probabilities; they sum to 1.
type Probabilities struct {
	NotPotable float64 `json:"not_potable"`
	Potable    float64 `json:"potable"`
}

// PredictionResult is the classifier output for one reading.
// Confidence is always max(Probabilities.NotPotable, Probabilities.Potable).
type PredictionResult struct {
	IsPotable       bool            `json:"is_potable"`
	PotabilityLabel PotabilityLabel `json:"potability_label"`
	Confidence      float64         `json:"confidence"`
	Probabilities   Probabilities   `json:"probabilities"`
	SensorData      SensorReading   `json:"sensor_data,omitempty"`
}

// NewPredictionResult builds a result from the decision and [p0, p1].
func NewPredictionResult(isPotable bool, pNotPotable, pPotable float64) PredictionResult {
	confidence := pNotPotable
	if pPotable > confidence {
		confidence = pPotable
	}
	return PredictionResult{
		IsPotable:       isPotable,
		PotabilityLabel: LabelFor(isPotable),
		Confidence:      confidence,
		Probabilities: Probabilities{
			NotPotable: pNotPotable,
			Potable:    pPotable,
		},
	}
}
