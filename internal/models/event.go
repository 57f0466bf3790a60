package models

// ReadingEvent is emitted after a reading was persisted.
type ReadingEvent struct {
	EventID    string           `json:"event_id"`
	Source     string           `json:"source"`
	Reading    Reading          `json:"reading"`
	Prediction PredictionResult `json:"prediction"`
	RiskLevel  RiskLevel        `json:"risk_level"`
	Alert      *AlertView       `json:"alert,omitempty"`
}
