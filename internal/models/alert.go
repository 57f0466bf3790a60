package models

import "time"

// AlertSeverity tiers computed on read.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critica"
	SeverityHigh     AlertSeverity = "alta"
	SeverityMedium   AlertSeverity = "media"
)

// AlertClassification is the severity and message derived for one reading.
type AlertClassification struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// AlertView is a derived alert, never stored.
type AlertView struct {
	ID          int64         `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	DeviceID    string        `json:"device_id,omitempty"`
	PH          float64       `json:"ph"`
	Turbidity   float64       `json:"turbidity"`
	Chloramines float64       `json:"chloramines"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
}

// NewAlertView combines a reading with its classification.
func NewAlertView(r Reading, c AlertClassification) AlertView {
	return AlertView{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		DeviceID:    r.DeviceID,
		PH:          r.PH,
		Turbidity:   r.Turbidity,
		Chloramines: r.Chloramines,
		Severity:    c.Severity,
		Message:     c.Message,
	}
}
