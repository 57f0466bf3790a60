package models

import "time"

// Alert pre-filter thresholds. Severity classification uses 100 NTU for
// turbidity, not 25.
const (
	AlertPHMin          = 6.0
	AlertPHMax          = 9.0
	AlertTurbidityMax   = 25.0
	AlertChloraminesMin = 0.1
	AlertChloraminesMax = 4.0
)

// Reading is one persisted, immutable measurement with its potability.
type Reading struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	DeviceID    string    `json:"device_id,omitempty"`
	PH          float64   `json:"ph"`
	Turbidity   float64   `json:"turbidity"`
	Chloramines float64   `json:"chloramines"`
	Potability  int       `json:"potability"`
}

// IsPotable reports whether the stored potability is 1.
func (r Reading) IsPotable() bool {
	return r.Potability == 1
}

// IsAlertEligible is the repository-side alert selection predicate.
func (r Reading) IsAlertEligible() bool {
	return r.PH < AlertPHMin || r.PH > AlertPHMax ||
		r.Turbidity > AlertTurbidityMax ||
		r.Chloramines < AlertChloraminesMin || r.Chloramines > AlertChloraminesMax
}

// ReadingView is a Reading as exposed by query endpoints.
type ReadingView struct {
	Reading
	PotabilityLabel PotabilityLabel `json:"potability_label"`
}

// NewReadingView decorates r with its label.
func NewReadingView(r Reading) ReadingView {
	return ReadingView{Reading: r, PotabilityLabel: LabelFor(r.IsPotable())}
}
