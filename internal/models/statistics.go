package models

// ParameterStats summarises one field over the statistics window.
type ParameterStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Statistics is the dashboard summary over the most recent readings.
type Statistics struct {
	TotalReadings     int                       `json:"total_readings"`
	PotableCount      int                       `json:"potable_count"`
	NonPotableCount   int                       `json:"non_potable_count"`
	PotablePercentage float64                   `json:"potable_percentage"`
	AlertsCount       int                       `json:"alerts_count"`
	ParameterStats    map[string]ParameterStats `json:"parameter_stats"`
	LastReading       *ReadingView              `json:"last_reading,omitempty"`
}
