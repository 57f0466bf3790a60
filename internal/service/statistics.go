package service

import "aquawatch/internal/models"

const defaultStatsWindow = 1000

// ComputeStatistics summarises readings, which are ordered newest first.
// alerts_count counts alert-eligible readings inside the same window.
func ComputeStatistics(readings []models.Reading) *models.Statistics {
	stats := &models.Statistics{
		TotalReadings:  len(readings),
		ParameterStats: map[string]models.ParameterStats{},
	}
	if len(readings) == 0 {
		return stats
	}

	ph := newAccumulator()
	turbidity := newAccumulator()
	chloramines := newAccumulator()
	for _, r := range readings {
		if r.IsPotable() {
			stats.PotableCount++
		}
		if r.IsAlertEligible() {
			stats.AlertsCount++
		}
		ph.add(r.PH)
		turbidity.add(r.Turbidity)
		chloramines.add(r.Chloramines)
	}
	stats.NonPotableCount = stats.TotalReadings - stats.PotableCount
	stats.PotablePercentage = float64(stats.PotableCount) / float64(stats.TotalReadings) * 100

	stats.ParameterStats[models.FieldPH] = ph.result()
	stats.ParameterStats[models.FieldTurbidity] = turbidity.result()
	stats.ParameterStats[models.FieldChloramines] = chloramines.result()

	last := models.NewReadingView(readings[0])
	stats.LastReading = &last
	return stats
}

type accumulator struct {
	sum, min, max float64
	n             int
}

func newAccumulator() *accumulator { return &accumulator{} }

func (a *accumulator) add(v float64) {
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.n++
}

func (a *accumulator) result() models.ParameterStats {
	if a.n == 0 {
		return models.ParameterStats{}
	}
	return models.ParameterStats{Mean: a.sum / float64(a.n), Min: a.min, Max: a.max}
}
