package simulator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Summary counts the outcome of a run.
type Summary struct {
	Sent   int
	Failed int
	Labels map[string]int
}

// SuccessRate is the percentage of readings delivered.
func (s Summary) SuccessRate() float64 {
	total := s.Sent + s.Failed
	if total == 0 {
		return 0
	}
	return float64(s.Sent) / float64(total) * 100
}

// Runner sends Count readings spaced by Interval.
type Runner struct {
	Generator *Generator
	Sender    Sender
	DeviceID  string
	Count     int
	Interval  time.Duration
	Logger    *zap.Logger
}

// Run stops early when ctx is done.
func (r *Runner) Run(ctx context.Context) Summary {
	summary := Summary{Labels: map[string]int{}}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for i := 0; i < r.Count; i++ {
		if ctx.Err() != nil {
			break
		}
		reading := r.Generator.Next()
		label, err := r.Sender.Send(ctx, r.DeviceID, reading)
		if err != nil {
			summary.Failed++
			logger.Warn("Simulated reading failed",
				zap.Int("n", i+1),
				zap.String("scenario", string(reading.Scenario)),
				zap.Error(err),
			)
		} else {
			summary.Sent++
			if label != "" {
				summary.Labels[label]++
			}
			logger.Info("Simulated reading sent",
				zap.Int("n", i+1),
				zap.String("scenario", string(reading.Scenario)),
				zap.Float64("ph", reading.PH),
				zap.Float64("turbidity", reading.Turbidity),
				zap.Float64("chloramines", reading.Chloramines),
				zap.String("label", label),
			)
		}

		if i < r.Count-1 && r.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.Interval):
			}
		}
	}
	return summary
}
