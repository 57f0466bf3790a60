package repository

import (
	"context"
	"sort"
	"sync"

	"aquawatch/internal/models"
)

// MemoryReadingsRepository is used when the database is disabled.
type MemoryReadingsRepository struct {
	mu       sync.RWMutex
	nextID   int64
	readings []models.Reading
}

// NewMemoryReadingsRepository creates an empty repository.
func NewMemoryReadingsRepository() *MemoryReadingsRepository {
	return &MemoryReadingsRepository{nextID: 1}
}

// Save implements ReadingsRepository.
func (r *MemoryReadingsRepository) Save(ctx context.Context, reading *models.Reading) error {
	if err := ctx.Err(); err != nil {
		return &models.PersistenceError{Op: "save", Cause: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reading.ID = r.nextID
	r.nextID++
	r.readings = append(r.readings, *reading)
	return nil
}

// GetReadings implements ReadingsRepository.
func (r *MemoryReadingsRepository) GetReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	return r.filter(ctx, "get readings", limit, func(models.Reading) bool { return true })
}

// GetAlerts implements ReadingsRepository.
func (r *MemoryReadingsRepository) GetAlerts(ctx context.Context, limit int) ([]models.Reading, error) {
	return r.filter(ctx, "get alerts", limit, models.Reading.IsAlertEligible)
}

func (r *MemoryReadingsRepository) filter(ctx context.Context, op string, limit int, keep func(models.Reading) bool) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, &models.PersistenceError{Op: op, Cause: err}
	}
	limit = normalizeLimit(limit)

	r.mu.RLock()
	matched := make([]models.Reading, 0, len(r.readings))
	for _, reading := range r.readings {
		if keep(reading) {
			matched = append(matched, reading)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
