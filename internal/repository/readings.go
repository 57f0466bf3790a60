package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aquawatch/internal/models"

	"go.uber.org/zap"
)

// DefaultReadingsLimit applies when a caller passes limit <= 0.
const DefaultReadingsLimit = 100

// ReadingsRepository stores readings. Implementations serialize their own
// writes and return *models.PersistenceError on failure.
type ReadingsRepository interface {
	// Save inserts r and sets r.ID.
	Save(ctx context.Context, r *models.Reading) error
	// GetReadings returns the most recent readings first.
	GetReadings(ctx context.Context, limit int) ([]models.Reading, error)
	// GetAlerts returns the most recent alert-eligible readings first.
	GetAlerts(ctx context.Context, limit int) ([]models.Reading, error)
}

// PostgresReadingsRepository keeps readings in the water_readings table.
type PostgresReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresReadingsRepository creates the repository.
func NewPostgresReadingsRepository(db *sql.DB, logger *zap.Logger) *PostgresReadingsRepository {
	return &PostgresReadingsRepository{
		db:     db,
		logger: logger,
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS water_readings (
	id          BIGSERIAL PRIMARY KEY,
	timestamp   TIMESTAMPTZ NOT NULL DEFAULT now(),
	ph          DOUBLE PRECISION NOT NULL,
	turbidity   DOUBLE PRECISION NOT NULL,
	chloramines DOUBLE PRECISION NOT NULL,
	potability  SMALLINT NOT NULL CHECK (potability IN (0, 1)),
	device_id   TEXT
);
CREATE INDEX IF NOT EXISTS idx_water_readings_timestamp ON water_readings (timestamp DESC);
`

// EnsureSchema creates the table and index when missing.
func (r *PostgresReadingsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return &models.PersistenceError{Op: "ensure schema", Cause: err}
	}
	return nil
}

// Save implements ReadingsRepository.
func (r *PostgresReadingsRepository) Save(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO water_readings (timestamp, ph, turbidity, chloramines, potability, device_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		reading.Timestamp,
		reading.PH,
		reading.Turbidity,
		reading.Chloramines,
		reading.Potability,
		reading.DeviceID,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to save reading", zap.Error(err))
		return &models.PersistenceError{Op: "save", Cause: err}
	}

	reading.ID = id
	return nil
}

// GetReadings implements ReadingsRepository.
func (r *PostgresReadingsRepository) GetReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	query := `
		SELECT id, timestamp, ph, turbidity, chloramines, potability, device_id
		FROM water_readings
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`
	return r.query(ctx, "get readings", query, normalizeLimit(limit))
}

// GetAlerts implements ReadingsRepository.
func (r *PostgresReadingsRepository) GetAlerts(ctx context.Context, limit int) ([]models.Reading, error) {
	query := `
		SELECT id, timestamp, ph, turbidity, chloramines, potability, device_id
		FROM water_readings
		WHERE ph < $2 OR ph > $3
		   OR turbidity > $4
		   OR chloramines < $5 OR chloramines > $6
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`
	return r.query(ctx, "get alerts", query, normalizeLimit(limit),
		models.AlertPHMin, models.AlertPHMax,
		models.AlertTurbidityMax,
		models.AlertChloraminesMin, models.AlertChloraminesMax,
	)
}

func (r *PostgresReadingsRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.PersistenceError{Op: op, Cause: err}
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var reading models.Reading
		var deviceID sql.NullString
		if err := rows.Scan(
			&reading.ID,
			&reading.Timestamp,
			&reading.PH,
			&reading.Turbidity,
			&reading.Chloramines,
			&reading.Potability,
			&deviceID,
		); err != nil {
			return nil, &models.PersistenceError{Op: op, Cause: fmt.Errorf("failed to scan reading: %w", err)}
		}
		if deviceID.Valid {
			reading.DeviceID = deviceID.String
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: op, Cause: err}
	}

	return readings, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultReadingsLimit
	}
	return limit
}
