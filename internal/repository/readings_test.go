package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"aquawatch/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var readingColumns = []string{"id", "timestamp", "ph", "turbidity", "chloramines", "potability", "device_id"}

func setupMockReadingsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresReadingsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewPostgresReadingsRepository(db, zap.NewNop())
}

func TestPostgresSave_Success(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	ts := time.Now()
	reading := &models.Reading{Timestamp: ts, PH: 7.2, Turbidity: 3.5, Chloramines: 1.8, Potability: 1, DeviceID: "esp32-a"}

	mock.ExpectQuery(`INSERT INTO water_readings`).
		WithArgs(ts, 7.2, 3.5, 1.8, 1, "esp32-a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := repo.Save(context.Background(), reading)
	require.NoError(t, err)
	assert.Equal(t, int64(42), reading.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSave_Failure(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO water_readings`).
		WillReturnError(errors.New("connection refused"))

	err := repo.Save(context.Background(), &models.Reading{Timestamp: time.Now()})
	var perr *models.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.Contains(t, err.Error(), "connection refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReadings(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(readingColumns).
		AddRow(int64(2), now, 7.0, 2.0, 1.0, int64(1), "esp32-a").
		AddRow(int64(1), now.Add(-time.Minute), 5.5, 30.0, 0.05, int64(0), nil)

	mock.ExpectQuery(`SELECT id, timestamp, ph, turbidity, chloramines, potability, device_id\s+FROM water_readings\s+ORDER BY`).
		WithArgs(10).
		WillReturnRows(rows)

	readings, err := repo.GetReadings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, int64(2), readings[0].ID)
	assert.Equal(t, "esp32-a", readings[0].DeviceID)
	assert.Equal(t, 1, readings[0].Potability)
	assert.Equal(t, "", readings[1].DeviceID)
	assert.Equal(t, 0.05, readings[1].Chloramines)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReadings_DefaultLimit(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM water_readings`).
		WithArgs(DefaultReadingsLimit).
		WillReturnRows(sqlmock.NewRows(readingColumns))

	readings, err := repo.GetReadings(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, readings)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAlerts_UsesEligibilityPredicate(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE ph < \$2 OR ph > \$3\s+OR turbidity > \$4\s+OR chloramines < \$5 OR chloramines > \$6`).
		WithArgs(20, 6.0, 9.0, 25.0, 0.1, 4.0).
		WillReturnRows(sqlmock.NewRows(readingColumns).
			AddRow(int64(5), time.Now(), 5.5, 150.0, 0.05, int64(0), "esp32-b"))

	alerts, err := repo.GetAlerts(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(5), alerts[0].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAlerts_QueryError(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM water_readings`).WillReturnError(sql.ErrConnDone)

	_, err := repo.GetAlerts(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnsureSchema(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS water_readings`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReadingsRepository()
	base := time.Now()

	inputs := []models.Reading{
		{Timestamp: base.Add(-2 * time.Minute), PH: 7, Turbidity: 2, Chloramines: 1, Potability: 1},
		{Timestamp: base.Add(-time.Minute), PH: 5.5, Turbidity: 150, Chloramines: 0.05},
		{Timestamp: base, PH: 7.1, Turbidity: 30, Chloramines: 1},
	}
	for i := range inputs {
		require.NoError(t, repo.Save(ctx, &inputs[i]))
		assert.Equal(t, int64(i+1), inputs[i].ID)
	}

	readings, err := repo.GetReadings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, int64(3), readings[0].ID)
	assert.Equal(t, int64(2), readings[1].ID)

	alerts, err := repo.GetAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, int64(3), alerts[0].ID)
	assert.Equal(t, int64(2), alerts[1].ID)
}

func TestMemoryRepository_SameTimestampNewestIDFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReadingsRepository()
	ts := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &models.Reading{Timestamp: ts, PH: 7}))
	}

	readings, err := repo.GetReadings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, int64(3), readings[0].ID)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryReadingsRepository().Save(ctx, &models.Reading{})
	var perr *models.PersistenceError
	assert.ErrorAs(t, err, &perr)
}
