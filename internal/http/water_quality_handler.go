package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aquawatch/internal/models"
	"aquawatch/internal/processing"

	"go.uber.org/zap"
)

// Default page sizes.
const (
	defaultReadingsLimit = 100
	defaultExportLimit   = 1000
	defaultAlertsLimit   = 20
)

// WaterService is the ingestion and query service behind the handlers.
type WaterService interface {
	Ingest(ctx context.Context, reading models.SensorReading, src models.IngestSource) models.IngestResult
	Evaluate(ctx context.Context, reading models.SensorReading) (*models.Evaluation, error)
	GetReadings(ctx context.Context, limit int) ([]models.ReadingView, error)
	GetAlerts(ctx context.Context, limit int) ([]models.AlertView, error)
	GetStatistics(ctx context.Context) (*models.Statistics, error)
	ListDevices(ctx context.Context) ([]models.ReadingView, error)
}

type WaterQualityHandler struct {
	svc    WaterService
	logger *zap.Logger
}

func NewWaterQualityHandler(svc WaterService, logger *zap.Logger) *WaterQualityHandler {
	return &WaterQualityHandler{svc: svc, logger: logger}
}

// DeviceReading handles GET /data?ph=&turbidity=&chlorine=&conductivity=.
// The body is the bare potability label so boards can compare strings.
func (h *WaterQualityHandler) DeviceReading(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reading, err := processing.ParseSensorQuery(q, h.logger)
	if err != nil {
		h.logger.Warn("Invalid device reading", zap.String("query", r.URL.RawQuery), zap.Error(err))
		writeText(w, http.StatusBadRequest, "ERRO: "+err.Error())
		return
	}

	result := h.svc.Ingest(r.Context(), reading, models.IngestSource{
		Transport: models.SourceDevice,
		DeviceID:  q.Get("device"),
	})
	if result.Prediction == nil {
		writeText(w, statusForError(result.Err), "ERRO_ML: "+result.Message)
		return
	}
	writeText(w, http.StatusOK, string(result.Prediction.PotabilityLabel))
}

type readingRequest struct {
	DeviceID string
	Reading  models.SensorReading
}

func (h *WaterQualityHandler) decodeReading(r *http.Request) (readingRequest, error) {
	var body map[string]interface{}
	if err := readBodyJSON(r, maxBodyBytes, &body); err != nil {
		return readingRequest{}, &models.ValidationError{Reason: "JSON inválido"}
	}
	reading, err := processing.ParseSensorValues(body, h.logger)
	if err != nil {
		return readingRequest{}, err
	}
	req := readingRequest{Reading: reading}
	if id, ok := body["device_id"].(string); ok {
		req.DeviceID = id
	}
	return req, nil
}

// CreateReading handles POST /api/v1/readings.
func (h *WaterQualityHandler) CreateReading(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeReading(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	result := h.svc.Ingest(r.Context(), req.Reading, models.IngestSource{
		Transport: models.SourceHTTP,
		DeviceID:  req.DeviceID,
	})
	if result.Prediction == nil {
		writeJSON(w, statusForError(result.Err), Fail(result.Message))
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// Evaluate handles POST /api/v1/evaluate. Nothing is persisted.
func (h *WaterQualityHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeReading(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	eval, err := h.svc.Evaluate(r.Context(), req.Reading)
	if err != nil {
		h.logger.Error("Evaluation failed", zap.Error(err))
		writeJSON(w, statusForError(err), Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(eval))
}

// ListReadings handles GET /api/v1/readings?limit=100.
func (h *WaterQualityHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultReadingsLimit)
	readings, err := h.svc.GetReadings(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("failed to get readings"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(readings))
}

// ExportReadings handles GET /api/v1/readings/export?limit=1000.
func (h *WaterQualityHandler) ExportReadings(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultExportLimit)
	readings, err := h.svc.GetReadings(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("failed to get readings"))
		return
	}
	excelData, err := GenerateReadingsExport(readings)
	if err != nil {
		h.logger.Error("Failed to generate readings export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("water-readings-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(excelData)
}

// ListAlerts handles GET /api/v1/alerts?limit=20.
func (h *WaterQualityHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), defaultAlertsLimit)
	alerts, err := h.svc.GetAlerts(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("failed to get alerts"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// GetStatistics handles GET /api/v1/statistics.
func (h *WaterQualityHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStatistics(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("failed to compute statistics"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// ListDevices handles GET /api/v1/devices.
func (h *WaterQualityHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.svc.ListDevices(r.Context())
	if err != nil {
		h.logger.Error("Failed to list devices", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list devices"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(devices))
}
