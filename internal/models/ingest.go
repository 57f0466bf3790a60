package models

import "time"

// Ingestion result messages.
const (
	MsgIngestOK        = "Leitura processada com sucesso"
	MsgIngestSaveError = "Erro ao salvar leitura"
	MsgIngestFailed    = "Erro ao processar leitura"
)

// IngestResult is always well formed. Prediction is nil only when the
// prediction step itself failed; Success reflects persistence.
type IngestResult struct {
	Success      bool              `json:"success"`
	Timestamp    time.Time         `json:"timestamp"`
	Prediction   *PredictionResult `json:"prediction,omitempty"`
	RiskLevel    RiskLevel         `json:"risk_level,omitempty"`
	ReadingSaved bool              `json:"reading_saved"`
	ReadingID    int64             `json:"reading_id,omitempty"`
	Error        string            `json:"error,omitempty"`
	Message      string            `json:"message"`

	// Err keeps the typed cause for transports; not serialized.
	Err error `json:"-"`
}

// Transports that feed readings into ingestion.
const (
	SourceHTTP   = "http"
	SourceMQTT   = "mqtt"
	SourceDevice = "esp32"
)

// IngestSource describes where a reading came from.
type IngestSource struct {
	Transport string
	DeviceID  string
}
