package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterDeviceRoutes registers the plain-text endpoint used by sensor boards.
func (r *Router) RegisterDeviceRoutes(h *WaterQualityHandler) {
	r.Handle("/data", method(http.MethodGet, h.DeviceReading))
}

// RegisterAPIRoutes registers the JSON API.
func (r *Router) RegisterAPIRoutes(h *WaterQualityHandler) {
	r.Handle("/api/v1/readings", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListReadings(w, req)
		case http.MethodPost:
			h.CreateReading(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle("/api/v1/readings/export", method(http.MethodGet, h.ExportReadings))
	r.Handle("/api/v1/alerts", method(http.MethodGet, h.ListAlerts))
	r.Handle("/api/v1/statistics", method(http.MethodGet, h.GetStatistics))
	r.Handle("/api/v1/evaluate", method(http.MethodPost, h.Evaluate))
	r.Handle("/api/v1/devices", method(http.MethodGet, h.ListDevices))
}

// RegisterStatusRoutes registers /status.
func (r *Router) RegisterStatusRoutes(h *StatusHandler) {
	r.Handle("/status", method(http.MethodGet, h.GetStatus))
}

// RegisterWebsocketRoutes registers the live alert feed.
func (r *Router) RegisterWebsocketRoutes(ws http.HandlerFunc) {
	r.Handle("/ws/alerts", method(http.MethodGet, ws))
}
