package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Sender delivers a reading and returns the label the server answered
// with, or "" when the transport is asynchronous.
type Sender interface {
	Send(ctx context.Context, deviceID string, r Reading) (string, error)
}

// HTTPSender emulates a sensor board calling GET /data.
type HTTPSender struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewHTTPSender creates a sender for the server at baseURL.
func NewHTTPSender(baseURL string, logger *zap.Logger) *HTTPSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &HTTPSender{httpClient: client, logger: logger}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, deviceID string, r Reading) (string, error) {
	req := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("ph", formatFloat(r.PH)).
		SetQueryParam("turbidity", formatFloat(r.Turbidity)).
		SetQueryParam("chlorine", formatFloat(r.Chloramines))
	if deviceID != "" {
		req.SetQueryParam("device", deviceID)
	}

	resp, err := req.Get("/data")
	if err != nil {
		return "", fmt.Errorf("failed to send reading: %w", err)
	}
	body := strings.TrimSpace(resp.String())
	if resp.IsError() {
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode(), body)
	}
	return body, nil
}

// Publisher is the subset of the MQTT client used by MQTTSender.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSender publishes readings to water/{device_id}/reading.
type MQTTSender struct {
	client Publisher
	qos    byte
}

func NewMQTTSender(client Publisher, qos byte) *MQTTSender {
	return &MQTTSender{client: client, qos: qos}
}

// ReadingTopic returns the topic a device publishes readings on.
func ReadingTopic(deviceID string) string {
	return "water/" + deviceID + "/reading"
}

// Send implements Sender. The label arrives asynchronously on the result topic.
func (s *MQTTSender) Send(_ context.Context, deviceID string, r Reading) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	if err := s.client.Publish(ReadingTopic(deviceID), s.qos, false, payload); err != nil {
		return "", err
	}
	return "", nil
}
