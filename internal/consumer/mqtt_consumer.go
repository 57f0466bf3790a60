package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqttcommon "aquawatch/common/mqtt"
	"aquawatch/internal/models"
	"aquawatch/internal/processing"

	"go.uber.org/zap"
)

// Client is the subset of the MQTT client the consumer needs.
type Client interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Unsubscribe(topics ...string) error
}

// Ingester runs the ingestion pipeline for one reading.
type Ingester interface {
	Ingest(ctx context.Context, reading models.SensorReading, src models.IngestSource) models.IngestResult
}

// Options configures topics and QoS.
type Options struct {
	ReadingTopic string // e.g. water/+/reading
	ResultSuffix string // e.g. potability
	QoS          byte
}

// MQTTConsumer ingests sensor readings published by devices and answers on
// the device's result topic with the potability label.
type MQTTConsumer struct {
	client   Client
	ingester Ingester
	opts     Options
	logger   *zap.Logger

	ctx context.Context
}

// NewMQTTConsumer creates the consumer.
func NewMQTTConsumer(client Client, ingester Ingester, opts Options, logger *zap.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		client:   client,
		ingester: ingester,
		opts:     opts,
		logger:   logger,
		ctx:      context.Background(),
	}
}

// Start subscribes and blocks until ctx is done.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.client.Subscribe(c.opts.ReadingTopic, c.opts.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to reading topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", c.opts.ReadingTopic),
	)

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the reading topic.
func (c *MQTTConsumer) Stop() error {
	if err := c.client.Unsubscribe(c.opts.ReadingTopic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
		return err
	}
	c.logger.Info("MQTT consumer stopped")
	return nil
}

func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. device id from water/{device_id}/reading
	deviceID, err := DeviceIDFromTopic(topic)
	if err != nil {
		return err
	}
	resultTopic := ResultTopic(topic, c.opts.ResultSuffix)

	// 2. decode and validate
	var values map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		c.reply(resultTopic, "ERRO: payload JSON inválido")
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	reading, err := processing.ParseSensorValues(values, c.logger)
	if err != nil {
		c.reply(resultTopic, "ERRO: "+err.Error())
		return fmt.Errorf("invalid reading from %s: %w", deviceID, err)
	}

	// 3. ingest and answer with the label
	result := c.ingester.Ingest(c.ctx, reading, models.IngestSource{
		Transport: models.SourceMQTT,
		DeviceID:  deviceID,
	})
	if result.Prediction == nil {
		c.reply(resultTopic, "ERRO_ML: "+result.Message)
		return fmt.Errorf("ingestion failed for %s: %w", deviceID, result.Err)
	}
	c.reply(resultTopic, string(result.Prediction.PotabilityLabel))
	return nil
}

func (c *MQTTConsumer) reply(topic, body string) {
	if err := c.client.Publish(topic, c.opts.QoS, false, []byte(body)); err != nil {
		c.logger.Warn("Failed to publish result",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

// DeviceIDFromTopic extracts the device segment of water/{device_id}/reading.
func DeviceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] == "" {
		return "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return parts[1], nil
}

// ResultTopic replaces the last segment of topic with suffix.
func ResultTopic(topic, suffix string) string {
	i := strings.LastIndex(topic, "/")
	if i < 0 {
		return topic + "/" + suffix
	}
	return topic[:i+1] + suffix
}
