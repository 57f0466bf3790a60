package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquawatch/common/logger"
	mqttcommon "aquawatch/common/mqtt"
	"aquawatch/internal/config"
	"aquawatch/internal/simulator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mode := flag.String("mode", "http", "http or mqtt")
	url := flag.String("url", "http://localhost:8000", "server base URL (http mode)")
	device := flag.String("device", "sim-01", "device id")
	count := flag.Int("count", 50, "number of readings")
	interval := flag.Duration("interval", time.Second, "pause between readings")
	seed := flag.Int64("seed", time.Now().UnixNano(), "generator seed")
	flag.Parse()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "aquawatch-simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var sender simulator.Sender
	switch *mode {
	case "http":
		sender = simulator.NewHTTPSender(*url, log)
	case "mqtt":
		mqttCfg := cfg.MQTT
		mqttCfg.ClientID = "aquawatch-simulator-" + *device
		client, err := mqttcommon.NewClient(&mqttCfg, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer client.Disconnect()
		sender = simulator.NewMQTTSender(client, mqttCfg.QoS)
	default:
		log.Fatal("Unknown mode", zap.String("mode", *mode))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := &simulator.Runner{
		Generator: simulator.NewGenerator(*seed),
		Sender:    sender,
		DeviceID:  *device,
		Count:     *count,
		Interval:  *interval,
		Logger:    log,
	}
	summary := runner.Run(ctx)

	log.Info("Simulation finished",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Float64("success_rate", summary.SuccessRate()),
		zap.Any("labels", summary.Labels),
	)
}
