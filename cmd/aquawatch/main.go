package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquawatch/common/logger"
	"aquawatch/internal/config"
	httpapi "aquawatch/internal/http"
	"aquawatch/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. .env is optional
	_ = godotenv.Load()

	// 2. config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 3. logger
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "aquawatch")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. components
	app, err := service.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create aquawatch", zap.Error(err))
	}
	if err := app.Start(ctx); err != nil {
		log.Fatal("Failed to start aquawatch", zap.Error(err))
	}
	defer app.Stop()

	// 5. HTTP
	handler := httpapi.NewWaterQualityHandler(app.Service(), log)
	router := httpapi.NewRouter(log)
	router.RegisterDeviceRoutes(handler)
	router.RegisterAPIRoutes(handler)
	router.RegisterStatusRoutes(httpapi.NewStatusHandler(app))
	router.RegisterWebsocketRoutes(app.Hub().ServeWS)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 6. wait for a signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("HTTP server stopped")
}
