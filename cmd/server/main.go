package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/api"
	"github.com/framelift/extraction-service/internal/infra/config"
	"github.com/framelift/extraction-service/internal/infra/ffmpeg"
	"github.com/framelift/extraction-service/internal/infra/metrics"
	"github.com/framelift/extraction-service/internal/infra/permissions"
	"github.com/framelift/extraction-service/internal/infra/picker"
	"github.com/framelift/extraction-service/internal/infra/tracing"
	"github.com/framelift/extraction-service/internal/usecase"
	"github.com/framelift/extraction-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting framelift extraction server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, "framelift-extraction-server")
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	processor := ffmpeg.NewProcessor(cfg.FFmpegBinary, cfg.FFprobeBinary, cfg.FrameFormat, log)
	extractor := usecase.NewExtractor(processor, log)

	gate := permissions.NewGate(cfg.MediaInboxDir, log)
	inbox := picker.NewInboxPicker(cfg.MediaInboxDir, log)
	importer := usecase.NewImporter(gate, inbox, log)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	srv := api.NewServer(api.ServerConfig{
		Port:        cfg.APIPort,
		Extractions: extractor,
		Imports:     importer,
		Logger:      log,
		StartTime:   time.Now(),
	})

	// Graceful shutdown. Cancelling the extractor lets an in-flight request
	// fail fast instead of holding its connection through the drain window.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		extractor.CancelExtraction()
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", zap.Error(err))
		}
	case <-ctx.Done():
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("framelift extraction server stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
