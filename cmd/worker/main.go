package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/infra/archive"
	"github.com/framelift/extraction-service/internal/infra/config"
	"github.com/framelift/extraction-service/internal/infra/ffmpeg"
	"github.com/framelift/extraction-service/internal/infra/metrics"
	miniostorage "github.com/framelift/extraction-service/internal/infra/minio"
	"github.com/framelift/extraction-service/internal/infra/rabbitmq"
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

	log.Info("starting framelift extraction worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, "framelift-extraction-worker")
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Object store
	store, err := miniostorage.NewObjectStore(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		VideoBucket:  cfg.MinIOVideoBucket,
		ExportBucket: cfg.MinIOExportBucket,
	})
	fatalOnErr(err, "create object store")
	fatalOnErr(store.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection, shared by all workers
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publishers")
	defer rmqConn.Close()

	// One pipeline per worker: the ffmpeg processor carries per-run cancel
	// state, so workers must never share one.
	handlers := make([]rabbitmq.MessageHandler, cfg.WorkerCount)
	for i := range handlers {
		wlog := log.With(zap.Int("worker_id", i))

		pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create publisher")

		processor := ffmpeg.NewProcessor(cfg.FFmpegBinary, cfg.FFprobeBinary, cfg.FrameFormat, wlog)
		extractor := usecase.NewExtractor(processor, wlog)

		pipeline := usecase.NewProcessExtractionUseCase(
			extractor,
			store,
			archive.NewZipArchiver(),
			rabbitmq.NewStatusPublisher(pub),
			rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ),
			wlog,
			usecase.ProcessExtractionConfig{
				TempDir:        cfg.TempDir,
				MaxRetries:     cfg.MaxRetries,
				RetryBaseDelay: time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
			},
		)
		handlers[i] = pipeline.Execute
	}

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:            cfg.RabbitMQURL,
		Queue:          cfg.RabbitMQRequestQueue,
		Exchange:       cfg.RabbitMQExchange,
		DLQ:            cfg.RabbitMQDLQ,
		StatusQueue:    cfg.RabbitMQStatusQueue,
		Prefetch:       cfg.RabbitMQPrefetch,
		WorkerCount:    cfg.WorkerCount,
		RequeueDelayMs: cfg.RetryBaseDelayMs,
	}, func(workerID int) rabbitmq.MessageHandler {
		return handlers[workerID%len(handlers)]
	}, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("framelift extraction worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("framelift extraction worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
