package main

import (
	"context"
	"errors"
	"fmt"
	"imageBackend/internal/blob"
	"imageBackend/internal/cleanup"
	"imageBackend/internal/config"
	"imageBackend/internal/http-server/middleware/ratelimit"
	"imageBackend/internal/http-server/router"
	"imageBackend/internal/ingest"
	"imageBackend/internal/kafka/consumer"
	"imageBackend/internal/kafka/producer"
	"imageBackend/internal/lib/logger/handlers/slogpretty"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/metrics"
	"imageBackend/internal/processor"
	"imageBackend/internal/storage/memory"
	"imageBackend/internal/storage/postgres"
	"imageBackend/internal/tags"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"

	shutdownTimeout = 10 * time.Second
)

type store interface {
	ingest.ImageRepository
	router.ImageReader
	tags.Store
	Close() error
}

// @title        Image Backend API
// @version      1.0
// @description  Upload, tag, list and manage images.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting image backend", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := setupStorage(ctx, &cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	blobs, err := blob.New(ctx, &cfg.Storage)
	if err != nil {
		log.Error("failed to init blob storage", sl.Err(err))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	inline := cleanup.NewInline(log, blobs, m)

	var (
		discarder     ingest.Discarder = inline
		kafkaProducer *producer.Producer
		kafkaConsumer *consumer.Consumer
	)

	if cfg.Kafka.Enabled {
		kafkaProducer, err = producer.NewProducer(&cfg.Kafka, log)
		if err != nil {
			log.Error("failed to create kafka producer", sl.Err(err))
			os.Exit(1)
		}

		kafkaConsumer, err = consumer.NewConsumer(&cfg.Kafka, log)
		if err != nil {
			log.Error("failed to create kafka consumer", sl.Err(err))
			os.Exit(1)
		}

		discarder = cleanup.NewQueue(log, kafkaProducer, inline)

		go kafkaConsumer.ReadMessages(ctx, cleanup.NewHandler(log, blobs, m).ProcessMessage)
	}

	service := ingest.New(log, ingest.Deps{
		Normalizer: processor.NewNormalizer(
			processor.NewReducer(cfg.Images.Quality, cfg.Images.MaxSide, cfg.Images.ReducePasses, cfg.Images.MaxPixels),
			cfg.Images.MaxImgSize,
		),
		Pool:    processor.NewPool(cfg.Images.Workers),
		Tags:    tags.NewResolver(log, storage),
		Images:  storage,
		Blobs:   blobs,
		Cleanup: discarder,
		Metrics: m,
	})

	deps := router.Deps{
		Reader:         storage,
		Writer:         service,
		Auth:           cfg.Auth,
		UploadLimiter:  ratelimit.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		MaxUploadBytes: cfg.HTTPServer.MaxUploadBytes,
		Gatherer:       reg,
	}
	if cfg.Storage.Mode == blob.ModeLocal {
		deps.MediaRoot = cfg.Storage.LocalRoot
		deps.MediaPath = mediaPath(cfg.Storage.PublicURL)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(log, deps),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", sl.Err(err))
	}

	cancel()
	inline.Wait()

	if kafkaProducer != nil {
		if err = kafkaProducer.Close(); err != nil {
			log.Error("failed to close kafka producer", sl.Err(err))
		}
	}

	if kafkaConsumer != nil {
		if err = kafkaConsumer.Close(); err != nil {
			log.Error("failed to close kafka consumer", sl.Err(err))
		}
	}

	if err = storage.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("application stopped")
}

func setupStorage(ctx context.Context, dbCfg *config.Database) (store, error) {
	switch dbCfg.Driver {
	case driverMemory:
		return memory.New(), nil
	case driverPostgres:
		s, err := postgres.InitDB(dbCfg)
		if err != nil {
			return nil, err
		}
		if err = s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
}

// mediaPath is the URL path local blobs are served under.
func mediaPath(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" {
		return "/media"
	}
	return u.Path
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
