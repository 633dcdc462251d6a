package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	calendarhandler "onboarding/internal/calendar/handler"
	formhandler "onboarding/internal/form/handler"
	formmetrics "onboarding/internal/form/metrics"
	"onboarding/internal/form/service"
	"onboarding/internal/form/store"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/httpserver"
	"onboarding/internal/platform/kafka"
	"onboarding/internal/platform/logger"
	"onboarding/internal/platform/metrics"
	"onboarding/internal/platform/redis"
	"onboarding/internal/submission"
	httptransport "onboarding/internal/transport/http"
	"onboarding/internal/validation"
	"onboarding/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "onboarding: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	formMetrics := formmetrics.New(reg)
	checks := map[string]httptransport.HealthCheck{}

	drafts, closeStore, err := buildStore(ctx, cfg.Redis, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	submitter, closeSubmitter, err := buildSubmitter(ctx, cfg.Kafka, log, checks)
	if err != nil {
		return err
	}
	defer closeSubmitter()

	loc, err := cfg.Form.Location()
	if err != nil {
		return fmt.Errorf("form timezone: %w", err)
	}
	formService := service.New(drafts, submitter,
		validation.NewGate(validation.NewStructValidator()),
		service.WithLogger(log),
		service.WithMetrics(formMetrics),
		service.WithDraftTTL(cfg.Form.DraftTTL),
		service.WithClearOnSubmit(cfg.Form.ClearOnSubmit),
		service.WithLocation(loc),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Timeout:  cfg.Server.WriteTimeout,
		Handlers: []httptransport.Registrar{
			formhandler.New(formService, log, formMetrics),
			calendarhandler.New(log),
		},
		Checks: checks,
	})
	srv := httpserver.New(cfg.Server, otelhttp.NewHandler(router, "onboarding.http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting onboarding server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down onboarding server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func buildStore(ctx context.Context, cfg config.RedisConfig, log *slog.Logger, checks map[string]httptransport.HealthCheck) (service.Store, func(), error) {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("no redis configured, drafts are kept in memory")
		return store.NewInMemory(), func() {}, nil
	}
	checks["redis"] = client.Health
	return store.NewRedis(client.Client), func() { _ = client.Close() }, nil
}

func buildSubmitter(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger, checks map[string]httptransport.HealthCheck) (service.Submitter, func(), error) {
	client, err := kafka.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("no kafka brokers configured, submissions are only logged")
		return submission.NewLogSubmitter(log), func() {}, nil
	}
	if cfg.EnsureTopic {
		if err := kafka.EnsureTopic(ctx, client, cfg); err != nil {
			client.Close()
			return nil, nil, err
		}
	}
	checks["kafka"] = client.Ping
	publisher := submission.NewKafkaPublisher(client, cfg.Topic,
		submission.WithLogger(log),
		submission.WithBreaker(circuit.New("kafka-submissions")),
	)
	return publisher, closeKafka(client), nil
}

func closeKafka(client *kgo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Flush(ctx)
		client.Close()
	}
}
