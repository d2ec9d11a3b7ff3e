package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorhub/internal/api"
	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/domain"
	"tutorhub/internal/events"
	"tutorhub/internal/logging"
	"tutorhub/internal/metrics"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, baseLogger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	apiLogger := logging.Component(baseLogger, "api")
	logger := &apiLogger

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedDirectory(ctx, db, cfg.Seed, logger); err != nil {
		return err
	}

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		go startMonitoringServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	cache := buildCache(ctx, cfg, logger)

	eventBus := events.NewEventBus()
	auditLogger := logging.Component(baseLogger, "audit")
	subscribeAuditLog(eventBus, &auditLogger)

	availabilityService := service.NewAvailabilityService(db, db, cache, eventBus, logger)
	bookingService := service.NewBookingService(db, db, cache, eventBus, logger)

	if cfg.Backup.Enabled {
		backupLogger := logging.Component(baseLogger, "backup")
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &backupLogger)
		go backupService.Start(ctx)
	}

	server := api.NewServer(cfg.HTTP, cfg.Exports, availabilityService, bookingService, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	logger.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, baseLogger, closer, nil
}

// buildCache wires the availability cache: Redis primary with in-memory
// failover when enabled, plain in-memory otherwise.
func buildCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.AvailabilityCache {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	memory := repository.NewMemoryAvailabilityCache(ttl)

	if !cfg.Cache.Enabled {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable at startup, cache will fail over to memory")
	}

	primary := repository.NewRedisAvailabilityCache(client, ttl)
	return repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func seedDirectory(ctx context.Context, db *database.DB, seed config.SeedConfig, logger *zerolog.Logger) error {
	for _, user := range seed.Users {
		if err := db.UpsertUser(ctx, user); err != nil {
			return err
		}
	}
	for _, tutor := range seed.Tutors {
		if err := db.UpsertTutorProfile(ctx, tutor); err != nil {
			return err
		}
	}
	for _, course := range seed.Courses {
		if err := db.UpsertCourse(ctx, course); err != nil {
			return err
		}
	}

	if len(seed.Users)+len(seed.Tutors)+len(seed.Courses) > 0 {
		logger.Info().
			Int("users", len(seed.Users)).
			Int("tutors", len(seed.Tutors)).
			Int("courses", len(seed.Courses)).
			Msg("directory seeded")
	}
	return nil
}

// subscribeAuditLog logs every booking and schedule event for traceability.
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(event *events.Event) error {
		logger.Info().
			Str("event", event.Type).
			RawJSON("payload", event.Payload).
			Msg("domain event")
		return nil
	}

	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
		events.EventScheduleChanged,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func startMonitoringServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", server.Addr).Msg("monitoring server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("monitoring server error")
	}
}
