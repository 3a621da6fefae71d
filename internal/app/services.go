package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pepperonas/mrx3k1-sub002/internal/bridge"
	"github.com/pepperonas/mrx3k1-sub002/internal/config"
	"github.com/pepperonas/mrx3k1-sub002/internal/db"
	"github.com/pepperonas/mrx3k1-sub002/internal/hue"
	"github.com/pepperonas/mrx3k1-sub002/internal/kv"
	"github.com/pepperonas/mrx3k1-sub002/internal/scheduler"
	"github.com/pepperonas/mrx3k1-sub002/internal/timectl"
	"github.com/pepperonas/mrx3k1-sub002/internal/timers"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB     *db.DB
	Hue    *hue.Client
	Bridge *bridge.Gateway
	Timers *timers.Engine

	// Unified facade
	Scheduler *scheduler.Scheduler

	// Ops surface
	Health *HealthService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	// Initialize bridge client and schedule gateway
	s.Hue = hue.NewClient(cfg.Hue.Bridge, cfg.Hue.Token, cfg.Hue.Timeout.Duration())
	s.Bridge = bridge.NewGateway(s.Hue)

	// Initialize local timer engine with persisted storage and the
	// rate-limited direct executor as execution fallback
	store := timers.NewStore(kv.NewSQLiteBucket(database.DB, timers.BucketName))
	executor := timers.NewBridgeExecutor(s.Hue, cfg.Timers.RateLimitRPS)
	s.Timers = timers.New(store, executor)
	s.Timers.SetTickInterval(cfg.Timers.TickInterval.Duration())

	// Unified facade over both backends
	s.Scheduler = scheduler.New(s.Bridge, s.Timers)

	// Initialize health service
	s.Health = NewHealthService(cfg)

	return s, nil
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context) error {
	controls, err := s.Scheduler.Initialize(ctx, nil)
	if err != nil {
		// The bridge may be temporarily unreachable at boot; local
		// timers still run, and the next List is authoritative.
		log.Warn().Err(err).Msg("Could not list bridge schedules at startup")
	} else {
		logStartupSummary(controls)
	}

	s.Health.Start(ctx)

	return nil
}

func logStartupSummary(controls []timectl.TimeControl) {
	bridged, local := 0, 0
	for _, tc := range controls {
		if tc.Backend() == timectl.BackendBridge {
			bridged++
		} else {
			local++
		}
	}
	log.Info().Int("bridge_schedules", bridged).Int("local_timers", local).Msg("Time controls loaded")
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Scheduler != nil {
		s.Scheduler.Dispose()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

// ShutdownTimeout returns the configured graceful shutdown timeout.
func (s *Services) ShutdownTimeout() time.Duration {
	return s.cfg.ShutdownTimeout.Duration()
}
