package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/transcriptledger/internal/bootstrap"
	"github.com/yigit/transcriptledger/internal/config"
	"github.com/yigit/transcriptledger/internal/db"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/helpers"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
	logger   zerolog.Logger
	http     *http.Server

	// stops the websocket hub and the journal sync loop
	cancelWorkers context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()
	journal, database, err := bootstrap.SetupJournal(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup journal: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, journal, lgr)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	go deps.Hub.Run(workersCtx)
	if cfg.UsePostgres() {
		if interval := helpers.ParseDuration(cfg.Ledger.SyncInterval, 0); interval > 0 {
			go syncJournal(workersCtx, deps.Registry, interval, lgr)
		}
	}

	return &Server{
		config:        cfg,
		router:        bootstrap.SetupRouter(cfg, deps, lgr),
		database:      database,
		deps:          deps,
		logger:        lgr,
		cancelWorkers: cancelWorkers,
	}, nil
}

// syncJournal periodically applies entries appended by other replicas until
// ctx is done.
func syncJournal(ctx context.Context, registry *ledger.Registry, interval time.Duration, lgr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			applied, err := registry.Sync(ctx)
			if err != nil {
				if ctx.Err() == nil {
					lgr.Error().Err(err).Msg("Failed to sync ledger with journal")
				}
				continue
			}
			if applied > 0 {
				lgr.Debug().Int("applied", applied).Msg("Ledger synced with journal")
			}
		}
	}
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// websocket streams are long-lived; their writes set their own deadlines
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	// Hijacked websocket connections are not covered by http.Server.Shutdown
	s.cancelWorkers()
	s.deps.Close()

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown completed with errors: %w", shutdownErr)
	}
	return nil
}
