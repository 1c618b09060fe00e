package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/transcriptledger/internal/app/controllers"
	appMigrations "github.com/yigit/transcriptledger/internal/app/migrations"
	"github.com/yigit/transcriptledger/internal/app/notifications"
	appRepos "github.com/yigit/transcriptledger/internal/app/repositories"
	appRoutes "github.com/yigit/transcriptledger/internal/app/routes"
	appServices "github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/config"
	"github.com/yigit/transcriptledger/internal/db"
	"github.com/yigit/transcriptledger/internal/ledger"
	appMiddleware "github.com/yigit/transcriptledger/internal/middleware"
	pkgAuth "github.com/yigit/transcriptledger/internal/pkg/auth"
	"github.com/yigit/transcriptledger/internal/pkg/eventbus"
	"github.com/yigit/transcriptledger/internal/pkg/helpers"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
	"github.com/yigit/transcriptledger/internal/pkg/noncestore"
	"github.com/yigit/transcriptledger/internal/pkg/websocket"
	"github.com/yigit/transcriptledger/internal/seed"
)

// DefaultConfigPath is read when no path is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Registry *ledger.Registry
	Bus      *eventbus.EventBus
	Hub      *websocket.Hub
	NATS     *notifications.NATSSink
	Nonces   noncestore.Store
	Metrics  *prometheus.Registry

	AuthService        appServices.AuthService
	InstitutionService appServices.InstitutionService
	StudentService     appServices.StudentService
	TranscriptService  appServices.TranscriptService
	AccessService      appServices.AccessService
	LedgerService      appServices.LedgerService

	AuthController        *appControllers.AuthController
	InstitutionController *appControllers.InstitutionController
	StudentController     *appControllers.StudentController
	TranscriptController  *appControllers.TranscriptController
	RoleController        *appControllers.RoleController
	LedgerController      *appControllers.LedgerController
	EventsHandler         *websocket.Handler
	AuthMiddleware        *appMiddleware.AuthMiddleware
	HTTPMetrics           *appMiddleware.HTTPMetrics

	JWTService *pkgAuth.JWTService
	Logger     zerolog.Logger
}

// Close releases the event sinks and the challenge store
func (d *Dependencies) Close() {
	if d.Bus != nil {
		// also closes the NATS sink, which is a bus subscriber
		d.Bus.Stop()
	}
	if d.Nonces != nil {
		if err := d.Nonces.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close challenge store")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupJournal opens the configured journal. For postgres it connects,
// applies pending migrations and returns the database so the caller can
// close it.
func SetupJournal(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (ledger.Journal, *db.PostgresDB, error) {
	if !cfg.UsePostgres() {
		lgr.Warn().Msg("Using in-memory journal; ledger state is lost on restart")
		return ledger.NewMemoryJournal(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := appMigrations.NewMigrator(database.Pool).Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}

	repos := appRepos.NewRepositories(database)
	return repos.JournalRepository, database, nil
}

// BuildDependencies replays the journal into a registry and wires the
// services, controllers and event sinks around it.
func BuildDependencies(ctx context.Context, cfg *config.Config, journal ledger.Journal, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Metrics = prometheus.NewRegistry()
	deps.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps.Bus = eventbus.New(deps.Metrics, logger.Component("eventbus"))
	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.Hub.Attach(deps.Bus)

	if cfg.NATS.URL != "" {
		sink, err := notifications.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, deps.Metrics)
		if err != nil {
			// the ledger does not depend on NATS being reachable
			lgr.Warn().Err(err).Msg("NATS unavailable, event sink disabled")
		} else {
			deps.NATS = sink
			deps.Bus.RegisterSubscriber(eventbus.Wildcard, sink)
		}
	}

	admin, err := ledger.ParseIdentity(cfg.Ledger.AdminAddress)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("invalid ledger admin address: %w", err)
	}

	deps.Registry, err = ledger.Open(ctx, journal, admin,
		ledger.WithPublisher(deps.Bus),
		ledger.WithLogger(logger.Component("ledger")),
		ledger.WithMetrics(deps.Metrics),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	head := deps.Registry.Head()
	lgr.Info().Uint64("seq", head.Seq).Str("hash", head.Hash).Msg("Ledger loaded")

	if err := seed.GrantVerifiers(ctx, deps.Registry, admin, cfg.Ledger.Verifiers, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to grant configured verifiers, proceeding anyway...")
	}

	deps.Nonces = noncestore.Open(ctx, noncestore.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Nonces,
		deps.JWTService,
		deps.Registry,
		helpers.ParseDuration(cfg.Auth.NonceTTL, 5*time.Minute),
		logger.Component("auth"),
	)
	serviceLogger := logger.Component("service")
	deps.InstitutionService = appServices.NewInstitutionService(deps.Registry, serviceLogger)
	deps.StudentService = appServices.NewStudentService(deps.Registry, serviceLogger)
	deps.TranscriptService = appServices.NewTranscriptService(deps.Registry, serviceLogger)
	deps.AccessService = appServices.NewAccessService(deps.Registry, serviceLogger)
	deps.LedgerService = appServices.NewLedgerService(deps.Registry)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.HTTPMetrics = appMiddleware.NewHTTPMetrics(deps.Metrics)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.InstitutionController = appControllers.NewInstitutionController(deps.InstitutionService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.TranscriptController = appControllers.NewTranscriptController(deps.TranscriptService)
	deps.RoleController = appControllers.NewRoleController(deps.AccessService)
	deps.LedgerController = appControllers.NewLedgerController(deps.LedgerService)
	deps.EventsHandler = websocket.NewHandler(deps.Hub, logger.Component("websocket"))

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		deps.HTTPMetrics.Handler(),
	)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.InstitutionController,
		deps.StudentController,
		deps.TranscriptController,
		deps.RoleController,
		deps.LedgerController,
		deps.EventsHandler,
		promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}),
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
