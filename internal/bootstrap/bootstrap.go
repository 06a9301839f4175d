package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/unisphere/academics/internal/app/controllers"
	appMigrations "github.com/unisphere/academics/internal/app/migrations"
	appRepos "github.com/unisphere/academics/internal/app/repositories"
	appRoutes "github.com/unisphere/academics/internal/app/routes"
	appServices "github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/config"
	"github.com/unisphere/academics/internal/db"
	appMiddleware "github.com/unisphere/academics/internal/middleware"
	pkgAuth "github.com/unisphere/academics/internal/pkg/auth"
	"github.com/unisphere/academics/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	CurriculumService    appServices.CurriculumService
	SectionService       appServices.SectionService
	ScheduleService      appServices.ScheduleService
	EnrollmentService    appServices.EnrollmentService
	EvaluationService    appServices.EvaluationService
	CurriculumController *appControllers.CurriculumController
	SectionController    *appControllers.SectionController
	ScheduleController   *appControllers.ScheduleController
	EnrollmentController *appControllers.EnrollmentController
	EvaluationController *appControllers.EvaluationController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	JWTService           *pkgAuth.JWTService
	// HealthCheck reports storage reachability; nil means always healthy.
	HealthCheck func(ctx context.Context) error
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	ConfigureLogger(cfg)
	lgr := logger.Logger()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConfigureLogger applies the logging section of cfg to the global logger.
func ConfigureLogger(cfg *config.Config) {
	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "pretty",
	})
}

// SetupDatabase establishes the database connection and, when enabled, applies
// pending migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Database.AutoMigrate {
		return database, nil
	}

	lgr.Info().Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	migrator := appMigrations.NewMigrator(database.StdDB(), lgr)
	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	version, err := migrator.Version(ctx)
	if err != nil {
		lgr.Warn().Err(err).Msg("Could not read schema version")
	}
	lgr.Info().Int64("version", version).Msg("Database migrations successfully applied.")

	return database, nil
}

// EngineOptions returns the integrity check options configured in cfg.
func EngineOptions(cfg *config.Config) appServices.EngineOptions {
	return appServices.EngineOptions{
		DefaultMaxPrerequisiteDepth: cfg.Engine.DefaultMaxPrerequisiteDepth,
		MaxCriteriaWeight:           cfg.Engine.MaxCriteriaWeight,
	}
}

// BuildDependencies initializes services and controllers over tx.
func BuildDependencies(cfg *config.Config, tx appRepos.TxManager, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}
	opts := EngineOptions(cfg)

	deps.CurriculumService = appServices.NewCurriculumService(tx, opts, lgr)
	deps.SectionService = appServices.NewSectionService(tx, lgr)
	deps.ScheduleService = appServices.NewScheduleService(tx, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(tx, lgr)
	deps.EvaluationService = appServices.NewEvaluationService(tx, opts, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CurriculumController = appControllers.NewCurriculumController(deps.CurriculumService)
	deps.SectionController = appControllers.NewSectionController(deps.SectionService)
	deps.ScheduleController = appControllers.NewScheduleController(deps.ScheduleService)
	deps.EnrollmentController = appControllers.NewEnrollmentController(deps.EnrollmentService)
	deps.EvaluationController = appControllers.NewEvaluationController(deps.EvaluationService)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.CurriculumController,
		deps.SectionController,
		deps.ScheduleController,
		deps.EnrollmentController,
		deps.EvaluationController,
		deps.AuthMiddleware,
	)

	router.GET("/health", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.HealthCheck(ctx); err != nil {
				logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
