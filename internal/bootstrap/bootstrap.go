package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/campusvirtual/backend/internal/app/auth"
	appControllers "github.com/campusvirtual/backend/internal/app/controllers"
	appMigrations "github.com/campusvirtual/backend/internal/app/migrations"
	appRepos "github.com/campusvirtual/backend/internal/app/repositories"
	appRoutes "github.com/campusvirtual/backend/internal/app/routes"
	appServices "github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/config"
	"github.com/campusvirtual/backend/internal/db"
	appMiddleware "github.com/campusvirtual/backend/internal/middleware"
	pkgAuth "github.com/campusvirtual/backend/internal/pkg/auth"
	"github.com/campusvirtual/backend/internal/pkg/filestorage"
	"github.com/campusvirtual/backend/internal/pkg/logger"
	"github.com/campusvirtual/backend/internal/pkg/messaging"
	"github.com/campusvirtual/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	UserService          appServices.UserService
	SubjectService       appServices.SubjectService
	ExamService          appServices.ExamService
	TranscriptService    appServices.TranscriptService
	AuthController       *appControllers.AuthController
	UserController       *appControllers.UserController
	SubjectController    *appControllers.SubjectController
	ExamController       *appControllers.ExamController
	TranscriptController *appControllers.TranscriptController
	WhatsAppController   *appControllers.WhatsAppController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	AuthzService         *appAuth.AuthorizationService
	Messenger            messaging.Service
	FileStorage          filestorage.ObjectStorage
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	repos := appRepos.NewRepositories(dbPool)
	if err := seed.Run(context.Background(), repos, cfg); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	storage, err := buildFileStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	deps.Messenger = messaging.NewWhatsAppService(messaging.WhatsAppConfig{
		GatewayURL: cfg.WhatsApp.GatewayURL,
		Token:      cfg.WhatsApp.Token,
		Session:    cfg.WhatsApp.Session,
	}, lgr)

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.SubjectRepository,
	)

	accessExp, err := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	if err != nil {
		accessExp = time.Hour
	}
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: accessExp,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		deps.Messenger,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.FileStorage)
	deps.SubjectService = appServices.NewSubjectService(
		deps.Repos.SubjectRepository,
		deps.Repos.UserRepository,
		deps.Repos.ExamRepository,
		deps.Repos.TranscriptRepository,
		deps.FileStorage,
	)
	deps.ExamService = appServices.NewExamService(
		deps.Repos.ExamRepository,
		deps.Repos.SubjectRepository,
		deps.FileStorage,
		cfg.Exam.EnforceDueDateOnRework,
	)
	deps.TranscriptService = appServices.NewTranscriptService(
		deps.Repos.TranscriptRepository,
		deps.Repos.UserRepository,
		deps.Repos.SubjectRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.UserController = appControllers.NewUserController(deps.UserService)
	deps.SubjectController = appControllers.NewSubjectController(deps.SubjectService, deps.AuthzService)
	deps.ExamController = appControllers.NewExamController(deps.ExamService, deps.AuthzService)
	deps.TranscriptController = appControllers.NewTranscriptController(deps.TranscriptService)
	deps.WhatsAppController = appControllers.NewWhatsAppController(deps.Messenger)

	return deps, nil
}

// buildFileStorage selects the object-storage backend from configuration.
func buildFileStorage(cfg *config.Config) (filestorage.ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return filestorage.NewS3Storage(filestorage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			BaseURL:   cfg.Storage.BaseURL,
		})
	default:
		baseURL := "http://localhost:" + cfg.Server.Port + "/uploads"
		return filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL)
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.SubjectController,
		deps.ExamController,
		deps.TranscriptController,
		deps.WhatsAppController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
