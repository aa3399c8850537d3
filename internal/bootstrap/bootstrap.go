package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/resultsportal/internal/app/controllers"
	appMigrations "github.com/yigit/resultsportal/internal/app/migrations"
	appRepos "github.com/yigit/resultsportal/internal/app/repositories"
	appRoutes "github.com/yigit/resultsportal/internal/app/routes"
	appServices "github.com/yigit/resultsportal/internal/app/services"
	"github.com/yigit/resultsportal/internal/config"
	"github.com/yigit/resultsportal/internal/db"
	appMiddleware "github.com/yigit/resultsportal/internal/middleware"
	"github.com/yigit/resultsportal/internal/pkg/analysis"
	pkgAuth "github.com/yigit/resultsportal/internal/pkg/auth"
	"github.com/yigit/resultsportal/internal/pkg/filestorage"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
	"github.com/yigit/resultsportal/internal/pkg/logger"
	"github.com/yigit/resultsportal/internal/pkg/objectstore"
	"github.com/yigit/resultsportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos           *appRepos.Repositories
	JWTService      *pkgAuth.JWTService
	ObjectStore     *objectstore.S3Store
	Analyzer        *analysis.Client
	FileStorage     *filestorage.LocalStorage
	AuthService     *appServices.AuthService
	UserService     *appServices.UserService
	RegistryService *appServices.RegistryService
	AuthMiddleware  *appMiddleware.AuthMiddleware
	Controllers     appRoutes.Controllers
	Logger          zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// CONFIG_PATH overrides the default configs/config.yaml.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logCfg := logger.ParseConfig(cfg.Logging.Level, cfg.Logging.Format)
	logCfg.Service = "resultsportal"
	lgr := logger.Configure(logCfg)

	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres, applies migrations and seeds the admin account.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	admin := seed.AdminAccount{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}
	if err := seed.CreateDefaultAdmin(ctx, appRepos.NewUserRepository(database.Pool), admin, lgr); err != nil {
		// not fatal, the admin can be created later
		lgr.Error().Err(err).Msg("Failed to seed admin account, proceeding anyway...")
	}

	return database, nil
}

// SetupMongo connects to the registry database
func SetupMongo(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.MongoDB, error) {
	lgr.Info().Str("database", cfg.Mongo.Database).Msg("Connecting to MongoDB...")
	mongoDB, err := db.NewMongoDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to MongoDB")
		return nil, err
	}
	return mongoDB, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, pg *db.PostgresDB, mongoDB *db.MongoDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(pg.Pool, mongoDB.Database, cfg.Mongo.Collection)
	unique := cfg.Registry.SaveMode == config.SaveModeAppend
	if err := deps.Repos.FileRecordRepository.EnsureIndexes(ctx, unique); err != nil {
		lgr.Error().Err(err).Bool("unique", unique).Msg("Failed to create registry indexes")
		return nil, fmt.Errorf("failed to create registry indexes: %w", err)
	}

	var err error
	deps.ObjectStore, err = objectstore.NewS3Store(ctx, objectstore.S3Config{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Endpoint:        cfg.Storage.Endpoint,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	}, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.StagingDir, int64(cfg.Storage.MaxUploadSizeMB)<<20, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Analyzer = analysis.NewClient(cfg.Analysis.BaseURL, helpers.ParseDuration(cfg.Analysis.Timeout, 2*time.Minute), lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		Expiration:  helpers.ParseDuration(cfg.JWT.Expiration, 24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
		deps.JWTService,
		appServices.AuthConfig{
			SessionTTL:             helpers.ParseDuration(cfg.Session.TTL, 7*24*time.Hour),
			AllowAdminRegistration: cfg.Auth.AllowAdminRegistration,
		},
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.SessionRepository, lgr)
	deps.RegistryService = appServices.NewRegistryService(
		deps.Repos.FileRecordRepository,
		deps.ObjectStore,
		deps.Analyzer,
		deps.FileStorage,
		cfg.Registry.SaveMode,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, cfg.Session.CookieName, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(deps.AuthService, appControllers.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: helpers.ParseDuration(cfg.Session.CookieMaxAge, 24*time.Hour),
			Domain: cfg.Session.CookieDomain,
			Secure: cfg.IsProduction(),
		}, lgr),
		User: appControllers.NewUserController(deps.UserService, lgr),
		File: appControllers.NewFileController(deps.RegistryService, deps.FileStorage, lgr),
		Health: appControllers.NewHealthController(map[string]appControllers.Pinger{
			"postgres": pg,
			"mongodb":  mongoDB,
		}, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := NewEngine(lgr)
	router.MaxMultipartMemory = int64(cfg.Storage.MaxUploadSizeMB) << 20

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

// NewEngine returns a gin engine with the request middleware chain installed
func NewEngine(lgr zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Recovery(lgr),
	)
	return router
}
