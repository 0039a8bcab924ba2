package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/campusconnect/backend/internal/app/controllers"
	appMigrations "github.com/campusconnect/backend/internal/app/migrations"
	appRepos "github.com/campusconnect/backend/internal/app/repositories"
	appRoutes "github.com/campusconnect/backend/internal/app/routes"
	appServices "github.com/campusconnect/backend/internal/app/services"
	"github.com/campusconnect/backend/internal/config"
	"github.com/campusconnect/backend/internal/db"
	appMiddleware "github.com/campusconnect/backend/internal/middleware"
	pkgAuth "github.com/campusconnect/backend/internal/pkg/auth"
	"github.com/campusconnect/backend/internal/pkg/filestorage"
	"github.com/campusconnect/backend/internal/pkg/helpers"
	"github.com/campusconnect/backend/internal/pkg/logger"
	"github.com/campusconnect/backend/internal/pkg/presence"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/campusconnect/backend/internal/pkg/worker"
	"github.com/campusconnect/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos      *appRepos.Repositories
	JWTService *pkgAuth.JWTService
	MediaStore filestorage.MediaStore
	Uploader   *filestorage.Uploader
	Redis      *redis.Client

	PresenceService *appServices.PresenceService
	AuthService     *appServices.AuthService
	UserService     *appServices.UserService
	FeedService     *appServices.FeedService
	MessageService  *appServices.MessageService
	DirectorService *appServices.DirectorService
	BountyService   *appServices.BountyService

	Hub            *websocket.Hub
	Distributor    worker.TaskDistributor
	Processor      worker.TaskProcessor
	AuthLimiter    *appMiddleware.IPRateLimiter
	AuthMiddleware *appMiddleware.AuthMiddleware

	Handlers appRoutes.Handlers
	Logger   zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the default campus.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		defaults := seed.Defaults{
			College:          cfg.Seed.College,
			DirectorName:     cfg.Seed.DirectorName,
			DirectorEmail:    cfg.Seed.DirectorEmail,
			DirectorPassword: cfg.Seed.DirectorPassword,
		}
		if err := seed.CreateDefaultData(ctx, appRepos.NewCollegeRepository(dbPool), appRepos.NewUserRepository(dbPool), defaults, lgr); err != nil {
			// Log the error but don't fail the startup
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// setupMediaStore selects the media host from configuration
func setupMediaStore(ctx context.Context, cfg *config.Config) (filestorage.MediaStore, error) {
	switch cfg.Media.Driver {
	case "s3":
		return filestorage.NewS3Store(ctx, filestorage.S3Config{
			Bucket:        cfg.Media.Bucket,
			Region:        cfg.Media.Region,
			Endpoint:      cfg.Media.Endpoint,
			AccessKey:     cfg.Media.AccessKey,
			SecretKey:     cfg.Media.SecretKey,
			PublicBaseURL: cfg.Media.PublicBaseURL,
		})
	default:
		return filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.PublicBaseURL)
	}
}

// BuildDependencies initializes repositories, infrastructure clients, services, the socket hub and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	ctx := context.Background()

	deps.Repos = appRepos.NewRepositories(dbPool)

	store, err := setupMediaStore(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Media.Driver).Msg("Failed to initialize media store")
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}
	deps.MediaStore = store
	deps.Uploader = filestorage.NewUploader(store, cfg.Media.Folder, cfg.MaxUploadBytes())

	var presenceStore presence.Store = presence.NewMemoryStore()
	if cfg.Redis.Enabled {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := deps.Redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
			_ = deps.Redis.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		presenceStore = presence.NewRedisStore(deps.Redis, cfg.Redis.PresencePrefix)
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	}

	var cleaner appServices.MediaCleaner = appServices.NewInlineMediaCleaner(store, logger.Component("media"))
	if cfg.Worker.Enabled {
		if !cfg.Redis.Enabled {
			return nil, fmt.Errorf("worker requires redis to be enabled")
		}
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		deps.Distributor = worker.NewRedisTaskDistributor(redisOpt)
		deps.Processor = worker.NewRedisTaskProcessor(redisOpt, cfg.Worker.Concurrency, store,
			deps.Repos.TokenRepository, logger.Component("worker"))
		cleaner = appServices.NewQueuedMediaCleaner(deps.Distributor, cleaner, logger.Component("media"))
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 72*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	// The hub persists chat through the message service and the message service pushes through the hub
	deps.PresenceService = appServices.NewPresenceService(deps.Repos.UserRepository, presenceStore, logger.Component("presence"))
	deps.MessageService = appServices.NewMessageService(deps.Repos.MessageRepository, deps.Repos.UserRepository, logger.Component("messages"))
	deps.Hub = websocket.NewHub(deps.MessageService, deps.PresenceService, logger.Component("hub"))
	deps.MessageService.SetNotifier(deps.Hub)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.CollegeRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		deps.Uploader,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.CollegeRepository,
		deps.Repos.TokenRepository,
		deps.Repos.FeedRepository,
		deps.Uploader,
		cleaner,
		deps.PresenceService,
		logger.Component("users"),
	)
	deps.FeedService = appServices.NewFeedService(
		deps.Repos.FeedRepository,
		deps.Uploader,
		cleaner,
		deps.Hub,
		logger.Component("feed"),
	)
	deps.DirectorService = appServices.NewDirectorService(
		deps.Repos.UserRepository,
		deps.Repos.CollegeRepository,
		deps.Repos.TokenRepository,
		deps.Repos.FeedRepository,
		deps.Repos.BountyRepository,
		deps.Repos.MessageRepository,
		deps.MessageService,
		deps.Uploader,
		cleaner,
		deps.Hub,
		deps.PresenceService,
		logger.Component("directors"),
	)
	deps.BountyService = appServices.NewBountyService(
		deps.Repos.BountyRepository,
		deps.Repos.UserRepository,
		deps.Hub,
		logger.Component("bounties"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.JWT.CookieName)
	deps.AuthLimiter = appMiddleware.NewIPRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.Burst, logger.Component("ratelimit"))

	healthChecks := map[string]appControllers.HealthCheck{
		"database": dbPool.Ping,
	}
	if deps.Redis != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}

	deps.Handlers = appRoutes.Handlers{
		Auth: appControllers.NewAuthController(deps.AuthService, appControllers.CookieConfig{
			Name:   cfg.JWT.CookieName,
			MaxAge: deps.JWTService.AccessTokenTTL(),
			Secure: cfg.Server.CookieSecure,
			Domain: cfg.Server.CookieDomain,
		}, logger.Component("auth")),
		User:     appControllers.NewUserController(deps.UserService, logger.Component("users")),
		Feed:     appControllers.NewFeedController(deps.FeedService, logger.Component("feed")),
		Message:  appControllers.NewMessageController(deps.MessageService, logger.Component("messages")),
		Director: appControllers.NewDirectorController(deps.DirectorService, logger.Component("directors")),
		Bounty:   appControllers.NewBountyController(deps.BountyService, logger.Component("bounties")),
		Health:   appControllers.NewHealthController(healthChecks),
		Socket:   websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, logger.Component("ws")).HandleConnection,
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

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.AuthLimiter.Handler())

	return router
}
