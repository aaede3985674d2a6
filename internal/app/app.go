package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sneakerbase/internal/config"
	"github.com/templui/sneakerbase/internal/db"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/identity"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/service"
	"github.com/templui/sneakerbase/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Identity       *identity.Provider // nil when no issuer is configured
	Events         *events.Broker
	AuthService    *service.AuthService
	UserService    *service.UserService
	SneakerService *service.SneakerService
	RatingService  *service.RatingService
	UploadService  *service.UploadService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	objectStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Identity
	var provider *identity.Provider
	if cfg.IdentityEnabled() {
		provider, err = identity.New(ctx, identity.Config{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/callback",
		})
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
		}
	}

	return Assemble(cfg, database, objectStorage, provider), nil
}

// Assemble builds repositories and services on top of ready infrastructure.
func Assemble(cfg *config.Config, database *sqlx.DB, objectStorage storage.Storage, provider *identity.Provider) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	sneakerRepository := repository.NewSneakerRepository(database)
	ratingRepository := repository.NewRatingRepository(database)

	broker := events.NewBroker(int(cfg.EventBuffer))

	// Services
	authService := service.NewAuthService(cfg.JWTSecret, cfg.ServiceToken, cfg.IsProduction(), cfg.JWTExpiry)
	userService := service.NewUserService(userRepository, broker)
	sneakerService := service.NewSneakerService(sneakerRepository, ratingRepository, objectStorage, broker, cfg.ImageURLExpiry, cfg.UploadMaxBytes)
	ratingService := service.NewRatingService(ratingRepository, sneakerRepository, userRepository, broker)
	uploadService := service.NewUploadService(
		objectStorage,
		cfg.JWTSecret,
		cfg.AppURL,
		cfg.UploadDirect,
		cfg.UploadSlotExpiry,
		cfg.UploadMaxBytes,
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        objectStorage,
		Identity:       provider,
		Events:         broker,
		AuthService:    authService,
		UserService:    userService,
		SneakerService: sneakerService,
		RatingService:  ratingService,
		UploadService:  uploadService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
