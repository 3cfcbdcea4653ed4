package server

import (
	"context"
	"fmt"
	"path/filepath"

	"rental-portal/internal/auth"
	"rental-portal/internal/cleanup"
	"rental-portal/internal/config"
	"rental-portal/internal/database"
	"rental-portal/internal/geocode"
	"rental-portal/internal/handlers"
	"rental-portal/internal/photos"
	"rental-portal/internal/scheduler"
	"rental-portal/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds the wired services of the API server
type App struct {
	Config    *config.Config
	DB        *database.GormDB
	Photos    *photos.Service
	Search    *search.SearchClient
	Geocoder  *geocode.Client
	Cleanup   *cleanup.Service
	Scheduler *scheduler.Scheduler
	Router    *gin.Engine
	Registry  *prometheus.Registry

	log *zap.Logger
}

// NewApp connects the database and builds every service and route
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.Connect(cfg.Database, !cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	app := &App{Config: cfg, DB: db, log: log}
	if err := app.build(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	log := a.log

	if err := a.DB.InitSchema(); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := auth.EnsureAdmin(ctx, a.DB, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := photos.NewObserver("rental_photos", a.Registry)
	if err != nil {
		return err
	}

	store, photoDir, prefix, err := NewPhotoStore(ctx, cfg.Photos, log)
	if err != nil {
		return err
	}
	a.Photos = photos.NewService(store, a.DB, photos.Options{
		Root:         photos.DefaultRoot,
		PublicPrefix: prefix,
		MaxFiles:     cfg.Photos.MaxFiles,
		MaxFileSize:  cfg.Photos.MaxFileSize(),
		Workers:      cfg.Photos.Workers,
		Normalizer:   photos.NewNormalizer(cfg.Photos.MaxWidth, cfg.Photos.MaxHeight, cfg.Photos.JPEGQuality),
	}, observer, log.Named("photos"))

	a.Geocoder, err = geocode.NewClient(geocode.Options{
		APIKey:            cfg.Geocoding.APIKey,
		BaseURL:           cfg.Geocoding.BaseURL,
		RequestsPerSecond: cfg.Geocoding.RequestsPerSecond,
		CacheSize:         cfg.Geocoding.CacheSize,
		Timeout:           cfg.Geocoding.GetTimeout(),
		FailureThreshold:  cfg.Geocoding.FailureThreshold,
		ResetTimeout:      cfg.Geocoding.GetResetTimeout(),
	}, log.Named("geocode"))
	if err != nil {
		return err
	}
	if !a.Geocoder.Enabled() {
		log.Info("Geocoding disabled, GOOGLE_GEOCODING_API_KEY not set")
	}

	meili := cfg.Search.Meilisearch
	a.Search = search.NewSearchClient(meili.Host, meili.APIKey, meili.Index, log.Named("search"))
	if a.Search.Enabled() {
		if err := a.Search.InitIndex(); err != nil {
			log.Warn("Failed to initialize search index", zap.Error(err))
		}
	}

	a.Cleanup = cleanup.NewService(a.DB.DB(), store, a.Photos.Resolver(), log.Named("cleanup"))
	backfiller := geocode.NewBackfiller(a.Geocoder, a.DB, log.Named("geocode"))
	a.Scheduler, err = scheduler.NewScheduler(cfg.Scheduler, backfiller, a.Cleanup, log.Named("scheduler"))
	if err != nil {
		return err
	}

	authenticator := auth.NewAuthenticator(a.DB, auth.SessionOptions{
		Secret: cfg.Auth.SessionSecret,
		Name:   cfg.Auth.SessionName,
		MaxAge: cfg.Auth.GetSessionMaxAge(),
		Secure: cfg.Auth.SecureCookies || cfg.IsProduction(),
	}, log.Named("auth"))

	// Room for the multipart framing around a full batch
	maxBody := int64(cfg.Photos.MaxFiles)*cfg.Photos.MaxFileSize() + 1<<20

	a.Router = NewRouter(Deps{
		Config:   cfg,
		DB:       a.DB,
		Auth:     authenticator,
		Photos:   handlers.NewPhotoHandler(a.Photos, maxBody, log.Named("photos")),
		Property: handlers.NewPropertyHandler(a.DB, a.Geocoder, a.Search, a.Photos, log),
		Units:    handlers.NewUnitHandler(a.DB, a.Photos, log),
		Leads:    handlers.NewLeadHandler(a.DB, log),
		Branding: handlers.NewBrandingHandler(a.DB),
		Session:  handlers.NewAuthHandler(authenticator, log.Named("auth")),
		Search:   handlers.NewSearchHandler(a.DB, a.Search, log.Named("search")),
		Admin:    handlers.NewAdminHandler(a.DB, a.Scheduler, a.Cleanup, log),
		PhotoDir: photoDir,
		Gatherer: a.Registry,
		Log:      log.Named("http"),
	})
	return nil
}

// NewPhotoStore opens the configured photo backend. For the filesystem
// backend it also returns the directory served at /photos
func NewPhotoStore(ctx context.Context, cfg config.PhotosConfig, log *zap.Logger) (store photos.Store, photoDir, prefix string, err error) {
	switch cfg.Backend {
	case "filesystem", "":
		fs, err := photos.NewFilesystemStore(cfg.BaseDir)
		if err != nil {
			return nil, "", "", fmt.Errorf("open photo directory: %w", err)
		}
		return fs, filepath.Join(fs.BaseDir(), "photos"), cfg.PublicPrefix, nil
	case "s3":
		client, err := photos.NewS3Client(ctx, photos.S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, "", "", err
		}
		prefix := cfg.S3.PublicBaseURL
		if prefix == "" {
			prefix = cfg.PublicPrefix
		}
		return photos.NewS3Store(client, cfg.S3.Bucket, log.Named("s3")), "", prefix, nil
	default:
		return nil, "", "", fmt.Errorf("unsupported photo backend %q", cfg.Backend)
	}
}

// Start starts background jobs
func (a *App) Start() error {
	return a.Scheduler.Start()
}

// Close stops background jobs and releases the database
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.DB.Close()
}
