package server

import (
	"net/http"
	"time"

	"rental-portal/internal/auth"
	"rental-portal/internal/config"
	"rental-portal/internal/database"
	"rental-portal/internal/handlers"
	"rental-portal/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into routes
type Deps struct {
	Config   *config.Config
	DB       *database.GormDB
	Auth     *auth.Authenticator
	Photos   *handlers.PhotoHandler
	Property *handlers.PropertyHandler
	Units    *handlers.UnitHandler
	Leads    *handlers.LeadHandler
	Branding *handlers.BrandingHandler
	Session  *handlers.AuthHandler
	Search   *handlers.SearchHandler
	Admin    *handlers.AdminHandler

	// PhotoDir is the local directory served at /photos. Empty when
	// photos live in object storage
	PhotoDir string
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

// NewRouter builds the HTTP router
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(RequestID(), Recovery(log))
	if cfg.Logging.LogRequests {
		r.Use(RequestLogger(log))
	}
	if cfg.IsProduction() {
		r.Use(SecurityHeaders())
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck(d.DB))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.PhotoDir != "" {
		r.Static("/photos", d.PhotoDir)
	}

	requireAuth := d.Auth.RequireAuth()
	leadLimit := ratelimit.NewKeyedLimiter("leads",
		cfg.RateLimit.LeadRequestsPerMinute, cfg.RateLimit.LeadRequestsPerHour, cfg.RateLimit.Enabled, log)
	loginLimit := ratelimit.NewKeyedLimiter("login",
		cfg.RateLimit.LoginRequestsPerMinute, cfg.RateLimit.LoginRequestsPerHour, cfg.RateLimit.Enabled, log)

	api := r.Group("/api")
	{
		api.GET("/properties", d.Property.List)
		api.GET("/properties/:id", d.Property.Get)
		api.POST("/properties", requireAuth, d.Property.Create)
		api.PUT("/properties/:id", requireAuth, d.Property.Update)
		api.DELETE("/properties/:id", requireAuth, d.Property.Delete)

		api.GET("/units", d.Units.List)
		api.GET("/units/:id", d.Units.Get)
		api.POST("/units", requireAuth, d.Units.Create)
		api.PUT("/units/:id", requireAuth, d.Units.Update)
		api.DELETE("/units/:id", requireAuth, d.Units.Delete)

		api.POST("/lead-submissions", leadLimit.Middleware(), d.Leads.Create)
		api.GET("/lead-submissions", requireAuth, d.Leads.List)
		api.PATCH("/lead-submissions/:id", requireAuth, d.Leads.SetContacted)

		api.GET("/branding", d.Branding.Get)
		api.PUT("/branding", requireAuth, d.Branding.Update)

		api.POST("/photos/upload", requireAuth, d.Photos.Upload)
		api.GET("/photos/property/:id", d.Photos.GetPropertyPhotos)
		api.DELETE("/photos", requireAuth, d.Photos.Delete)

		api.POST("/auth/login", loginLimit.Middleware(), d.Session.Login)
		api.POST("/auth/logout", d.Session.Logout)
		api.GET("/auth/user", d.Session.CurrentUser)

		api.GET("/search", d.Search.Search)
		api.POST("/search/reindex", requireAuth, d.Search.Reindex)
	}

	admin := r.Group("/api/admin", requireAuth)
	{
		admin.GET("/stats", d.Admin.GetStats)
		admin.POST("/geocode/backfill", d.Admin.RunGeocodeBackfill)
		admin.POST("/cleanup/photos", d.Admin.RunPhotoCleanup)
		admin.GET("/cleanup/logs", d.Admin.GetCleanupLogs)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func healthCheck(db *database.GormDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok", "time": time.Now()}
		if db != nil {
			if err := db.Ping(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "unreachable"
			}
		}
		c.JSON(status, body)
	}
}
