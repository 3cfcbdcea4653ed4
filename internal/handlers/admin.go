package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"rental-portal/internal/cleanup"
	"rental-portal/internal/database"
	"rental-portal/internal/geocode"
	"rental-portal/internal/models"
	"rental-portal/internal/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Jobs runs the maintenance jobs on demand
type Jobs interface {
	RunGeocodeNow(ctx context.Context) (*geocode.BackfillResult, error)
	RunSweepNow(ctx context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error)
}

// CleanupLogs lists sweep audit rows
type CleanupLogs interface {
	GetRecentLogs(ctx context.Context, limit int) ([]models.PhotoCleanupLog, error)
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db   *database.GormDB
	jobs Jobs
	logs CleanupLogs
	log  *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.GormDB, jobs Jobs, logs CleanupLogs, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{db: db, jobs: jobs, logs: logs, log: log}
}

// GetStats returns dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.db.Stats(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to collect stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunGeocodeBackfill geocodes every property without coordinates
func (h *AdminHandler) RunGeocodeBackfill(c *gin.Context) {
	h.log.Info("Admin: geocode backfill requested")
	result, err := h.jobs.RunGeocodeNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Geocode backfill is already running"})
		return
	}
	if err != nil {
		h.log.Error("Admin: geocode backfill failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocode backfill failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunPhotoCleanup executes the orphan photo sweep
func (h *AdminHandler) RunPhotoCleanup(c *gin.Context) {
	var req struct {
		DryRun           *bool `json:"dryRun"`           // default: true
		MaxDeletionCount int   `json:"maxDeletionCount"` // default: 100
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cleanup request"})
			return
		}
	}

	config := cleanup.DefaultCleanupConfig()
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	if req.DryRun != nil {
		config.DryRun = *req.DryRun
	}

	h.log.Info("Admin: running photo cleanup",
		zap.Int("max_deletion_count", config.MaxDeletionCount),
		zap.Bool("dry_run", config.DryRun))

	result, err := h.jobs.RunSweepNow(c.Request.Context(), config)
	if errors.Is(err, scheduler.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Photo cleanup is already running"})
		return
	}
	if errors.Is(err, cleanup.ErrLimitExceeded) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Error("Admin: photo cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Photo cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCleanupLogs returns recent sweep audit entries
func (h *AdminHandler) GetCleanupLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.logs.GetRecentLogs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to fetch cleanup logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cleanup logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
