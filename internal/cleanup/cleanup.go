package cleanup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"rental-portal/internal/models"
	"rental-portal/internal/photos"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrLimitExceeded is returned when a sweep would delete more directories
// than allowed
var ErrLimitExceeded = errors.New("safety check failed")

// Service removes photo directories that no longer belong to a property
// or unit row
type Service struct {
	db       *gorm.DB
	store    photos.Store
	resolver photos.Resolver
	log      *zap.Logger
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB, store photos.Store, resolver photos.Resolver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, store: store, resolver: resolver, log: log}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	MaxDeletionCount int  // Maximum number of directories to delete in one run
	DryRun           bool // Only report what would be deleted
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		MaxDeletionCount: 100,
		DryRun:           true,
	}
}

// Orphan is a photo directory with no matching row
type Orphan struct {
	Directory string `json:"directory"`
	Reason    string `json:"reason"`
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int       `json:"targetCount"`
	DeletedCount int       `json:"deletedCount"`
	FileCount    int       `json:"fileCount"`
	ErrorCount   int       `json:"errorCount"`
	DryRun       bool      `json:"dryRun"`
	ExecutedAt   time.Time `json:"executedAt"`
	Orphans      []Orphan  `json:"orphans"`
	Errors       []string  `json:"errors,omitempty"`
}

// expectedLayout maps property directory names to the unit directory
// names that should exist under them
func (s *Service) expectedLayout(ctx context.Context) (map[string]map[string]bool, error) {
	var properties []models.Property
	if err := s.db.WithContext(ctx).Select("id", "name", "city").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	var units []models.Unit
	if err := s.db.WithContext(ctx).Select("id", "property_id", "unit_number").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}

	dirByProperty := make(map[uint]string, len(properties))
	layout := make(map[string]map[string]bool, len(properties))
	for _, p := range properties {
		dir, err := photos.PropertyDirName(p.City, p.Name)
		if err != nil {
			continue
		}
		dirByProperty[p.ID] = dir
		if layout[dir] == nil {
			layout[dir] = make(map[string]bool)
		}
	}
	for _, u := range units {
		dir, ok := dirByProperty[u.PropertyID]
		if !ok {
			continue
		}
		unitDir, err := photos.UnitDirName(u.UnitNumber)
		if err != nil {
			continue
		}
		layout[dir][unitDir] = true
	}
	return layout, nil
}

// FindOrphans lists property directories without a property row and unit
// directories without a unit row. Category directories are never orphans
// while their property exists
func (s *Service) FindOrphans(ctx context.Context) ([]Orphan, error) {
	layout, err := s.expectedLayout(ctx)
	if err != nil {
		return nil, err
	}

	root := s.resolver.Root
	dirs, err := s.store.ListDirs(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	orphans := []Orphan{}
	for _, dir := range dirs {
		units, ok := layout[dir]
		propertyDir := path.Join(root, dir)
		if !ok {
			orphans = append(orphans, Orphan{Directory: propertyDir, Reason: models.CleanupReasonOrphanProperty})
			continue
		}

		children, err := s.store.ListDirs(ctx, propertyDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", propertyDir, err)
		}
		for _, child := range children {
			if photos.IsUnitDir(child) && !units[child] {
				orphans = append(orphans, Orphan{Directory: path.Join(propertyDir, child), Reason: models.CleanupReasonOrphanUnit})
			}
		}
	}
	return orphans, nil
}

// Sweep finds orphan directories and, unless DryRun is set, deletes them
// and records a PhotoCleanupLog row for each
func (s *Service) Sweep(ctx context.Context, config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
		Orphans:    []Orphan{},
	}

	orphans, err := s.FindOrphans(ctx)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(orphans)

	if result.TargetCount == 0 {
		s.log.Info("No orphan photo directories found")
		return result, nil
	}

	// Safety check: abort if too many directories would be deleted
	if config.MaxDeletionCount > 0 && result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("%w: %d directories exceed max deletion limit of %d",
			ErrLimitExceeded, result.TargetCount, config.MaxDeletionCount)
	}

	s.log.Info("Starting photo sweep",
		zap.Int("targets", result.TargetCount),
		zap.Bool("dry_run", config.DryRun))

	for _, orphan := range orphans {
		if config.DryRun {
			s.log.Info("[DRY-RUN] Would delete photo directory",
				zap.String("directory", orphan.Directory),
				zap.String("reason", orphan.Reason))
			result.Orphans = append(result.Orphans, orphan)
			continue
		}

		files, err := s.store.RemoveAll(ctx, orphan.Directory)
		if err != nil {
			errMsg := fmt.Sprintf("failed to delete %s: %v", orphan.Directory, err)
			s.log.Error("Photo sweep deletion failed", zap.String("directory", orphan.Directory), zap.Error(err))
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		entry := models.PhotoCleanupLog{
			Directory: orphan.Directory,
			FileCount: files,
			Reason:    orphan.Reason,
		}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			// The directory is already gone; only the audit row is missing
			s.log.Error("Failed to record photo cleanup log", zap.String("directory", orphan.Directory), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("failed to log %s: %v", orphan.Directory, err))
			result.ErrorCount++
		}

		s.log.Info("Deleted orphan photo directory",
			zap.String("directory", orphan.Directory),
			zap.String("reason", orphan.Reason),
			zap.Int("files", files))
		result.Orphans = append(result.Orphans, orphan)
		result.DeletedCount++
		result.FileCount += files
	}

	s.log.Info("Photo sweep completed",
		zap.Int("deleted", result.DeletedCount),
		zap.Int("targets", result.TargetCount),
		zap.Int("errors", result.ErrorCount),
		zap.Bool("dry_run", config.DryRun))

	return result, nil
}

// GetRecentLogs returns recent cleanup log entries
func (s *Service) GetRecentLogs(ctx context.Context, limit int) ([]models.PhotoCleanupLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs := []models.PhotoCleanupLog{}
	err := s.db.WithContext(ctx).Order("deleted_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
