package database

import (
	"errors"
	"fmt"
	"time"

	"rental-portal/internal/config"
	"rental-portal/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

// Connect opens the database selected by cfg.Type
func Connect(cfg config.DatabaseConfig, verbose bool) (*GormDB, error) {
	switch cfg.Type {
	case "mysql":
		return NewMySQL(cfg.MySQL, verbose)
	case "postgres":
		return NewPostgres(cfg.Postgres, verbose)
	case "sqlite", "":
		return NewSQLite(cfg.SQLite.Path, verbose)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func open(dialector gorm.Dialector, verbose bool) (*GormDB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection is alive
func (gdb *GormDB) Ping() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.Unit{},
		&models.LeadSubmission{},
		&models.User{},
		&models.Branding{},
		&models.PhotoCleanupLog{},
	)
}

// notFound translates gorm's sentinel into models.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
