package database

import (
	"database/sql"
	"fmt"

	"rental-portal/internal/config"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
)

// PostgresDSN builds a lib/pq connection string. A configured URL is used
// as is
func PostgresDSN(cfg config.PostgresConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslmode)
}

// NewPostgres connects to PostgreSQL through the lib/pq driver
func NewPostgres(cfg config.PostgresConfig, verbose bool) (*GormDB, error) {
	conn, err := sql.Open("postgres", PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	gdb, err := open(postgres.New(postgres.Config{Conn: conn}), verbose)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}
