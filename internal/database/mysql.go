package database

import (
	"fmt"

	"rental-portal/internal/config"

	"gorm.io/driver/mysql"
)

// NewMySQL connects to MySQL
func NewMySQL(cfg config.MySQLConfig, verbose bool) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	gdb, err := open(mysql.Open(dsn), verbose)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return gdb, nil
}
