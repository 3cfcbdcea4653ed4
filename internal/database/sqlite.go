package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
)

// NewSQLite opens a SQLite database file, or an in-memory database for
// DSNs such as "file:name?mode=memory&cache=shared"
func NewSQLite(path string, verbose bool) (*GormDB, error) {
	if path == "" {
		path = "rental.db"
	}
	gdb, err := open(sqlite.Open(path), verbose)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// SQLite allows a single writer
	if sqlDB, err := gdb.db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}
