package database

import (
	"context"

	"rental-portal/internal/models"
)

// GetUserByUsername retrieves an admin account
func (gdb *GormDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := gdb.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByID retrieves an admin account by ID
func (gdb *GormDB) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := gdb.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser inserts an admin account
func (gdb *GormDB) CreateUser(ctx context.Context, user *models.User) error {
	return gdb.db.WithContext(ctx).Create(user).Error
}

// CountUsers returns the number of admin accounts
func (gdb *GormDB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := gdb.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
