package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"gorm.io/gorm"
)

// Admin is the operator account seeded by cmd/seed-admin. Login exchanges
// the bcrypt-checked credentials for a redis-backed session token.
type Admin struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Name      string    `gorm:"size:255" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj Admin) GetId() int {
	return obj.ID
}

// UpsertAdmin creates or updates the admin account by username.
func UpsertAdmin(ctx context.Context, username, name, hashedPassword string) (*Admin, error) {
	db := config.GetDB()

	var existing Admin
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		admin := Admin{Username: username, Name: name, Password: hashedPassword}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			return nil, err
		}
		return &admin, nil
	}

	existing.Name = name
	existing.Password = hashedPassword
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// GetAdminByUsername looks up an admin account for login.
func GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	db := config.GetDB()
	var admin Admin
	err := db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &admin, nil
}
