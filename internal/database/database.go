package database

import (
	"errors"

	"sentra/config"
	"sentra/internal/domain"
	"sentra/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,                                 // duplicate-key detection for the active-share guard
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Geofence{},
		&models.GeofenceOfficer{},
		&models.LiveLocationShare{},
		&models.LiveLocationTrackPoint{},
		&models.Alert{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin provisions a default organization and admin account on first
// boot so the geofence/officer management API is reachable.
func SeedAdmin(db *gorm.DB) {
	var org models.Organization
	err := db.Where("name = ?", "default").First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		org = models.Organization{Name: "default", Active: true}
		if err := db.Create(&org).Error; err != nil {
			return
		}
	} else if err != nil {
		return
	}

	var admin models.User
	err = db.Where("role = ?", domain.RoleAdmin).First(&admin).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	admin = models.User{
		OrganizationID: org.ID,
		Username:       "admin",
		Email:          "admin@localhost",
		PasswordHash:   string(hash),
		Role:           domain.RoleAdmin,
		Active:         true,
	}
	_ = db.Create(&admin).Error
}
