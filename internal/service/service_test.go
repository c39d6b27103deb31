package service

import (
	"testing"

	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/pkg/geo"
	"sentra/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Geofence{},
		&models.GeofenceOfficer{},
		&models.LiveLocationShare{},
		&models.LiveLocationTrackPoint{},
		&models.Alert{},
		&models.Notification{},
		&models.AuditLog{},
	))
	return db
}

func testLogger() *logger.Logger {
	return logger.New("error", "text", "")
}

func seedOrg(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: "acme", Active: true}
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedOfficer(t *testing.T, db *gorm.DB, orgID uint, username string, active bool) *models.User {
	t.Helper()
	u := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          username + "@acme.test",
		Role:           domain.RoleOfficer,
		Active:         active,
	}
	require.NoError(t, db.Create(u).Error)
	// GORM omits Active=false on insert because of the column's default:true
	// tag, so force the stored value explicitly.
	require.NoError(t, db.Model(u).UpdateColumn("active", active).Error)
	return u
}

func seedUser(t *testing.T, db *gorm.DB, orgID uint, username string) *models.User {
	t.Helper()
	u := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          username + "@acme.test",
		Role:           domain.RoleUser,
		Active:         true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func unitSquare() geo.Polygon {
	return geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0}}
}
