package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sentra/internal/models"
	"sentra/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

func seedOrg(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, Active: true}
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedUser(t *testing.T, db *gorm.DB, orgID uint, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          username + "@acme.test",
		Role:           role,
		Active:         true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// authedContext builds a gin context as AuthRequired would have left it.
func authedContext(w *httptest.ResponseRecorder, userID, orgID uint, role string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", userID)
	c.Set("org_id", orgID)
	c.Set("role", role)
	return c
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
