package middleware

import (
	"exam_grader_backend/internal/config"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"exam_grader_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour}}
	r := gin.New()
	r.Use(Recovery())
	auth := r.Group("/", AuthMiddleware(cfg, repository.NewUserRepository(db)))
	auth.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": util.CurrentUser(c).ID})
	})
	auth.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, db
}

func addUser(t *testing.T, db *gorm.DB, name string, admin, active bool) (*model.User, string) {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", PasswordHash: "x", IsAdmin: admin, IsActive: active}
	require.NoError(t, db.Create(u).Error)
	token, err := util.GenerateJWT(u, testSecret, time.Hour)
	require.NoError(t, err)
	return u, token
}

func do(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, db := setup(t)
	_, token := addUser(t, db, "student", false, true)
	_, disabled := addUser(t, db, "ghost", false, false)

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")

	w = do(r, "/me", "Bearer "+disabled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), util.ErrAccountDisabled.Error())

	orphan, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 999}}, testSecret, time.Hour)
	require.NoError(t, err)
	w = do(r, "/me", "Bearer "+orphan)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), util.ErrUserNotFound.Error())

	w = do(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	r, db := setup(t)
	_, student := addUser(t, db, "student", false, true)
	_, admin := addUser(t, db, "admin", true, true)

	w := do(r, "/admin", "Bearer "+student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), util.ErrPermissionDenied.Error())

	w = do(r, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
