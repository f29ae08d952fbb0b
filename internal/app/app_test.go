package app

import (
	"bytes"
	"encoding/json"
	"exam_grader_backend/internal/config"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/pkg/database"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"},
		JWT:      config.JWTConfig{Secret: "app-test-secret-0123456789abcdef0123", ExpireTime: time.Hour},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir(), MaxUploadMB: 4},
	}

	db, err := database.Open(&cfg.Database, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return New(cfg, db, nil)
}

func call(t *testing.T, a *App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func register(t *testing.T, a *App, username string) string {
	t.Helper()
	code, body := call(t, a, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["access_token"].(string)
}

func promote(t *testing.T, db *gorm.DB, username string) {
	t.Helper()
	require.NoError(t, db.Model(&model.User{}).Where("username = ?", username).Update("is_admin", true).Error)
}

func answerKey() []string {
	key := make([]string, model.ExamQuestionCount)
	for i := range key {
		key[i] = string("ABCD"[i%4])
	}
	return key
}

func id(v interface{}) string {
	return strconv.Itoa(int(v.(float64)))
}

func TestExamFlow(t *testing.T) {
	a := newTestApp(t)

	adminToken := register(t, a, "proctor")
	promote(t, a.DB, "proctor")
	studentToken := register(t, a, "student")

	code, body := call(t, a, http.MethodPost, "/api/login", "", map[string]string{
		"username_or_email": "student@example.com",
		"password":          "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", body["message"])

	code, _ = call(t, a, http.MethodPost, "/api/login", "", map[string]string{
		"username_or_email": "student",
		"password":          "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	// 学生不能创建考试
	key := answerKey()
	code, _ = call(t, a, http.MethodPost, "/api/exams", studentToken, map[string]interface{}{"title": "Mock", "answers": key})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = call(t, a, http.MethodPost, "/api/admin/exams", adminToken, map[string]interface{}{"title": "Mock", "answers": key[:10]})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Exactly 50 answers are required", body["error"])

	code, body = call(t, a, http.MethodPost, "/api/exams", adminToken, map[string]interface{}{"title": "Mock", "answers": key})
	require.Equal(t, http.StatusCreated, code, body)
	examID := id(body["exam"].(map[string]interface{})["id"])

	// 非管理员的修改、删除、启停一律 403，考试保持原样
	forbidden := []struct{ method, path string }{
		{http.MethodPatch, "/api/exams/" + examID},
		{http.MethodDelete, "/api/exams/" + examID},
		{http.MethodPatch, "/api/exams/" + examID + "/toggle"},
		{http.MethodPatch, "/api/admin/exams/" + examID},
		{http.MethodDelete, "/api/admin/exams/" + examID},
		{http.MethodPatch, "/api/admin/exams/" + examID + "/toggle"},
	}
	for _, f := range forbidden {
		code, body = call(t, a, f.method, f.path, studentToken, map[string]interface{}{"title": "hijacked"})
		assert.Equal(t, http.StatusForbidden, code, f.method+" "+f.path)
		assert.Equal(t, "Admin access required", body["error"])
	}
	var stored model.Exam
	require.NoError(t, a.DB.Where("id = ?", examID).First(&stored).Error)
	assert.Equal(t, "Mock", stored.Title)
	assert.True(t, stored.IsActive)

	code, body = call(t, a, http.MethodGet, "/api/exams", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	exams := body["exams"].([]interface{})
	require.Len(t, exams, 1)
	assert.NotContains(t, exams[0].(map[string]interface{}), "answers")

	code, body = call(t, a, http.MethodGet, "/api/exams/"+examID+"/questions", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["questions"].([]interface{}), model.ExamQuestionCount)

	code, body = call(t, a, http.MethodPost, "/api/start-exam/"+examID, studentToken, nil)
	require.Equal(t, http.StatusCreated, code, body)
	attemptID := id(body["attempt"].(map[string]interface{})["id"])

	code, body = call(t, a, http.MethodPost, "/api/start-exam/"+examID, studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Exam already in progress", body["message"])
	assert.Equal(t, attemptID, id(body["attempt"].(map[string]interface{})["id"]))

	answers := map[string]interface{}{}
	for i := 0; i < 20; i++ {
		answers[strconv.Itoa(i+1)] = key[i]
	}
	code, body = call(t, a, http.MethodPost, "/api/submit-exam/"+attemptID, studentToken, map[string]interface{}{"answers": answers})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 20.0, body["score"])
	assert.Equal(t, 50.0, body["total_marks"])
	assert.Equal(t, 40.0, body["score_percentage"])

	code, body = call(t, a, http.MethodPost, "/api/submit-exam/"+attemptID, studentToken, map[string]interface{}{"answers": answers})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Exam attempt already completed", body["error"])

	code, body = call(t, a, http.MethodPost, "/api/submit-graded-exam/"+examID, studentToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Answers are required", body["error"])

	code, body = call(t, a, http.MethodGet, "/api/exam-attempts", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	history := body["exam_attempts"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, "Mock", history[0].(map[string]interface{})["exam_title"])

	code, body = call(t, a, http.MethodGet, "/api/exam-attempts/"+attemptID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = call(t, a, http.MethodGet, "/api/exam-attempts/"+attemptID, studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	questions := body["questions"].([]interface{})
	require.Len(t, questions, model.ExamQuestionCount)
	first := questions[0].(map[string]interface{})
	assert.Equal(t, true, first["is_correct"])
	assert.Equal(t, key[0], first["correct_answer"])

	// 停用后无法开考
	code, body = call(t, a, http.MethodPatch, "/api/exams/"+examID+"/toggle", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["exam"].(map[string]interface{})["is_active"])
	code, body = call(t, a, http.MethodPost, "/api/start-exam/"+examID, studentToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Exam is not active", body["error"])

	code, body = call(t, a, http.MethodGet, "/api/exams/"+examID, studentToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuthRequired(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/api/exams", "/api/exam-attempts", "/api/profile"} {
		code, _ := call(t, a, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}

	code, body := call(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterValidation(t *testing.T) {
	a := newTestApp(t)
	register(t, a, "alice")

	cases := []struct {
		body map[string]string
		msg  string
	}{
		{map[string]string{"username": "alice", "email": "other@example.com", "password": "secret123"}, "Username already exists"},
		{map[string]string{"username": "bob", "email": "ALICE@example.com", "password": "secret123"}, "Email already exists"},
		{map[string]string{"username": "bob", "email": "bob@example.com", "password": "123"}, "Password must be at least 6 characters"},
	}
	for i, tc := range cases {
		code, body := call(t, a, http.MethodPost, "/api/register", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, code, fmt.Sprint(i))
		assert.True(t, strings.HasPrefix(body["error"].(string), tc.msg), body["error"])
	}
}
