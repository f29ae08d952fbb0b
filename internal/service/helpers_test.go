package service

import (
	"exam_grader_backend/internal/config"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/pkg/database"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: "file::memory:"}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func uniformKey(choice string) []string {
	return strings.Split(strings.Repeat(choice, model.ExamQuestionCount), "")
}

func uniformAnswers(choice string) map[string]interface{} {
	answers := make(map[string]interface{}, model.ExamQuestionCount)
	for i := 1; i <= model.ExamQuestionCount; i++ {
		answers[strconv.Itoa(i)] = choice
	}
	return answers
}

func createUser(t *testing.T, db *gorm.DB, username string, admin bool) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsAdmin:      admin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createExam(t *testing.T, db *gorm.DB, title string, key []string, active bool) *model.Exam {
	t.Helper()
	e := &model.Exam{
		Title:     title,
		CreatedBy: 1,
		IsActive:  active,
		Answers:   key,
	}
	require.NoError(t, db.Create(e).Error)
	return e
}
