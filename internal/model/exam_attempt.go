package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// swagger:model ExamAttempt
type ExamAttempt struct {
	BaseModel
	UserID         uint              `gorm:"index:idx_attempt_user_exam;not null" json:"user_id"`
	ExamID         uint              `gorm:"index:idx_attempt_user_exam;not null" json:"exam_id"`
	StartedAt      time.Time         `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
	TotalQuestions int               `gorm:"not null" json:"total_questions"`
	TotalMarks     int               `gorm:"not null" json:"total_marks"`
	Score          int               `gorm:"not null;default:0" json:"score"`
	Status         AttemptStatus     `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	UserAnswers    datatypes.JSONMap `json:"-"`

	Exam *Exam `gorm:"foreignKey:ExamID" json:"-"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// ScorePercentage 保留一位小数
func (a *ExamAttempt) ScorePercentage() float64 {
	return Percentage(a.Score, a.TotalMarks)
}

// DurationMinutes 未完成时返回 nil
func (a *ExamAttempt) DurationMinutes() *float64 {
	if a.CompletedAt == nil || a.StartedAt.IsZero() {
		return nil
	}
	minutes := round1(a.CompletedAt.Sub(a.StartedAt).Minutes())
	return &minutes
}

func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(score) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
