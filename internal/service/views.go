package service

import (
	"exam_grader_backend/internal/model"
	"fmt"
	"time"
)

type ExamView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   uint      `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	Answers     []string  `json:"answers,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewExamView 答案键只对管理员可见
func NewExamView(e *model.Exam, withKey bool) ExamView {
	v := ExamView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		CreatedBy:   e.CreatedBy,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if withKey && len(e.Answers) > 0 {
		v.Answers = append([]string(nil), e.Answers...)
	}
	return v
}

type ExamWithAttemptsView struct {
	ExamView
	QuestionCount int          `json:"question_count"`
	TotalMarks    int          `json:"total_marks"`
	HasAttempted  bool         `json:"has_attempted"`
	LatestAttempt *AttemptView `json:"latest_attempt"`
}

type ExamDetailView struct {
	ExamView
	QuestionCount    int            `json:"question_count"`
	TotalMarks       int            `json:"total_marks"`
	SubjectCounts    map[string]int `json:"subject_counts"`
	DifficultyCounts map[string]int `json:"difficulty_counts"`
}

type AttemptView struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	ExamID          uint                `json:"exam_id"`
	ExamTitle       *string             `json:"exam_title"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at"`
	TotalQuestions  int                 `json:"total_questions"`
	TotalMarks      int                 `json:"total_marks"`
	Score           int                 `json:"score"`
	ScorePercentage float64             `json:"score_percentage"`
	Status          model.AttemptStatus `json:"status"`
	DurationMinutes *float64            `json:"duration_minutes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewAttemptView(a *model.ExamAttempt) AttemptView {
	v := AttemptView{
		ID:              a.ID,
		UserID:          a.UserID,
		ExamID:          a.ExamID,
		StartedAt:       a.StartedAt,
		CompletedAt:     a.CompletedAt,
		TotalQuestions:  a.TotalQuestions,
		TotalMarks:      a.TotalMarks,
		Score:           a.Score,
		ScorePercentage: a.ScorePercentage(),
		Status:          a.Status,
		DurationMinutes: a.DurationMinutes(),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.Exam != nil {
		title := a.Exam.Title
		v.ExamTitle = &title
	}
	return v
}

// GeneratedQuestion 固定 50 题布局中的一题
type GeneratedQuestion struct {
	ID           int      `json:"id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Subject      string   `json:"subject"`
	Options      []string `json:"options"`
	Marks        int      `json:"marks"`
}

// ReviewQuestion 作答详情中的题目，完成后附带标准答案
type ReviewQuestion struct {
	GeneratedQuestion
	UserAnswer    interface{} `json:"user_answer"`
	CorrectAnswer *string     `json:"correct_answer,omitempty"`
	IsCorrect     *bool       `json:"is_correct,omitempty"`
}

// GenerateQuestions 前 25 题为 English，其余为 Maths
func GenerateQuestions() []GeneratedQuestion {
	qs := make([]GeneratedQuestion, 0, model.ExamQuestionCount)
	for i := 1; i <= model.ExamQuestionCount; i++ {
		subject := "English"
		if i > model.ExamQuestionCount/2 {
			subject = "Maths"
		}
		qs = append(qs, GeneratedQuestion{
			ID:           i,
			QuestionText: fmt.Sprintf("Question %d: Select the correct answer.", i),
			QuestionType: "multiple_choice",
			Subject:      subject,
			Options:      []string{"Option A", "Option B", "Option C", "Option D"},
			Marks:        1,
		})
	}
	return qs
}
