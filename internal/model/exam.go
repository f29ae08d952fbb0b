package model

import (
	"gorm.io/datatypes"
)

const (
	// 固定 50 题布局，每题 1 分
	ExamQuestionCount = 50
	ExamTotalMarks    = 50
)

// AnswerChoices 答案键允许的选项
var AnswerChoices = []string{"A", "B", "C", "D"}

// swagger:model Exam
type Exam struct {
	BaseModel
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	CreatedBy   uint                        `gorm:"index;not null" json:"created_by"`
	IsActive    bool                        `gorm:"not null;index" json:"is_active"`
	Answers     datatypes.JSONSlice[string] `json:"answers,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// HasAnswerKey 是否已配置完整答案键
func (e *Exam) HasAnswerKey() bool {
	return len(e.Answers) > 0
}
