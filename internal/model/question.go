package model

import (
	"gorm.io/datatypes"
)

// Question 旧版逐题模型，评分已改用 Exam.Answers，仅保留管理端维护
type Question struct {
	BaseModel
	ExamID          uint           `gorm:"index;not null" json:"exam_id"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	QuestionType    string         `gorm:"size:50;not null" json:"question_type"`
	Subject         string         `gorm:"size:50;not null" json:"subject"`
	QuestionContext string         `gorm:"type:text" json:"question_context"`
	Difficulty      string         `gorm:"size:20" json:"difficulty"`
	DiagramPath     string         `gorm:"size:255" json:"diagram_path"`
	Options         datatypes.JSON `json:"options"`
	CorrectAnswer   string         `gorm:"size:10" json:"correct_answer"`
	Marks           int            `gorm:"not null;default:1" json:"marks"`
}

func (Question) TableName() string {
	return "questions"
}
