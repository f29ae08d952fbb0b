package service

import (
	"encoding/json"
	"errors"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionService 旧版逐题维护，仅管理员使用，不参与评分
type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	ExamRepo     *repository.ExamRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository, examRepo *repository.ExamRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo, ExamRepo: examRepo}
}

type QuestionReq struct {
	QuestionText    string          `json:"question_text"`
	QuestionType    string          `json:"question_type"`
	Subject         string          `json:"subject"`
	QuestionContext string          `json:"question_context"`
	Difficulty      string          `json:"difficulty"`
	DiagramPath     string          `json:"diagram_path"`
	Options         json.RawMessage `json:"options" swaggertype:"object"`
	CorrectAnswer   string          `json:"correct_answer"`
	Marks           int             `json:"marks"`
}

type AddQuestionsReq struct {
	ExamID    uint          `json:"exam_id"`
	Questions []QuestionReq `json:"questions"`
}

type UpdateQuestionReq struct {
	QuestionText    *string         `json:"question_text"`
	QuestionType    *string         `json:"question_type"`
	Subject         *string         `json:"subject"`
	QuestionContext *string         `json:"question_context"`
	Difficulty      *string         `json:"difficulty"`
	DiagramPath     *string         `json:"diagram_path"`
	Options         json.RawMessage `json:"options" swaggertype:"object"`
	CorrectAnswer   *string         `json:"correct_answer"`
	Marks           *int            `json:"marks"`
}

func (s *QuestionService) findExam(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// ListQuestions examID 为 0 时返回全部题目
func (s *QuestionService) ListQuestions(examID uint) ([]model.Question, *model.Exam, error) {
	var exam *model.Exam
	if examID != 0 {
		var err error
		if exam, err = s.findExam(examID); err != nil {
			return nil, nil, err
		}
	}
	qs, err := s.QuestionRepo.List(examID)
	if err != nil {
		return nil, nil, err
	}
	return qs, exam, nil
}

// AddQuestions 缺少题干的条目被跳过
func (s *QuestionService) AddQuestions(req AddQuestionsReq) ([]*model.Question, error) {
	if req.ExamID == 0 {
		return nil, util.NewValidationError("exam_id is required")
	}
	if len(req.Questions) == 0 {
		return nil, util.NewValidationError("Questions are required")
	}
	if _, err := s.findExam(req.ExamID); err != nil {
		return nil, err
	}

	questions := make([]*model.Question, 0, len(req.Questions))
	for _, item := range req.Questions {
		text := strings.TrimSpace(item.QuestionText)
		if text == "" {
			continue
		}
		q := &model.Question{
			ExamID:          req.ExamID,
			QuestionText:    text,
			QuestionType:    defaultString(item.QuestionType, "multiple_choice"),
			Subject:         defaultString(item.Subject, "General"),
			QuestionContext: item.QuestionContext,
			Difficulty:      defaultString(item.Difficulty, "medium"),
			DiagramPath:     item.DiagramPath,
			CorrectAnswer:   item.CorrectAnswer,
			Marks:           item.Marks,
		}
		if q.Marks <= 0 {
			q.Marks = 1
		}
		if len(item.Options) > 0 {
			q.Options = datatypes.JSON(item.Options)
		}
		questions = append(questions, q)
	}

	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) UpdateQuestion(id uint, req UpdateQuestionReq) (*model.Question, []string, error) {
	q, err := s.GetQuestion(id)
	if err != nil {
		return nil, nil, err
	}

	fields := map[string]interface{}{}
	var updated []string
	set := func(column string, value interface{}) {
		fields[column] = value
		updated = append(updated, column)
	}

	if req.QuestionText != nil && strings.TrimSpace(*req.QuestionText) != "" {
		set("question_text", strings.TrimSpace(*req.QuestionText))
	}
	if req.QuestionType != nil {
		set("question_type", *req.QuestionType)
	}
	if req.Subject != nil {
		set("subject", *req.Subject)
	}
	if req.QuestionContext != nil {
		set("question_context", *req.QuestionContext)
	}
	if req.Difficulty != nil {
		set("difficulty", *req.Difficulty)
	}
	if req.DiagramPath != nil {
		set("diagram_path", *req.DiagramPath)
	}
	if len(req.Options) > 0 {
		set("options", datatypes.JSON(req.Options))
	}
	if req.CorrectAnswer != nil {
		set("correct_answer", *req.CorrectAnswer)
	}
	if req.Marks != nil {
		if *req.Marks <= 0 {
			return nil, nil, util.NewValidationError("Marks must be positive")
		}
		set("marks", *req.Marks)
	}

	if len(fields) == 0 {
		return nil, nil, util.ErrNoFieldsProvided
	}
	if err := s.QuestionRepo.UpdateFields(q, fields); err != nil {
		return nil, nil, err
	}

	q, err = s.GetQuestion(id)
	if err != nil {
		return nil, nil, err
	}
	return q, updated, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	if _, err := s.GetQuestion(id); err != nil {
		return err
	}
	return s.QuestionRepo.Delete(id)
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
