package service

import (
	"encoding/json"
	"errors"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"exam_grader_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.ExamAttemptRepository
}

func NewExamService(examRepo *repository.ExamRepository, attemptRepo *repository.ExamAttemptRepository) *ExamService {
	return &ExamService{ExamRepo: examRepo, AttemptRepo: attemptRepo}
}

type CreateExamReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Answers     []string `json:"answers"`
}

// UpdateExamReq 字段为 nil 表示不修改；answers 显式传 null 视为非法答案键
type UpdateExamReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Answers     json.RawMessage `json:"answers" swaggertype:"array,string"`
	IsActive    *bool           `json:"is_active"`
}

type ListExamsQuery struct {
	Status          string
	IncludeAttempts bool
}

// ListExams 非管理员只能看到启用的考试；管理员可通过 status=active 过滤
func (s *ExamService) ListExams(user *model.User, q ListExamsQuery) ([]ExamView, []ExamWithAttemptsView, error) {
	onlyActive := !user.IsAdmin || q.Status == "active"

	exams, err := s.ExamRepo.List(onlyActive)
	if err != nil {
		return nil, nil, err
	}

	if !q.IncludeAttempts {
		views := make([]ExamView, 0, len(exams))
		for i := range exams {
			views = append(views, NewExamView(&exams[i], user.IsAdmin))
		}
		return views, nil, nil
	}

	ids := make([]uint, 0, len(exams))
	for _, e := range exams {
		ids = append(ids, e.ID)
	}
	latest, err := s.AttemptRepo.LatestByUserForExams(user.ID, ids)
	if err != nil {
		return nil, nil, err
	}

	views := make([]ExamWithAttemptsView, 0, len(exams))
	for i := range exams {
		v := ExamWithAttemptsView{
			ExamView:      NewExamView(&exams[i], user.IsAdmin),
			QuestionCount: model.ExamQuestionCount,
			TotalMarks:    model.ExamTotalMarks,
		}
		if a, ok := latest[exams[i].ID]; ok {
			av := NewAttemptView(a)
			v.HasAttempted = true
			v.LatestAttempt = &av
		}
		views = append(views, v)
	}
	return nil, views, nil
}

// getVisibleExam 非管理员访问未启用考试按不存在处理
func (s *ExamService) getVisibleExam(user *model.User, id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if !exam.IsActive && !user.IsAdmin {
		return nil, util.ErrExamNotFound
	}
	return exam, nil
}

func (s *ExamService) GetExam(user *model.User, id uint) (*ExamDetailView, error) {
	exam, err := s.getVisibleExam(user, id)
	if err != nil {
		return nil, err
	}

	return &ExamDetailView{
		ExamView:      NewExamView(exam, user.IsAdmin),
		QuestionCount: model.ExamQuestionCount,
		TotalMarks:    model.ExamTotalMarks,
		SubjectCounts: map[string]int{
			"English": model.ExamQuestionCount / 2,
			"Maths":   model.ExamQuestionCount - model.ExamQuestionCount/2,
		},
		DifficultyCounts: map[string]int{"easy": 15, "medium": 20, "hard": 15},
	}, nil
}

// GetExamQuestions 返回固定布局的 50 道题，不含答案
func (s *ExamService) GetExamQuestions(user *model.User, id uint) (*ExamView, []GeneratedQuestion, error) {
	exam, err := s.getVisibleExam(user, id)
	if err != nil {
		return nil, nil, err
	}
	v := NewExamView(exam, false)
	return &v, GenerateQuestions(), nil
}

func (s *ExamService) CreateExam(creator *model.User, req CreateExamReq) (*model.Exam, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.NewValidationError("Exam title is required")
	}
	if err := ValidateAnswerKey(req.Answers); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   creator.ID,
		IsActive:    true,
		Answers:     append([]string(nil), req.Answers...),
	}
	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}

	logger.Log.Info("Exam created",
		zap.Uint("examID", exam.ID),
		zap.Uint("adminID", creator.ID),
		zap.String("title", exam.Title))
	return exam, nil
}

// UpdateExam 部分更新，返回实际修改的字段名
func (s *ExamService) UpdateExam(id uint, req UpdateExamReq) (*model.Exam, []string, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrExamNotFound
		}
		return nil, nil, err
	}

	fields := map[string]interface{}{}
	var updated []string

	if req.Title != nil {
		if t := strings.TrimSpace(*req.Title); t != "" {
			fields["title"] = t
			updated = append(updated, "title")
		}
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
		updated = append(updated, "description")
	}
	if req.Answers != nil {
		var answers []string
		if err := json.Unmarshal(req.Answers, &answers); err != nil {
			return nil, nil, util.NewValidationError("Exactly %d answers are required", model.ExamQuestionCount)
		}
		if err := ValidateAnswerKey(answers); err != nil {
			return nil, nil, err
		}
		fields["answers"] = datatypes.JSONSlice[string](answers)
		updated = append(updated, "answers")
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
		updated = append(updated, "is_active")
	}

	if len(fields) == 0 {
		return nil, nil, util.ErrNoFieldsProvided
	}

	if err := s.ExamRepo.UpdateFields(exam, fields); err != nil {
		return nil, nil, err
	}

	exam, err = s.ExamRepo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	return exam, updated, nil
}

// ToggleExam 翻转启用状态
func (s *ExamService) ToggleExam(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	active := !exam.IsActive
	if err := s.ExamRepo.UpdateFields(exam, map[string]interface{}{"is_active": active}); err != nil {
		return nil, err
	}
	exam.IsActive = active
	return exam, nil
}

// DeleteExam 连同作答记录一起删除
func (s *ExamService) DeleteExam(id uint) error {
	attempts, err := s.AttemptRepo.CountByExam(id)
	if err != nil {
		return err
	}
	err = s.ExamRepo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrExamNotFound
	}
	if err == nil {
		logger.Log.Info("Exam deleted", zap.Uint("examID", id), zap.Int64("attemptsRemoved", attempts))
	}
	return err
}
