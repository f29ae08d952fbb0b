package service

import (
	"context"
	"errors"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"exam_grader_backend/pkg/logger"
	"exam_grader_backend/pkg/monitoring"
	"exam_grader_backend/pkg/tracing"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamAttemptService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.ExamAttemptRepository
	Locker      AttemptLocker
	now         func() time.Time
}

func NewExamAttemptService(examRepo *repository.ExamRepository, attemptRepo *repository.ExamAttemptRepository, locker AttemptLocker) *ExamAttemptService {
	if locker == nil {
		locker = NewLocalAttemptLocker()
	}
	return &ExamAttemptService{
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		Locker:      locker,
		now:         time.Now,
	}
}

type GradeResult struct {
	Score           int     `json:"score"`
	TotalMarks      int     `json:"total_marks"`
	ScorePercentage float64 `json:"score_percentage"`
	TotalQuestions  int     `json:"total_questions"`
	AttemptID       uint    `json:"attempt_id"`
}

type AttemptDetail struct {
	Attempt   AttemptView      `json:"attempt"`
	Exam      ExamView         `json:"exam"`
	Questions []ReviewQuestion `json:"questions"`
}

func newGradeResult(a *model.ExamAttempt) *GradeResult {
	return &GradeResult{
		Score:           a.Score,
		TotalMarks:      a.TotalMarks,
		ScorePercentage: a.ScorePercentage(),
		TotalQuestions:  a.TotalQuestions,
		AttemptID:       a.ID,
	}
}

func (s *ExamAttemptService) findExam(examID uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// StartAttempt 已有进行中的作答时原样返回（created=false），否则新建
func (s *ExamAttemptService) StartAttempt(ctx context.Context, userID, examID uint) (*model.ExamAttempt, bool, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ExamAttemptService.StartAttempt")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("exam.id", int64(examID)),
	)

	exam, err := s.findExam(examID)
	if err != nil {
		return nil, false, err
	}
	if !exam.IsActive {
		return nil, false, util.ErrExamNotActive
	}

	var (
		attempt *model.ExamAttempt
		created bool
	)
	key := fmt.Sprintf("attempt:%d:%d", userID, examID)
	err = s.Locker.WithLock(ctx, key, func() error {
		existing, err := s.AttemptRepo.FindInProgress(userID, examID)
		if err != nil {
			return err
		}
		if existing != nil {
			attempt = existing
			return nil
		}

		attempt = &model.ExamAttempt{
			UserID:         userID,
			ExamID:         examID,
			StartedAt:      s.now(),
			TotalQuestions: model.ExamQuestionCount,
			TotalMarks:     model.ExamTotalMarks,
			Status:         model.AttemptInProgress,
		}
		if err := s.AttemptRepo.Create(attempt); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	attempt.Exam = exam
	span.SetAttributes(attribute.Bool("attempt.created", created))
	if created {
		monitoring.ExamAttemptsStarted.Inc()
		logger.Log.Info("Exam attempt started",
			zap.Uint("attemptID", attempt.ID),
			zap.Uint("userID", userID),
			zap.Uint("examID", examID))
	}
	return attempt, created, nil
}

// SubmitAttempt 评分并结束进行中的作答；并发提交只有一个成功
func (s *ExamAttemptService) SubmitAttempt(userID, attemptID uint, answers map[string]interface{}) (*GradeResult, error) {
	attempt, err := s.AttemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptCompleted
	}
	if answers == nil {
		return nil, util.ErrAnswersRequired
	}

	exam := attempt.Exam
	if exam == nil {
		if exam, err = s.findExam(attempt.ExamID); err != nil {
			return nil, err
		}
	}
	if !exam.HasAnswerKey() {
		return nil, util.ErrExamNoAnswerKey
	}

	completedAt := s.now()
	attempt.Score = ScoreAnswers(exam.Answers, answers)
	attempt.CompletedAt = &completedAt
	attempt.UserAnswers = datatypes.JSONMap(answers)

	if err := s.AttemptRepo.Complete(attempt); err != nil {
		if errors.Is(err, repository.ErrAttemptStateChanged) {
			return nil, util.ErrAttemptCompleted
		}
		return nil, err
	}

	s.recordGrade("attempt", attempt)
	return newGradeResult(attempt), nil
}

// GradeExam 一步创建已完成的作答
func (s *ExamAttemptService) GradeExam(userID, examID uint, answers map[string]interface{}) (*GradeResult, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, util.ErrExamNotActive
	}
	if answers == nil {
		return nil, util.ErrAnswersRequired
	}
	if !exam.HasAnswerKey() {
		return nil, util.ErrExamNoAnswerKey
	}

	now := s.now()
	attempt := &model.ExamAttempt{
		UserID:         userID,
		ExamID:         examID,
		StartedAt:      now,
		CompletedAt:    &now,
		TotalQuestions: model.ExamQuestionCount,
		TotalMarks:     model.ExamTotalMarks,
		Score:          ScoreAnswers(exam.Answers, answers),
		Status:         model.AttemptCompleted,
		UserAnswers:    datatypes.JSONMap(answers),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	s.recordGrade("graded", attempt)
	return newGradeResult(attempt), nil
}

func (s *ExamAttemptService) recordGrade(mode string, a *model.ExamAttempt) {
	monitoring.ExamSubmissions.WithLabelValues(mode).Inc()
	monitoring.ExamScorePercentage.Observe(a.ScorePercentage())
	logger.Log.Info("Exam attempt graded",
		zap.String("mode", mode),
		zap.Uint("attemptID", a.ID),
		zap.Uint("userID", a.UserID),
		zap.Uint("examID", a.ExamID),
		zap.Int("score", a.Score),
		zap.Int("totalMarks", a.TotalMarks))
}

func (s *ExamAttemptService) ListAttempts(userID uint) ([]AttemptView, error) {
	attempts, err := s.AttemptRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, NewAttemptView(&attempts[i]))
	}
	return views, nil
}

// GetAttemptDetail 题目附带用户作答；作答完成后附带标准答案用于回顾
func (s *ExamAttemptService) GetAttemptDetail(userID, attemptID uint) (*AttemptDetail, error) {
	attempt, err := s.AttemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	exam := attempt.Exam
	if exam == nil {
		if exam, err = s.findExam(attempt.ExamID); err != nil {
			return nil, err
		}
	}

	reveal := attempt.Status == model.AttemptCompleted && exam.HasAnswerKey()
	generated := GenerateQuestions()
	questions := make([]ReviewQuestion, 0, len(generated))
	for i, q := range generated {
		rq := ReviewQuestion{GeneratedQuestion: q}
		if v, ok := attempt.UserAnswers[strconv.Itoa(q.ID)]; ok {
			rq.UserAnswer = v
		}
		if reveal && i < len(exam.Answers) {
			correct := exam.Answers[i]
			given, ok := rq.UserAnswer.(string)
			isCorrect := ok && given == correct
			rq.CorrectAnswer = &correct
			rq.IsCorrect = &isCorrect
		}
		questions = append(questions, rq)
	}

	return &AttemptDetail{
		Attempt:   NewAttemptView(attempt),
		Exam:      NewExamView(exam, false),
		Questions: questions,
	}, nil
}
