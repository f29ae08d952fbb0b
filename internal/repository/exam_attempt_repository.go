package repository

import (
	"errors"
	"exam_grader_backend/internal/model"

	"gorm.io/gorm"
)

// ErrAttemptStateChanged 条件更新未命中：作答已不在 in_progress 状态
var ErrAttemptStateChanged = errors.New("attempt is no longer in progress")

type ExamAttemptRepository struct {
	DB *gorm.DB
}

func NewExamAttemptRepository(db *gorm.DB) *ExamAttemptRepository {
	return &ExamAttemptRepository{DB: db}
}

func (r *ExamAttemptRepository) Create(attempt *model.ExamAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *ExamAttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Preload("Exam").First(&attempt, id).Error
	return &attempt, err
}

// FindByIDAndUser 只返回属于该用户的作答
func (r *ExamAttemptRepository) FindByIDAndUser(id, userID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Preload("Exam").
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error
	return &attempt, err
}

// FindInProgress 查找 (user, exam) 上进行中的作答，不存在时返回 nil, nil
func (r *ExamAttemptRepository) FindInProgress(userID, examID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, model.AttemptInProgress).
		Order("created_at desc, id desc").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *ExamAttemptRepository) ListByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Preload("Exam").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&attempts).Error
	return attempts, err
}

// LatestByUserForExams 每场考试取该用户最近一次作答
func (r *ExamAttemptRepository) LatestByUserForExams(userID uint, examIDs []uint) (map[uint]*model.ExamAttempt, error) {
	result := make(map[uint]*model.ExamAttempt, len(examIDs))
	if len(examIDs) == 0 {
		return result, nil
	}

	var attempts []model.ExamAttempt
	err := r.DB.Preload("Exam").
		Where("user_id = ? AND exam_id IN ?", userID, examIDs).
		Order("created_at desc, id desc").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	for i := range attempts {
		if _, ok := result[attempts[i].ExamID]; !ok {
			result[attempts[i].ExamID] = &attempts[i]
		}
	}
	return result, nil
}

// Complete 仅当作答仍处于 in_progress 时写入成绩，保证状态只前进一次
func (r *ExamAttemptRepository) Complete(attempt *model.ExamAttempt) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ExamAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"score":        attempt.Score,
				"status":       model.AttemptCompleted,
				"completed_at": attempt.CompletedAt,
				"user_answers": attempt.UserAnswers,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAttemptStateChanged
		}
		attempt.Status = model.AttemptCompleted
		return nil
	})
}

func (r *ExamAttemptRepository) CountByExam(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamAttempt{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}
