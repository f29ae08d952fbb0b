package repository

import (
	"exam_grader_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// CreateBatch 整批写入，任一失败全部回滚
func (r *QuestionRepository) CreateBatch(questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, q := range questions {
			if err := tx.Create(q).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

// List examID 为 0 时返回全部
func (r *QuestionRepository) List(examID uint) ([]model.Question, error) {
	var qs []model.Question
	query := r.DB.Model(&model.Question{})
	if examID != 0 {
		query = query.Where("exam_id = ?", examID)
	}
	err := query.Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) UpdateFields(q *model.Question, fields map[string]interface{}) error {
	return r.DB.Model(q).Updates(fields).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}
