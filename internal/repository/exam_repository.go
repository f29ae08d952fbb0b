package repository

import (
	"exam_grader_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	return &exam, err
}

// List 按创建时间倒序；onlyActive 为 true 时只返回启用的考试
func (r *ExamRepository) List(onlyActive bool) ([]model.Exam, error) {
	var exams []model.Exam
	query := r.DB.Model(&model.Exam{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at desc, id desc").Find(&exams).Error
	return exams, err
}

// UpdateFields 只更新指定列，避免 bool 零值被忽略
func (r *ExamRepository) UpdateFields(exam *model.Exam, fields map[string]interface{}) error {
	return r.DB.Model(exam).Updates(fields).Error
}

// Delete 同一事务内删除考试及其作答记录、旧版题目
func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Exam{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
