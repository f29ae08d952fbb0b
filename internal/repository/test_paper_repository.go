package repository

import (
	"exam_grader_backend/internal/model"

	"gorm.io/gorm"
)

type TestPaperRepository struct {
	DB *gorm.DB
}

func NewTestPaperRepository(db *gorm.DB) *TestPaperRepository {
	return &TestPaperRepository{DB: db}
}

func (r *TestPaperRepository) Create(paper *model.TestPaper) error {
	return r.DB.Create(paper).Error
}

func (r *TestPaperRepository) FindByID(id uint) (*model.TestPaper, error) {
	var paper model.TestPaper
	err := r.DB.First(&paper, id).Error
	return &paper, err
}

func (r *TestPaperRepository) List() ([]model.TestPaper, error) {
	var papers []model.TestPaper
	err := r.DB.Order("created_at desc, id desc").Find(&papers).Error
	return papers, err
}

func (r *TestPaperRepository) Delete(id uint) error {
	return r.DB.Delete(&model.TestPaper{}, id).Error
}
