package model

// TestPaper 管理员上传的 PDF 试卷，暂不解析题目
type TestPaper struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	PDFFilename string `gorm:"size:255;not null" json:"pdf_filename"`
	PDFPath     string `gorm:"size:500;not null" json:"pdf_path"`
	FileSize    int64  `json:"file_size"`
	CreatedBy   uint   `gorm:"index;not null" json:"created_by"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
	IsParsed    bool   `gorm:"not null;default:false" json:"is_parsed"`
}

func (TestPaper) TableName() string {
	return "test_papers"
}
