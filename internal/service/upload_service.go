package service

import (
	"context"
	"errors"
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"exam_grader_backend/pkg/logger"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UploadService struct {
	Storage  *StorageService
	TestRepo *repository.TestPaperRepository
	MaxBytes int64
}

func NewUploadService(storage *StorageService, testRepo *repository.TestPaperRepository, maxUploadMB int64) *UploadService {
	if maxUploadMB <= 0 {
		maxUploadMB = 16
	}
	return &UploadService{Storage: storage, TestRepo: testRepo, MaxBytes: maxUploadMB << 20}
}

type DiagramUpload struct {
	DiagramPath string `json:"diagram_path"`
	Filename    string `json:"filename"`
}

type TestPaperReq struct {
	Title       string
	Description string
}

// storedName 生成 <uuid-hex>.<ext>
func storedName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

func (s *UploadService) checkSize(fh *multipart.FileHeader) error {
	if fh.Size > s.MaxBytes {
		return util.NewValidationError("File too large. Maximum size is %dMB", s.MaxBytes>>20)
	}
	return nil
}

// UploadDiagram 保存题目示意图，返回可公开访问的路径
func (s *UploadService) UploadDiagram(ctx context.Context, fh *multipart.FileHeader) (*DiagramUpload, error) {
	if fh == nil || fh.Filename == "" {
		return nil, util.ErrNoFile
	}
	if !util.HasAllowedExtension(fh.Filename, util.AllowedDiagramExtensions) {
		return nil, util.NewValidationError("Invalid file type. Allowed: %s", strings.Join(util.AllowedDiagramExtensions, ", "))
	}
	if err := s.checkSize(fh); err != nil {
		return nil, err
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext := util.FileExtension(fh.Filename)
	name := storedName(ext)
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, err
	}
	if !util.IsImage(mtype.String()) {
		return nil, util.NewValidationError("File content is not a valid image")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if _, err := s.Storage.Upload(ctx, path.Join(util.DiagramDir, name), file, fh.Size, mtype.String()); err != nil {
		return nil, err
	}

	logger.Log.Info("Diagram uploaded", zap.String("filename", name), zap.Int64("size", fh.Size))
	return &DiagramUpload{
		DiagramPath: "/api/diagrams/" + name,
		Filename:    name,
	}, nil
}

// OpenDiagram 读取示意图内容并识别 MIME 类型
func (s *UploadService) OpenDiagram(ctx context.Context, filename string) ([]byte, string, error) {
	if filename == "" || filename != path.Base(filename) || strings.HasPrefix(filename, ".") {
		return nil, "", util.ErrFileNotFound
	}
	if !util.HasAllowedExtension(filename, util.AllowedDiagramExtensions) {
		return nil, "", util.ErrFileNotFound
	}

	rc, err := s.Storage.Open(ctx, path.Join(util.DiagramDir, filename))
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.MaxBytes))
	if err != nil {
		return nil, "", err
	}
	return data, mimetype.Detect(data).String(), nil
}

// UploadTestPaper 保存 PDF 试卷，内容必须被识别为 application/pdf
func (s *UploadService) UploadTestPaper(ctx context.Context, creatorID uint, req TestPaperReq, fh *multipart.FileHeader) (*model.TestPaper, error) {
	if fh == nil || fh.Filename == "" {
		return nil, util.ErrNoFile
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.NewValidationError("Title is required")
	}
	if !util.HasAllowedExtension(fh.Filename, util.AllowedTestExtensions) {
		return nil, util.NewValidationError("Only PDF files are allowed")
	}
	if err := s.checkSize(fh); err != nil {
		return nil, err
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{util.MimePDF}); err != nil {
		return nil, util.NewValidationError("File content is not a valid PDF")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := path.Join(util.TestDir, storedName("pdf"))
	if _, err := s.Storage.Upload(ctx, key, file, fh.Size, util.MimePDF); err != nil {
		return nil, err
	}

	paper := &model.TestPaper{
		Title:       title,
		Description: req.Description,
		PDFFilename: fh.Filename,
		PDFPath:     key,
		FileSize:    fh.Size,
		CreatedBy:   creatorID,
		IsActive:    true,
	}
	if err := s.TestRepo.Create(paper); err != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned test file", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	logger.Log.Info("Test paper uploaded",
		zap.Uint("testID", paper.ID),
		zap.String("filename", fh.Filename),
		zap.Int64("size", fh.Size))
	return paper, nil
}

func (s *UploadService) ListTestPapers() ([]model.TestPaper, error) {
	return s.TestRepo.List()
}

func (s *UploadService) GetTestPaper(id uint) (*model.TestPaper, error) {
	paper, err := s.TestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestPaperNotFound
		}
		return nil, err
	}
	return paper, nil
}

// DeleteTestPaper 先删记录再删文件，文件删除失败只记日志
func (s *UploadService) DeleteTestPaper(ctx context.Context, id uint) error {
	paper, err := s.GetTestPaper(id)
	if err != nil {
		return err
	}
	if err := s.TestRepo.Delete(id); err != nil {
		return err
	}
	if err := s.Storage.Delete(ctx, paper.PDFPath); err != nil {
		logger.Log.Warn("Failed to delete test file",
			zap.Uint("testID", id),
			zap.String("key", paper.PDFPath),
			zap.Error(err))
	}
	return nil
}

// TestPaperURL 试卷文件的访问地址
func (s *UploadService) TestPaperURL(p *model.TestPaper) string {
	return s.Storage.GetURL(p.PDFPath)
}
