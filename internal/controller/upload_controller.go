package controller

import (
	"exam_grader_backend/internal/model"
	"exam_grader_backend/internal/service"
	"exam_grader_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

type testPaperView struct {
	model.TestPaper
	URL string `json:"url"`
}

func (c *UploadController) testPaperView(p *model.TestPaper) testPaperView {
	return testPaperView{TestPaper: *p, URL: c.UploadService.TestPaperURL(p)}
}

// UploadDiagram godoc
// @Summary 上传题目示意图（管理员）
// @Description 支持 png/jpg/jpeg/gif/svg/webp
// @Tags 文件上传
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "示意图"
// @Success 201 {object} object "{message, diagram_path, filename}"
// @Failure 400 {object} util.ErrorResponse "文件缺失或类型不支持"
// @Router /api/diagrams/upload [post]
func (c *UploadController) UploadDiagram(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, util.ErrNoFile.Error())
		return
	}

	result, err := c.UploadService.UploadDiagram(ctx.Request.Context(), fh)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"message":      "Diagram uploaded successfully",
		"diagram_path": result.DiagramPath,
		"filename":     result.Filename,
	})
}

// ServeDiagram godoc
// @Summary 获取示意图
// @Tags 文件上传
// @Produce  octet-stream
// @Param   filename path string true "文件名"
// @Success 200 {file} file "图片内容"
// @Failure 404 {object} util.ErrorResponse "文件不存在"
// @Router /api/diagrams/{filename} [get]
func (c *UploadController) ServeDiagram(ctx *gin.Context) {
	data, contentType, err := c.UploadService.OpenDiagram(ctx.Request.Context(), ctx.Param("filename"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, contentType, data)
}

// UploadTest godoc
// @Summary 上传 PDF 试卷（管理员）
// @Tags 试卷管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "PDF 文件"
// @Param   title formData string true "标题"
// @Param   description formData string false "描述"
// @Success 201 {object} object "{message, test}"
// @Failure 400 {object} util.ErrorResponse "文件缺失或不是 PDF"
// @Router /api/admin/tests [post]
func (c *UploadController) UploadTest(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, util.ErrNoFile.Error())
		return
	}

	req := service.TestPaperReq{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
	}
	paper, err := c.UploadService.UploadTestPaper(ctx.Request.Context(), util.CurrentUser(ctx).ID, req, fh)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"message": "Test uploaded successfully",
		"test":    c.testPaperView(paper),
	})
}

// ListTests godoc
// @Summary 试卷列表（管理员）
// @Tags 试卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} object "{tests: [...]}"
// @Router /api/admin/tests [get]
func (c *UploadController) ListTests(ctx *gin.Context) {
	papers, err := c.UploadService.ListTestPapers()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	views := make([]testPaperView, 0, len(papers))
	for i := range papers {
		views = append(views, c.testPaperView(&papers[i]))
	}
	util.Success(ctx, gin.H{"tests": views})
}

// GetTest godoc
// @Summary 试卷详情（管理员）
// @Tags 试卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "试卷ID"
// @Success 200 {object} object "{test}"
// @Failure 404 {object} util.ErrorResponse "试卷不存在"
// @Router /api/admin/tests/{id} [get]
func (c *UploadController) GetTest(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrTestPaperNotFound)
	if !ok {
		return
	}

	paper, err := c.UploadService.GetTestPaper(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"test": c.testPaperView(paper)})
}

// DeleteTest godoc
// @Summary 删除试卷（管理员）
// @Tags 试卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "试卷ID"
// @Success 200 {object} util.MessageResponse "删除成功"
// @Failure 404 {object} util.ErrorResponse "试卷不存在"
// @Router /api/admin/tests/{id} [delete]
func (c *UploadController) DeleteTest(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrTestPaperNotFound)
	if !ok {
		return
	}

	if err := c.UploadService.DeleteTestPaper(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.MessageResponse{Message: "Test deleted successfully"})
}
