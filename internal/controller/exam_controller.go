package controller

import (
	"exam_grader_backend/internal/service"
	"exam_grader_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// ListExams godoc
// @Summary 考试列表
// @Description 普通用户只能看到已启用的考试；include_attempts=true 时附带最近一次作答
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   status query string false "active 只返回启用的考试"
// @Param   include_attempts query bool false "是否附带作答信息"
// @Success 200 {object} object "{exams: [...]}"
// @Failure 401 {object} util.ErrorResponse "未认证"
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	q := service.ListExamsQuery{
		Status:          ctx.Query("status"),
		IncludeAttempts: ctx.Query("include_attempts") == "true",
	}

	exams, withAttempts, err := c.ExamService.ListExams(user, q)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if q.IncludeAttempts {
		util.Success(ctx, gin.H{"exams": withAttempts})
		return
	}
	util.Success(ctx, gin.H{"exams": exams})
}

// GetExam godoc
// @Summary 考试详情
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} object "{exam: {...}}"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrExamNotFound)
	if !ok {
		return
	}

	exam, err := c.ExamService.GetExam(util.CurrentUser(ctx), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"exam": exam})
}

// GetExamQuestions godoc
// @Summary 考试题目
// @Description 返回固定 50 题布局（前 25 题 English，后 25 题 Maths），不含答案
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} object "{exam, questions}"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/exams/{id}/questions [get]
func (c *ExamController) GetExamQuestions(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrExamNotFound)
	if !ok {
		return
	}

	exam, questions, err := c.ExamService.GetExamQuestions(util.CurrentUser(ctx), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"exam": exam, "questions": questions})
}

// CreateExam godoc
// @Summary 创建考试（管理员）
// @Description answers 必须恰好 50 个，每项为 A/B/C/D
// @Tags 考试管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateExamReq true "考试信息"
// @Success 201 {object} object "{message, exam}"
// @Failure 400 {object} util.ErrorResponse "参数错误"
// @Failure 403 {object} util.ErrorResponse "需要管理员权限"
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req service.CreateExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	exam, err := c.ExamService.CreateExam(util.CurrentUser(ctx), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"message": "Exam created successfully",
		"exam":    service.NewExamView(exam, true),
	})
}

// UpdateExam godoc
// @Summary 更新考试（管理员）
// @Description 部分更新，返回实际修改的字段
// @Tags 考试管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Param   body body service.UpdateExamReq true "更新字段"
// @Success 200 {object} object "{message, updated_fields, exam}"
// @Failure 400 {object} util.ErrorResponse "参数错误"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/exams/{id} [patch]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrExamNotFound)
	if !ok {
		return
	}

	var req service.UpdateExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	exam, updated, err := c.ExamService.UpdateExam(id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"message":        "Exam updated successfully",
		"updated_fields": updated,
		"exam":           service.NewExamView(exam, true),
	})
}

// ToggleExam godoc
// @Summary 切换考试启用状态（管理员）
// @Tags 考试管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} object "{message, exam}"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/exams/{id}/toggle [patch]
func (c *ExamController) ToggleExam(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrExamNotFound)
	if !ok {
		return
	}

	exam, err := c.ExamService.ToggleExam(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	state := "deactivated"
	if exam.IsActive {
		state = "activated"
	}
	util.Success(ctx, gin.H{
		"message": "Exam " + state + " successfully",
		"exam":    service.NewExamView(exam, true),
	})
}

// DeleteExam godoc
// @Summary 删除考试（管理员）
// @Description 同时删除该考试的全部作答记录
// @Tags 考试管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "考试ID"
// @Success 200 {object} util.MessageResponse "删除成功"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrExamNotFound)
	if !ok {
		return
	}

	if err := c.ExamService.DeleteExam(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.MessageResponse{Message: "Exam deleted successfully"})
}
