package controller

import (
	"exam_grader_backend/internal/service"
	"exam_grader_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExamAttemptController struct {
	AttemptService *service.ExamAttemptService
}

func NewExamAttemptController(attemptService *service.ExamAttemptService) *ExamAttemptController {
	return &ExamAttemptController{AttemptService: attemptService}
}

// gradeResponse 评分结果
type gradeResponse struct {
	Message string `json:"message"`
	*service.GradeResult
}

// StartExam godoc
// @Summary 开始考试
// @Description 已有进行中的作答时原样返回（200），否则新建（201）
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   examId path int true "考试ID"
// @Success 200 {object} object "{message, attempt}"
// @Success 201 {object} object "{message, attempt}"
// @Failure 400 {object} util.ErrorResponse "考试未启用"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/start-exam/{examId} [post]
func (c *ExamAttemptController) StartExam(ctx *gin.Context) {
	examID, ok := idParam(ctx, "examId", util.ErrExamNotFound)
	if !ok {
		return
	}
	user := util.CurrentUser(ctx)

	attempt, created, err := c.AttemptService.StartAttempt(ctx.Request.Context(), user.ID, examID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if !created {
		util.Success(ctx, gin.H{
			"message": "Exam already in progress",
			"attempt": service.NewAttemptView(attempt),
		})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Exam started successfully",
		"attempt": service.NewAttemptView(attempt),
	})
}

// SubmitExam godoc
// @Summary 提交作答
// @Description answers 键为题号 "1".."50"，值为 A/B/C/D
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "作答ID"
// @Param   body body answersBody true "答案"
// @Success 200 {object} gradeResponse "评分结果"
// @Failure 400 {object} util.ErrorResponse "作答已完成或考试未配置答案"
// @Failure 404 {object} util.ErrorResponse "作答不存在"
// @Router /api/submit-exam/{attemptId} [post]
func (c *ExamAttemptController) SubmitExam(ctx *gin.Context) {
	attemptID, ok := idParam(ctx, "attemptId", util.ErrAttemptNotFound)
	if !ok {
		return
	}

	var body answersBody
	if err := bindAnswers(ctx, &body); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AttemptService.SubmitAttempt(util.CurrentUser(ctx).ID, attemptID, body.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gradeResponse{Message: "Exam submitted successfully", GradeResult: result})
}

// SubmitGradedExam godoc
// @Summary 一步提交并评分
// @Description 不经过开考流程，直接生成一条已完成的作答
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   examId path int true "考试ID"
// @Param   body body answersBody true "答案"
// @Success 200 {object} gradeResponse "评分结果"
// @Failure 400 {object} util.ErrorResponse "参数错误"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/submit-graded-exam/{examId} [post]
func (c *ExamAttemptController) SubmitGradedExam(ctx *gin.Context) {
	examID, ok := idParam(ctx, "examId", util.ErrExamNotFound)
	if !ok {
		return
	}

	var body answersBody
	if err := bindAnswers(ctx, &body); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AttemptService.GradeExam(util.CurrentUser(ctx).ID, examID, body.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gradeResponse{Message: "Exam graded successfully", GradeResult: result})
}

// ListAttempts godoc
// @Summary 我的作答记录
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} object "{exam_attempts: [...]}"
// @Router /api/exam-attempts [get]
func (c *ExamAttemptController) ListAttempts(ctx *gin.Context) {
	attempts, err := c.AttemptService.ListAttempts(util.CurrentUser(ctx).ID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"exam_attempts": attempts})
}

// GetAttempt godoc
// @Summary 作答详情
// @Description 返回作答、考试及带用户答案的题目；完成后附带标准答案
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "作答ID"
// @Success 200 {object} service.AttemptDetail "作答详情"
// @Failure 404 {object} util.ErrorResponse "作答不存在"
// @Router /api/exam-attempts/{id} [get]
func (c *ExamAttemptController) GetAttempt(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrAttemptNotFound)
	if !ok {
		return
	}

	detail, err := c.AttemptService.GetAttemptDetail(util.CurrentUser(ctx).ID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
