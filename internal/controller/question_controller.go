package controller

import (
	"exam_grader_backend/internal/service"
	"exam_grader_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionController 旧版逐题管理接口
type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// ListQuestions godoc
// @Summary 题目列表（管理员）
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   exam_id query int false "按考试过滤"
// @Success 200 {object} object "{questions, count, exam}"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var examID uint
	if raw := ctx.Query("exam_id"); raw != "" {
		if examID = util.MustParseUint(raw); examID == 0 {
			util.NotFound(ctx, util.ErrExamNotFound.Error())
			return
		}
	}

	questions, exam, err := c.QuestionService.ListQuestions(examID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	resp := gin.H{"questions": questions, "count": len(questions)}
	if exam != nil {
		resp["exam"] = service.NewExamView(exam, true)
	}
	util.Success(ctx, resp)
}

// AddQuestions godoc
// @Summary 批量添加题目（管理员）
// @Description 缺少 question_text 的条目会被跳过
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AddQuestionsReq true "题目"
// @Success 201 {object} object "{message, questions}"
// @Failure 400 {object} util.ErrorResponse "参数错误"
// @Failure 404 {object} util.ErrorResponse "考试不存在"
// @Router /api/questions [post]
func (c *QuestionController) AddQuestions(ctx *gin.Context) {
	var req service.AddQuestionsReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	questions, err := c.QuestionService.AddQuestions(req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"message":   "Questions added successfully",
		"questions": questions,
		"count":     len(questions),
	})
}

// GetQuestion godoc
// @Summary 题目详情（管理员）
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} object "{question}"
// @Failure 404 {object} util.ErrorResponse "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrQuestionNotFound)
	if !ok {
		return
	}

	q, err := c.QuestionService.GetQuestion(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"question": q})
}

// UpdateQuestion godoc
// @Summary 更新题目（管理员）
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body service.UpdateQuestionReq true "更新字段"
// @Success 200 {object} object "{message, updated_fields, question}"
// @Failure 400 {object} util.ErrorResponse "没有可更新的字段"
// @Failure 404 {object} util.ErrorResponse "题目不存在"
// @Router /api/questions/{id} [patch]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrQuestionNotFound)
	if !ok {
		return
	}

	var req service.UpdateQuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	q, updated, err := c.QuestionService.UpdateQuestion(id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"message":        "Question updated successfully",
		"updated_fields": updated,
		"question":       q,
	})
}

// DeleteQuestion godoc
// @Summary 删除题目（管理员）
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.MessageResponse "删除成功"
// @Failure 404 {object} util.ErrorResponse "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := idParam(ctx, "id", util.ErrQuestionNotFound)
	if !ok {
		return
	}

	if err := c.QuestionService.DeleteQuestion(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.MessageResponse{Message: "Question deleted successfully"})
}
