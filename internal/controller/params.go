package controller

import (
	"errors"
	"exam_grader_backend/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

// idParam 解析路径中的数字 ID，非法时按资源不存在处理
func idParam(ctx *gin.Context, name string, notFound error) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.NotFound(ctx, notFound.Error())
		return 0, false
	}
	return id, true
}

// answersBody 提交答案的请求体，answers 键为题号字符串 "1".."50"
type answersBody struct {
	Answers map[string]interface{} `json:"answers" swaggertype:"object"`
}

// bindAnswers 空请求体视为未提交答案，交由 service 返回 "Answers are required"
func bindAnswers(ctx *gin.Context, body *answersBody) error {
	if err := ctx.ShouldBindJSON(body); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
