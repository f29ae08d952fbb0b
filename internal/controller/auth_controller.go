package controller

import (
	"exam_grader_backend/internal/service"
	"exam_grader_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// AuthResponse 注册/登录响应
// swagger:model AuthResponse
type AuthResponse struct {
	Message string `json:"message"`
	service.AuthResult
}

// Register godoc
// @Summary 注册新用户
// @Description 用户名 3-80 位，密码至少 6 位，注册成功直接返回 token
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterReq true "用户注册信息"
// @Success 201 {object} AuthResponse "注册成功"
// @Failure 400 {object} util.ErrorResponse "参数错误或用户名/邮箱已存在"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AuthService.Register(req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, AuthResponse{Message: "User registered successfully", AuthResult: *result})
}

// Login godoc
// @Summary 用户登录
// @Description 使用用户名或邮箱登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginReq true "登录信息"
// @Success 200 {object} AuthResponse "登录成功"
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 401 {object} util.ErrorResponse "凭证无效或账号已停用"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return
	}

	result, err := c.AuthService.Login(req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, AuthResponse{Message: "Login successful", AuthResult: *result})
}

// Profile godoc
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} object "用户信息"
// @Failure 401 {object} util.ErrorResponse "未认证"
// @Failure 404 {object} util.ErrorResponse "用户不存在"
// @Router /api/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetUser(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"user": user})
}
