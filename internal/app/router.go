package app

import (
	"exam_grader_backend/docs"
	"exam_grader_backend/internal/config"
	"exam_grader_backend/internal/middleware"
	"exam_grader_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.user))
	{
		a.registerUserRoutes(authGroup, c)

		// 3. 管理员路由
		admin := authGroup.Group("")
		admin.Use(middleware.AdminMiddleware())
		a.registerAdminRoutes(admin, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/diagrams/:filename", c.upload.ServeDiagram)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)

	rg.GET("/exams", c.exam.ListExams)
	rg.GET("/exams/:id", c.exam.GetExam)
	rg.GET("/exams/:id/questions", c.exam.GetExamQuestions)

	rg.POST("/start-exam/:examId", c.attempt.StartExam)
	rg.POST("/submit-exam/:attemptId", c.attempt.SubmitExam)
	rg.POST("/submit-graded-exam/:examId", c.attempt.SubmitGradedExam)
	rg.GET("/exam-attempts", c.attempt.ListAttempts)
	rg.GET("/exam-attempts/:id", c.attempt.GetAttempt)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/exams", c.exam.CreateExam)
	rg.PATCH("/exams/:id", c.exam.UpdateExam)
	rg.DELETE("/exams/:id", c.exam.DeleteExam)
	rg.PATCH("/exams/:id/toggle", c.exam.ToggleExam)

	rg.GET("/questions", c.question.ListQuestions)
	rg.POST("/questions", c.question.AddQuestions)
	rg.GET("/questions/:id", c.question.GetQuestion)
	rg.PATCH("/questions/:id", c.question.UpdateQuestion)
	rg.DELETE("/questions/:id", c.question.DeleteQuestion)

	rg.POST("/diagrams/upload", c.upload.UploadDiagram)

	// 管理后台
	admin := rg.Group("/admin")
	{
		admin.GET("/exams", c.exam.ListExams)
		admin.GET("/exams/:id", c.exam.GetExam)
		admin.POST("/exams", c.exam.CreateExam)
		admin.PATCH("/exams/:id", c.exam.UpdateExam)
		admin.DELETE("/exams/:id", c.exam.DeleteExam)
		admin.PATCH("/exams/:id/toggle", c.exam.ToggleExam)

		admin.POST("/upload-diagram", c.upload.UploadDiagram)

		admin.POST("/tests", c.upload.UploadTest)
		admin.GET("/tests", c.upload.ListTests)
		admin.GET("/tests/:id", c.upload.GetTest)
		admin.DELETE("/tests/:id", c.upload.DeleteTest)
	}
}
