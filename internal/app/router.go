package app

import (
	"exam_engine_backend/docs"
	"exam_engine_backend/internal/config"
	"exam_engine_backend/internal/middleware"
	"exam_engine_backend/internal/model"
	"exam_engine_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/quizzes/:id", c.quiz.GetStudentQuiz)
	rg.GET("/quizzes/:id/attempts", c.attempt.ListAttempts)
	rg.POST("/quizzes/:id/attempts/start", c.attempt.StartAttempt)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.GET("/attempts/:id/results", c.attempt.GetResults)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes", c.quiz.ListQuizzes)
		teacher.GET("/quizzes/:id", c.quiz.GetQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		teacher.POST("/quizzes/:id/publish", c.quiz.PublishQuiz)
		teacher.GET("/quizzes/:id/validate", c.quiz.ValidateQuiz)
		teacher.GET("/quizzes/:id/attempts", c.attempt.ListSubmissions)
		teacher.GET("/quizzes/:id/analytics", c.analytics.GetQuizAnalytics)

		teacher.GET("/attempts/pending-review", c.grade.ListPendingReview)
		teacher.POST("/attempts/:id/grade", c.grade.GradeAttempt)
	}
}
