package controller

import (
	"exam_engine_backend/internal/service"
	"exam_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary 获取测验统计
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/analytics [get]
func (c *AnalyticsController) GetQuizAnalytics(ctx *gin.Context) {
	analytics, err := c.Service.GetQuizAnalytics(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}
