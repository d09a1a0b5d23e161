package controller

import (
	"exam_engine_backend/internal/service"
	"exam_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	Service *service.AttemptService
}

func NewGradeController(svc *service.AttemptService) *GradeController {
	return &GradeController{Service: svc}
}

// @Summary 获取待批改列表
// @Tags 人工批改
// @Produce json
// @Security BearerAuth
// @Param quizId query string false "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/pending-review [get]
func (c *GradeController) ListPendingReview(ctx *gin.Context) {
	attempts, err := c.Service.ListPendingReview(ctx.Query("quizId"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type gradeRequest struct {
	Scores []service.AnswerScore `json:"scores" binding:"required,min=1"`
}

// @Summary 批改答卷
// @Tags 人工批改
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "答题ID"
// @Param body body gradeRequest true "给分列表"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/grade [post]
func (c *GradeController) GradeAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req gradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.GradeAttempt(user.UserID, ctx.Param("id"), req.Scores)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
