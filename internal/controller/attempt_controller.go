package controller

import (
	"strconv"

	"exam_engine_backend/internal/service"
	"exam_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// @Summary 开始答题
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{id}/attempts/start [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Service.StartAttempt(user.UserID, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

type submitRequest struct {
	Answers          []service.SubmittedAnswer `json:"answers" binding:"required"`
	TimeSpentSeconds int                       `json:"timeSpentSeconds"`
}

// @Summary 提交答卷
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "答题ID"
// @Param body body submitRequest true "答案列表"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitAttempt(ctx.Param("id"), user.UserID, req.Answers, req.TimeSpentSeconds)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 查看答题结果
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "答题ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/results [get]
func (c *AttemptController) GetResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResults(ctx.Param("id"), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 查看自己的答题历史
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Service.ListAttempts(user.UserID, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 查看测验的全部答题
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/attempts [get]
func (c *AttemptController) ListSubmissions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.Service.ListSubmissions(ctx.Param("id"), page, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  attempts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
