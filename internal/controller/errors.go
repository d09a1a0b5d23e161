package controller

import (
	"errors"

	"exam_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError 业务错误到 HTTP 状态码的统一映射
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound), errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAttemptLimitExceeded):
		util.Conflict(ctx, "已达到最大答题次数")
	case errors.Is(err, util.ErrAttemptCompleted):
		util.Conflict(ctx, "该答题已提交，不能重复提交")
	case errors.Is(err, util.ErrAttemptExpired):
		util.Conflict(ctx, "答题已超时")
	case errors.Is(err, util.ErrAttemptNotCompleted):
		util.BadRequest(ctx, "答题尚未完成")
	case errors.Is(err, util.ErrQuizNotPublished):
		util.BadRequest(ctx, "测验尚未发布")
	default:
		util.LogInternalError(ctx, err)
	}
}
