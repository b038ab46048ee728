package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studysphere/middleware"
	"studysphere/models"
	"studysphere/services"
)

// respondError 把服务层错误映射为HTTP状态码
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrGroupNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, models.ErrInvalidEnum), errors.Is(err, models.ErrInvalidProfile):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrPlanGenerationFailed):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Printf("请求处理失败 %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

// currentUserID 从上下文中获取当前会话的用户ID
func currentUserID(ctx *gin.Context) (int, bool) {
	v, exists := ctx.Get(middleware.ContextUserID)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return 0, false
	}
	id, ok := v.(int)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return 0, false
	}
	return id, true
}

// paramID 解析路径中的整数ID
func paramID(ctx *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID: " + ctx.Param(name)})
		return 0, false
	}
	return id, true
}

// bindJSON 解析请求体，失败时直接返回400
func bindJSON(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return false
	}
	return true
}
