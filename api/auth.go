package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studysphere/services"
)

// SessionController 匿名会话控制器
type SessionController struct {
	SessionService *services.SessionService
}

// NewSessionController 创建会话控制器
func NewSessionController(sessionService *services.SessionService) *SessionController {
	return &SessionController{
		SessionService: sessionService,
	}
}

// OpenSession 签发匿名会话，可指定以哪个用户身份进入
func (c *SessionController) OpenSession(ctx *gin.Context) {
	var req struct {
		UserID *int `json:"userId"`
	}
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, &req) {
		return
	}

	session, err := c.SessionService.Open(ctx.Request.Context(), req.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

// CloseSession 注销当前会话
func (c *SessionController) CloseSession(ctx *gin.Context) {
	token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	if err := c.SessionService.Close(ctx.Request.Context(), token); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "已退出"})
}
