package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studysphere/models"
	"studysphere/services"
)

// MessageController 私信控制器
type MessageController struct {
	MessageService *services.MessageService
}

// NewMessageController 创建消息控制器
func NewMessageController(messageService *services.MessageService) *MessageController {
	return &MessageController{
		MessageService: messageService,
	}
}

// SendMessage 发送私信
func (c *MessageController) SendMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req models.MessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.MessageService.AppendMessage(ctx.Request.Context(), userID, req.ReceiverID, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}

// GetMessages 获取当前用户收发的全部私信
func (c *MessageController) GetMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	messages, err := c.MessageService.GetMessagesFor(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

// GetConversations 获取会话列表
func (c *MessageController) GetConversations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	conversations, err := c.MessageService.Conversations(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

// GetConversation 获取与某个用户的会话，按时间升序
func (c *MessageController) GetConversation(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	otherID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}

	messages, err := c.MessageService.Conversation(ctx.Request.Context(), userID, otherID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}
