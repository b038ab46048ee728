package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studysphere/config"
	"studysphere/services"
)

// WebSocketController WebSocket控制器
type WebSocketController struct {
	MessageService *services.MessageService
	WSManager      *services.WebSocketManager
}

// NewWebSocketController 创建WebSocket控制器
func NewWebSocketController(messageService *services.MessageService, wsManager *services.WebSocketManager) *WebSocketController {
	return &WebSocketController{
		MessageService: messageService,
		WSManager:      wsManager,
	}
}

// HandleWebSocket 升级为WebSocket连接，接收变更推送并收发私信
func (c *WebSocketController) HandleWebSocket(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	conn, err := services.Upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade 已经写入了错误响应
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	buffer := config.AppConfig.ChannelBuffSize
	if buffer <= 0 {
		buffer = 256
	}
	client := services.NewClient(userID, conn, buffer)

	if !c.WSManager.RegisterClient(client) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","content":{"error":"服务器已达到最大连接数"}}`))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(c.WSManager, c.MessageService)
}

// GetOnlineUsers 获取在线用户ID列表
func (c *WebSocketController) GetOnlineUsers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"users": c.WSManager.GetOnlineUsers(ctx.Request.Context()),
	})
}
