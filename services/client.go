package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"studysphere/models"
)

// Upgrader WebSocket升级器
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有跨域请求
	},
}

// WebSocketMessage 客户端与服务端之间的消息信封
type WebSocketMessage struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// typingNotice 正在输入通知
type typingNotice struct {
	SenderID   int `json:"senderId"`
	ReceiverID int `json:"receiverId"`
}

// Client 表示一个WebSocket客户端
type Client struct {
	ID   int
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient 创建客户端
func NewClient(userID int, conn *websocket.Conn, buffer int) *Client {
	return &Client{ID: userID, Conn: conn, Send: make(chan []byte, buffer)}
}

// WritePump 将消息从通道发送到WebSocket连接
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// 通道已关闭
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 每条消息一个帧，客户端按帧解析JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump 从WebSocket连接读取消息，连接断开时注销客户端
func (c *Client) ReadPump(wsManager *WebSocketManager, messageService *MessageService) {
	defer func() {
		wsManager.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("错误: %v", err)
			}
			break
		}

		// 按顺序处理，保证同一连接发出的消息顺序不变
		c.handleReceivedMessage(message, wsManager, messageService)
	}
}

// handleReceivedMessage 处理接收到的消息
func (c *Client) handleReceivedMessage(message []byte, wsManager *WebSocketManager, messageService *MessageService) {
	var wsMsg WebSocketMessage
	if err := json.Unmarshal(message, &wsMsg); err != nil {
		log.Printf("解析消息失败: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch wsMsg.Type {
	case EventMessage:
		var req models.MessageRequest
		if err := json.Unmarshal(wsMsg.Content, &req); err != nil {
			log.Printf("解析聊天消息失败: %v", err)
			return
		}
		// 保存成功后由通知器推送给双方
		if _, err := messageService.AppendMessage(ctx, c.ID, req.ReceiverID, req.Text); err != nil {
			c.replyError(wsManager, err)
		}

	case EventTyping:
		var notice typingNotice
		if err := json.Unmarshal(wsMsg.Content, &notice); err != nil {
			log.Printf("解析typing消息失败: %v", err)
			return
		}
		if notice.ReceiverID <= 0 || notice.ReceiverID == c.ID {
			return
		}
		notice.SenderID = c.ID
		wsManager.NotifyChange(ctx, ChangeEvent{
			Type:       EventTyping,
			Payload:    notice,
			Recipients: []int{notice.ReceiverID},
			Timestamp:  time.Now().UTC(),
		})

	default:
		log.Printf("未知消息类型: %s", wsMsg.Type)
	}
}

// replyError 只回复给当前连接
func (c *Client) replyError(wsManager *WebSocketManager, err error) {
	content, _ := json.Marshal(map[string]string{"error": err.Error()})
	msg, _ := json.Marshal(WebSocketMessage{
		Type:      "error",
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	wsManager.SendToUser(c.ID, msg)
}
