package models

import "time"

// Message 私信模型，创建后不可修改
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID   int       `json:"senderId" gorm:"not null;index"`
	ReceiverID int       `json:"receiverId" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index;precision:6"`
}

// MessageRequest 发送消息请求模型
type MessageRequest struct {
	ReceiverID int    `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// NoMessagesPreview 会话还没有消息时的预览文本
const NoMessagesPreview = "No messages yet"

// Conversation 会话列表条目
type Conversation struct {
	Partner     User       `json:"partner"`
	LastMessage string     `json:"lastMessage"`
	LastAt      *time.Time `json:"lastAt,omitempty"`
}
