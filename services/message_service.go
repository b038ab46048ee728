package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studysphere/models"
)

// MessageService 私信存储，只追加不修改
type MessageService struct {
	db       *gorm.DB
	users    *UserService
	notifier ChangeNotifier
	clock    *monotonicClock
}

// NewMessageService 创建消息服务
func NewMessageService(db *gorm.DB, users *UserService, notifier ChangeNotifier) *MessageService {
	return &MessageService{
		db:       db,
		users:    users,
		notifier: notifierOrNoop(notifier),
		clock:    newMonotonicClock(),
	}
}

// AppendMessage 追加一条私信，ID和时间戳由服务端分配
func (s *MessageService) AppendMessage(ctx context.Context, senderID, receiverID int, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: 不能给自己发送消息", ErrValidation)
	}
	if _, err := s.users.GetUser(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUser(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  s.clock.Next(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("保存消息失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	messagesAppended.Inc()

	s.notifier.NotifyChange(ctx, ChangeEvent{
		Type:       EventMessage,
		Payload:    msg,
		Recipients: []int{senderID, receiverID},
		Timestamp:  msg.Timestamp,
	})
	return msg, nil
}

// GetMessagesFor 获取与用户相关的全部消息，按时间升序
func (s *MessageService) GetMessagesFor(ctx context.Context, userID int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return normalizeTimes(messages), nil
}

// Conversation 获取两个用户之间的会话（不区分方向），按时间升序
func (s *MessageService) Conversation(ctx context.Context, a, b int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return normalizeTimes(messages), nil
}

// Conversations 获取用户的会话列表：每个其他用户一项，附带最后一条消息。
// 有消息的会话按最近活跃排在前面，其余按用户ID升序。
func (s *MessageService) Conversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.GetMessagesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	last := make(map[int]models.Message)
	for _, m := range messages {
		partner := m.ReceiverID
		if partner == userID {
			partner = m.SenderID
		}
		last[partner] = m
	}

	conversations := make([]models.Conversation, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		c := models.Conversation{Partner: u, LastMessage: models.NoMessagesPreview}
		if m, ok := last[u.ID]; ok {
			at := m.Timestamp
			c.LastMessage = m.Text
			c.LastAt = &at
		}
		conversations = append(conversations, c)
	}

	// users 已按ID升序，稳定排序只需比较时间
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastAt, conversations[j].LastAt
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
	return conversations, nil
}

func normalizeTimes(messages []models.Message) []models.Message {
	for i := range messages {
		messages[i].Timestamp = messages[i].Timestamp.In(time.UTC)
	}
	return messages
}
