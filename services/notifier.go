package services

import (
	"context"
	"time"
)

// 变更事件类型
const (
	EventUsersChanged  = "users_changed"
	EventGroupsChanged = "groups_changed"
	EventMessage       = "message"
	EventTyping        = "typing"
)

// ChangeEvent 快照变更通知，客户端收到后重新拉取并重新排序
type ChangeEvent struct {
	Type       string    `json:"type"`
	Payload    any       `json:"payload,omitempty"`
	Recipients []int     `json:"recipients,omitempty"` // 为空表示广播
	Timestamp  time.Time `json:"timestamp"`
}

// ChangeNotifier 变更通知出口
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, event ChangeEvent)
}

// noopNotifier 不推送任何通知
type noopNotifier struct{}

func (noopNotifier) NotifyChange(context.Context, ChangeEvent) {}

func notifierOrNoop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
