package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"studysphere/config"
)

const (
	// Redis键名
	keyOnlineUsers = "studysphere:online_users"
)

// WebSocketManager 管理WebSocket连接，把变更事件推送给客户端。
// 配置了Kafka时事件先经过Kafka，再由每个实例分发给本地连接。
type WebSocketManager struct {
	// 客户端映射表 userID -> client
	clients map[int]*Client
	mu      sync.RWMutex

	rdb   *redis.Client
	kafka *KafkaService

	maxConnections int
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewWebSocketManager 创建WebSocket管理器并订阅变更主题。
// kafka 为 nil 或订阅失败时只在本实例内分发。
func NewWebSocketManager(rdb *redis.Client, kafka *KafkaService) *WebSocketManager {
	m := &WebSocketManager{
		clients:        make(map[int]*Client),
		rdb:            rdb,
		maxConnections: config.AppConfig.MaxConnections,
		stopCh:         make(chan struct{}),
	}
	if kafka != nil {
		if err := kafka.Subscribe(m.dispatch); err != nil {
			log.Printf("订阅变更主题失败，改为本地分发: %v", err)
			kafka.Close()
		} else {
			m.kafka = kafka
		}
	}
	return m
}

// Run 定期清理失效连接，直到 Stop 被调用
func (m *WebSocketManager) Run() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpiredConnections()
		case <-m.stopCh:
			return
		}
	}
}

// Stop 停止管理器并关闭Kafka
func (m *WebSocketManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		if m.kafka != nil {
			if err := m.kafka.Close(); err != nil {
				log.Printf("关闭Kafka服务失败: %v", err)
			}
		}
	})
}

// NotifyChange 发布变更事件。Kafka不可用时直接分发给本实例的连接。
func (m *WebSocketManager) NotifyChange(ctx context.Context, event ChangeEvent) {
	if m.kafka != nil {
		err := m.kafka.PublishChange(event)
		if err == nil {
			return
		}
		log.Printf("发布变更事件失败，改为本地分发: %v", err)
	}
	m.dispatch(event)
}

// dispatch 把事件发送给接收者，没有接收者时广播
func (m *WebSocketManager) dispatch(event ChangeEvent) {
	content, err := json.Marshal(event.Payload)
	if err != nil {
		log.Printf("序列化事件失败: %v", err)
		return
	}
	msg, err := json.Marshal(WebSocketMessage{
		Type:      event.Type,
		Content:   content,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		log.Printf("序列化事件失败: %v", err)
		return
	}

	if len(event.Recipients) == 0 {
		m.broadcastToAll(msg)
		return
	}
	for _, id := range event.Recipients {
		m.SendToUser(id, msg)
	}
}

// RegisterClient 注册一个新的客户端，同一用户的旧连接会被替换
func (m *WebSocketManager) RegisterClient(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, exists := m.clients[client.ID]
	if !exists && len(m.clients) >= m.maxConnections {
		log.Println("达到最大连接数限制，拒绝新连接")
		return false
	}
	if exists {
		m.removeLocked(old)
		old.Conn.Close()
	}

	m.clients[client.ID] = client
	wsConnections.Inc()
	m.rdb.SAdd(context.Background(), keyOnlineUsers, client.ID)

	log.Printf("客户端已连接: %d, 当前连接数: %d", client.ID, len(m.clients))
	return true
}

// UnregisterClient 注销一个客户端
func (m *WebSocketManager) UnregisterClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removeLocked(client) {
		log.Printf("客户端已断开连接: %d, 当前连接数: %d", client.ID, len(m.clients))
	}
}

// removeLocked 移除客户端、关闭发送通道并从在线集合中删除，调用方必须持有写锁
func (m *WebSocketManager) removeLocked(client *Client) bool {
	current, ok := m.clients[client.ID]
	if !ok || current != client {
		return false
	}
	delete(m.clients, client.ID)
	close(client.Send)
	wsConnections.Dec()
	if err := m.rdb.SRem(context.Background(), keyOnlineUsers, client.ID).Err(); err != nil {
		log.Printf("移除在线用户失败: %d, 错误: %v", client.ID, err)
	}
	return true
}

// SendToUser 发送消息给特定用户，发送缓冲区已满时断开该连接
func (m *WebSocketManager) SendToUser(userID int, message []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[userID]
	if !exists {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		m.removeLocked(client)
		return false
	}
}

// broadcastToAll 广播消息给所有连接的客户端
func (m *WebSocketManager) broadcastToAll(message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.Send <- message:
		default:
			// 缓冲区已满，跳过
		}
	}
}

// GetOnlineUsers 获取在线用户ID（所有实例）
func (m *WebSocketManager) GetOnlineUsers(ctx context.Context) []int {
	members, err := m.rdb.SMembers(ctx, keyOnlineUsers).Result()
	if err != nil {
		log.Printf("获取在线用户失败: %v", err)
		return []int{}
	}

	ids := make([]int, 0, len(members))
	for _, s := range members {
		if id, err := strconv.Atoi(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// cleanupExpiredConnections 清理过期的连接
func (m *WebSocketManager) cleanupExpiredConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, client := range m.clients {
		if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
			log.Printf("检测到过期连接: %d, 错误: %v", userID, err)
			m.removeLocked(client)
		}
	}
}

// GetConnectionCount 获取当前实例的连接数
func (m *WebSocketManager) GetConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// KafkaMetrics 返回Kafka指标，未启用时返回 nil
func (m *WebSocketManager) KafkaMetrics() map[string]int64 {
	if m.kafka == nil {
		return nil
	}
	return m.kafka.GetMetrics()
}
