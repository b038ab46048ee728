package services

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"studysphere/config"
	"studysphere/models"
)

// recordingNotifier 记录收到的变更事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) NotifyChange(_ context.Context, event ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	rdb      *redis.Client
	redis    *miniredis.Miniredis
	notifier *recordingNotifier
	users    *UserService
	groups   *GroupService
	messages *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig.CacheExpiration = 300
	config.AppConfig.WhiteboardMaxWidth = 64
	config.AppConfig.WhiteboardMaxHeight = 64
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.MaxConnections = 10

	db, err := OpenDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", 1, 1)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	notifier := &recordingNotifier{}
	users := NewUserService(db, rdb, notifier)
	return &testEnv{
		db:       db,
		rdb:      rdb,
		redis:    mr,
		notifier: notifier,
		users:    users,
		groups:   NewGroupService(db, users, notifier),
		messages: NewMessageService(db, users, notifier),
	}
}

// seed 写入演示数据：1 Aisha，2 Rohan，3 Priya，4 Vikram，群组101、102
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	if err := SeedDemoData(context.Background(), e.db); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (e *testEnv) createUser(t *testing.T, id int, name string, profile models.Profile) *models.User {
	t.Helper()
	u, err := e.users.SaveUser(context.Background(), id, UserUpdate{Name: name, Profile: &profile})
	if err != nil {
		t.Fatalf("create user %d: %v", id, err)
	}
	return u
}
