package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"studysphere/middleware"
	"studysphere/models"
)

// Session 匿名会话
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// SessionService 匿名会话的签发与注销
type SessionService struct {
	users *UserService
	rdb   *redis.Client
	ttl   time.Duration
}

// NewSessionService 创建会话服务
func NewSessionService(users *UserService, rdb *redis.Client, ttl time.Duration) *SessionService {
	return &SessionService{users: users, rdb: rdb, ttl: ttl}
}

// Open 签发匿名会话。未指定用户时使用ID最小的用户。
func (s *SessionService) Open(ctx context.Context, userID *int) (*Session, error) {
	var user *models.User
	if userID != nil {
		u, err := s.users.GetUser(ctx, *userID)
		if err != nil {
			return nil, err
		}
		user = u
	} else {
		users, err := s.users.GetUsers(ctx)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, ErrUserNotFound
		}
		user = &users[0]
	}

	token, expiresAt, err := middleware.GenerateToken(user.ID, uuid.NewString(), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt.UTC(), User: *user}, nil
}

// Close 注销会话，令牌在过期前都会被拒绝
func (s *SessionService) Close(ctx context.Context, token string) error {
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("%w: 令牌缺少会话信息", ErrValidation)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, middleware.RevokedKeyPrefix+claims.ID, 1, ttl).Err(); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}
