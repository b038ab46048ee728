package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studysphere/config"
	"studysphere/models"
)

const (
	// Redis键名
	keySnapshotVersion = "studysphere:snapshot:users"
	keyUserPrefix      = "studysphere:user:"
)

// UserUpdate 用户合并更新，空字符串和 nil 档案表示保持原值
type UserUpdate struct {
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	AvatarURL string          `json:"avatarUrl"`
	Profile   *models.Profile `json:"profile"`
}

// UserService 用户档案存储
type UserService struct {
	db       *gorm.DB
	rdb      *redis.Client
	notifier ChangeNotifier
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, rdb *redis.Client, notifier ChangeNotifier) *UserService {
	return &UserService{
		db:       db,
		rdb:      rdb,
		notifier: notifierOrNoop(notifier),
	}
}

// GetUsers 返回当前全部用户的快照，按ID升序
func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser 根据ID获取用户，优先读取缓存
func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	key := fmt.Sprintf("%s%d", keyUserPrefix, id)

	userJSON, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		// 缓存命中
		if err := json.Unmarshal([]byte(userJSON), &user); err == nil {
			return &user, nil
		}
	}

	// 从数据库获取
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 更新缓存
	userBytes, _ := json.Marshal(user)
	s.rdb.Set(ctx, key, userBytes, time.Duration(config.AppConfig.CacheExpiration)*time.Second)

	return &user, nil
}

// SnapshotVersion 当前用户快照版本，每次写入递增
func (s *UserService) SnapshotVersion(ctx context.Context) (int64, error) {
	v, err := s.rdb.Get(ctx, keySnapshotVersion).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SaveUser 按ID合并写入用户。不存在时创建（必须提供姓名），存在时只覆盖非空字段。
func (s *UserService) SaveUser(ctx context.Context, id int, upd UserUpdate) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: 无效的用户ID", ErrValidation)
	}
	if upd.Profile != nil {
		if err := upd.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return s.save(ctx, id, func(user *models.User, creating bool) error {
		if creating {
			if upd.Name == "" {
				return fmt.Errorf("%w: 新用户必须提供姓名", ErrValidation)
			}
			*user = models.User{ID: id}
		}
		if upd.Name != "" {
			user.Name = upd.Name
		}
		if upd.Email != "" {
			user.Email = upd.Email
		}
		if upd.AvatarURL != "" {
			user.AvatarURL = upd.AvatarURL
		}
		if upd.Profile != nil {
			user.Profile = *upd.Profile
		}
		return nil
	})
}

// save 在行锁内读取用户、应用修改并写回
func (s *UserService) save(ctx context.Context, id int, apply func(user *models.User, creating bool) error) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
		creating := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !creating {
			return err
		}
		if err := apply(&user, creating); err != nil {
			return err
		}
		if creating {
			return tx.Create(&user).Error
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.afterWrite(ctx, &user)
	return &user, nil
}

// UpdateProfile 整体替换用户档案
func (s *UserService) UpdateProfile(ctx context.Context, id int, profile models.Profile) (*models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.SaveUser(ctx, id, UserUpdate{Profile: &profile})
}

// ApplyInterest 选择科目角色（再次选择相同角色即取消）
func (s *UserService) ApplyInterest(ctx context.Context, id, subjectID int, role models.SubjectRole) (*models.User, error) {
	if !models.SubjectExists(subjectID) {
		return nil, fmt.Errorf("%w: 科目不存在 %d", ErrValidation, subjectID)
	}
	return s.editProfile(ctx, id, func(p *models.Profile) {
		p.Subjects = models.ApplyInterest(p.Subjects, subjectID, role)
	})
}

// ToggleMethod 切换偏好的学习方式
func (s *UserService) ToggleMethod(ctx context.Context, id int, method models.StudyMethod) (*models.User, error) {
	return s.editProfile(ctx, id, func(p *models.Profile) {
		p.PreferredMethods = models.ToggleMethod(p.PreferredMethods, method)
	})
}

// ToggleSlot 切换空闲时段
func (s *UserService) ToggleSlot(ctx context.Context, id int, slot string) (*models.User, error) {
	if !models.IsKnownSlot(slot) {
		return nil, fmt.Errorf("%w: 未知的时段 %q", ErrValidation, slot)
	}
	return s.editProfile(ctx, id, func(p *models.Profile) {
		p.Availability = models.ToggleSlot(p.Availability, slot)
	})
}

// editProfile 在同一事务内读取最新档案并修改，并发编辑不会互相覆盖
func (s *UserService) editProfile(ctx context.Context, id int, edit func(p *models.Profile)) (*models.User, error) {
	return s.save(ctx, id, func(user *models.User, creating bool) error {
		if creating {
			return ErrUserNotFound
		}
		edit(&user.Profile)
		if err := user.Profile.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil
	})
}

// afterWrite 清除缓存、推进快照版本并通知客户端
func (s *UserService) afterWrite(ctx context.Context, user *models.User) {
	s.rdb.Del(ctx, fmt.Sprintf("%s%d", keyUserPrefix, user.ID))
	if err := s.rdb.Incr(ctx, keySnapshotVersion).Err(); err != nil {
		log.Printf("更新用户快照版本失败: %v", err)
	}
	s.notifier.NotifyChange(ctx, ChangeEvent{
		Type:      EventUsersChanged,
		Payload:   map[string]int{"userId": user.ID},
		Timestamp: time.Now().UTC(),
	})
}
