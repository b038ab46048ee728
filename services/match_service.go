package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"studysphere/config"
	"studysphere/matcher"
	"studysphere/models"
)

// MatchResult 推荐列表中的一项
type MatchResult struct {
	User      models.User       `json:"user"`
	Score     int               `json:"score"`
	Breakdown matcher.Breakdown `json:"breakdown"`
	BestMatch *models.Subject   `json:"bestMatch,omitempty"`
	NeedsHelp []string          `json:"needsHelp"`
	CanHelp   []string          `json:"canHelp"`
}

// MatchService 学习伙伴推荐，对同一快照的结果做缓存
type MatchService struct {
	users *UserService
	rdb   *redis.Client
}

// NewMatchService 创建推荐服务
func NewMatchService(users *UserService, rdb *redis.Client) *MatchService {
	return &MatchService{users: users, rdb: rdb}
}

// FindPartners 为请求者筛选并排序候选人。
// 先读取快照版本再读取用户列表，写入会推进版本，因此缓存不会返回旧快照的结果。
func (s *MatchService) FindPartners(ctx context.Context, requesterID int, f matcher.Filter) ([]MatchResult, error) {
	f = f.Effective()

	version, err := s.users.SnapshotVersion(ctx)
	if err != nil {
		log.Printf("读取快照版本失败，跳过缓存: %v", err)
		version = -1
	}
	key := fmt.Sprintf("studysphere:match:%d:%d:%s", requesterID, version, f.Key())

	if version >= 0 {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var results []MatchResult
			if err := json.Unmarshal(cached, &results); err == nil {
				matchRequests.WithLabelValues("hit").Inc()
				return results, nil
			}
		}
	}
	matchRequests.WithLabelValues("miss").Inc()

	pool, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	requester, ok := findUser(pool, requesterID)
	if !ok {
		return nil, ErrUserNotFound
	}

	matches := matcher.Rank(requester, pool, f)
	results := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, toMatchResult(requester, m))
	}

	if version >= 0 {
		if data, err := json.Marshal(results); err == nil {
			ttl := time.Duration(config.AppConfig.CacheExpiration) * time.Second
			s.rdb.Set(ctx, key, data, ttl)
		}
	}
	return results, nil
}

func toMatchResult(requester models.User, m matcher.Match) MatchResult {
	r := MatchResult{
		User:      m.User,
		Score:     m.Score,
		Breakdown: m.Breakdown,
		NeedsHelp: []string{},
		CanHelp:   []string{},
	}
	if id, ok := matcher.BestMatch(requester.Profile, m.User.Profile); ok {
		r.BestMatch = &models.Subject{ID: id, Name: models.SubjectName(id)}
	}
	for _, s := range m.User.Profile.Subjects {
		name := models.SubjectName(s.SubjectID)
		switch s.Role {
		case models.NeedsHelp:
			r.NeedsHelp = append(r.NeedsHelp, name)
		case models.CanHelp:
			r.CanHelp = append(r.CanHelp, name)
		}
	}
	return r
}

func findUser(users []models.User, id int) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
