package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gangnaeng/backend/internal/planner"
	"gangnaeng/backend/pkg/redis"
)

// PlannerStatus 规划会话状态
type PlannerStatus string

const (
	StatusIdle       PlannerStatus = "idle"
	StatusParsing    PlannerStatus = "parsing"
	StatusConfirming PlannerStatus = "confirming"
	StatusGenerating PlannerStatus = "generating"
	StatusComplete   PlannerStatus = "complete"
	StatusError      PlannerStatus = "error"
)

// PlannerSession 单个用户的规划会话
//
// Schedules 保存生成的全部候选；筛选只改变 Filters，
// 展示结果在读取时由 FilterSchedules 现算。
type PlannerSession struct {
	UserID      string                  `json:"user_id"`
	Status      PlannerStatus           `json:"status"`
	Query       string                  `json:"query,omitempty"`
	Matches     []planner.CourseMatch   `json:"matches,omitempty"`
	Unmatched   []string                `json:"unmatched,omitempty"`
	CourseCodes []string                `json:"course_codes,omitempty"`
	Schedules   []planner.Schedule      `json:"schedules,omitempty"`
	Filters     planner.ScheduleFilters `json:"filters"`
	Error       string                  `json:"error,omitempty"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// findSchedule 在全部候选中按 ID 查找
func (s *PlannerSession) findSchedule(id string) (planner.Schedule, bool) {
	for _, sch := range s.Schedules {
		if sch.ID == id {
			return sch, true
		}
	}
	return planner.Schedule{}, false
}

// ErrSessionNotFound 会话不存在（视为 idle）
var ErrSessionNotFound = errors.New("规划会话不存在")

// SessionStore 规划会话存储
type SessionStore interface {
	Get(ctx context.Context, userID string) (*PlannerSession, error)
	Save(ctx context.Context, sess *PlannerSession) error
	Delete(ctx context.Context, userID string) error
}

// ── Redis 实现 ──

// jsonStore pkg/redis.Client 中会话存储用到的方法
type jsonStore interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

const sessionKeyPrefix = "planner:session:"

type redisSessionStore struct {
	kv  jsonStore
	ttl time.Duration
}

// NewRedisSessionStore 基于 Redis 的会话存储，每次写入刷新 TTL
func NewRedisSessionStore(kv jsonStore, ttl time.Duration) SessionStore {
	return &redisSessionStore{kv: kv, ttl: ttl}
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (*PlannerSession, error) {
	var sess PlannerSession
	if err := s.kv.GetJSON(ctx, sessionKeyPrefix+userID, &sess); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *redisSessionStore) Save(ctx context.Context, sess *PlannerSession) error {
	return s.kv.SetJSON(ctx, sessionKeyPrefix+sess.UserID, sess, s.ttl)
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, sessionKeyPrefix+userID)
}

// ── 内存实现 ──

type memoryEntry struct {
	sess      PlannerSession
	expiresAt time.Time
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionStore 进程内会话存储（Redis 不可用时使用，重启即丢失）
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memorySessionStore) Get(_ context.Context, userID string) (*PlannerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, userID)
		return nil, ErrSessionNotFound
	}
	sess := e.sess
	return &sess, nil
}

func (s *memorySessionStore) Save(_ context.Context, sess *PlannerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sess.UserID] = memoryEntry{sess: *sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}

// ── 降级包装 ──

type fallbackSessionStore struct {
	primary  SessionStore
	fallback SessionStore
	logger   *zap.Logger
}

// NewFallbackSessionStore primary 出错（非 ErrSessionNotFound）时降级到 fallback，
// 与 Token 黑名单、限流在 Redis 故障时的放行策略一致
func NewFallbackSessionStore(primary, fallback SessionStore, logger *zap.Logger) SessionStore {
	return &fallbackSessionStore{primary: primary, fallback: fallback, logger: logger}
}

func (s *fallbackSessionStore) Get(ctx context.Context, userID string) (*PlannerSession, error) {
	sess, err := s.primary.Get(ctx, userID)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, ErrSessionNotFound):
		// 降级期间写入内存的会话
		return s.fallback.Get(ctx, userID)
	default:
		s.logger.Warn("会话存储读取失败，降级到内存", zap.String("user_id", userID), zap.Error(err))
		return s.fallback.Get(ctx, userID)
	}
}

func (s *fallbackSessionStore) Save(ctx context.Context, sess *PlannerSession) error {
	if err := s.primary.Save(ctx, sess); err != nil {
		s.logger.Warn("会话存储写入失败，降级到内存", zap.String("user_id", sess.UserID), zap.Error(err))
		return s.fallback.Save(ctx, sess)
	}
	// 清理降级期间写入内存的旧副本
	_ = s.fallback.Delete(ctx, sess.UserID)
	return nil
}

func (s *fallbackSessionStore) Delete(ctx context.Context, userID string) error {
	_ = s.fallback.Delete(ctx, userID)
	if err := s.primary.Delete(ctx, userID); err != nil {
		s.logger.Warn("会话存储删除失败", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
