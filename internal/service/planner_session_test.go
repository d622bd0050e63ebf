package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"gangnaeng/backend/internal/planner"
)

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	kv := newMockKV()
	store := NewRedisSessionStore(kv, 2*time.Hour)
	ctx := context.Background()

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("空存储期望 ErrSessionNotFound，实际: %v", err)
	}

	sess := &PlannerSession{
		UserID:    "u1",
		Status:    StatusComplete,
		Schedules: []planner.Schedule{{ID: "s1", TotalCredits: 3}},
		Filters:   planner.ScheduleFilters{EmptyDays: []planner.Weekday{planner.Fri}},
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if kv.ttl[sessionKeyPrefix+"u1"] != 2*time.Hour {
		t.Errorf("TTL 应为 2h，实际 %s", kv.ttl[sessionKeyPrefix+"u1"])
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.Status != StatusComplete || len(got.Schedules) != 1 || got.Filters.EmptyDays[0] != planner.Fri {
		t.Errorf("反序列化结果错误: %+v", got)
	}

	_ = store.Delete(ctx, "u1")
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("删除后期望 ErrSessionNotFound，实际: %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute).(*memorySessionStore)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Save(ctx, &PlannerSession{UserID: "u1", Status: StatusConfirming})
	if _, err := store.Get(ctx, "u1"); err != nil {
		t.Fatalf("未过期应可读取: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("过期后期望 ErrSessionNotFound，实际: %v", err)
	}
}

func TestMemorySessionStore_ReturnsCopy(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()
	_ = store.Save(ctx, &PlannerSession{UserID: "u1", Status: StatusConfirming})

	got, _ := store.Get(ctx, "u1")
	got.Status = StatusError

	again, _ := store.Get(ctx, "u1")
	if again.Status != StatusConfirming {
		t.Error("修改读取结果不应影响存储内容")
	}
}

func TestFallbackSessionStore_DegradesOnError(t *testing.T) {
	kv := newMockKV()
	primary := NewRedisSessionStore(kv, time.Hour)
	store := NewFallbackSessionStore(primary, NewMemorySessionStore(time.Hour), zap.NewNop())
	ctx := context.Background()

	// Redis 故障：写入落到内存
	kv.err = errors.New("connection refused")
	if err := store.Save(ctx, &PlannerSession{UserID: "u1", Status: StatusConfirming}); err != nil {
		t.Fatalf("降级写入不应报错: %v", err)
	}
	got, err := store.Get(ctx, "u1")
	if err != nil || got.Status != StatusConfirming {
		t.Fatalf("降级读取失败: %v", err)
	}

	// Redis 恢复：未迁移的会话仍可从内存读到
	kv.err = nil
	got, err = store.Get(ctx, "u1")
	if err != nil || got.Status != StatusConfirming {
		t.Fatalf("恢复后应读到内存中的会话: %v", err)
	}

	// 恢复后写入回到 Redis，并清理内存副本
	_ = store.Save(ctx, &PlannerSession{UserID: "u1", Status: StatusComplete})
	if _, ok := kv.data[sessionKeyPrefix+"u1"]; !ok {
		t.Error("恢复后应写入 Redis")
	}
	got, _ = store.Get(ctx, "u1")
	if got.Status != StatusComplete {
		t.Errorf("期望读取到 Redis 中的最新会话，实际 %s", got.Status)
	}

	_ = store.Delete(ctx, "u1")
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("删除后期望 ErrSessionNotFound，实际: %v", err)
	}
}
