package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"gangnaeng/backend/internal/model"
	"gangnaeng/backend/internal/repository"
	pkgerrors "gangnaeng/backend/pkg/errors"
	"gangnaeng/backend/pkg/redis"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
	listErr error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	if c.CourseID == "" {
		m.seq++
		c.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	for i := range c.Slots {
		c.Slots[i].CourseID = c.CourseID
	}
	c.UpdatedAt = time.Now()
	cp := *c
	m.courses[c.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCodeSection(_ context.Context, code, section string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Code == code && c.Section == section {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) sorted() []model.Course {
	out := make([]model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Section < out[j].Section
	})
	return out
}

func (m *mockCourseRepo) List(_ context.Context, f repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.sorted() {
		if f.Keyword != "" && !strings.Contains(c.Name, f.Keyword) && !strings.Contains(c.Code, f.Keyword) {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		result = append(result, c)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return []model.Course{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockCourseRepo) ListByCodes(_ context.Context, codes []string) ([]model.Course, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[strings.ToUpper(c)] = true
	}
	var result []model.Course
	for _, c := range m.sorted() {
		if want[strings.ToUpper(c.Code)] {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) ListAll(_ context.Context) ([]model.Course, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(), nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	cur, ok := m.courses[c.CourseID]
	if !ok || cur.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	cp := *c
	m.courses[c.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, id)
	return nil
}

// ── Mock SavedScheduleRepository ──

type mockSavedScheduleRepo struct {
	items map[string]*model.SavedSchedule
	seq   int
}

func newMockSavedScheduleRepo() *mockSavedScheduleRepo {
	return &mockSavedScheduleRepo{items: make(map[string]*model.SavedSchedule)}
}

func (m *mockSavedScheduleRepo) Create(_ context.Context, s *model.SavedSchedule) error {
	m.seq++
	s.SavedScheduleID = fmt.Sprintf("saved-%d", m.seq)
	s.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	cp := *s
	m.items[s.SavedScheduleID] = &cp
	return nil
}

func (m *mockSavedScheduleRepo) GetByID(_ context.Context, id string) (*model.SavedSchedule, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSavedScheduleRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.SavedSchedule, int64, error) {
	var result []model.SavedSchedule
	for _, s := range m.items {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.SavedSchedule{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockSavedScheduleRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, s := range m.items {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockSavedScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock Redis JSON 存储 ──

type mockKV struct {
	data map[string][]byte
	ttl  map[string]time.Duration
	err  error // 非 nil 时所有操作返回该错误
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte), ttl: make(map[string]time.Duration)}
}

func (m *mockKV) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttl[key] = ttl
	return nil
}

func (m *mockKV) GetJSON(_ context.Context, key string, v interface{}) error {
	if m.err != nil {
		return m.err
	}
	b, ok := m.data[key]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(b, v)
}

func (m *mockKV) Delete(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

// ── 测试辅助 ──

func newTestRepo() (*repository.Repository, *mockCourseRepo, *mockSavedScheduleRepo) {
	courses := newMockCourseRepo()
	saved := newMockSavedScheduleRepo()
	return &repository.Repository{Course: courses, SavedSchedule: saved}, courses, saved
}

// seedCourse 向 mock 目录添加一个分班
func seedCourse(repo *mockCourseRepo, code, section, name string, credits int, slots ...model.CourseSlot) *model.Course {
	c := &model.Course{Code: code, Section: section, Name: name, Credits: credits, Slots: slots}
	c.Version = 1
	_ = repo.Create(context.Background(), c)
	return c
}

func slot(day, start, end string) model.CourseSlot {
	return model.CourseSlot{DayOfWeek: day, StartTime: start, EndTime: end}
}
