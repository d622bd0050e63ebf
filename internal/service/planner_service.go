package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gangnaeng/backend/config"
	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/model"
	"gangnaeng/backend/internal/planner"
	"gangnaeng/backend/internal/repository"
)

// ── 课表规划业务错误 ──

var (
	ErrPlannerParseFailed      = errors.New("未能从输入中识别出课程")
	ErrPlannerNoCourses        = errors.New("所选课程在目录中不存在")
	ErrPlannerAllConflict      = errors.New("所选课程的所有分班组合都存在时间冲突")
	ErrPlannerTimeout          = errors.New("课表生成超时，请减少课程数量后重试")
	ErrPlannerInvalidState     = errors.New("当前会话状态不允许该操作")
	ErrPlannerScheduleNotFound = errors.New("课表方案不存在")
)

// 事件类型（SSE）
const (
	EventThinking = "thinking"
	EventSchedule = "schedule"
	EventDone     = "done"
	EventError    = "error"
)

// 进度提示中组合数的显示上限
const maxReportedCombos = 1_000_000

// PlannerEvent 生成过程中推送给客户端的事件
type PlannerEvent struct {
	Type string
	Data interface{}
}

// PlannerService 课表规划会话业务接口
//
// 状态机：idle → parsing → confirming → generating → complete | error
//   - Parse:        idle / confirming / complete / error → confirming | error
//   - Generate:     confirming / complete → complete | error
//   - ApplyFilters: complete → complete（只重新筛选，不重新生成）
//   - Reset:        任意 → idle
type PlannerService interface {
	GetSession(ctx context.Context, userID string) (*dto.PlannerSessionResponse, error)
	Parse(ctx context.Context, userID string, req *dto.PlannerParseRequest) (*dto.PlannerSessionResponse, error)
	Generate(ctx context.Context, userID string, req *dto.PlannerGenerateRequest) (*dto.PlannerSessionResponse, error)
	// GenerateStream 与 Generate 相同的状态迁移，过程中通过 emit 推送事件
	GenerateStream(ctx context.Context, userID string, req *dto.PlannerGenerateRequest, emit func(PlannerEvent)) error
	ApplyFilters(ctx context.Context, userID string, req *dto.PlannerFilterRequest) (*dto.PlannerSessionResponse, error)
	GetGrid(ctx context.Context, userID, scheduleID string) (*dto.GridResponse, error)
	GetSchedule(ctx context.Context, userID, scheduleID string) (*planner.Schedule, error)
	Reset(ctx context.Context, userID string) error
}

type plannerService struct {
	cfg    *config.PlannerConfig
	repo   *repository.Repository
	store  SessionStore
	logger *zap.Logger
	now    func() time.Time
}

// NewPlannerService 创建 PlannerService 实例
func NewPlannerService(cfg *config.PlannerConfig, repo *repository.Repository, store SessionStore, logger *zap.Logger) PlannerService {
	return &plannerService{cfg: cfg, repo: repo, store: store, logger: logger, now: time.Now}
}

// ────────────────────── GetSession ──────────────────────

func (s *plannerService) GetSession(ctx context.Context, userID string) (*dto.PlannerSessionResponse, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

// ────────────────────── Parse ──────────────────────

func (s *plannerService) Parse(ctx context.Context, userID string, req *dto.PlannerParseRequest) (*dto.PlannerSessionResponse, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.busy(sess) {
		return nil, ErrPlannerInvalidState
	}

	// 新的输入开启新一轮规划
	*sess = PlannerSession{UserID: userID, Status: StatusParsing, Query: req.Text}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	names := planner.ParseCourseNames(req.Text)
	if len(names) == 0 {
		return nil, s.fail(ctx, sess, ErrPlannerParseFailed)
	}

	courses, err := s.repo.Course.ListAll(ctx)
	if err != nil {
		s.logger.Error("加载课程目录失败", zap.Error(err))
		return nil, s.fail(ctx, sess, err)
	}

	matches, unmatched := planner.MatchCourses(names, model.CoursesToPlanner(courses))
	if len(matches) == 0 {
		sess.Unmatched = unmatched
		return nil, s.fail(ctx, sess, ErrPlannerParseFailed)
	}

	sess.Status = StatusConfirming
	sess.Matches = matches
	sess.Unmatched = unmatched
	sess.CourseCodes = make([]string, 0, len(matches))
	for _, m := range matches {
		sess.CourseCodes = append(sess.CourseCodes, m.Code)
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("课程解析完成",
		zap.String("user_id", userID),
		zap.Int("matched", len(matches)),
		zap.Int("unmatched", len(unmatched)),
	)
	return toSessionResponse(sess), nil
}

// ────────────────────── Generate ──────────────────────

func (s *plannerService) Generate(ctx context.Context, userID string, req *dto.PlannerGenerateRequest) (*dto.PlannerSessionResponse, error) {
	sess, err := s.generate(ctx, userID, req, nil)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

func (s *plannerService) GenerateStream(ctx context.Context, userID string, req *dto.PlannerGenerateRequest, emit func(PlannerEvent)) error {
	sess, err := s.generate(ctx, userID, req, emit)
	if err != nil {
		return err
	}
	for _, sch := range sess.Schedules {
		emit(PlannerEvent{Type: EventSchedule, Data: sch})
	}
	emit(PlannerEvent{Type: EventDone, Data: map[string]int{"count": len(sess.Schedules)}})
	return nil
}

func (s *plannerService) generate(ctx context.Context, userID string, req *dto.PlannerGenerateRequest, emit func(PlannerEvent)) (*PlannerSession, error) {
	think := func(format string, args ...interface{}) {
		if emit != nil {
			emit(PlannerEvent{Type: EventThinking, Data: fmt.Sprintf(format, args...)})
		}
	}

	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusConfirming && sess.Status != StatusComplete {
		return nil, ErrPlannerInvalidState
	}

	codes := dedupeCodes(req.CourseCodes)
	sess.Status = StatusGenerating
	sess.CourseCodes = codes
	sess.Error = ""
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	think("正在加载 %d 门课程的分班信息", len(codes))
	courses, err := s.repo.Course.ListByCodes(ctx, codes)
	if err != nil {
		s.logger.Error("加载课程分班失败", zap.Strings("codes", codes), zap.Error(err))
		return nil, s.fail(ctx, sess, err)
	}

	groups, missing := groupByCode(codes, model.CoursesToPlanner(courses))
	if len(groups) == 0 {
		return nil, s.fail(ctx, sess, ErrPlannerNoCourses)
	}
	if len(missing) > 0 {
		sess.Unmatched = appendUnique(sess.Unmatched, missing...)
	}

	maxCredits := req.MaxCredits
	if maxCredits == nil && s.cfg.DefaultMaxCredits > 0 {
		limit := s.cfg.DefaultMaxCredits
		maxCredits = &limit
	}

	if combos, capped := countCombinations(groups); capped {
		think("正在从超过 %d 种分班组合中排除时间冲突", combos)
	} else {
		think("正在从 %d 种分班组合中排除时间冲突", combos)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	schedules, err := planner.Generate(genCtx, groups, planner.GenerateOptions{
		MaxCredits: maxCredits,
		MaxResults: s.cfg.MaxResults,
		NewID:      func(int) string { return uuid.New().String() },
	})
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrNoCourses):
			err = ErrPlannerNoCourses
		case errors.Is(err, planner.ErrAllConflict):
			err = ErrPlannerAllConflict
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			err = ErrPlannerTimeout
		}
		s.logger.Warn("课表生成失败", zap.String("user_id", userID), zap.Error(err))
		// 请求被取消时会话仍需落到 error，使用独立的 context 保存
		return nil, s.fail(context.WithoutCancel(ctx), sess, err)
	}

	sess.Status = StatusComplete
	sess.Schedules = schedules
	sess.Filters = planner.ScheduleFilters{MaxCredits: maxCredits}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("课表生成完成",
		zap.String("user_id", userID),
		zap.Int("groups", len(groups)),
		zap.Int("schedules", len(schedules)),
	)
	return sess, nil
}

// ────────────────────── ApplyFilters ──────────────────────

func (s *plannerService) ApplyFilters(ctx context.Context, userID string, req *dto.PlannerFilterRequest) (*dto.PlannerSessionResponse, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusComplete {
		return nil, ErrPlannerInvalidState
	}

	filters := req.ToFilters()
	filters.MaxCredits = sess.Filters.MaxCredits
	sess.Filters = filters
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

// ────────────────────── GetGrid / GetSchedule ──────────────────────

func (s *plannerService) GetGrid(ctx context.Context, userID, scheduleID string) (*dto.GridResponse, error) {
	sch, err := s.GetSchedule(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	return buildGrid(*sch), nil
}

func (s *plannerService) GetSchedule(ctx context.Context, userID, scheduleID string) (*planner.Schedule, error) {
	sess, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusComplete {
		return nil, ErrPlannerInvalidState
	}
	sch, ok := sess.findSchedule(scheduleID)
	if !ok {
		return nil, ErrPlannerScheduleNotFound
	}
	return &sch, nil
}

// ────────────────────── Reset ──────────────────────

func (s *plannerService) Reset(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		s.logger.Error("重置规划会话失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// load 读取会话，不存在时返回 idle 会话
func (s *plannerService) load(ctx context.Context, userID string) (*PlannerSession, error) {
	sess, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &PlannerSession{UserID: userID, Status: StatusIdle}, nil
		}
		s.logger.Error("读取规划会话失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return sess, nil
}

func (s *plannerService) save(ctx context.Context, sess *PlannerSession) error {
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("保存规划会话失败", zap.String("user_id", sess.UserID), zap.Error(err))
		return err
	}
	return nil
}

// fail 将会话置为 error 并返回原错误
func (s *plannerService) fail(ctx context.Context, sess *PlannerSession, cause error) error {
	sess.Status = StatusError
	sess.Error = cause.Error()
	sess.Schedules = nil
	if err := s.save(ctx, sess); err != nil {
		return err
	}
	return cause
}

// busy 会话是否正在解析/生成；超过生成超时仍未结束的视为中断，允许重新开始
func (s *plannerService) busy(sess *PlannerSession) bool {
	if sess.Status != StatusParsing && sess.Status != StatusGenerating {
		return false
	}
	return s.now().Sub(sess.UpdatedAt) < 2*s.cfg.GenerateTimeout
}

func toSessionResponse(sess *PlannerSession) *dto.PlannerSessionResponse {
	visible := planner.FilterSchedules(sess.Schedules, sess.Filters)
	matches := sess.Matches
	if matches == nil {
		matches = []planner.CourseMatch{}
	}
	unmatched := sess.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}
	resp := &dto.PlannerSessionResponse{
		Status:         string(sess.Status),
		Query:          sess.Query,
		Matches:        matches,
		Unmatched:      unmatched,
		Schedules:      visible,
		TotalGenerated: len(sess.Schedules),
		Filters:        sess.Filters,
		Error:          sess.Error,
	}
	if !sess.UpdatedAt.IsZero() {
		resp.UpdatedAt = sess.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// groupByCode 按请求顺序把分班归组；目录中不存在的代码单独返回
func groupByCode(codes []string, courses []planner.Course) ([]planner.CourseGroup, []string) {
	byCode := make(map[string][]planner.Course)
	for _, c := range courses {
		key := strings.ToUpper(c.Code)
		byCode[key] = append(byCode[key], c)
	}

	groups := make([]planner.CourseGroup, 0, len(codes))
	var missing []string
	for _, code := range codes {
		opts := byCode[strings.ToUpper(code)]
		if len(opts) == 0 {
			missing = append(missing, code)
			continue
		}
		groups = append(groups, planner.CourseGroup{Name: opts[0].Name, Options: opts})
	}
	return groups, missing
}

// countCombinations 分班组合总数，超过 maxReportedCombos 时截断并返回 capped=true
func countCombinations(groups []planner.CourseGroup) (n int, capped bool) {
	n = 1
	for _, g := range groups {
		k := len(g.Options)
		if k == 0 {
			return 0, false
		}
		if n > maxReportedCombos/k {
			return maxReportedCombos, true
		}
		n *= k
	}
	return n, false
}

func dedupeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		key := strings.ToUpper(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, v := range list {
			if v == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}
