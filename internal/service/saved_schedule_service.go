package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gangnaeng/backend/config"
	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/model"
	"gangnaeng/backend/internal/planner"
	"gangnaeng/backend/internal/repository"
)

// ── 收藏课表业务错误 ──

var (
	ErrSavedScheduleNotFound = errors.New("收藏的课表不存在")
	ErrSavedScheduleLimit    = errors.New("收藏数量已达上限")
	ErrSavedScheduleImport   = errors.New("ICS 文件中没有可导入的工作日课程")
)

// 每个用户最多收藏的课表数
const maxSavedSchedulesPerUser = 20

// SavedScheduleService 收藏课表业务接口
// 所有操作只作用于调用者本人的收藏，他人的记录按不存在处理
type SavedScheduleService interface {
	Save(ctx context.Context, userID string, req *dto.SaveScheduleRequest) (*dto.SavedScheduleResponse, error)
	List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.SavedScheduleResponse, int64, error)
	Get(ctx context.Context, userID, id string) (*dto.SavedScheduleResponse, error)
	GetGrid(ctx context.Context, userID, id string) (*dto.GridResponse, error)
	// GetSchedule 还原为内核 Schedule，供导出使用；返回收藏名称
	GetSchedule(ctx context.Context, userID, id string) (*planner.Schedule, string, error)
	Delete(ctx context.Context, userID, id string) error
	// ImportICS 从 iCalendar 文件导入为一条收藏课表
	ImportICS(ctx context.Context, userID, name string, r io.Reader) (*dto.SavedScheduleResponse, error)
}

type savedScheduleService struct {
	cfg     *config.ExportConfig
	repo    *repository.Repository
	planner PlannerService
	logger  *zap.Logger
}

// NewSavedScheduleService 创建 SavedScheduleService 实例
func NewSavedScheduleService(cfg *config.ExportConfig, repo *repository.Repository, plannerSvc PlannerService, logger *zap.Logger) SavedScheduleService {
	return &savedScheduleService{cfg: cfg, repo: repo, planner: plannerSvc, logger: logger}
}

// ────────────────────── Save ──────────────────────

func (s *savedScheduleService) Save(ctx context.Context, userID string, req *dto.SaveScheduleRequest) (*dto.SavedScheduleResponse, error) {
	sch, err := s.planner.GetSchedule(ctx, userID, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	return s.create(ctx, userID, req.Name, *sch)
}

// ────────────────────── ImportICS ──────────────────────

func (s *savedScheduleService) ImportICS(ctx context.Context, userID, name string, r io.Reader) (*dto.SavedScheduleResponse, error) {
	courses, err := ParseScheduleICS(r, loadLocation(s.cfg.Timezone))
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrSavedScheduleImport
	}
	if len(courses) == 0 {
		return nil, ErrSavedScheduleImport
	}

	return s.create(ctx, userID, name, planner.BuildSchedule("", courses))
}

func (s *savedScheduleService) create(ctx context.Context, userID, name string, sch planner.Schedule) (*dto.SavedScheduleResponse, error) {
	n, err := s.repo.SavedSchedule.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计收藏数量失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if n >= maxSavedSchedulesPerUser {
		return nil, ErrSavedScheduleLimit
	}

	saved := model.NewSavedSchedule(userID, name, sch)
	saved.Version = 1
	if err := s.repo.SavedSchedule.Create(ctx, saved); err != nil {
		s.logger.Error("收藏课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表已收藏",
		zap.String("user_id", userID),
		zap.String("saved_schedule_id", saved.SavedScheduleID),
		zap.Int("courses", len(sch.Courses)),
	)
	return toSavedScheduleResponse(saved, true), nil
}

// ────────────────────── List ──────────────────────

func (s *savedScheduleService) List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.SavedScheduleResponse, int64, error) {
	list, total, err := s.repo.SavedSchedule.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出收藏课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SavedScheduleResponse, 0, len(list))
	for i := range list {
		result = append(result, *toSavedScheduleResponse(&list[i], false))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *savedScheduleService) Get(ctx context.Context, userID, id string) (*dto.SavedScheduleResponse, error) {
	saved, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toSavedScheduleResponse(saved, true), nil
}

func (s *savedScheduleService) GetGrid(ctx context.Context, userID, id string) (*dto.GridResponse, error) {
	saved, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return buildGrid(saved.ToPlanner()), nil
}

func (s *savedScheduleService) GetSchedule(ctx context.Context, userID, id string) (*planner.Schedule, string, error) {
	saved, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	sch := saved.ToPlanner()
	return &sch, saved.Name, nil
}

// ────────────────────── Delete ──────────────────────

func (s *savedScheduleService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.SavedSchedule.Delete(ctx, id); err != nil {
		s.logger.Error("删除收藏课表失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func (s *savedScheduleService) getOwned(ctx context.Context, userID, id string) (*model.SavedSchedule, error) {
	saved, err := s.repo.SavedSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSavedScheduleNotFound
		}
		s.logger.Error("查询收藏课表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if saved.UserID != userID {
		return nil, ErrSavedScheduleNotFound
	}
	return saved, nil
}

func toSavedScheduleResponse(s *model.SavedSchedule, withCourses bool) *dto.SavedScheduleResponse {
	resp := &dto.SavedScheduleResponse{
		ID:           s.SavedScheduleID,
		Name:         s.Name,
		CourseIDs:    []string(s.CourseIDs),
		TotalCredits: s.TotalCredits,
		EmptyDays:    []string(s.EmptyDays),
		CompactScore: s.CompactScore,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
	if resp.CourseIDs == nil {
		resp.CourseIDs = []string{}
	}
	if resp.EmptyDays == nil {
		resp.EmptyDays = []string{}
	}
	if withCourses {
		resp.Courses = s.Snapshot
	}
	return resp
}
