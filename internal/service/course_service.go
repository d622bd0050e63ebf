package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/model"
	"gangnaeng/backend/internal/planner"
	"gangnaeng/backend/internal/repository"
	pkgerrors "gangnaeng/backend/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound        = errors.New("课程不存在")
	ErrCourseInvalidTime     = errors.New("上课时间格式无效，应为 HH:MM 且开始早于结束")
	ErrCourseSlotOverlap     = errors.New("同一课程的上课时间存在重叠")
	ErrCourseCodeExists      = errors.New("该课程代码与分班已存在")
	ErrCourseInvalidCredits  = errors.New("学分必须在 0-6 之间")
	ErrCourseVersionConflict = pkgerrors.ErrOptimisticLock
)

const maxCourseCredits = 6

// CourseService 课程目录业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if req.Credits < 0 || req.Credits > maxCourseCredits {
		return nil, ErrCourseInvalidCredits
	}
	slots, err := buildCourseSlots(req.Slots)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Course.GetByCodeSection(ctx, req.Code, req.Section); err == nil {
		return nil, ErrCourseCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程代码失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Code:      req.Code,
		Section:   req.Section,
		Name:      req.Name,
		Professor: req.Professor,
		Credits:   req.Credits,
		Category:  req.Category,
		Color:     req.Color,
		Slots:     slots,
	}
	course.Version = 1

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	filter := repository.CourseFilter{
		Keyword:  req.Keyword,
		Category: req.Category,
		Day:      req.Day,
	}
	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Professor != nil {
		course.Professor = *req.Professor
	}
	if req.Credits != nil {
		if *req.Credits < 0 || *req.Credits > maxCourseCredits {
			return nil, ErrCourseInvalidCredits
		}
		course.Credits = *req.Credits
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Color != nil {
		course.Color = *req.Color
	}
	if len(req.Slots) > 0 {
		slots, err := buildCourseSlots(req.Slots)
		if err != nil {
			return nil, err
		}
		course.Slots = slots
	}

	// 以客户端读取时的版本为准
	course.Version = req.Version

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrCourseVersionConflict
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

// buildCourseSlots 校验并转换上课时间：时钟格式、开始早于结束、节次范围、课内不重叠
func buildCourseSlots(reqs []dto.CourseSlotRequest) ([]model.CourseSlot, error) {
	slots := make([]model.CourseSlot, 0, len(reqs))
	checked := make([]planner.TimeSlot, 0, len(reqs))

	for _, r := range reqs {
		day, ok := planner.ParseWeekday(r.Day)
		if !ok {
			return nil, ErrCourseInvalidTime
		}
		if !planner.IsValidClock(r.StartTime) || !planner.IsValidClock(r.EndTime) {
			return nil, ErrCourseInvalidTime
		}
		if planner.TimeToMinutes(r.StartTime) >= planner.TimeToMinutes(r.EndTime) {
			return nil, ErrCourseInvalidTime
		}
		if (r.StartPeriod == 0) != (r.EndPeriod == 0) || r.StartPeriod > r.EndPeriod {
			return nil, ErrCourseInvalidTime
		}

		ts := planner.TimeSlot{Day: day, StartTime: r.StartTime, EndTime: r.EndTime}
		for _, prev := range checked {
			if planner.IsOverlapping(prev, ts) {
				return nil, ErrCourseSlotOverlap
			}
		}
		checked = append(checked, ts)

		slots = append(slots, model.CourseSlot{
			DayOfWeek:   string(day),
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			StartPeriod: r.StartPeriod,
			EndPeriod:   r.EndPeriod,
			Location:    r.Location,
		})
	}
	return slots, nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	slots := make([]dto.CourseSlotResponse, 0, len(c.Slots))
	for _, sl := range c.Slots {
		start, end := sl.StartPeriod, sl.EndPeriod
		if start == 0 {
			start, end = planner.SlotPeriods(planner.TimeSlot{StartTime: sl.StartTime, EndTime: sl.EndTime})
		}
		slots = append(slots, dto.CourseSlotResponse{
			Day:         sl.DayOfWeek,
			StartTime:   sl.StartTime,
			EndTime:     sl.EndTime,
			StartPeriod: start,
			EndPeriod:   end,
			Location:    sl.Location,
		})
	}
	return &dto.CourseResponse{
		ID:        c.CourseID,
		Code:      c.Code,
		Section:   c.Section,
		Name:      c.Name,
		Professor: c.Professor,
		Credits:   c.Credits,
		Category:  c.Category,
		Color:     c.Color,
		Slots:     slots,
		Version:   c.Version,
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
