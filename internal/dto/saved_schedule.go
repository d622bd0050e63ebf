package dto

import "gangnaeng/backend/internal/planner"

// ── 收藏课表 DTO ──

// SaveScheduleRequest 收藏当前会话中的一个生成结果
type SaveScheduleRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required,max=64"`
	Name       string `json:"name"        binding:"required,min=1,max=64"`
}

// SavedScheduleResponse 收藏课表响应
type SavedScheduleResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CourseIDs    []string         `json:"course_ids"`
	TotalCredits int              `json:"total_credits"`
	EmptyDays    []string         `json:"empty_days"`
	CompactScore int              `json:"compact_score"`
	Courses      []planner.Course `json:"courses,omitempty"` // 仅详情接口返回
	CreatedAt    string           `json:"created_at"`
}

// ExportRequest 导出参数
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=xlsx ics"`
}

// GetFormat 默认导出 Excel
func (r *ExportRequest) GetFormat() string {
	if r.Format == "" {
		return "xlsx"
	}
	return r.Format
}

// ImportScheduleRequest ICS 导入请求（multipart，文件字段为 file）
type ImportScheduleRequest struct {
	Name string `form:"name" binding:"required,min=1,max=64"`
}
