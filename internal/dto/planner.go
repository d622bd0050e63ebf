package dto

import "gangnaeng/backend/internal/planner"

// ── 课表规划 DTO ──

// PlannerParseRequest 自然语言课程解析请求
type PlannerParseRequest struct {
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// PlannerGenerateRequest 生成课表请求
type PlannerGenerateRequest struct {
	CourseCodes []string `json:"course_codes" binding:"required,min=1,max=12,dive,required,max=32"`
	MaxCredits  *int     `json:"max_credits"  binding:"omitempty,min=1,max=30"`
}

// PeriodExclusionRequest 某天需要避开的节次
type PeriodExclusionRequest struct {
	Day     string `json:"day"     binding:"required,oneof=mon tue wed thu fri"`
	Periods []int  `json:"periods" binding:"required,min=1,dive,min=1,max=9"`
}

// PlannerFilterRequest 结果筛选请求（不重新生成）
type PlannerFilterRequest struct {
	EmptyDays      []string                 `json:"empty_days"      binding:"omitempty,dive,oneof=mon tue wed thu fri"`
	ExcludePeriods []PeriodExclusionRequest `json:"exclude_periods" binding:"omitempty,dive"`
}

// ToFilters 转换为内核筛选条件
func (r *PlannerFilterRequest) ToFilters() planner.ScheduleFilters {
	f := planner.ScheduleFilters{
		EmptyDays:      make([]planner.Weekday, 0, len(r.EmptyDays)),
		ExcludePeriods: make([]planner.PeriodExclusion, 0, len(r.ExcludePeriods)),
	}
	for _, d := range r.EmptyDays {
		f.EmptyDays = append(f.EmptyDays, planner.Weekday(d))
	}
	for _, ex := range r.ExcludePeriods {
		f.ExcludePeriods = append(f.ExcludePeriods, planner.PeriodExclusion{
			Day:     planner.Weekday(ex.Day),
			Periods: ex.Periods,
		})
	}
	return f
}

// PlannerSessionResponse 规划会话状态
type PlannerSessionResponse struct {
	Status         string                  `json:"status"` // idle | parsing | confirming | generating | complete | error
	Query          string                  `json:"query,omitempty"`
	Matches        []planner.CourseMatch   `json:"matches"`
	Unmatched      []string                `json:"unmatched"`
	Schedules      []planner.Schedule      `json:"schedules"` // 应用筛选后的结果
	TotalGenerated int                     `json:"total_generated"`
	Filters        planner.ScheduleFilters `json:"filters"`
	Error          string                  `json:"error,omitempty"`
	UpdatedAt      string                  `json:"updated_at,omitempty"`
}

// GridSlotResponse 网格中的一个课程块
type GridSlotResponse struct {
	CourseID     string `json:"course_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Location     string `json:"location,omitempty"`
	Color        string `json:"color,omitempty"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ColumnIndex  int    `json:"column_index"`
	TotalColumns int    `json:"total_columns"`
}

// GridDayResponse 某一天的布局
type GridDayResponse struct {
	Day        string             `json:"day"`
	MaxColumns int                `json:"max_columns"`
	Slots      []GridSlotResponse `json:"slots"`
}

// GridResponse 周视图布局
type GridResponse struct {
	ScheduleID string            `json:"schedule_id"`
	StartHour  int               `json:"start_hour"`
	EndHour    int               `json:"end_hour"`
	Days       []GridDayResponse `json:"days"`
}
