package dto

// ── 课程目录 DTO ──

// CourseSlotRequest 上课时间
type CourseSlotRequest struct {
	Day         string `json:"day"          binding:"required,oneof=mon tue wed thu fri"`
	StartTime   string `json:"start_time"   binding:"required"`
	EndTime     string `json:"end_time"     binding:"required"`
	StartPeriod int    `json:"start_period" binding:"omitempty,min=1,max=9"`
	EndPeriod   int    `json:"end_period"   binding:"omitempty,min=1,max=9"`
	Location    string `json:"location"     binding:"omitempty,max=64"`
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code      string              `json:"code"      binding:"required,max=32"`
	Section   string              `json:"section"   binding:"omitempty,max=16"`
	Name      string              `json:"name"      binding:"required,min=1,max=128"`
	Professor string              `json:"professor" binding:"omitempty,max=64"`
	Credits   int                 `json:"credits"   binding:"min=0,max=6"`
	Category  string              `json:"category"  binding:"omitempty,max=32"`
	Color     string              `json:"color"     binding:"omitempty,max=16"`
	Slots     []CourseSlotRequest `json:"slots"     binding:"required,min=1,max=10,dive"`
}

// UpdateCourseRequest 更新课程请求（Slots 非空时全量替换）
type UpdateCourseRequest struct {
	Name      *string             `json:"name"      binding:"omitempty,min=1,max=128"`
	Professor *string             `json:"professor" binding:"omitempty,max=64"`
	Credits   *int                `json:"credits"   binding:"omitempty,min=0,max=6"`
	Category  *string             `json:"category"  binding:"omitempty,max=32"`
	Color     *string             `json:"color"     binding:"omitempty,max=16"`
	Slots     []CourseSlotRequest `json:"slots"     binding:"omitempty,max=10,dive"`
	Version   int                 `json:"version"   binding:"required,min=1"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Keyword  string `form:"keyword"  binding:"omitempty,max=64"`
	Category string `form:"category" binding:"omitempty,max=32"`
	Day      string `form:"day"      binding:"omitempty,oneof=mon tue wed thu fri"`
}

// CourseSlotResponse 上课时间响应
type CourseSlotResponse struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	StartPeriod int    `json:"start_period"`
	EndPeriod   int    `json:"end_period"`
	Location    string `json:"location,omitempty"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID        string               `json:"id"`
	Code      string               `json:"code"`
	Section   string               `json:"section,omitempty"`
	Name      string               `json:"name"`
	Professor string               `json:"professor"`
	Credits   int                  `json:"credits"`
	Category  string               `json:"category"`
	Color     string               `json:"color,omitempty"`
	Slots     []CourseSlotResponse `json:"slots"`
	Version   int                  `json:"version"`
	UpdatedAt string               `json:"updated_at"`
}
