package model

import "gangnaeng/backend/internal/planner"

// SavedSchedule 用户收藏的课表 — 对应 saved_schedules
// Snapshot 保存收藏时的课程副本，课程目录后续变更不影响已收藏课表
type SavedSchedule struct {
	SavedScheduleID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"saved_schedule_id"`
	UserID          string           `gorm:"type:varchar(64);not null;index"                json:"user_id"`
	Name            string           `gorm:"type:varchar(64);not null"                      json:"name"`
	CourseIDs       StringArray      `gorm:"type:text[];not null"                           json:"course_ids"`
	TotalCredits    int              `gorm:"type:smallint;not null;default:0"               json:"total_credits"`
	EmptyDays       StringArray      `gorm:"type:text[];not null"                           json:"empty_days"`
	CompactScore    int              `gorm:"type:smallint;not null;default:0"               json:"compact_score"`
	Snapshot        []planner.Course `gorm:"type:jsonb;not null;serializer:json"            json:"snapshot"`
	VersionedModel
}

// TableName 指定表名
func (SavedSchedule) TableName() string { return "saved_schedules" }

// ToPlanner 还原为规划内核的 Schedule
func (s *SavedSchedule) ToPlanner() planner.Schedule {
	days := make([]planner.Weekday, 0, len(s.EmptyDays))
	for _, d := range s.EmptyDays {
		days = append(days, planner.Weekday(d))
	}
	courses := s.Snapshot
	if courses == nil {
		courses = []planner.Course{}
	}
	return planner.Schedule{
		ID:              s.SavedScheduleID,
		Courses:         courses,
		TotalCredits:    s.TotalCredits,
		EmptyDays:       days,
		CompactScore:    s.CompactScore,
		Warnings:        []string{},
		Recommendations: []string{},
	}
}

// NewSavedSchedule 由生成结果构造收藏记录
func NewSavedSchedule(userID, name string, sch planner.Schedule) *SavedSchedule {
	ids := make(StringArray, 0, len(sch.Courses))
	for _, c := range sch.Courses {
		ids = append(ids, c.ID)
	}
	days := make(StringArray, 0, len(sch.EmptyDays))
	for _, d := range sch.EmptyDays {
		days = append(days, string(d))
	}
	return &SavedSchedule{
		UserID:       userID,
		Name:         name,
		CourseIDs:    ids,
		TotalCredits: sch.TotalCredits,
		EmptyDays:    days,
		CompactScore: sch.CompactScore,
		Snapshot:     sch.Courses,
	}
}
