package planner

import "strings"

// ── 基础类型 ──────────────────────────────────────────────
//
// planner 包是课表规划的纯计算内核：
//   - 不持有任何状态，不修改入参，每次调用返回新切片
//   - 不依赖存储/网络，由 service 层负责数据装载与会话状态
// ─────────────────────────────────────────────────────────────

// Weekday 教学周工作日（仅建模周一至周五）
type Weekday string

const (
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
)

// Weekdays 按自然顺序排列的全部工作日
var Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri}

// Valid 是否为合法工作日
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// Index 返回工作日序号（mon=0），非法值返回 -1
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// ParseWeekday 宽松解析工作日：接受 mon / Mon / MONDAY / 월 等写法
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "mon"), s == "월", s == "월요일":
		return Mon, true
	case strings.HasPrefix(s, "tue"), s == "화", s == "화요일":
		return Tue, true
	case strings.HasPrefix(s, "wed"), s == "수", s == "수요일":
		return Wed, true
	case strings.HasPrefix(s, "thu"), s == "목", s == "목요일":
		return Thu, true
	case strings.HasPrefix(s, "fri"), s == "금", s == "금요일":
		return Fri, true
	}
	return "", false
}

// TimeSlot 课程的一次周重复上课时间
type TimeSlot struct {
	Day       Weekday `json:"day"`
	StartTime string  `json:"start_time"` // "HH:MM"
	EndTime   string  `json:"end_time"`   // "HH:MM"
	Location  string  `json:"location,omitempty"`
	// 节次范围；为 0 时按时钟时间推导（见 SlotPeriods）
	StartPeriod int `json:"start_period,omitempty"`
	EndPeriod   int `json:"end_period,omitempty"`
}

// Course 课程（含 1..N 个上课时间）
type Course struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Section   string     `json:"section,omitempty"`
	Professor string     `json:"professor"`
	Credits   int        `json:"credits"`
	Slots     []TimeSlot `json:"slots"`
	Category  string     `json:"category"`
	Color     string     `json:"color,omitempty"`
}

// Schedule 生成后的候选课表（生成后不可变）
type Schedule struct {
	ID              string    `json:"id"`
	Courses         []Course  `json:"courses"`
	TotalCredits    int       `json:"total_credits"`
	EmptyDays       []Weekday `json:"empty_days"`
	CompactScore    int       `json:"compact_score"` // 0..100
	Warnings        []string  `json:"warnings"`
	Recommendations []string  `json:"recommendations"`
}

// PeriodExclusion 某天需要避开的节次
type PeriodExclusion struct {
	Day     Weekday `json:"day"`
	Periods []int   `json:"periods"`
}

// ScheduleFilters 课表筛选条件（各条件之间为 AND 关系）
type ScheduleFilters struct {
	// MaxCredits 在生成阶段生效，FilterSchedules 不读取此字段
	MaxCredits     *int              `json:"max_credits"`
	EmptyDays      []Weekday         `json:"empty_days"`
	ExcludePeriods []PeriodExclusion `json:"exclude_periods"`
}

// SlotRef 布局输入：课程 + 其某个上课时间
type SlotRef struct {
	Course Course
	Slot   TimeSlot
}

// PositionedSlot 布局输出，每次渲染时重新计算，不持久化
type PositionedSlot struct {
	Course       Course   `json:"course"`
	Slot         TimeSlot `json:"slot"`
	ColumnIndex  int      `json:"column_index"`
	TotalColumns int      `json:"total_columns"`
}

// computeEmptyDays 返回课程集合中没有任何上课时间的工作日
func computeEmptyDays(courses []Course) []Weekday {
	used := make(map[Weekday]bool, len(Weekdays))
	for _, c := range courses {
		for _, sl := range c.Slots {
			used[sl.Day] = true
		}
	}
	empty := make([]Weekday, 0, len(Weekdays))
	for _, d := range Weekdays {
		if !used[d] {
			empty = append(empty, d)
		}
	}
	return empty
}

// totalCredits 学分合计
func totalCredits(courses []Course) int {
	sum := 0
	for _, c := range courses {
		sum += c.Credits
	}
	return sum
}
