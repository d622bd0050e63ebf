package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 时间运算辅助 ──

const (
	// 渲染窗口默认范围与上下限（小时）
	DefaultStartHour = 9
	DefaultEndHour   = 19
	MinGridHour      = 6
	MaxGridHour      = 24

	// 节次：第 p 节从 (PeriodBaseHour+p):00 开始，持续 PeriodLength 分钟
	PeriodBaseHour = 8
	PeriodLength   = 50
	MinPeriod      = 1
	MaxPeriod      = 9
)

// TimeToMinutes 将 24 小时制 "HH:MM" 转为当日分钟数。
// 不做范围校验，格式错误的部分按 0 处理。
func TimeToMinutes(t string) int {
	h, m, _ := strings.Cut(strings.TrimSpace(t), ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	return hours*60 + mins
}

// MinutesToTime 将分钟数格式化为 "HH:MM"
func MinutesToTime(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// IsValidClock 严格校验 "HH:MM" 格式（供写入路径使用，内核本身不校验）
func IsValidClock(t string) bool {
	if len(t) != 5 || t[2] != ':' {
		return false
	}
	h, err1 := strconv.Atoi(t[:2])
	m, err2 := strconv.Atoi(t[3:])
	if err1 != nil || err2 != nil {
		return false
	}
	return h >= 0 && h <= 24 && m >= 0 && m < 60 && (h < 24 || m == 0)
}

// IsOverlapping 同一天内的区间重叠检测。
// 使用严格不等式：首尾相接（10:00 结束 / 10:00 开始）不算重叠。
func IsOverlapping(a, b TimeSlot) bool {
	if a.Day != b.Day {
		return false
	}
	return overlaps(
		TimeToMinutes(a.StartTime), TimeToMinutes(a.EndTime),
		TimeToMinutes(b.StartTime), TimeToMinutes(b.EndTime),
	)
}

func overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// GridBounds 计算课表渲染窗口 [startHour, endHour)。
// 以默认 [9, 19] 为起点，仅在有课时间超出时扩展，结果限制在 [6, 24]。
func GridBounds(courses []Course) (startHour, endHour int) {
	startHour, endHour = DefaultStartHour, DefaultEndHour
	for _, c := range courses {
		for _, sl := range c.Slots {
			start := TimeToMinutes(sl.StartTime) / 60
			end := (TimeToMinutes(sl.EndTime) + 59) / 60
			if start < startHour {
				startHour = start
			}
			if end > endHour {
				endHour = end
			}
		}
	}
	if startHour < MinGridHour {
		startHour = MinGridHour
	}
	if endHour > MaxGridHour {
		endHour = MaxGridHour
	}
	return startHour, endHour
}

// TimeToPeriod 返回某一时刻所在的节次（可能落在 MinPeriod..MaxPeriod 之外）
func TimeToPeriod(mins int) int {
	return mins/60 - PeriodBaseHour
}

// SlotPeriods 返回上课时间覆盖的节次闭区间 [start, end]。
// 显式给出的 StartPeriod/EndPeriod 优先，否则按时钟时间推导。
func SlotPeriods(sl TimeSlot) (int, int) {
	if sl.StartPeriod > 0 && sl.EndPeriod >= sl.StartPeriod {
		return sl.StartPeriod, sl.EndPeriod
	}
	start := TimeToPeriod(TimeToMinutes(sl.StartTime))
	end := TimeToPeriod(TimeToMinutes(sl.EndTime) - 1)
	if end < start {
		end = start
	}
	return start, end
}
