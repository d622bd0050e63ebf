package service

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"gangnaeng/backend/internal/planner"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 内容还原为课程列表，用于导入课表：
//   - DTSTART/DTEND 确定星期与时间，周末事件忽略
//   - 同名 + 同一时间段的多个事件（单次事件展开的周课）合并为一个上课时间
//   - 同名事件归为一门课程
//   - DESCRIPTION 若为本服务导出的格式，还原课程代码与学分
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 2 * 1024 * 1024 // 2MB

var (
	icsCreditsPattern  = regexp.MustCompile(`\((\d+) 学分\)`)
	icsDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)
)

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name        string
	Description string
	Location    string
	Day         planner.Weekday
	StartTime   string
	EndTime     string
}

// ParseScheduleICS 解析 ICS 为课程列表（按首次出现顺序）
func ParseScheduleICS(reader io.Reader, loc *time.Location) ([]planner.Course, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var events []parsedCourseEvent
	for _, comp := range cal.Events() {
		if evt, ok := parseVEvent(comp, loc); ok {
			events = append(events, evt)
		}
	}

	return groupEvents(mergeEvents(events)), nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		durProp := evt.GetProperty(ics.ComponentPropertyDuration)
		if durProp == nil {
			return parsedCourseEvent{}, false
		}
		d, ok := parseICSDuration(durProp.Value)
		if !ok {
			return parsedCourseEvent{}, false
		}
		dtEnd = dtStart.Add(d)
	}

	day, ok := goWeekdayToPlanner(dtStart.Weekday())
	if !ok {
		return parsedCourseEvent{}, false
	}
	// 跨天事件不是课程
	if dtEnd.YearDay() != dtStart.YearDay() || !dtEnd.After(dtStart) {
		return parsedCourseEvent{}, false
	}

	out := parsedCourseEvent{
		Name:      strings.TrimSpace(summary.Value),
		Day:       day,
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
	}
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		out.Location = strings.TrimSpace(p.Value)
	}
	if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		out.Description = strings.TrimSpace(p.Value)
	}
	return out, true
}

// mergeEvents 合并同名、同星期、同时间段的事件
func mergeEvents(events []parsedCourseEvent) []parsedCourseEvent {
	type key struct {
		Name      string
		Day       planner.Weekday
		StartTime string
		EndTime   string
	}
	seen := make(map[key]bool)
	result := make([]parsedCourseEvent, 0, len(events))
	for _, e := range events {
		k := key{Name: e.Name, Day: e.Day, StartTime: e.StartTime, EndTime: e.EndTime}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, e)
	}
	return result
}

// groupEvents 同名事件归为一门课程
func groupEvents(events []parsedCourseEvent) []planner.Course {
	index := make(map[string]int)
	courses := make([]planner.Course, 0)
	for _, e := range events {
		i, ok := index[e.Name]
		if !ok {
			code, section, credits := parseDescription(e.Description)
			i = len(courses)
			index[e.Name] = i
			courses = append(courses, planner.Course{
				ID:      fmt.Sprintf("ics-%d", i+1),
				Name:    e.Name,
				Code:    code,
				Section: section,
				Credits: credits,
			})
		}
		courses[i].Slots = append(courses[i].Slots, planner.TimeSlot{
			Day:       e.Day,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Location:  e.Location,
		})
	}
	return courses
}

// parseDescription 还原导出时写入的 "CODE-SECTION 教授 (N 学分)"
func parseDescription(desc string) (code, section string, credits int) {
	if m := icsCreditsPattern.FindStringSubmatch(desc); m != nil {
		credits, _ = strconv.Atoi(m[1])
	} else {
		return "", "", 0
	}
	fields := strings.Fields(desc)
	if len(fields) == 0 {
		return "", "", credits
	}
	if fields[0] == noCourseCode || strings.HasPrefix(fields[0], "(") {
		return "", "", credits
	}
	code, section, _ = strings.Cut(fields[0], "-")
	return code, section, credits
}

// ── 辅助函数 ──

func goWeekdayToPlanner(wd time.Weekday) (planner.Weekday, bool) {
	if wd == time.Saturday || wd == time.Sunday {
		return "", false
	}
	return planner.Weekdays[int(wd)-1], true
}

func parseICSDuration(v string) (time.Duration, bool) {
	m := icsDurationPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		target := loc
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				target = tzLoc
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, target).In(loc), nil
	}

	// 全天事件（纯日期）不是课程
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
