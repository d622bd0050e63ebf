package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ── 生成模块错误 ──

var (
	ErrNoCourses   = errors.New("没有可用于生成课表的课程")
	ErrAllConflict = errors.New("所选课程的所有组合均存在时间冲突")
)

const (
	// DefaultMaxResults 未指定上限时最多生成的课表数
	DefaultMaxResults = 50
	// 每访问多少个搜索节点检查一次 ctx
	ctxCheckInterval = 256
	// 一天从首节课开始到末节课结束超过该分钟数视为长日
	longDayMinutes = 6 * 60
	// 每 6 分钟空档扣 1 分（空档 10 小时即 0 分）
	gapMinutesPerPoint = 6
)

// CourseGroup 一门待选课程及其可选的分班（每张课表恰好选其中一个）
type CourseGroup struct {
	Name    string
	Options []Course
}

// GenerateOptions 生成参数
type GenerateOptions struct {
	// MaxCredits 为 nil 或 <=0 时不限制
	MaxCredits *int
	// MaxResults <=0 时使用 DefaultMaxResults
	MaxResults int
	// NewID 为每张课表生成 ID；为空时使用 "schedule-N"
	NewID func(n int) string
}

// Generate 为每门课程选一个分班，枚举互不冲突的组合。
//
// 结果按 CompactScore 降序稳定排序；上下文结束时返回 ctx.Err()。
func Generate(ctx context.Context, groups []CourseGroup, opts GenerateOptions) ([]Schedule, error) {
	if len(groups) == 0 {
		return nil, ErrNoCourses
	}
	for _, g := range groups {
		if len(g.Options) == 0 {
			return nil, fmt.Errorf("%w: %s 没有可选分班", ErrNoCourses, g.Name)
		}
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	maxCredits := 0
	if opts.MaxCredits != nil && *opts.MaxCredits > 0 {
		maxCredits = *opts.MaxCredits
	}
	newID := opts.NewID
	if newID == nil {
		newID = func(n int) string { return fmt.Sprintf("schedule-%d", n) }
	}

	var (
		results []Schedule
		chosen  = make([]Course, 0, len(groups))
		visited int
		ctxErr  error
	)

	var dfs func(depth, credits int) bool
	dfs = func(depth, credits int) bool {
		visited++
		if visited%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				ctxErr = err
				return false
			}
		}
		if depth == len(groups) {
			picked := make([]Course, len(chosen))
			copy(picked, chosen)
			results = append(results, BuildSchedule(newID(len(results)+1), picked))
			return len(results) < limit
		}
		for _, opt := range groups[depth].Options {
			if maxCredits > 0 && credits+opt.Credits > maxCredits {
				continue
			}
			if conflictsWith(chosen, opt) {
				continue
			}
			chosen = append(chosen, opt)
			more := dfs(depth+1, credits+opt.Credits)
			chosen = chosen[:len(chosen)-1]
			if !more {
				return false
			}
		}
		return true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dfs(0, 0)
	if ctxErr != nil {
		return nil, ctxErr
	}
	if len(results) == 0 {
		return nil, ErrAllConflict
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompactScore > results[j].CompactScore
	})
	return results, nil
}

// conflictsWith 候选分班是否与已选课程时间冲突
func conflictsWith(chosen []Course, cand Course) bool {
	for _, c := range chosen {
		for _, a := range c.Slots {
			for _, b := range cand.Slots {
				if IsOverlapping(a, b) {
					return true
				}
			}
		}
	}
	return false
}

// BuildSchedule 由选定课程派生课表的全部只读字段
func BuildSchedule(id string, courses []Course) Schedule {
	s := Schedule{
		ID:           id,
		Courses:      courses,
		TotalCredits: totalCredits(courses),
		EmptyDays:    computeEmptyDays(courses),
	}
	stats := dayStats(courses)
	s.CompactScore = compactScore(stats)
	s.Warnings = buildWarnings(stats)
	s.Recommendations = buildRecommendations(s)
	return s
}

// dayStat 单日统计
type dayStat struct {
	day         Weekday
	first, last int // 分钟
	gap         int // 课间空档总分钟
	backToBack  int // 首尾相接的次数
	earliest    int // 最早节次
}

func dayStats(courses []Course) []dayStat {
	byDay := make(map[Weekday][][2]int)
	minPeriod := make(map[Weekday]int)
	for _, c := range courses {
		for _, sl := range c.Slots {
			byDay[sl.Day] = append(byDay[sl.Day], [2]int{TimeToMinutes(sl.StartTime), TimeToMinutes(sl.EndTime)})
			p, _ := SlotPeriods(sl)
			if cur, ok := minPeriod[sl.Day]; !ok || p < cur {
				minPeriod[sl.Day] = p
			}
		}
	}

	stats := make([]dayStat, 0, len(byDay))
	for _, d := range Weekdays {
		spans, ok := byDay[d]
		if !ok {
			continue
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
		st := dayStat{day: d, first: spans[0][0], last: spans[0][1], earliest: minPeriod[d]}
		for i := 1; i < len(spans); i++ {
			prevEnd := st.last
			switch {
			case spans[i][0] > prevEnd:
				st.gap += spans[i][0] - prevEnd
			case spans[i][0] == prevEnd:
				st.backToBack++
			}
			if spans[i][1] > st.last {
				st.last = spans[i][1]
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// compactScore 课间空档越少分数越高（0..100）
func compactScore(stats []dayStat) int {
	gap := 0
	for _, st := range stats {
		gap += st.gap
	}
	score := 100 - gap/gapMinutesPerPoint
	if score < 0 {
		return 0
	}
	return score
}

func buildWarnings(stats []dayStat) []string {
	warnings := make([]string, 0)
	for _, st := range stats {
		if st.earliest <= MinPeriod {
			warnings = append(warnings, fmt.Sprintf("%s 有第 1 节课", DayLabel(st.day)))
		}
		if st.last-st.first > longDayMinutes {
			warnings = append(warnings, fmt.Sprintf("%s 在校时间超过 %d 小时", DayLabel(st.day), longDayMinutes/60))
		}
		if st.backToBack > 0 {
			warnings = append(warnings, fmt.Sprintf("%s 有 %d 处课程首尾相接，没有课间休息", DayLabel(st.day), st.backToBack))
		}
	}
	return warnings
}

func buildRecommendations(s Schedule) []string {
	recs := make([]string, 0)
	if len(s.EmptyDays) > 0 {
		labels := make([]string, 0, len(s.EmptyDays))
		for _, d := range s.EmptyDays {
			labels = append(labels, DayLabel(d))
		}
		recs = append(recs, fmt.Sprintf("%s 全天无课", strings.Join(labels, "、")))
	}
	if s.CompactScore >= 80 {
		recs = append(recs, "课程安排紧凑，课间空档少")
	}
	return recs
}

// DayLabel 工作日的中文简称
func DayLabel(d Weekday) string {
	switch d {
	case Mon:
		return "周一"
	case Tue:
		return "周二"
	case Wed:
		return "周三"
	case Thu:
		return "周四"
	case Fri:
		return "周五"
	}
	return string(d)
}
