package planner

// FilterSchedules 按筛选条件过滤候选课表。
//
// 条件之间为 AND，遇到首个不满足的条件即短路：
//   - 必须空出的工作日都要出现在课表的 EmptyDays 中
//   - 任一上课时间若落在排除节次内，整张课表被排除
//
// 输出保持输入顺序，不做排序。MaxCredits 在生成阶段处理，这里不读取。
func FilterSchedules(schedules []Schedule, filters ScheduleFilters) []Schedule {
	result := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		if !hasRequiredEmptyDays(s, filters.EmptyDays) {
			continue
		}
		if hitsExcludedPeriod(s, filters.ExcludePeriods) {
			continue
		}
		result = append(result, s)
	}
	return result
}

func hasRequiredEmptyDays(s Schedule, required []Weekday) bool {
	if len(required) == 0 {
		return true
	}
	empty := make(map[Weekday]bool, len(s.EmptyDays))
	for _, d := range s.EmptyDays {
		empty[d] = true
	}
	for _, d := range required {
		if !empty[d] {
			return false
		}
	}
	return true
}

func hitsExcludedPeriod(s Schedule, rules []PeriodExclusion) bool {
	if len(rules) == 0 {
		return false
	}
	for _, c := range s.Courses {
		for _, sl := range c.Slots {
			start, end := SlotPeriods(sl)
			for _, rule := range rules {
				if rule.Day != sl.Day {
					continue
				}
				for _, p := range rule.Periods {
					if p >= start && p <= end {
						return true
					}
				}
			}
		}
	}
	return false
}
