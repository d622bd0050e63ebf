package planner

import "sort"

// ════════════════════════════════════════════════════════════
// AssignPositions — 单日时间块的列布局
// ════════════════════════════════════════════════════════════
//
// 流程：
//   1. 按开始时间稳定排序（相同开始时间保持输入顺序）
//   2. 从左到右扫描，维护与当前块重叠的活动集合
//   3. 当前块取活动集合未占用的最小列号（首次适配，区间图贪心着色）
//   4. 同一重叠连通簇内所有块共享 TotalColumns = 簇内最大列号 + 1
//
// 区间图的连通分量在按开始时间排序后是连续的，因此第 4 步用一次线性扫描
// 划分簇，与反复扫描直到收敛的写法结果一致。

// AssignPositions 为同一工作日的上课时间分配列位置。
// 输入应已由调用方按工作日过滤；入参不会被修改。
func AssignPositions(slots []SlotRef) []PositionedSlot {
	if len(slots) == 0 {
		return []PositionedSlot{}
	}

	type span struct {
		ref   SlotRef
		start int
		end   int
	}
	spans := make([]span, len(slots))
	for i, s := range slots {
		spans[i] = span{
			ref:   s,
			start: TimeToMinutes(s.Slot.StartTime),
			end:   TimeToMinutes(s.Slot.EndTime),
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	columns := make([]int, len(spans))
	var active []int // spans 下标

	for i, cur := range spans {
		// 剔除不再与当前块重叠的活动块
		kept := active[:0]
		for _, a := range active {
			if overlaps(spans[a].start, spans[a].end, cur.start, cur.end) {
				kept = append(kept, a)
			}
		}
		active = kept

		used := make(map[int]bool, len(active))
		for _, a := range active {
			used[columns[a]] = true
		}
		col := 0
		for used[col] {
			col++
		}
		columns[i] = col
		active = append(active, i)
	}

	result := make([]PositionedSlot, len(spans))
	clusterStart := 0
	clusterEnd := spans[0].end
	maxCol := columns[0]

	flush := func(from, to, width int) {
		for k := from; k < to; k++ {
			result[k] = PositionedSlot{
				Course:       spans[k].ref.Course,
				Slot:         spans[k].ref.Slot,
				ColumnIndex:  columns[k],
				TotalColumns: width,
			}
		}
	}

	for i := 1; i < len(spans); i++ {
		if spans[i].start >= clusterEnd {
			flush(clusterStart, i, maxCol+1)
			clusterStart = i
			clusterEnd = spans[i].end
			maxCol = columns[i]
			continue
		}
		if spans[i].end > clusterEnd {
			clusterEnd = spans[i].end
		}
		if columns[i] > maxCol {
			maxCol = columns[i]
		}
	}
	flush(clusterStart, len(spans), maxCol+1)

	return result
}

// LayoutWeek 按工作日分组并分别布局。
// 只包含有课的工作日；非法工作日的上课时间被忽略。
func LayoutWeek(courses []Course) map[Weekday][]PositionedSlot {
	byDay := make(map[Weekday][]SlotRef)
	for _, c := range courses {
		for _, sl := range c.Slots {
			if !sl.Day.Valid() {
				continue
			}
			byDay[sl.Day] = append(byDay[sl.Day], SlotRef{Course: c, Slot: sl})
		}
	}

	out := make(map[Weekday][]PositionedSlot, len(byDay))
	for day, refs := range byDay {
		out[day] = AssignPositions(refs)
	}
	return out
}

// MaxColumns 返回一天内布局所需的最大列数（无课时为 1）
func MaxColumns(positioned []PositionedSlot) int {
	maxCols := 1
	for _, p := range positioned {
		if p.TotalColumns > maxCols {
			maxCols = p.TotalColumns
		}
	}
	return maxCols
}
