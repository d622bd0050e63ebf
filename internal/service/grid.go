package service

import (
	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/planner"
)

// buildGrid 计算一个课表的周视图：网格小时范围 + 每天的列分配
func buildGrid(sch planner.Schedule) *dto.GridResponse {
	startHour, endHour := planner.GridBounds(sch.Courses)
	week := planner.LayoutWeek(sch.Courses)

	days := make([]dto.GridDayResponse, 0, len(planner.Weekdays))
	for _, day := range planner.Weekdays {
		positioned := week[day]
		slots := make([]dto.GridSlotResponse, 0, len(positioned))
		for _, p := range positioned {
			slots = append(slots, dto.GridSlotResponse{
				CourseID:     p.Course.ID,
				Code:         p.Course.Code,
				Name:         p.Course.Name,
				Location:     p.Slot.Location,
				Color:        p.Course.Color,
				StartTime:    p.Slot.StartTime,
				EndTime:      p.Slot.EndTime,
				ColumnIndex:  p.ColumnIndex,
				TotalColumns: p.TotalColumns,
			})
		}
		days = append(days, dto.GridDayResponse{
			Day:        string(day),
			MaxColumns: planner.MaxColumns(positioned),
			Slots:      slots,
		})
	}

	return &dto.GridResponse{
		ScheduleID: sch.ID,
		StartHour:  startHour,
		EndHour:    endHour,
		Days:       days,
	}
}
