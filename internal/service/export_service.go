package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gangnaeng/backend/config"
	"gangnaeng/backend/internal/planner"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptySchedule = errors.New("课表中没有课程，无法导出")
	ErrExportGenerateFail  = errors.New("生成导出文件失败")
)

const (
	excelSheetName  = "课表"
	excelHeaderRows = 2 // 标题行 + 星期行
	noCourseCode    = "-"
)

// 候选行粒度（分钟），取能整除所有上课起止时刻的最大值
var excelRowSteps = []int{30, 15, 10, 5, 1}

// 课程块默认配色（课程未指定颜色时按出现顺序轮换）
var blockPalette = []string{"#FDE2E4", "#E2ECE9", "#DFE7FD", "#FFF1E6", "#E8E8E4", "#F0EFEB", "#D7E3FC", "#FAD2E1"}

// ExportService 课表导出接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportExcel 导出为 Excel 周视图（默认 30 分钟一行，重叠课程并排）
	ExportExcel(sch planner.Schedule, title string) (*bytes.Buffer, string, error)
	// ExportICS 导出为 iCalendar，每个上课时间一个按周重复的事件
	ExportICS(sch planner.Schedule, title string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.ExportConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.ExportConfig, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - A 列为时间（GridBounds 范围内按 excelRowStep 分行，默认 30 分钟）
//   - 每个工作日占 MaxColumns 个子列，星期表头横向合并
//   - 课程块纵向合并其覆盖的行，横向按 ColumnIndex/TotalColumns 比例占用子列

func (s *exportService) ExportExcel(sch planner.Schedule, title string) (*bytes.Buffer, string, error) {
	if len(sch.Courses) == 0 {
		return nil, "", ErrExportEmptySchedule
	}

	startHour, endHour := planner.GridBounds(sch.Courses)
	gridStart := startHour * 60
	step := excelRowStep(sch.Courses, gridStart)
	rows := (endHour - startHour) * 60 / step

	week := planner.LayoutWeek(sch.Courses)
	dayCol := make(map[planner.Weekday]int, len(planner.Weekdays)) // 每天第一个子列（1 起）
	dayWidth := make(map[planner.Weekday]int, len(planner.Weekdays))
	col := 2
	for _, d := range planner.Weekdays {
		dayCol[d] = col
		dayWidth[d] = planner.MaxColumns(week[d])
		col += dayWidth[d]
	}
	lastCol := col - 1

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(excelSheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(excelSheetName, "A", "A", 8)
	for _, d := range planner.Weekdays {
		width := 18.0 / float64(dayWidth[d])
		if width < 9 {
			width = 9
		}
		first, last := colName(dayCol[d]-1), colName(dayCol[d]+dayWidth[d]-2)
		f.SetColWidth(excelSheetName, first, last, width)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	timeStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9, Color: "#666666"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	})

	// 标题行
	f.SetCellValue(excelSheetName, "A1", title)
	f.MergeCell(excelSheetName, "A1", cell(colName(lastCol-1), 1))
	f.SetCellStyle(excelSheetName, "A1", cell(colName(lastCol-1), 1), headerStyle)

	// 星期表头
	f.SetCellValue(excelSheetName, "A2", "时间")
	for _, d := range planner.Weekdays {
		first := cell(colName(dayCol[d]-1), 2)
		last := cell(colName(dayCol[d]+dayWidth[d]-2), 2)
		f.SetCellValue(excelSheetName, first, planner.DayLabel(d))
		if first != last {
			f.MergeCell(excelSheetName, first, last)
		}
	}
	f.SetCellStyle(excelSheetName, "A2", cell(colName(lastCol-1), 2), headerStyle)

	// 时间列
	for r := 0; r < rows; r++ {
		c := cell("A", excelHeaderRows+1+r)
		f.SetCellValue(excelSheetName, c, planner.MinutesToTime(gridStart+r*step))
		f.SetCellStyle(excelSheetName, c, c, timeStyle)
	}

	// 课程块
	colors := courseColors(sch.Courses)
	for _, d := range planner.Weekdays {
		for _, p := range week[d] {
			top, bottom := blockRows(p.Slot, gridStart, step, rows)
			left, right := blockCols(p, dayCol[d], dayWidth[d])

			first := cell(colName(left-1), top)
			last := cell(colName(right-1), bottom)
			text := p.Course.Name
			if p.Slot.Location != "" {
				text += "\n" + p.Slot.Location
			}
			f.SetCellValue(excelSheetName, first, text)
			if first != last {
				f.MergeCell(excelSheetName, first, last)
			}

			style, err := f.NewStyle(&excelize.Style{
				Font:      &excelize.Font{Size: 9},
				Fill:      excelize.Fill{Type: "pattern", Color: []string{colors[p.Course.ID]}, Pattern: 1},
				Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
				Border: []excelize.Border{
					{Type: "left", Color: "#FFFFFF", Style: 2},
					{Type: "right", Color: "#FFFFFF", Style: 2},
				},
			})
			if err == nil {
				f.SetCellStyle(excelSheetName, first, last, style)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("课表_%s.xlsx", title), nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(sch planner.Schedule, title string) (*bytes.Buffer, string, error) {
	if len(sch.Courses) == 0 {
		return nil, "", ErrExportEmptySchedule
	}

	loc := loadLocation(s.cfg.Timezone)
	semesterStart, err := time.ParseInLocation("2006-01-02", s.cfg.SemesterStart, loc)
	if err != nil {
		s.logger.Error("学期开始日期无效", zap.String("semester_start", s.cfg.SemesterStart), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	// 对齐到该周周一
	offset := (int(semesterStart.Weekday()) + 6) % 7
	monday := semesterStart.AddDate(0, 0, -offset)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//GangNaeng//Schedule Planner//KO")
	cal.SetXWRCalName(title)
	cal.SetXWRTimezone(loc.String())

	stamp := s.now()
	for _, c := range sch.Courses {
		for i, sl := range c.Slots {
			if !sl.Day.Valid() {
				continue
			}
			day := monday.AddDate(0, 0, sl.Day.Index())
			start := day.Add(time.Duration(planner.TimeToMinutes(sl.StartTime)) * time.Minute)
			end := day.Add(time.Duration(planner.TimeToMinutes(sl.EndTime)) * time.Minute)

			evt := cal.AddEvent(fmt.Sprintf("%s-%d@gangnaeng", c.ID, i))
			evt.SetDtStampTime(stamp)
			evt.SetStartAt(start)
			evt.SetEndAt(end)
			evt.SetSummary(c.Name)
			if sl.Location != "" {
				evt.SetLocation(sl.Location)
			}
			evt.SetDescription(courseDescription(c))
			evt.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", s.cfg.SemesterWeeks))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, fmt.Sprintf("课表_%s.ics", title), nil
}

// ── 辅助函数 ──

// excelRowStep 选取行粒度：所有上课起止时刻都落在行边界上，
// 首尾相接的两节课（如 10:15 下课、10:15 上课）不会争用同一行
func excelRowStep(courses []planner.Course, gridStart int) int {
	for _, step := range excelRowSteps {
		aligned := true
		for _, c := range courses {
			for _, sl := range c.Slots {
				start := planner.TimeToMinutes(sl.StartTime) - gridStart
				end := planner.TimeToMinutes(sl.EndTime) - gridStart
				if start%step != 0 || end%step != 0 {
					aligned = false
					break
				}
			}
			if !aligned {
				break
			}
		}
		if aligned {
			return step
		}
	}
	return 1
}

// blockRows 课程块覆盖的行范围（含两端，行号 1 起），结束时刻不占行
func blockRows(sl planner.TimeSlot, gridStart, step, rows int) (int, int) {
	start := planner.TimeToMinutes(sl.StartTime) - gridStart
	end := planner.TimeToMinutes(sl.EndTime) - gridStart
	top := start / step
	bottom := (end - 1) / step
	if top < 0 {
		top = 0
	}
	if bottom >= rows {
		bottom = rows - 1
	}
	if bottom < top {
		bottom = top
	}
	return excelHeaderRows + 1 + top, excelHeaderRows + 1 + bottom
}

// blockCols 课程块占用的子列范围（含两端，列号 1 起）
// 同一天不同重叠簇的 TotalColumns 可能不同，按比例映射到当天的 width 个子列
func blockCols(p planner.PositionedSlot, firstCol, width int) (int, int) {
	total := p.TotalColumns
	if total <= 0 {
		total = 1
	}
	left := p.ColumnIndex * width / total
	right := (p.ColumnIndex+1)*width/total - 1
	if right < left {
		right = left
	}
	return firstCol + left, firstCol + right
}

func courseColors(courses []planner.Course) map[string]string {
	colors := make(map[string]string, len(courses))
	for i, c := range courses {
		if c.Color != "" {
			colors[c.ID] = c.Color
			continue
		}
		colors[c.ID] = blockPalette[i%len(blockPalette)]
	}
	return colors
}

// courseDescription 写入 "CODE-SECTION 教授 (N 学分)"，无代码时以 "-" 占位
func courseDescription(c planner.Course) string {
	desc := noCourseCode
	if c.Code != "" {
		desc = c.Code
		if c.Section != "" {
			desc += "-" + c.Section
		}
	}
	if c.Professor != "" {
		desc += " " + c.Professor
	}
	return fmt.Sprintf("%s (%d 学分)", desc, c.Credits)
}

// loadLocation 时区数据缺失时退回 UTC+9
func loadLocation(name string) *time.Location {
	if name == "" {
		name = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 9*60*60)
	}
	return loc
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
