package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
)

// ── 课表渲染 ────────────────────────────────────────────────
//
// 纯渲染器：输入装配完成的课表行，输出 xlsx / ics 字节流。
// 不查库、不持状态，由生成服务在运行末尾调用并缓存产物。
// ─────────────────────────────────────────────────────────────

// 时段展示标签（考表面向英文读者）
var slotLabels = map[int]string{
	1: "09:00 AM to 11:00 AM",
	2: "11:30 AM to 01:30 PM",
	3: "02:00 PM to 04:00 PM",
}

// 时段起止时刻（ICS 用），hour*60+minute
var slotIntervals = map[int][2]int{
	1: {9 * 60, 11 * 60},
	2: {11*60 + 30, 13*60 + 30},
	3: {14 * 60, 16 * 60},
}

// 奇偶日期组交替底纹的浅灰
const shadeColor = "#D3D3D3"

// Exporter 课表渲染器
type Exporter struct {
	loc *time.Location
}

// NewExporter 创建渲染器。时区加载失败时退回固定 UTC+3。
func NewExporter() *Exporter {
	loc, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		loc = time.FixedZone("AST", 3*3600)
	}
	return &Exporter{loc: loc}
}

// ═══════════════════════════════════════════════════════════
// RenderXLSX — 课表 → Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行跨全部 6 列
//   - 表头: S# | Course Name | Instructor(s) (#Students) | Exam Day & Date | Exam Time | Exam Room
//   - 日期列按 DateSpan 纵向合并；偶数日期组整行底纹
//   - 考场列每行一间 "101 — 监考教师"，座位不足时追加缺口行

func (e *Exporter) RenderXLSX(title string, rows []ScheduleRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 5)
	f.SetColWidth(sheet, "B", "B", 16)
	f.SetColWidth(sheet, "C", "C", 42)
	f.SetColWidth(sheet, "D", "D", 24)
	f.SetColWidth(sheet, "E", "E", 22)
	f.SetColWidth(sheet, "F", "F", 30)

	// ── 样式 ──
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	plainStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	shadedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{shadeColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// ── 标题 + 表头 ──
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "F1", titleStyle)

	headers := []string{"S#", "Course Name", "Instructor(s) (#Students)", "Exam Day & Date", "Exam Time", "Exam Room"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"2", h)
	}
	f.SetCellStyle(sheet, "A2", "F2", headerStyle)

	// ── 数据行 ──
	base := 3
	for i, r := range rows {
		rowNum := base + i

		f.SetCellValue(sheet, cell("A", rowNum), i+1)
		f.SetCellValue(sheet, cell("B", rowNum), r.CourseName)
		f.SetCellValue(sheet, cell("C", rowNum), instructorCell(r))

		// 日期格只在跨度首行写值；合并在值写入之后做
		if r.DateSpan > 0 {
			f.SetCellValue(sheet, cell("D", rowNum), dateCell(r))
			if r.DateSpan > 1 {
				f.MergeCell(sheet, cell("D", rowNum), cell("D", rowNum+r.DateSpan-1))
			}
		}

		if label, ok := slotLabels[r.Slot]; ok {
			f.SetCellValue(sheet, cell("E", rowNum), label)
		}
		f.SetCellValue(sheet, cell("F", rowNum), roomCell(r.Allocation))

		style := plainStyle
		if r.Shaded {
			style = shadedStyle
		}
		f.SetCellStyle(sheet, cell("A", rowNum), cell("F", rowNum), style)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// instructorCell "Dr. A / Dr. B (#85)"
func instructorCell(r ScheduleRow) string {
	return fmt.Sprintf("%s (#%d)", strings.Join(r.Teachers, " / "), r.StudentCount)
}

// dateCell 三行：星期名、回历、公历。公历缺失时退回原始串。
func dateCell(r ScheduleRow) string {
	if r.DateText == "" {
		return strings.Join(r.DateStrings, "\n")
	}
	parts := []string{r.DayName}
	if r.IslamicDate != "" {
		parts = append(parts, r.IslamicDate)
	}
	parts = append(parts, r.DateText)
	return strings.Join(parts, "\n")
}

// roomCell 每间考场一行；未安置人数单独成行
func roomCell(a AllocationResult) string {
	if len(a.Rooms) == 0 {
		return fmt.Sprintf("No room available (%d unseated)", a.Shortage)
	}
	var lines []string
	for _, room := range a.Rooms {
		if room.Teacher != "" {
			lines = append(lines, fmt.Sprintf("%d — %s", room.RoomID, room.Teacher))
		} else {
			lines = append(lines, fmt.Sprintf("%d", room.RoomID))
		}
	}
	if a.Shortage > 0 {
		lines = append(lines, fmt.Sprintf("%d unseated", a.Shortage))
	}
	return strings.Join(lines, "\n")
}

// ═══════════════════════════════════════════════════════════
// RenderICS — 课表 → iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每门有公历考期的课程一个 VEVENT；无法解析日期或时段的行
// 不进日历（xlsx 仍完整保留全部行）。

func (e *Exporter) RenderICS(title string, rows []ScheduleRow) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//MASARI//Exam Schedule//EN")
	cal.SetName(title)

	for i, r := range rows {
		if r.Date == nil {
			continue
		}
		interval, ok := slotIntervals[r.Slot]
		if !ok {
			continue
		}

		d := *r.Date
		start := time.Date(d.Year(), d.Month(), d.Day(), interval[0]/60, interval[0]%60, 0, 0, e.loc)
		end := time.Date(d.Year(), d.Month(), d.Day(), interval[1]/60, interval[1]%60, 0, 0, e.loc)

		evt := cal.AddEvent(fmt.Sprintf("exam-%d-%s@masari", i+1, r.CourseName))
		evt.SetSummary(fmt.Sprintf("%s Final Exam", r.CourseName))
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetDtStampTime(time.Now())
		evt.SetDescription(instructorCell(r))
		if len(r.Allocation.Rooms) > 0 {
			var ids []string
			for _, room := range r.Allocation.Rooms {
				ids = append(ids, fmt.Sprintf("%d", room.RoomID))
			}
			evt.SetLocation("Room " + strings.Join(ids, ", "))
		}
	}

	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
