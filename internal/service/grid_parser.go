package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/SirOwss/MASARI/internal/model"
)

// ── 原始网格解析 ────────────────────────────────────────────
//
// PDF 表格抽取由上游黑盒完成，这里只接收行×列的字符串网格。
// 抽取器按显示序输出 RTL 文本，阿拉伯文表头因此是逆序的，
// 匹配前先做 rune 级反转。
// ─────────────────────────────────────────────────────────────

var ErrRegistrarHeader = errors.New("无法识别注册办表头")

// 注册办表头的阿拉伯列名（按抽取器输出的显示序反转后比对）
const (
	headerTeacher = "ﻣﺪﺭﺱ ﺍﻟﻤﺎﺩﺓ" // 任课教师
	headerCount   = "ﺍﻟﻤﺴﺠﻠﻴﻦ"    // 注册人数
	headerTime    = "ﺍﻻﻭﻗﺎﺕ"      // 时段
	headerDays    = "ﺍﻻﻳﺎﻡ"       // 星期
	headerCourse  = "ﺍﻟﻤﺎﺩﺓ"      // 课程
	headerCredit  = "ﺍﻟﻮﺣﺪﺍﺕ"     // 学分（续行里混入课程名/班组）
	headerGroup   = "ﺍﻟﺸﻌﺒﺔ"      // 班组
)

// SectionRecord 注册办网格归一后的一行（一个教学分节）
type SectionRecord struct {
	TeacherName     string
	RawCount        string // 跨行修复前的原始报名数单元格
	RegisteredCount *int   // ReconcileCounts 之后填充
	TimeSlot        string // "HH:MM"，EndOfDaySentinel 表示未解析
	DayCode         string // U/M/T/W/R，空串表示未匹配
	DayPriority     int
	CourseName      string
	Group           string
}

// reverseRunes rune 级反转（RTL 显示序 → 逻辑序）
func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ParseRegistrarTables 解析注册办网格（每页一张表，首行为表头）。
//
// 续行约定：courseName 为空的行是上一课程的延续，真实课程名/班组
// 被抽取器挤进了多行的学分单元格；同时空 courseName/group 继承最近
// 一个非空值（显式前向填充上下文，不回改网格本身）。
func ParseRegistrarTables(tables [][][]string) ([]SectionRecord, error) {
	var records []SectionRecord

	for _, rows := range tables {
		if len(rows) < 2 {
			continue
		}

		// ── 表头列定位 ──
		cols := map[string]int{}
		for i, cell := range rows[0] {
			switch reverseRunes(strings.TrimSpace(cell)) {
			case headerTeacher:
				cols["teacher"] = i
			case headerCount:
				cols["count"] = i
			case headerTime:
				cols["time"] = i
			case headerDays:
				cols["days"] = i
			case headerCourse:
				cols["course"] = i
			case headerCredit:
				cols["credit"] = i
			case headerGroup:
				cols["group"] = i
			}
		}
		for _, key := range []string{"teacher", "count", "time", "days", "course", "group"} {
			if _, ok := cols[key]; !ok {
				return nil, fmt.Errorf("%w: 缺少列 %s", ErrRegistrarHeader, key)
			}
		}

		cell := func(row []string, key string) string {
			idx := cols[key]
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		// ── 逐行归一，携带前向填充上下文 ──
		var prevCourse, prevGroup string
		for _, row := range rows[1:] {
			courseName := strings.TrimSpace(cell(row, "course"))
			group := strings.TrimSpace(cell(row, "group"))

			// 续行：课程名/班组从多行学分单元格里找回
			if courseName == "" {
				for _, token := range strings.Split(cell(row, "credit"), "\n") {
					token = strings.TrimSpace(token)
					if strings.Contains(token, "-") {
						courseName = token
					} else if l := utf8.RuneCountInString(token); l >= 2 && l <= 3 {
						group = token
					}
				}
			}

			if courseName == "" {
				courseName = prevCourse
			} else {
				prevCourse = courseName
			}
			if group == "" {
				group = prevGroup
			} else {
				prevGroup = group
			}

			days := cell(row, "days")
			records = append(records, SectionRecord{
				TeacherName: strings.TrimSpace(cell(row, "teacher")),
				RawCount:    NormalizeDigits(cell(row, "count")),
				TimeSlot:    ExtractStartTime(cell(row, "time")),
				DayCode:     ExtractDayCode(days),
				DayPriority: DayPriority(days),
				CourseName:  NormalizeDigits(courseName),
				Group:       group,
			})
		}
	}

	return records, nil
}

// ── 时段参照网格 ──

// 注册办时段表里的阿拉伯星期名（显示序反转后包含匹配）
var arabicDayNames = []struct {
	name string
	code string
}{
	{"األحد", "U"},    // 周日
	{"االثنين", "M"},  // 周一
	{"الثالثاء", "T"}, // 周二
	{"األربعاء", "W"}, // 周三
	{"الخميس", "R"},   // 周四
}

// 晨间标记：时段单元格带 صباحاً 时按上午处理，否则默认下午
const morningMarker = "صباحاً"

// ParseTimingGrid 解析时段参照网格 → ExamTiming 列表。
//
// 每行：(examId, 多行时间, 阿拉伯星期)。取能解析的最小时间；
// 未带晨间标记时小于 12 点的时间加 12 小时（表里默认按下午书写）；
// 星期名缺失时沿用上一行（抽取器对合并单元格只在首行给值）。
func ParseTimingGrid(rows [][]string) []model.ExamTiming {
	var timings []model.ExamTiming

	prevDay := ""
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}

		examID, err := strconv.Atoi(strings.TrimSpace(NormalizeDigits(row[0])))
		if err != nil {
			continue
		}

		// 最小有效时间 + 上午/下午判定
		isPM := true
		bestHour, bestMin := -1, -1
		for _, item := range strings.Split(row[1], "\n") {
			item = strings.TrimSpace(NormalizeDigits(item))
			if hour, min, ok := parseClock(item); ok {
				if bestHour < 0 || hour < bestHour || (hour == bestHour && min < bestMin) {
					bestHour, bestMin = hour, min
				}
			} else if reverseRunes(item) == morningMarker {
				isPM = false
			}
		}
		if bestHour < 0 {
			continue
		}
		if isPM && bestHour < 12 {
			bestHour += 12
		} else if !isPM && bestHour == 12 {
			bestHour -= 12
		}

		// 星期名（合并单元格 → 前向填充）
		dayRev := reverseRunes(row[2])
		for _, d := range arabicDayNames {
			if strings.Contains(dayRev, d.name) {
				prevDay = d.code
				break
			}
		}
		if prevDay == "" {
			continue
		}

		timings = append(timings, model.ExamTiming{
			ExamID:    examID,
			HourOfDay: bestHour,
			DayCode:   prevDay,
		})
	}

	return timings
}

// ── 课程编号参照网格 ──

// ParseCourseGrid 解析课程编号网格 → CourseRef 列表，
// 只保留指定学院前缀（大小写不敏感）的课程
func ParseCourseGrid(rows [][]string, prefixes []string) []model.CourseRef {
	var refs []model.CourseRef

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		course := strings.TrimSpace(row[1])

		matched := false
		for _, p := range prefixes {
			if strings.HasPrefix(strings.ToLower(course), strings.ToLower(p)) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		examID, err := strconv.Atoi(strings.TrimSpace(NormalizeDigits(row[0])))
		if err != nil {
			continue
		}

		refs = append(refs, model.CourseRef{ExamID: examID, CourseName: course})
	}

	return refs
}

// ── 日期网格 ──

// DateEntry 日期网格展开后的一个格子：examId 在某日期的第几时段
type DateEntry struct {
	ExamID      int
	DateStrings []string // 同一表头里的多种历法表示（回历 + 公历）
	TimeSlot    int      // 1..3，对应行号
}

// 日期表头内的历法分隔符（抽取器把回历/公历挤在同一单元格）
const dateHeaderDelimiter = "م"

// ParseDateGrid 解析日期网格。表头行是复合日期字符串，正文格子是
// examId，行号即时段编号；最后一列是时段标签列，丢弃。
func ParseDateGrid(rows [][]string) []DateEntry {
	if len(rows) < 2 || len(rows[0]) == 0 {
		return nil
	}

	// 表头 → 每列的日期字符串列表
	width := len(rows[0]) - 1 // 丢最后一列
	headers := make([][]string, width)
	for col := 0; col < width; col++ {
		for _, part := range strings.Split(rows[0][col], dateHeaderDelimiter) {
			if d := cleanDateHeader(strings.Split(part, "\n")); d != "" {
				headers[col] = append(headers[col], d)
			}
		}
	}

	var entries []DateEntry
	for slot := 1; slot < len(rows); slot++ {
		for col := 0; col < width && col < len(rows[slot]); col++ {
			examID, err := strconv.Atoi(strings.TrimSpace(NormalizeDigits(rows[slot][col])))
			if err != nil {
				continue
			}
			entries = append(entries, DateEntry{
				ExamID:      examID,
				DateStrings: headers[col],
				TimeSlot:    slot,
			})
		}
	}

	return entries
}

// cleanDateHeader 把表头的一个日期片段规范成 "y-m-d"。
// 3 个数字 token 直接拼接；2 个 token 时第二个是 "日-月"，需要调序。
func cleanDateHeader(tokens []string) string {
	var parts []string
	for _, t := range tokens {
		t = strings.TrimSpace(NormalizeDigits(t))
		if !strings.ContainsAny(t, "0123456789") {
			continue
		}
		parts = append(parts, strings.Trim(t, "-"))
	}

	pad := func(s string) string {
		if len(s) == 1 {
			return "0" + s
		}
		return s
	}

	switch len(parts) {
	case 3:
		return parts[0] + "-" + pad(parts[1]) + "-" + pad(parts[2])
	case 2:
		dm := strings.SplitN(parts[1], "-", 2)
		if len(dm) != 2 {
			return ""
		}
		return parts[0] + "-" + pad(dm[1]) + "-" + pad(dm[0])
	}
	return ""
}
