package service

import (
	"sort"
	"strings"
	"time"
)

// ── 课表装配 ────────────────────────────────────────────────
//
// 把已分配考场的课程行装配成最终课表：解析双历日期、按
// (日期, 时段) 排序、计算日期组的着色序，以及同日期连续行的
// 合并跨度。日期解析失败的行不丢弃，排到末尾且永不参与合并。
// ─────────────────────────────────────────────────────────────

// 公历日期的两种来源格式
var gregorianLayouts = []string{"2006-01-02", "02/01/2006"}

// ScheduleRow 课表的一行（一门课程）
type ScheduleRow struct {
	CourseName   string           `json:"course_name"`
	Teachers     []string         `json:"teachers"`
	StudentCount int              `json:"student_count"`
	DateStrings  []string         `json:"date_strings"` // 原始双历日期串
	Date         *time.Time       `json:"-"`
	DateText     string           `json:"date,omitempty"`    // "2006-01-02"，解析失败为空
	IslamicDate  string           `json:"islamic_date,omitempty"`
	DayName      string           `json:"day_name,omitempty"` // 英文星期名
	Slot         int              `json:"slot"`
	Allocation   AllocationResult `json:"allocation"`
	Shaded       bool             `json:"shaded"`
	DateSpan     int              `json:"date_span"` // 0 表示并入上方行的日期格
}

// ParseGregorianDate 从双历日期串中解析公历日期。
// 公历惯例排在列表末尾，故倒序尝试，两种格式依次匹配。
func ParseGregorianDate(dateStrings []string) *time.Time {
	for i := len(dateStrings) - 1; i >= 0; i-- {
		s := strings.TrimSpace(dateStrings[i])
		for _, layout := range gregorianLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

// ExtractIslamicDate 取出伊斯兰历日期：第一个不等于公历任一
// 渲染形式的元素。公历缺失时退回首元素。
func ExtractIslamicDate(dateStrings []string, greg *time.Time) string {
	if len(dateStrings) == 0 {
		return ""
	}
	if greg == nil {
		return strings.TrimSpace(dateStrings[0])
	}
	for _, s := range dateStrings {
		s = strings.TrimSpace(s)
		match := false
		for _, layout := range gregorianLayouts {
			if s == greg.Format(layout) {
				match = true
				break
			}
		}
		if !match {
			return s
		}
	}
	return ""
}

// AssembleSchedule 装配最终课表（原地补全派生字段并返回排序后
// 的切片）。输入顺序仅作排序平局时的次序依据。
func AssembleSchedule(rows []ScheduleRow) []ScheduleRow {
	for i := range rows {
		r := &rows[i]
		r.Date = ParseGregorianDate(r.DateStrings)
		r.IslamicDate = ExtractIslamicDate(r.DateStrings, r.Date)
		if r.Date != nil {
			r.DateText = r.Date.Format("2006-01-02")
			r.DayName = r.Date.Weekday().String()
		}
	}

	// 无日期行排到末尾；同日期内按时段升序
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].Date, rows[j].Date
		switch {
		case di == nil && dj == nil:
			return rows[i].Slot < rows[j].Slot
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return rows[i].Slot < rows[j].Slot
		}
	})

	// 日期组的稠密序号：偶数组着色（隔日交替底纹）。
	// 无法解析日期的行 DateText 为空，共享同一个末尾组。
	rank := 0
	prevKey := ""
	for i := range rows {
		key := rows[i].DateText
		if i == 0 || key != prevKey {
			rank++
			prevKey = key
		}
		rows[i].Shaded = rank%2 == 0
	}

	// 连续同日期行合并日期格；不可解析日期的行各自独立
	for i := 0; i < len(rows); {
		if rows[i].Date == nil {
			rows[i].DateSpan = 1
			i++
			continue
		}
		j := i + 1
		for j < len(rows) && rows[j].Date != nil && rows[j].Date.Equal(*rows[i].Date) {
			j++
		}
		rows[i].DateSpan = j - i
		for k := i + 1; k < j; k++ {
			rows[k].DateSpan = 0
		}
		i = j
	}

	return rows
}
