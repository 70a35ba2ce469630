package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ── 字段级解析器 ────────────────────────────────────────────
//
// 上游表格抽取出的单元格噪声很大：阿拉伯-印度数字、RTL 文本反转、
// 时段标签格式混杂。这里只做单元格内部的语义归一；
// 跨行的报名数修复见 count_reconciler.go。
// ─────────────────────────────────────────────────────────────

// dayOrder 星期码固定顺序：U=周日 M=周一 T=周二 W=周三 R=周四
var dayOrder = []string{"U", "M", "T", "W", "R"}

// DayPriorityNone 未匹配到星期码时的排序优先级（排到最后）
const DayPriorityNone = math.MaxInt32

// EndOfDaySentinel 无法解析的时段标签用 23:59 作排序哨兵，
// 只用于把这类行排到最后，不代表真实考试时间。
const EndOfDaySentinel = "23:59"

// arabicDigits 阿拉伯-印度数字字形 → 西文数字
var arabicDigits = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// NormalizeDigits 逐字符替换阿拉伯-印度数字字形，其余字符原样保留
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := arabicDigits[r]; ok {
			return d
		}
		return r
	}, s)
}

// fourDigitPattern 形如 "0930" 的无分隔 4 位时间
var fourDigitPattern = regexp.MustCompile(`^\d{4}$`)

// ExtractStartTime 从自由格式的时段标签提取 "HH:MM"
//
// 规则：含 '-' 时取分隔符后的部分，否则取整段；恰为 4 位数字时在
// 前两位后补冒号；解析失败返回 EndOfDaySentinel。
func ExtractStartTime(label string) string {
	label = NormalizeDigits(strings.TrimSpace(label))
	if label == "" {
		return EndOfDaySentinel
	}

	timeStr := label
	if strings.Contains(label, "-") {
		timeStr = strings.TrimSpace(strings.Split(label, "-")[1])
	}

	if fourDigitPattern.MatchString(timeStr) {
		timeStr = timeStr[:2] + ":" + timeStr[2:]
	}

	hour, minute, ok := parseClock(timeStr)
	if !ok {
		return EndOfDaySentinel
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// parseClock 解析 "H:MM" / "HH:MM" 为 24 小时制时分
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ExtractDayCode 从星期标签提取第一个匹配的单字母星期码，未匹配返回空串
func ExtractDayCode(label string) string {
	for _, d := range dayOrder {
		if strings.Contains(label, d) {
			return d
		}
	}
	return ""
}

// DayPriority 星期标签 → 排序优先级（按 dayOrder 的固定次序）
func DayPriority(label string) int {
	for i, d := range dayOrder {
		if strings.Contains(label, d) {
			return i
		}
	}
	return DayPriorityNone
}

// courseNamePattern 形如 "199-COCS" 的数字前置课程名
var courseNamePattern = regexp.MustCompile(`^(\d+)-([A-Z]+)`)

// CanonicalCourseName 课程名规范化："199-COCS" → "COCS-199"；
// 其它形状原样返回
func CanonicalCourseName(name string) string {
	m := courseNamePattern.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[2] + "-" + m[1]
}
