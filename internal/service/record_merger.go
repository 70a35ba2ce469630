package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SirOwss/MASARI/internal/model"
)

// ── 分节合并 ────────────────────────────────────────────────
//
// 把多张表拼出的分节行收敛成每门课一行：
//
//	1. 按 (班组, 星期优先级, 时间) 排序 —— 被抽取器撕开的报名数
//	   单元格在这个序下重新相邻，随后的跨行修复才有意义；
//	2. 跨行修复报名数（count_reconciler）；
//	3. 丢弃报名数缺失/为 0、教师为空的行；
//	4. 同 (课程, 班组) 保留排序后的首行；
//	5. 按课程聚合：报名数求和、教师并集去重、examId 取首行；
//	6. 课程名规范化后套排除清单 —— 排除在聚合之后做，
//	   保证被排除课程的人数不会混进其它课程的合计。
//
// examId 解析：课程名参照表优先；缺失时用 (小时, 星期码) 反查
// 时段参照表；两者都失配则为 nil。
// ─────────────────────────────────────────────────────────────

// CourseRecord 聚合后的一门课程
type CourseRecord struct {
	CourseName      string // 规范形 "DEPT-NUMBER"
	RegisteredCount int    // 各班组合计
	TeacherNames    []string
	ExamID          *int
}

// MergeSections 分节行 → 课程行。
// courseRefs 以规范课程名为键；excluded 为规范名排除集合。
func MergeSections(
	sections []SectionRecord,
	courseRefs map[string]int,
	timings []model.ExamTiming,
	excluded map[string]bool,
) ([]CourseRecord, []DroppedTokenWarning) {
	// ── 1. 排序（副本上操作，不改输入）──
	sorted := make([]SectionRecord, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		if sorted[i].DayPriority != sorted[j].DayPriority {
			return sorted[i].DayPriority < sorted[j].DayPriority
		}
		return sorted[i].TimeSlot < sorted[j].TimeSlot
	})

	// ── 2. 跨行修复报名数 ──
	rawCounts := make([]string, len(sorted))
	for i := range sorted {
		rawCounts[i] = sorted[i].RawCount
	}
	counts, warnings := ReconcileCounts(rawCounts)
	for i := range sorted {
		sorted[i].RegisteredCount = counts[i]
	}
	// 告警回填课程/班组，否则行序号对操作员无意义
	for i := range warnings {
		if row := warnings[i].Row; row >= 0 && row < len(sorted) {
			warnings[i].Course = sorted[row].CourseName
			warnings[i].Group = sorted[row].Group
		}
	}

	// ── 3+4. 过滤并按 (课程, 班组) 取首行 ──
	type sectionKey struct{ course, group string }
	seen := make(map[sectionKey]bool)
	var kept []SectionRecord
	for _, rec := range sorted {
		if rec.RegisteredCount == nil || *rec.RegisteredCount == 0 {
			continue
		}
		if rec.TeacherName == "" {
			continue
		}
		key := sectionKey{rec.CourseName, rec.Group}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}

	// ── 5. 按课程聚合 ──
	type aggregate struct {
		count      int
		teachers   []string
		teacherSet map[string]bool
		first      SectionRecord // examId 反查用
	}
	aggs := make(map[string]*aggregate)
	var order []string
	for _, rec := range kept {
		a, ok := aggs[rec.CourseName]
		if !ok {
			a = &aggregate{teacherSet: make(map[string]bool), first: rec}
			aggs[rec.CourseName] = a
			order = append(order, rec.CourseName)
		}
		a.count += *rec.RegisteredCount
		if !a.teacherSet[rec.TeacherName] {
			a.teacherSet[rec.TeacherName] = true
			a.teachers = append(a.teachers, rec.TeacherName)
		}
	}
	sort.Strings(order)

	// ── 6. 规范化 + 排除 + examId 解析 ──
	var result []CourseRecord
	for _, name := range order {
		a := aggs[name]
		canonical := CanonicalCourseName(name)
		if excluded[canonical] {
			continue
		}

		var examID *int
		if id, ok := courseRefs[canonical]; ok {
			examID = &id
		} else if id, ok := lookupTimingExamID(a.first, timings); ok {
			examID = &id
		}

		result = append(result, CourseRecord{
			CourseName:      canonical,
			RegisteredCount: a.count,
			TeacherNames:    a.teachers,
			ExamID:          examID,
		})
	}

	return result, warnings
}

// lookupTimingExamID 用首行的 (小时, 星期码) 在时段参照表反查 examId
func lookupTimingExamID(rec SectionRecord, timings []model.ExamTiming) (int, bool) {
	hourStr, _, found := strings.Cut(rec.TimeSlot, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, false
	}
	for _, t := range timings {
		if t.HourOfDay == hour && t.DayCode == rec.DayCode {
			return t.ExamID, true
		}
	}
	return 0, false
}
