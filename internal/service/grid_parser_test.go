package service

import (
	"errors"
	"testing"
)

// registrarHeader 按抽取器的显示序构造表头行
func registrarHeader() []string {
	return []string{
		reverseRunes(headerTeacher),
		reverseRunes(headerCount),
		reverseRunes(headerTime),
		reverseRunes(headerDays),
		reverseRunes(headerCourse),
		reverseRunes(headerCredit),
		reverseRunes(headerGroup),
	}
}

func TestParseRegistrarTables_基本行(t *testing.T) {
	tables := [][][]string{{
		registrarHeader(),
		{"Dr. Ahmed", "25", "11:00 - 9:30", "U", "199-COCS", "3", "F1"},
	}}

	records, err := ParseRegistrarTables(tables)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("期望 1 条记录，实际=%d", len(records))
	}

	r := records[0]
	if r.TeacherName != "Dr. Ahmed" {
		t.Errorf("期望教师 Dr. Ahmed，实际=%s", r.TeacherName)
	}
	if r.RawCount != "25" {
		t.Errorf("期望原始报名数 25，实际=%s", r.RawCount)
	}
	if r.TimeSlot != "09:30" {
		t.Errorf("期望时段 09:30，实际=%s", r.TimeSlot)
	}
	if r.DayCode != "U" || r.DayPriority != 0 {
		t.Errorf("期望星期 (U, 0)，实际=(%s, %d)", r.DayCode, r.DayPriority)
	}
	if r.CourseName != "199-COCS" || r.Group != "F1" {
		t.Errorf("期望课程 (199-COCS, F1)，实际=(%s, %s)", r.CourseName, r.Group)
	}
}

func TestParseRegistrarTables_续行从学分单元格找回课程(t *testing.T) {
	tables := [][][]string{{
		registrarHeader(),
		{"Dr. A", "25", "11:00 - 9:30", "U", "199-COCS", "3", "F1"},
		// 课程名为空：真实课程名/班组挤进了多行学分单元格
		{"Dr. B", "30", "11:00 - 9:30", "M", "", "3\n201-COCS\nM1", ""},
		// 课程和学分都空：继承最近的非空值
		{"Dr. C", "18", "13:30 - 11:30", "M", "", "3", ""},
	}}

	records, err := ParseRegistrarTables(tables)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("期望 3 条记录，实际=%d", len(records))
	}

	if records[1].CourseName != "201-COCS" || records[1].Group != "M1" {
		t.Errorf("续行期望 (201-COCS, M1)，实际=(%s, %s)", records[1].CourseName, records[1].Group)
	}
	if records[2].CourseName != "201-COCS" || records[2].Group != "M1" {
		t.Errorf("前向填充期望 (201-COCS, M1)，实际=(%s, %s)", records[2].CourseName, records[2].Group)
	}
}

func TestParseRegistrarTables_表头缺列(t *testing.T) {
	header := registrarHeader()
	header[0] = "not a header" // 缺 teacher 列

	_, err := ParseRegistrarTables([][][]string{{
		header,
		{"x", "25", "9:30", "U", "199-COCS", "3", "F1"},
	}})
	if !errors.Is(err, ErrRegistrarHeader) {
		t.Errorf("期望 ErrRegistrarHeader，实际: %v", err)
	}
}

func TestParseTimingGrid(t *testing.T) {
	rows := [][]string{
		// 默认下午：4:30 → 16 点；取最小时间
		{"105", "6:30\n4:30", reverseRunes("األحد")},
		// 晨间标记 + 星期合并单元格前向填充
		{"١٠٦", "9:30\n" + reverseRunes(morningMarker), ""},
		// examId 非数字 → 跳过
		{"n/a", "9:30", reverseRunes("الخميس")},
	}

	timings := ParseTimingGrid(rows)
	if len(timings) != 2 {
		t.Fatalf("期望 2 条记录，实际=%d", len(timings))
	}

	if timings[0].ExamID != 105 || timings[0].HourOfDay != 16 || timings[0].DayCode != "U" {
		t.Errorf("期望 (105, 16, U)，实际=(%d, %d, %s)", timings[0].ExamID, timings[0].HourOfDay, timings[0].DayCode)
	}
	if timings[1].ExamID != 106 || timings[1].HourOfDay != 9 || timings[1].DayCode != "U" {
		t.Errorf("期望 (106, 9, U)，实际=(%d, %d, %s)", timings[1].ExamID, timings[1].HourOfDay, timings[1].DayCode)
	}
}

func TestParseCourseGrid_仅保留学院前缀(t *testing.T) {
	rows := [][]string{
		{"12", "COCS-199"},
		{"13", "MATH-101"},
		{"١٤", "coit-201"}, // 阿拉伯数字 + 小写前缀
	}

	refs := ParseCourseGrid(rows, []string{"cocs", "coit", "cois"})
	if len(refs) != 2 {
		t.Fatalf("期望 2 条记录，实际=%d", len(refs))
	}
	if refs[0].ExamID != 12 || refs[0].CourseName != "COCS-199" {
		t.Errorf("期望 (12, COCS-199)，实际=(%d, %s)", refs[0].ExamID, refs[0].CourseName)
	}
	if refs[1].ExamID != 14 || refs[1].CourseName != "coit-201" {
		t.Errorf("期望 (14, coit-201)，实际=(%d, %s)", refs[1].ExamID, refs[1].CourseName)
	}
}

func TestParseDateGrid(t *testing.T) {
	rows := [][]string{
		// 双历表头（回历 3 段 + 公历 2 段），最后一列是时段标签列
		{"1446\n11\n15" + dateHeaderDelimiter + "2025\n13-5", "slot label"},
		{"٣", "ignored"},
		{"7", "ignored"},
	}

	entries := ParseDateGrid(rows)
	if len(entries) != 2 {
		t.Fatalf("期望 2 个格子，实际=%d", len(entries))
	}

	if entries[0].ExamID != 3 || entries[0].TimeSlot != 1 {
		t.Errorf("期望 (examId=3, slot=1)，实际=(%d, %d)", entries[0].ExamID, entries[0].TimeSlot)
	}
	if entries[1].ExamID != 7 || entries[1].TimeSlot != 2 {
		t.Errorf("期望 (examId=7, slot=2)，实际=(%d, %d)", entries[1].ExamID, entries[1].TimeSlot)
	}

	want := []string{"1446-11-15", "2025-05-13"}
	if len(entries[0].DateStrings) != 2 {
		t.Fatalf("期望 2 个日期串，实际=%v", entries[0].DateStrings)
	}
	for i, w := range want {
		if entries[0].DateStrings[i] != w {
			t.Errorf("日期串[%d] 期望 %s，实际=%s", i, w, entries[0].DateStrings[i])
		}
	}
}
