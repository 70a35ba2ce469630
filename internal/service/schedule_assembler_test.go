package service

import (
	"testing"
	"time"
)

func TestParseGregorianDate(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want string // "" = 期望 nil
	}{
		{"ISO格式", []string{"1446-11-15", "2025-05-13"}, "2025-05-13"},
		{"斜杠格式", []string{"1446-11-15", "13/05/2025"}, "2025-05-13"},
		{"倒序优先取末尾", []string{"2025-05-13", "2025-05-14"}, "2025-05-14"},
		{"全部无法解析", []string{"n/a", "؟"}, ""},
		{"空列表", nil, ""},
		// 回历串形状合法，单独出现时会被当作公历解析（沿用上游行为）
		{"仅回历", []string{"1446-11-15"}, "1446-11-15"},
	}

	for _, c := range cases {
		got := ParseGregorianDate(c.in)
		switch {
		case c.want == "" && got != nil:
			t.Errorf("%s: 期望 nil，实际=%s", c.name, got.Format("2006-01-02"))
		case c.want != "" && got == nil:
			t.Errorf("%s: 期望 %s，实际=nil", c.name, c.want)
		case c.want != "" && got.Format("2006-01-02") != c.want:
			t.Errorf("%s: 期望 %s，实际=%s", c.name, c.want, got.Format("2006-01-02"))
		}
	}
}

func TestExtractIslamicDate(t *testing.T) {
	greg := time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC)

	got := ExtractIslamicDate([]string{"1446-11-15", "2025-05-13"}, &greg)
	if got != "1446-11-15" {
		t.Errorf("期望 1446-11-15，实际=%s", got)
	}

	// 公历缺失时退回首元素
	got = ExtractIslamicDate([]string{"1446-11-15"}, nil)
	if got != "1446-11-15" {
		t.Errorf("期望 1446-11-15，实际=%s", got)
	}

	// 两种公历渲染形式都要排除
	got = ExtractIslamicDate([]string{"13/05/2025", "1446-11-15"}, &greg)
	if got != "1446-11-15" {
		t.Errorf("期望 1446-11-15，实际=%s", got)
	}
}

func assembleInput() []ScheduleRow {
	return []ScheduleRow{
		{CourseName: "COCS-301", DateStrings: []string{"1446-11-16", "2025-05-14"}, Slot: 1},
		{CourseName: "COCS-101", DateStrings: []string{"1446-11-15", "2025-05-13"}, Slot: 2},
		{CourseName: "COCS-102", DateStrings: []string{"1446-11-15", "2025-05-13"}, Slot: 1},
		{CourseName: "COCS-999", DateStrings: nil, Slot: 1}, // 无日期
	}
}

func TestAssembleSchedule_排序(t *testing.T) {
	rows := AssembleSchedule(assembleInput())

	wantOrder := []string{"COCS-102", "COCS-101", "COCS-301", "COCS-999"}
	for i, w := range wantOrder {
		if rows[i].CourseName != w {
			t.Errorf("第 %d 行期望 %s，实际=%s", i, w, rows[i].CourseName)
		}
	}

	// 无日期行排末尾且派生字段为空
	last := rows[len(rows)-1]
	if last.Date != nil || last.DateText != "" || last.DayName != "" {
		t.Errorf("无日期行派生字段应为空: %+v", last)
	}
}

func TestAssembleSchedule_派生字段(t *testing.T) {
	rows := AssembleSchedule(assembleInput())

	r := rows[0] // 2025-05-13 是周二
	if r.DateText != "2025-05-13" {
		t.Errorf("期望 DateText=2025-05-13，实际=%s", r.DateText)
	}
	if r.DayName != "Tuesday" {
		t.Errorf("期望 DayName=Tuesday，实际=%s", r.DayName)
	}
	if r.IslamicDate != "1446-11-15" {
		t.Errorf("期望回历 1446-11-15，实际=%s", r.IslamicDate)
	}
}

func TestAssembleSchedule_日期组交替底纹(t *testing.T) {
	rows := AssembleSchedule(assembleInput())

	// 第 1 组 (05-13) 不着色，第 2 组 (05-14) 着色，第 3 组（无日期）不着色
	if rows[0].Shaded || rows[1].Shaded {
		t.Errorf("第一个日期组不应着色")
	}
	if !rows[2].Shaded {
		t.Errorf("第二个日期组应着色")
	}
	if rows[3].Shaded {
		t.Errorf("第三个日期组不应着色")
	}
}

func TestAssembleSchedule_日期合并跨度(t *testing.T) {
	rows := AssembleSchedule(assembleInput())

	// 05-13 两行合并：首行跨度 2，次行 0
	if rows[0].DateSpan != 2 || rows[1].DateSpan != 0 {
		t.Errorf("期望跨度 (2, 0)，实际=(%d, %d)", rows[0].DateSpan, rows[1].DateSpan)
	}
	if rows[2].DateSpan != 1 {
		t.Errorf("单行日期期望跨度 1，实际=%d", rows[2].DateSpan)
	}
	// 无日期行永不参与合并
	if rows[3].DateSpan != 1 {
		t.Errorf("无日期行期望跨度 1，实际=%d", rows[3].DateSpan)
	}
}

func TestAssembleSchedule_无日期行共享末尾日期组(t *testing.T) {
	rows := AssembleSchedule([]ScheduleRow{
		{CourseName: "COCS-101", DateStrings: []string{"2025-05-13"}, Slot: 1},
		{CourseName: "A", DateStrings: []string{"n/a"}, Slot: 1},
		{CourseName: "B", DateStrings: []string{"؟؟"}, Slot: 2},
	})

	// 原始日期串不同的两条无日期行归入同一组：底纹必须一致，
	// 且与前一日期组交替（第 1 组不着色 → 末尾组着色）
	if rows[1].Shaded != rows[2].Shaded {
		t.Errorf("无日期行底纹不一致: %v vs %v", rows[1].Shaded, rows[2].Shaded)
	}
	if !rows[1].Shaded {
		t.Errorf("末尾无日期组应着色（第 2 组）")
	}
}

func TestAssembleSchedule_无日期行彼此不合并(t *testing.T) {
	rows := AssembleSchedule([]ScheduleRow{
		{CourseName: "A", DateStrings: []string{"n/a"}},
		{CourseName: "B", DateStrings: []string{"n/a"}},
	})

	// 两行日期串相同但都不可解析：各自独立，跨度均为 1
	for i, r := range rows {
		if r.DateSpan != 1 {
			t.Errorf("第 %d 行期望跨度 1，实际=%d", i, r.DateSpan)
		}
	}
}
