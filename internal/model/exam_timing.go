package model

import "time"

// ExamTiming 注册办时段参照表 — 对应 exam_timings
//
// 每行把一个 examId 绑定到（小时, 星期码）。课程名参照缺失时，
// 合并阶段用分节行自身的 (小时, 星期码) 在此表反查 examId。
type ExamTiming struct {
	ExamID    int       `gorm:"primaryKey"                         json:"exam_id"`
	HourOfDay int       `gorm:"type:smallint;not null"             json:"hour_of_day"` // 0–23
	DayCode   string    `gorm:"type:char(1);not null"              json:"day_code"`    // U/M/T/W/R
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ExamTiming) TableName() string { return "exam_timings" }
