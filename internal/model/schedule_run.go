package model

import "time"

// ScheduleRun 考表生成记录 — 对应 schedule_runs
//
// 只保留审计元数据。生成的考表行随运行结束丢弃（渲染产物短期缓存在
// Redis），不落库。
type ScheduleRun struct {
	RunID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"run_id"`
	Title         string    `gorm:"type:varchar(200);not null"                     json:"title"`
	RowCount      int       `gorm:"not null;default:0"                             json:"row_count"`
	WarningCount  int       `gorm:"not null;default:0"                             json:"warning_count"`
	ShortageSeats int       `gorm:"not null;default:0"                             json:"shortage_seats"`
	CreatedBy     *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ScheduleRun) TableName() string { return "schedule_runs" }
