package model

import "time"

// CourseRef 课程编号参照表 — 对应 course_refs
// 导入时已过滤到学院前缀（cocs/coit/cois）
type CourseRef struct {
	ExamID     int       `gorm:"primaryKey"                         json:"exam_id"`
	CourseName string    `gorm:"type:varchar(50);not null"          json:"course_name"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (CourseRef) TableName() string { return "course_refs" }
