package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	ExamTiming ExamTimingRepository
	CourseRef  CourseRefRepository
	Run        ScheduleRunRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		ExamTiming: NewExamTimingRepo(db),
		CourseRef:  NewCourseRefRepo(db),
		Run:        NewScheduleRunRepo(db),
	}
}
