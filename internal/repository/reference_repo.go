package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SirOwss/MASARI/internal/model"
)

// ExamTimingRepository 时段参照表数据访问接口
type ExamTimingRepository interface {
	// Replace 以导入结果整体替换参照表（事务内先清空再批量写入）
	Replace(ctx context.Context, timings []model.ExamTiming) error
	List(ctx context.Context) ([]model.ExamTiming, error)
	Count(ctx context.Context) (int64, error)
}

type examTimingRepo struct {
	db *gorm.DB
}

// NewExamTimingRepo 创建 ExamTimingRepository 实例
func NewExamTimingRepo(db *gorm.DB) ExamTimingRepository {
	return &examTimingRepo{db: db}
}

func (r *examTimingRepo) Replace(ctx context.Context, timings []model.ExamTiming) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.ExamTiming{}).Error; err != nil {
			return err
		}
		if len(timings) == 0 {
			return nil
		}
		return tx.Create(&timings).Error
	})
}

func (r *examTimingRepo) List(ctx context.Context) ([]model.ExamTiming, error) {
	var timings []model.ExamTiming
	err := r.db.WithContext(ctx).Order("exam_id ASC").Find(&timings).Error
	return timings, err
}

func (r *examTimingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ExamTiming{}).Count(&n).Error
	return n, err
}

// CourseRefRepository 课程编号参照表数据访问接口
type CourseRefRepository interface {
	Replace(ctx context.Context, refs []model.CourseRef) error
	List(ctx context.Context) ([]model.CourseRef, error)
	Count(ctx context.Context) (int64, error)
}

type courseRefRepo struct {
	db *gorm.DB
}

// NewCourseRefRepo 创建 CourseRefRepository 实例
func NewCourseRefRepo(db *gorm.DB) CourseRefRepository {
	return &courseRefRepo{db: db}
}

func (r *courseRefRepo) Replace(ctx context.Context, refs []model.CourseRef) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.CourseRef{}).Error; err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}
		return tx.Create(&refs).Error
	})
}

func (r *courseRefRepo) List(ctx context.Context) ([]model.CourseRef, error) {
	var refs []model.CourseRef
	err := r.db.WithContext(ctx).Order("exam_id ASC").Find(&refs).Error
	return refs, err
}

func (r *courseRefRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CourseRef{}).Count(&n).Error
	return n, err
}
