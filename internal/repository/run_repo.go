package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SirOwss/MASARI/internal/model"
)

// ScheduleRunRepository 生成记录数据访问接口
type ScheduleRunRepository interface {
	Create(ctx context.Context, run *model.ScheduleRun) error
	GetByID(ctx context.Context, id string) (*model.ScheduleRun, error)
	List(ctx context.Context, limit int) ([]model.ScheduleRun, error)
	// PurgeBefore 删除指定时间之前的记录，返回删除条数
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type scheduleRunRepo struct {
	db *gorm.DB
}

// NewScheduleRunRepo 创建 ScheduleRunRepository 实例
func NewScheduleRunRepo(db *gorm.DB) ScheduleRunRepository {
	return &scheduleRunRepo{db: db}
}

func (r *scheduleRunRepo) Create(ctx context.Context, run *model.ScheduleRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *scheduleRunRepo) GetByID(ctx context.Context, id string) (*model.ScheduleRun, error) {
	var run model.ScheduleRun
	err := r.db.WithContext(ctx).
		Where("run_id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *scheduleRunRepo) List(ctx context.Context, limit int) ([]model.ScheduleRun, error) {
	var runs []model.ScheduleRun
	db := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&runs).Error
	return runs, err
}

func (r *scheduleRunRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ScheduleRun{})
	return res.RowsAffected, res.Error
}
