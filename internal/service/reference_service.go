package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/SirOwss/MASARI/config"
	"github.com/SirOwss/MASARI/internal/dto"
	"github.com/SirOwss/MASARI/internal/model"
	"github.com/SirOwss/MASARI/internal/repository"
)

var ErrReferenceGridEmpty = errors.New("参照网格中没有可解析的行")

// ReferenceService 参照表维护接口。
// 导入是整表替换：参照表来自注册办单个 PDF，不做增量合并。
type ReferenceService interface {
	ImportTimings(ctx context.Context, req *dto.ImportGridRequest) (*dto.ImportResponse, error)
	ImportCourses(ctx context.Context, req *dto.ImportGridRequest) (*dto.ImportResponse, error)
	ListTimings(ctx context.Context) ([]model.ExamTiming, error)
	ListCourses(ctx context.Context) ([]model.CourseRef, error)
}

type referenceService struct {
	repo   *repository.Repository
	cfg    *config.Config
	logger *zap.Logger
}

// NewReferenceService 创建 ReferenceService 实例
func NewReferenceService(repo *repository.Repository, cfg *config.Config, logger *zap.Logger) ReferenceService {
	return &referenceService{repo: repo, cfg: cfg, logger: logger}
}

func (s *referenceService) ImportTimings(ctx context.Context, req *dto.ImportGridRequest) (*dto.ImportResponse, error) {
	timings := ParseTimingGrid(req.Rows)
	if len(timings) == 0 {
		return nil, ErrReferenceGridEmpty
	}

	if err := s.repo.ExamTiming.Replace(ctx, timings); err != nil {
		s.logger.Error("替换时段参照表失败", zap.Error(err))
		return nil, err
	}

	skipped := len(req.Rows) - 1 - len(timings)
	if skipped < 0 {
		skipped = 0
	}
	s.logger.Info("时段参照表导入完成", zap.Int("imported", len(timings)), zap.Int("skipped", skipped))
	return &dto.ImportResponse{Imported: len(timings), Skipped: skipped}, nil
}

func (s *referenceService) ImportCourses(ctx context.Context, req *dto.ImportGridRequest) (*dto.ImportResponse, error) {
	refs := ParseCourseGrid(req.Rows, s.cfg.Exam.DeptPrefixes)
	if len(refs) == 0 {
		return nil, ErrReferenceGridEmpty
	}

	if err := s.repo.CourseRef.Replace(ctx, refs); err != nil {
		s.logger.Error("替换课程参照表失败", zap.Error(err))
		return nil, err
	}

	skipped := len(req.Rows) - 1 - len(refs)
	if skipped < 0 {
		skipped = 0
	}
	s.logger.Info("课程参照表导入完成", zap.Int("imported", len(refs)), zap.Int("skipped", skipped))
	return &dto.ImportResponse{Imported: len(refs), Skipped: skipped}, nil
}

func (s *referenceService) ListTimings(ctx context.Context) ([]model.ExamTiming, error) {
	return s.repo.ExamTiming.List(ctx)
}

func (s *referenceService) ListCourses(ctx context.Context) ([]model.CourseRef, error) {
	return s.repo.CourseRef.List(ctx)
}
