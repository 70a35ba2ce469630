package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SirOwss/MASARI/config"
	"github.com/SirOwss/MASARI/internal/model"
	"github.com/SirOwss/MASARI/internal/repository"
	"github.com/SirOwss/MASARI/pkg/redis"
)

var (
	ErrGenerateFailed    = errors.New("考表生成失败")
	ErrRunNotFound       = errors.New("生成记录不存在")
	ErrExportExpired     = errors.New("导出文件已过期，请重新生成")
	ErrUnsupportedFormat = errors.New("不支持的导出格式")
)

// ── 生成编排 ────────────────────────────────────────────────
//
// 一次生成运行 = 解析 → 合并 → 装配 → 分配 → 渲染，全程在
// 本次调用的局部状态上完成：占用表、告警、课表行都随运行新建，
// 并发触发的两次生成互不可见。只有运行元数据落库；渲染产物
// （xlsx/ics）按 run_id 短期缓存在 Redis，供下载接口取用。
// ─────────────────────────────────────────────────────────────

// ExportFormats 可下载的渲染产物格式
var ExportFormats = map[string]bool{"xlsx": true, "ics": true}

// GenerateInput 一次生成运行的输入网格
type GenerateInput struct {
	RegistrarTables [][][]string // 注册办分节表（多张）
	DateGrid        [][]string   // 考期网格
	Title           string       // 空串使用配置默认标题
}

// GenerateResult 生成结果
type GenerateResult struct {
	RunID    string        `json:"run_id"`
	Title    string        `json:"title"`
	Rows     []ScheduleRow `json:"rows"`
	Warnings []string      `json:"warnings"`
	Shortage int           `json:"shortage_seats"`
}

// ScheduleService 考表生成服务接口
type ScheduleService interface {
	Generate(ctx context.Context, input GenerateInput, createdBy string) (*GenerateResult, error)
	ListRuns(ctx context.Context, limit int) ([]model.ScheduleRun, error)
	// GetExport 取某次运行的渲染产物，附带运行元数据（文件名用）
	GetExport(ctx context.Context, runID, format string) ([]byte, *model.ScheduleRun, error)
}

type scheduleService struct {
	repo     *repository.Repository
	cache    *redis.Client
	exporter *Exporter
	cfg      *config.Config
	shuffle  func([]int)
	logger   *zap.Logger
}

// NewScheduleService 创建考表生成服务。
// shuffle 为 nil 时按配置决定：shuffle_rooms=false 退化为固定顺序。
func NewScheduleService(repo *repository.Repository, cache *redis.Client, cfg *config.Config, shuffle func([]int), logger *zap.Logger) ScheduleService {
	if shuffle == nil && !cfg.Exam.ShuffleRooms {
		shuffle = func([]int) {}
	}
	return &scheduleService{
		repo:     repo,
		cache:    cache,
		exporter: NewExporter(),
		cfg:      cfg,
		shuffle:  shuffle,
		logger:   logger,
	}
}

func (s *scheduleService) Generate(ctx context.Context, input GenerateInput, createdBy string) (result *GenerateResult, err error) {
	// 输入网格来自外部抽取器，形状不可信；任何越界都折叠成
	// 单一失败错误，不让 panic 穿透到 HTTP 层
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("生成过程 panic", zap.Any("panic", r))
			result, err = nil, ErrGenerateFailed
		}
	}()

	// ── 解析注册办分节表 ──
	sections, err := ParseRegistrarTables(input.RegistrarTables)
	if err != nil {
		return nil, err
	}

	// ── 加载参照表 ──
	refs, err := s.repo.CourseRef.List(ctx)
	if err != nil {
		s.logger.Error("加载课程参照表失败", zap.Error(err))
		return nil, err
	}
	courseRefs := make(map[string]int, len(refs))
	for _, r := range refs {
		courseRefs[r.CourseName] = r.ExamID
	}
	timings, err := s.repo.ExamTiming.List(ctx)
	if err != nil {
		s.logger.Error("加载时段参照表失败", zap.Error(err))
		return nil, err
	}
	excluded := make(map[string]bool, len(s.cfg.Exam.ExcludedCourses))
	for _, c := range s.cfg.Exam.ExcludedCourses {
		excluded[c] = true
	}

	// ── 合并分节行 ──
	courses, dropped := MergeSections(sections, courseRefs, timings, excluded)

	var warnings []string
	for _, w := range dropped {
		warnings = append(warnings, fmt.Sprintf("报名数修复：课程 %s 班组 %s 多出的数字 %q 被丢弃", w.Course, w.Group, w.Token))
	}

	// ── 关联考期 ──
	dates := make(map[int]DateEntry)
	for _, e := range ParseDateGrid(input.DateGrid) {
		dates[e.ExamID] = e
	}

	rows := make([]ScheduleRow, 0, len(courses))
	for _, c := range courses {
		row := ScheduleRow{
			CourseName:   c.CourseName,
			Teachers:     c.TeacherNames,
			StudentCount: c.RegisteredCount,
		}
		switch {
		case c.ExamID == nil:
			warnings = append(warnings, fmt.Sprintf("课程 %s 无法解析 examId，考期留空", c.CourseName))
		default:
			entry, ok := dates[*c.ExamID]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("课程 %s 的 examId %d 未出现在考期网格中", c.CourseName, *c.ExamID))
				break
			}
			row.DateStrings = entry.DateStrings
			row.Slot = entry.TimeSlot
		}
		rows = append(rows, row)
	}

	// ── 装配 + 分配 ──
	rows = AssembleSchedule(rows)

	occ := NewVenueOccupancy()
	allocator := NewVenueAllocator(s.cfg.Exam.Rooms, s.cfg.Exam.RoomCapacity, s.shuffle)
	shortage := 0
	for i := range rows {
		rows[i].Allocation = allocator.Allocate(occ, rows[i].DateText, rows[i].Slot, rows[i].StudentCount, rows[i].Teachers)
		shortage += rows[i].Allocation.Shortage
		if rows[i].Allocation.Status != SeatingFull {
			warnings = append(warnings, fmt.Sprintf("课程 %s 座位不足，%d 人未安置", rows[i].CourseName, rows[i].Allocation.Shortage))
		}
	}

	// ── 落库 + 缓存渲染产物 ──
	title := input.Title
	if title == "" {
		title = s.cfg.Exam.ScheduleTitle
	}
	run := &model.ScheduleRun{
		RunID:         uuid.New().String(),
		Title:         title,
		RowCount:      len(rows),
		WarningCount:  len(warnings),
		ShortageSeats: shortage,
	}
	if createdBy != "" {
		run.CreatedBy = &createdBy
	}
	if err := s.repo.Run.Create(ctx, run); err != nil {
		s.logger.Error("保存生成记录失败", zap.Error(err))
		return nil, err
	}

	s.cacheExports(ctx, run.RunID, title, rows)

	s.logger.Info("考表生成完成",
		zap.String("run_id", run.RunID),
		zap.Int("rows", len(rows)),
		zap.Int("warnings", len(warnings)),
		zap.Int("shortage", shortage),
	)

	return &GenerateResult{
		RunID:    run.RunID,
		Title:    title,
		Rows:     rows,
		Warnings: warnings,
		Shortage: shortage,
	}, nil
}

// cacheExports 渲染并缓存 xlsx/ics。缓存失败不影响生成结果，
// 只是该运行后续不可下载。
func (s *scheduleService) cacheExports(ctx context.Context, runID, title string, rows []ScheduleRow) {
	// cache 为 nil 时降级：生成仍然成功，只是不可下载
	if s.cache == nil {
		return
	}
	ttl := s.cfg.Redis.ExportTTL

	if data, err := s.exporter.RenderXLSX(title, rows); err != nil {
		s.logger.Warn("渲染 xlsx 失败", zap.String("run_id", runID), zap.Error(err))
	} else if err := s.cache.CacheExport(ctx, runID, "xlsx", data, ttl); err != nil {
		s.logger.Warn("缓存 xlsx 失败", zap.String("run_id", runID), zap.Error(err))
	}

	if data, err := s.exporter.RenderICS(title, rows); err != nil {
		s.logger.Warn("渲染 ics 失败", zap.String("run_id", runID), zap.Error(err))
	} else if err := s.cache.CacheExport(ctx, runID, "ics", data, ttl); err != nil {
		s.logger.Warn("缓存 ics 失败", zap.String("run_id", runID), zap.Error(err))
	}
}

func (s *scheduleService) ListRuns(ctx context.Context, limit int) ([]model.ScheduleRun, error) {
	return s.repo.Run.List(ctx, limit)
}

func (s *scheduleService) GetExport(ctx context.Context, runID, format string) ([]byte, *model.ScheduleRun, error) {
	if !ExportFormats[format] {
		return nil, nil, ErrUnsupportedFormat
	}

	run, err := s.repo.Run.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRunNotFound
		}
		s.logger.Error("查询生成记录失败", zap.String("run_id", runID), zap.Error(err))
		return nil, nil, err
	}

	if s.cache == nil {
		return nil, nil, ErrExportExpired
	}

	data, err := s.cache.GetExport(ctx, runID, format)
	if err != nil {
		s.logger.Error("读取导出缓存失败", zap.String("run_id", runID), zap.Error(err))
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, ErrExportExpired
	}
	return data, run, nil
}
