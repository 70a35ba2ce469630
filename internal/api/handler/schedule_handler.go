package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SirOwss/MASARI/internal/dto"
	"github.com/SirOwss/MASARI/internal/service"
	"github.com/SirOwss/MASARI/pkg/response"
)

// 导出格式 → Content-Type
var exportContentTypes = map[string]string{
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ics":  "text/calendar",
}

// ScheduleHandler 考表模块 HTTP 处理器
type ScheduleHandler struct {
	schedSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(schedSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedSvc: schedSvc}
}

// Generate 触发一次考表生成
// POST /api/v1/schedules/generate
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.schedSvc.Generate(c.Request.Context(), service.GenerateInput{
		RegistrarTables: req.RegistrarTables,
		DateGrid:        req.DateGrid,
		Title:           req.Title,
	}, userID)
	if err != nil {
		h.handleGenerateError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ScheduleHandler) handleGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrarHeader):
		response.BadRequest(c, 13001, "无法识别注册办表头")
	case errors.Is(err, service.ErrGenerateFailed):
		response.Error(c, http.StatusInternalServerError, 13002, "考表生成失败")
	default:
		response.InternalError(c)
	}
}

// ListRuns 查看历史生成记录
// GET /api/v1/schedules/runs?limit=20
func (h *ScheduleHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		response.BadRequest(c, 10001, "limit 参数无效")
		return
	}

	runs, err := h.schedSvc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, runs)
}

// DownloadExport 下载某次运行的渲染产物
// GET /api/v1/schedules/runs/:id/export?format=xlsx
func (h *ScheduleHandler) DownloadExport(c *gin.Context) {
	runID := c.Param("id")
	format := c.DefaultQuery("format", "xlsx")

	data, run, err := h.schedSvc.GetExport(c.Request.Context(), runID, format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFormat):
			response.BadRequest(c, 13005, "不支持的导出格式")
		case errors.Is(err, service.ErrRunNotFound):
			response.NotFound(c, 13003, "生成记录不存在")
		case errors.Is(err, service.ErrExportExpired):
			response.Gone(c, 13004, "导出文件已过期，请重新生成")
		default:
			response.InternalError(c)
		}
		return
	}

	filename := fmt.Sprintf("%s.%s", run.Title, format)
	encodedFilename := url.QueryEscape(filename)
	contentType := exportContentTypes[format]

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", contentType)
	c.Data(http.StatusOK, contentType, data)
}
