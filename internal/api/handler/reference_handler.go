package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SirOwss/MASARI/internal/dto"
	"github.com/SirOwss/MASARI/internal/service"
	"github.com/SirOwss/MASARI/pkg/response"
)

// ReferenceHandler 参照表模块 HTTP 处理器
type ReferenceHandler struct {
	refSvc service.ReferenceService
}

// NewReferenceHandler 创建 ReferenceHandler
func NewReferenceHandler(refSvc service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refSvc: refSvc}
}

// ImportTimings 导入时段参照表（整表替换）
// POST /api/v1/references/timings
func (h *ReferenceHandler) ImportTimings(c *gin.Context) {
	var req dto.ImportGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.refSvc.ImportTimings(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrReferenceGridEmpty) {
			response.BadRequest(c, 12001, "参照网格中没有可解析的行")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ImportCourses 导入课程编号参照表（整表替换）
// POST /api/v1/references/courses
func (h *ReferenceHandler) ImportCourses(c *gin.Context) {
	var req dto.ImportGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.refSvc.ImportCourses(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrReferenceGridEmpty) {
			response.BadRequest(c, 12001, "参照网格中没有可解析的行")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListTimings 查看当前时段参照表
// GET /api/v1/references/timings
func (h *ReferenceHandler) ListTimings(c *gin.Context) {
	timings, err := h.refSvc.ListTimings(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, timings)
}

// ListCourses 查看当前课程编号参照表
// GET /api/v1/references/courses
func (h *ReferenceHandler) ListCourses(c *gin.Context) {
	refs, err := h.refSvc.ListCourses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, refs)
}
