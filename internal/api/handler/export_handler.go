package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/planner"
	"gangnaeng/backend/internal/service"
	"gangnaeng/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 课表导出 HTTP 处理器
type ExportHandler struct {
	plannerSvc service.PlannerService
	savedSvc   service.SavedScheduleService
	exportSvc  service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(plannerSvc service.PlannerService, savedSvc service.SavedScheduleService, exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{plannerSvc: plannerSvc, savedSvc: savedSvc, exportSvc: exportSvc}
}

// ExportPlanned 导出会话中的某张生成课表
// GET /api/v1/planner/schedules/:id/export?format=xlsx|ics
func (h *ExportHandler) ExportPlanned(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "format 仅支持 xlsx 或 ics")
		return
	}

	sch, err := h.plannerSvc.GetSchedule(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.write(c, *sch, "我的课表", req.GetFormat())
}

// ExportSaved 导出收藏课表
// GET /api/v1/saved-schedules/:id/export?format=xlsx|ics
func (h *ExportHandler) ExportSaved(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "format 仅支持 xlsx 或 ics")
		return
	}

	sch, name, err := h.savedSvc.GetSchedule(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.write(c, *sch, name, req.GetFormat())
}

func (h *ExportHandler) write(c *gin.Context, sch planner.Schedule, title, format string) {
	var (
		buf         *bytes.Buffer
		filename    string
		contentType string
		err         error
	)
	if format == "ics" {
		buf, filename, err = h.exportSvc.ExportICS(sch, title)
		contentType = contentTypeICS
	} else {
		buf, filename, err = h.exportSvc.ExportExcel(sch, title)
		contentType = contentTypeXLSX
	}
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlannerScheduleNotFound):
		response.NotFound(c, 13006, err.Error())
	case errors.Is(err, service.ErrPlannerInvalidState):
		response.Conflict(c, 13005, "当前会话没有已生成的课表")
	case errors.Is(err, service.ErrSavedScheduleNotFound):
		response.NotFound(c, 14001, "收藏的课表不存在")
	case errors.Is(err, service.ErrExportEmptySchedule):
		response.BadRequest(c, 15001, err.Error())
	default:
		response.InternalError(c)
	}
}
