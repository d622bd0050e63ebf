package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/service"
	"gangnaeng/backend/pkg/response"
)

// SavedScheduleHandler 收藏课表 HTTP 处理器
type SavedScheduleHandler struct {
	savedSvc service.SavedScheduleService
}

// NewSavedScheduleHandler 创建 SavedScheduleHandler
func NewSavedScheduleHandler(savedSvc service.SavedScheduleService) *SavedScheduleHandler {
	return &SavedScheduleHandler{savedSvc: savedSvc}
}

// ListSaved 分页查询本人收藏
// GET /api/v1/saved-schedules
func (h *SavedScheduleHandler) ListSaved(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.savedSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// SaveSchedule 收藏当前会话中的一张课表
// POST /api/v1/saved-schedules
func (h *SavedScheduleHandler) SaveSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	saved, err := h.savedSvc.Save(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSavedError(c, err)
		return
	}

	response.Created(c, saved)
}

// ImportICS 上传 ICS 文件导入为收藏
// POST /api/v1/saved-schedules/import
// multipart/form-data: file=<ics>, name=<收藏名称>
func (h *SavedScheduleHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ImportScheduleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 14000, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	saved, err := h.savedSvc.ImportICS(c.Request.Context(), userID, req.Name, file)
	if err != nil {
		h.handleSavedError(c, err)
		return
	}

	response.Created(c, saved)
}

// GetSaved 收藏详情（含课程）
// GET /api/v1/saved-schedules/:id
func (h *SavedScheduleHandler) GetSaved(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	saved, err := h.savedSvc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleSavedError(c, err)
		return
	}

	response.OK(c, saved)
}

// GetGrid 收藏课表的周视图布局
// GET /api/v1/saved-schedules/:id/grid
func (h *SavedScheduleHandler) GetGrid(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grid, err := h.savedSvc.GetGrid(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleSavedError(c, err)
		return
	}

	response.OK(c, grid)
}

// DeleteSaved 删除收藏
// DELETE /api/v1/saved-schedules/:id
func (h *SavedScheduleHandler) DeleteSaved(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.savedSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleSavedError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SavedScheduleHandler) handleSavedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSavedScheduleNotFound):
		response.NotFound(c, 14001, "收藏的课表不存在")
	case errors.Is(err, service.ErrSavedScheduleLimit):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrSavedScheduleImport):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrPlannerScheduleNotFound):
		response.NotFound(c, 13006, err.Error())
	case errors.Is(err, service.ErrPlannerInvalidState):
		response.Conflict(c, 13005, "当前会话没有已生成的课表")
	default:
		response.InternalError(c)
	}
}
