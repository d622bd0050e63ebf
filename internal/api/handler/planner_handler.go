package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gangnaeng/backend/internal/dto"
	"gangnaeng/backend/internal/service"
	"gangnaeng/backend/pkg/response"
)

// PlannerHandler 课表规划会话 HTTP 处理器
type PlannerHandler struct {
	plannerSvc service.PlannerService
}

// NewPlannerHandler 创建 PlannerHandler
func NewPlannerHandler(plannerSvc service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerSvc: plannerSvc}
}

// GetSession 获取当前用户的规划会话
// GET /api/v1/planner/session
func (h *PlannerHandler) GetSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sess, err := h.plannerSvc.GetSession(c.Request.Context(), userID)
	if err != nil {
		h.handlePlannerError(c, err)
		return
	}

	response.OK(c, sess)
}

// Parse 从自然语言中识别课程并与目录匹配
// POST /api/v1/planner/parse
func (h *PlannerHandler) Parse(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PlannerParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.plannerSvc.Parse(c.Request.Context(), userID, &req)
	if err != nil {
		h.handlePlannerError(c, err)
		return
	}

	response.OK(c, sess)
}

// Generate 按确认后的课程代码生成全部无冲突课表
// POST /api/v1/planner/generate
func (h *PlannerHandler) Generate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PlannerGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.plannerSvc.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		h.handlePlannerError(c, err)
		return
	}

	response.OK(c, sess)
}

// GenerateStream 以 SSE 推送生成过程
// POST /api/v1/planner/generate/stream
//
// 事件：thinking（进度文本）→ schedule（每张课表）→ done | error。
// 首个事件发出前的错误仍以普通 JSON 响应返回。
func (h *PlannerHandler) GenerateStream(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PlannerGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	started := false
	emit := func(ev service.PlannerEvent) {
		if !started {
			started = true
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		c.SSEvent(ev.Type, ev.Data)
		c.Writer.Flush()
	}

	err := h.plannerSvc.GenerateStream(c.Request.Context(), userID, &req, emit)
	if err == nil {
		return
	}
	if !started {
		h.handlePlannerError(c, err)
		return
	}
	status, code, msg := plannerErrorInfo(err)
	if status == http.StatusInternalServerError {
		msg = "服务器内部错误"
	}
	c.SSEvent(service.EventError, gin.H{"code": code, "message": msg})
	c.Writer.Flush()
}

// ApplyFilters 对已生成的课表重新筛选（不重新生成）
// PUT /api/v1/planner/filters
func (h *PlannerHandler) ApplyFilters(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PlannerFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.plannerSvc.ApplyFilters(c.Request.Context(), userID, &req)
	if err != nil {
		h.handlePlannerError(c, err)
		return
	}

	response.OK(c, sess)
}

// GetGrid 获取某张生成课表的周视图布局
// GET /api/v1/planner/schedules/:id/grid
func (h *PlannerHandler) GetGrid(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grid, err := h.plannerSvc.GetGrid(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handlePlannerError(c, err)
		return
	}

	response.OK(c, grid)
}

// Reset 清空规划会话
// DELETE /api/v1/planner/session
func (h *PlannerHandler) Reset(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.plannerSvc.Reset(c.Request.Context(), userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// handlePlannerError 统一处理规划模块业务错误
func (h *PlannerHandler) handlePlannerError(c *gin.Context, err error) {
	status, code, msg := plannerErrorInfo(err)
	if status == http.StatusInternalServerError {
		response.InternalError(c)
		return
	}
	response.Error(c, status, code, msg)
}

func plannerErrorInfo(err error) (int, int, string) {
	switch {
	case errors.Is(err, service.ErrPlannerParseFailed):
		return http.StatusUnprocessableEntity, 13001, err.Error()
	case errors.Is(err, service.ErrPlannerNoCourses):
		return http.StatusUnprocessableEntity, 13002, err.Error()
	case errors.Is(err, service.ErrPlannerAllConflict):
		return http.StatusUnprocessableEntity, 13003, err.Error()
	case errors.Is(err, service.ErrPlannerTimeout):
		return http.StatusGatewayTimeout, 13004, err.Error()
	case errors.Is(err, service.ErrPlannerInvalidState):
		return http.StatusConflict, 13005, err.Error()
	case errors.Is(err, service.ErrPlannerScheduleNotFound):
		return http.StatusNotFound, 13006, err.Error()
	default:
		return http.StatusInternalServerError, 50000, err.Error()
	}
}
