package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/service"
	"github.com/SHILUNKA/edusaas-sub001/pkg/response"
)

// ClassHandler 排课模块 HTTP 处理器
type ClassHandler struct {
	scheduleSvc service.ScheduleService
	calendarSvc service.CalendarService
	authSvc     service.AuthService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(scheduleSvc service.ScheduleService, calendarSvc service.CalendarService, authSvc service.AuthService) *ClassHandler {
	return &ClassHandler{
		scheduleSvc: scheduleSvc,
		calendarSvc: calendarSvc,
		authSvc:     authSvc,
	}
}

// Preview 排课草稿预览（向导确认步，不触发上游写入）
// POST /api/v1/classes/preview
func (h *ClassHandler) Preview(c *gin.Context) {
	var req dto.ScheduleDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Preview(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 批量排课提交
// POST /api/v1/classes/batch
// 幂等键取自 Idempotency-Key 请求头，缺省由服务端生成
func (h *ClassHandler) Submit(c *gin.Context) {
	var req dto.ScheduleDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	baseID, ok := MustGetBaseID(c)
	if !ok {
		return
	}
	token, ok := mustUpstreamToken(c, h.authSvc)
	if !ok {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if len(idempotencyKey) > 64 {
		response.BadRequest(c, 10001, "Idempotency-Key 过长")
		return
	}

	result, err := h.scheduleSvc.Submit(c.Request.Context(), token, userID, baseID, &req, idempotencyKey)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// ListToday 今日课程列表
// GET /api/v1/classes/today
func (h *ClassHandler) ListToday(c *gin.Context) {
	token, ok := mustUpstreamToken(c, h.authSvc)
	if !ok {
		return
	}

	classes, err := h.scheduleSvc.ListToday(c.Request.Context(), token)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, classes)
}

// ListSubmissions 当前操作员最近的提交流水
// GET /api/v1/submissions?limit=20
func (h *ClassHandler) ListSubmissions(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	subs, err := h.scheduleSvc.ListSubmissions(c.Request.Context(), userID, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, subs)
}

// ExportCalendar 将一次成功的批量排课导出为 ICS 日历
// GET /api/v1/submissions/:id/calendar
func (h *ClassHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	content, filename, err := h.calendarSvc.ExportSubmission(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
