package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/service"
	"github.com/SHILUNKA/edusaas-sub001/pkg/response"
)

// RosterHandler 花名册（点名）模块 HTTP 处理器
type RosterHandler struct {
	rosterSvc service.RosterService
	exportSvc service.ExportService
	authSvc   service.AuthService
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(rosterSvc service.RosterService, exportSvc service.ExportService, authSvc service.AuthService) *RosterHandler {
	return &RosterHandler{
		rosterSvc: rosterSvc,
		exportSvc: exportSvc,
		authSvc:   authSvc,
	}
}

// GetRoster 某节课的花名册
// GET /api/v1/classes/:id/roster
func (h *RosterHandler) GetRoster(c *gin.Context) {
	token, ok := mustUpstreamToken(c, h.authSvc)
	if !ok {
		return
	}

	roster, err := h.rosterSvc.GetRoster(c.Request.Context(), token, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, roster)
}

// CheckIn 点名：将一条报名记录置为 completed
// POST /api/v1/classes/:id/enrollments/:enrollmentID/checkin
func (h *RosterHandler) CheckIn(c *gin.Context) {
	// 请求体可省略（无评价点名）
	var req dto.CheckinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	token, ok := mustUpstreamToken(c, h.authSvc)
	if !ok {
		return
	}

	updated, err := h.rosterSvc.CheckIn(c.Request.Context(), token, c.Param("id"), c.Param("enrollmentID"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, updated)
}

// ExportRoster 导出签到表
// GET /api/v1/classes/:id/roster/export
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	token, ok := mustUpstreamToken(c, h.authSvc)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), token, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
