package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SHILUNKA/edusaas-sub001/internal/service"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
	"github.com/SHILUNKA/edusaas-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应；
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetBaseID 从 Gin 上下文中安全提取 base_id。
func MustGetBaseID(c *gin.Context) (string, bool) {
	v, exists := c.Get("base_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中提取完整 JWT 声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// mustUpstreamToken 取当前用户缓存的上游 Bearer Token。
// 会话过期返回 401 提示重新登录。
func mustUpstreamToken(c *gin.Context, authSvc service.AuthService) (string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", false
	}
	token, err := authSvc.UpstreamToken(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUpstreamSessionExpired) {
			response.Unauthorized(c, 10004, "会话已过期，请重新登录")
		} else {
			response.InternalError(c)
		}
		return "", false
	}
	return token, true
}

// writeServiceError 将 Service 层错误映射为统一响应。
// 校验错误 400，状态错误 409，上游错误 502（透出上游原话），
// 其余一律 500，不向外泄露内部细节。
func writeServiceError(c *gin.Context, err error) {
	var vErr *pkgerrors.ValidationError
	if errors.As(err, &vErr) {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20001, vErr.Error(), vErr.Code)
		return
	}

	var sErr *pkgerrors.StateError
	if errors.As(err, &sErr) {
		response.ErrorWithDetails(c, http.StatusConflict, 20002, sErr.Error(), sErr.Code)
		return
	}

	var rErr *pkgerrors.RemoteError
	if errors.As(err, &rErr) {
		response.BadGateway(c, 30001, rErr.UserMessage())
		return
	}

	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 40401, err.Error())
	case errors.Is(err, service.ErrSubmissionPending):
		response.Conflict(c, 20003, err.Error())
	case errors.Is(err, service.ErrCalendarNotReady):
		response.Conflict(c, 20004, err.Error())
	case errors.Is(err, service.ErrExportEmptyRoster):
		response.NotFound(c, 40402, err.Error())
	case errors.Is(err, service.ErrUpstreamSessionExpired):
		response.Unauthorized(c, 10004, "会话已过期，请重新登录")
	default:
		response.InternalError(c)
	}
}
