package gateway

import (
	"context"
	"net/http"
)

// LoginRequest 上游登录请求体
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult 上游登录响应
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// LoginUser 上游返回的账号信息
type LoginUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
	BaseID   string `json:"base_id,omitempty"` // 空表示租户（总部）账号
	Role     string `json:"role"`
}

// AuthGateway 上游认证网关
// 凭证校验完全在上游，本服务不存密码
type AuthGateway interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
}

type authGateway struct {
	client *client
}

func (g *authGateway) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if err := g.client.do(ctx, http.MethodPost, "/auth/login", "", req, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}
