package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
)

var (
	ErrInvalidRefreshToken    = errors.New("refresh token 无效")
	ErrUpstreamSessionExpired = errors.New("上游会话已过期，请重新登录")
)

// sessionStore 会话相关的 Redis 操作
type sessionStore interface {
	SetUpstreamToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetUpstreamToken(ctx context.Context, userID string) (string, error)
	DeleteUpstreamToken(ctx context.Context, userID string) error
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证服务接口
// 凭证不在本地存储，登录即把用户名密码透传上游换取 Bearer Token，
// 换回的上游 Token 按用户存入 Redis，业务请求按需取用。
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 拉黑当前 Access Token 并清除上游会话
	Logout(ctx context.Context, claims *jwt.Claims) error
	// Refresh 用 Refresh Token 换新的 Access Token
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// UpstreamToken 取出某用户缓存的上游 Bearer Token；
	// 会话过期（Redis 中已不存在）返回 ErrUpstreamSessionExpired。
	UpstreamToken(ctx context.Context, userID string) (string, error)
}

type authService struct {
	authGW  gateway.AuthGateway
	jwtMgr  *jwt.Manager
	session sessionStore
	logger  *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(authGW gateway.AuthGateway, jwtMgr *jwt.Manager, session sessionStore, logger *zap.Logger) AuthService {
	return &authService{
		authGW:  authGW,
		jwtMgr:  jwtMgr,
		session: session,
		logger:  logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	result, err := s.authGW.Login(ctx, &gateway.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	user := result.User
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.TenantID, user.BaseID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.TenantID, user.BaseID, user.Role)
	if err != nil {
		return nil, err
	}

	// 上游 Token 的 TTL 与本服务 Refresh Token 对齐，刷新窗口内始终可用
	if err := s.session.SetUpstreamToken(ctx, user.ID, result.Token, s.jwtMgr.RefreshTokenTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("登录成功",
		zap.String("user_id", user.ID),
		zap.String("base_id", user.BaseID),
		zap.String("role", user.Role),
	)

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User: dto.UserResponse{
			ID:       user.ID,
			Name:     user.Name,
			TenantID: user.TenantID,
			BaseID:   user.BaseID,
			Role:     user.Role,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.session.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			return err
		}
	}
	if err := s.session.DeleteUpstreamToken(ctx, claims.UserID); err != nil {
		return err
	}
	s.logger.Info("登出成功", zap.String("user_id", claims.UserID))
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefreshToken
	}

	// 上游会话已失效就不再发新 Token，逼用户走完整登录
	token, err := s.session.GetUpstreamToken(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrUpstreamSessionExpired
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(claims.UserID, claims.TenantID, claims.BaseID, claims.Role)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User: dto.UserResponse{
			ID:       claims.UserID,
			TenantID: claims.TenantID,
			BaseID:   claims.BaseID,
			Role:     claims.Role,
		},
	}, nil
}

func (s *authService) UpstreamToken(ctx context.Context, userID string) (string, error) {
	token, err := s.session.GetUpstreamToken(ctx, userID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrUpstreamSessionExpired
	}
	return token, nil
}
