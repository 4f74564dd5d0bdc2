package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

// Gateway 上游核心平台各资源网关的聚合入口
// 对应上游 REST API；Bearer Token 由调用方显式传入，网关自身不持有会话
type Gateway struct {
	Auth       AuthGateway
	Class      ClassGateway
	Enrollment EnrollmentGateway
	Room       RoomGateway
}

// NewGateway 创建 Gateway 聚合
func NewGateway(cfg *config.UpstreamConfig, logger *zap.Logger) *Gateway {
	c := newClient(cfg, logger)
	return &Gateway{
		Auth:       &authGateway{client: c},
		Class:      &classGateway{client: c},
		Enrollment: &enrollmentGateway{client: c},
		Room:       &roomGateway{client: c},
	}
}

// ── 共享 HTTP 客户端 ──

type client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func newClient(cfg *config.UpstreamConfig, logger *zap.Logger) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// upstreamError 上游错误响应体（尽力解析，取不到就留空）
type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do 发送一次上游请求并将响应解码到 out（out 为 nil 时丢弃响应体）。
// 非 2xx 统一转为 *pkgerrors.RemoteError，消息取上游原文。
// extraHeaders 用于幂等键等附加头。
func (c *client) do(ctx context.Context, method, path, token string, body, out interface{}, extraHeaders map[string]string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化上游请求体失败: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("构造上游请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("上游请求网络失败",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &pkgerrors.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &pkgerrors.RemoteError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ue upstreamError
		_ = json.Unmarshal(raw, &ue)
		msg := ue.Message
		if msg == "" {
			msg = ue.Error
		}
		c.logger.Warn("上游返回非 2xx",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("upstream_message", msg),
		)
		return &pkgerrors.RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("解析上游响应失败: %w", err)
		}
	}

	return nil
}
