package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
)

// Client Redis 客户端封装
// 三个用途：上游 Token 存储、本服务 JWT 黑名单、点名并发锁
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 上游 Token 存储 ──
//
// 上游核心平台的 Bearer Token 按用户存放，TTL 与本服务会话对齐。
// 对排课/点名等业务代码而言这里是只读来源，写入仅发生在登录。

const upstreamTokenPrefix = "upstream:token:"

// SetUpstreamToken 保存某用户的上游 Bearer Token
func (c *Client) SetUpstreamToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, upstreamTokenPrefix+userID, token, ttl).Err()
}

// GetUpstreamToken 读取某用户的上游 Bearer Token；不存在时返回空串
func (c *Client) GetUpstreamToken(ctx context.Context, userID string) (string, error) {
	val, err := c.rdb.Get(ctx, upstreamTokenPrefix+userID).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return val, err
}

// DeleteUpstreamToken 登出时清除上游 Token
func (c *Client) DeleteUpstreamToken(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, upstreamTokenPrefix+userID).Err()
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 点名并发锁 ──
//
// 同一报名记录同时只允许一个点名请求在途；锁带 TTL 兜底，
// 正常路径由调用方在上游响应后显式释放。

const checkinLockPrefix = "checkin:inflight:"

// AcquireCheckinLock 尝试获取某报名记录的点名在途锁
// 返回 false 表示已有请求在途
func (c *Client) AcquireCheckinLock(ctx context.Context, enrollmentID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, checkinLockPrefix+enrollmentID, "1", ttl).Result()
}

// ReleaseCheckinLock 释放点名在途锁
func (c *Client) ReleaseCheckinLock(ctx context.Context, enrollmentID string) error {
	return c.rdb.Del(ctx, checkinLockPrefix+enrollmentID).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
