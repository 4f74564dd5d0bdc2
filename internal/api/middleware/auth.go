package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
	"github.com/SHILUNKA/edusaas-sub001/pkg/redis"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 校验通过后查 Redis 黑名单，登出过的 Token 直接拒绝
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "缺少认证头")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "认证头格式无效")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			unauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.TokenType != "access" {
			unauthorized(c, "Token 类型无效")
			return
		}

		blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil || blacklisted {
			// Redis 故障时宁可拒绝也不放行已登出的 Token
			unauthorized(c, "Token 已失效")
			return
		}

		// 将身份注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("base_id", claims.BaseID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireBase 基地账号守卫
// 排课与点名都是基地侧操作，总部账号（base_id 为空）直接拒绝
func RequireBase() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("base_id")
		baseID, ok := v.(string)
		if !exists || !ok || baseID == "" {
			forbidden(c, "该操作仅限基地账号")
			return
		}
		c.Next()
	}
}
