package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/jwt"
	"github.com/zeus1411/aquastore/pkg/response"
)

// 上下文键，handler通过CurrentUserID/CurrentRole读取
const (
	ctxKeyUserID   = "user_id"
	ctxKeyRole     = "role"
	ctxKeyNickname = "nickname"
)

// TokenBlacklist Token黑名单检查接口（redis.SessionStore实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// JWTAuth JWT认证中间件
// 解析Authorization: Bearer {token}，验证签名和有效期，
// 再查黑名单（登出的Token立即失效），通过后把身份放进gin上下文。
func JWTAuth(manager *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := manager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsInBlacklist(c.Request.Context(), token)
			if err != nil {
				// 黑名单查不了时放行：可用性优先于已登出Token的窗口期风险
				log.Printf("[auth] 黑名单检查失败: %v", err)
			} else if revoked {
				response.Error(c, apperrors.ErrInvalidToken)
				c.Abort()
				return
			}
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyRole, claims.Role)
		c.Set(ctxKeyNickname, claims.Nickname)
		c.Next()
	}
}

// RequireAdmin 管理员权限中间件（在JWTAuth之后使用）
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.ErrorWithCode(c, apperrors.ErrCodeForbidden, "无权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID 从gin上下文取当前用户ID（未认证返回0）
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// IsAdmin 当前用户是否是管理员
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxKeyRole) == "admin"
}
