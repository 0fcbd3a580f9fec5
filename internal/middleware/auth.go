package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Authenticator 校验 token 并加载账户当前状态，由 logic.AccountLogic 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*logic.Claims, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// RequireAuth 要求登录
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := a.Authenticate(c.Request.Context(), token)
		if errors.Is(err, logic.ErrInvalidToken) {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if err != nil {
			logger.Error("Authentication lookup failed: %v", err)
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时记录用户，否则按匿名处理
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := a.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireStaff 必须挂在 RequireAuth 之后，管理员标记来自数据库而非 token
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !claims.IsStaff {
			abort(c, http.StatusForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

// CurrentClaims 当前请求的登录信息
func CurrentClaims(c *gin.Context) (*logic.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*logic.Claims)
	return claims, ok
}

// CurrentUserID 未登录时返回 nil
func CurrentUserID(c *gin.Context) *int64 {
	claims, ok := CurrentClaims(c)
	if !ok {
		return nil
	}
	id := claims.UserID
	return &id
}
