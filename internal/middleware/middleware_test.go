package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/model"
	"github.com/Greybash/ngo-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAccounts(t *testing.T) (*logic.AccountLogic, *gorm.DB) {
	t.Helper()
	db, err := repository.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return logic.NewAccountLogic(db, "jwt-secret", time.Hour), db
}

// issue 创建账户并签发 token
func issue(t *testing.T, a *logic.AccountLogic, db *gorm.DB, email string, staff bool) (string, *model.UserModel) {
	t.Helper()
	user := &model.UserModel{Email: email, PasswordHash: "x", FirstName: "Asha", LastName: "Rao"}
	require.NoError(t, db.Create(user).Error)
	if staff {
		require.NoError(t, a.SetStaff(context.Background(), email, true))
	}
	token, err := a.IssueToken(user)
	require.NoError(t, err)
	return token, user
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authRouter(a Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(a), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": *CurrentUserID(c)})
	})
	r.GET("/admin", RequireAuth(a), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalAuth(a), func(c *gin.Context) {
		if CurrentUserID(c) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "user")
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	accounts, db := newAccounts(t)
	r := authRouter(accounts)

	user, u := issue(t, accounts, db, "asha@example.com", false)
	staff, _ := issue(t, accounts, db, "meera@example.com", true)
	forged, err := logic.NewAccountLogic(db, "other", time.Hour).IssueToken(u)
	require.NoError(t, err)
	ghost, err := accounts.IssueToken(&model.UserModel{Id: 9999})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		body   string
	}{
		{"no token", "/me", "", http.StatusUnauthorized, ""},
		{"forged token", "/me", forged, http.StatusUnauthorized, ""},
		{"deleted account", "/me", ghost, http.StatusUnauthorized, ""},
		{"user", "/me", user, http.StatusOK, fmt.Sprintf(`{"uid":%d}`, u.Id)},
		{"user on admin", "/admin", user, http.StatusForbidden, ""},
		{"staff on admin", "/admin", staff, http.StatusNoContent, ""},
		{"optional anonymous", "/maybe", "", http.StatusOK, "anonymous"},
		{"optional bad token", "/maybe", forged, http.StatusOK, "anonymous"},
		{"optional user", "/maybe", user, http.StatusOK, "user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireStaffFollowsRevocation(t *testing.T) {
	accounts, db := newAccounts(t)
	r := authRouter(accounts)

	token, _ := issue(t, accounts, db, "meera@example.com", true)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/admin", token).Code)

	require.NoError(t, accounts.SetStaff(context.Background(), "meera@example.com", false))
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", token).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/me", token).Code)
}

// brokenAuthenticator 模拟数据库不可用
type brokenAuthenticator struct{}

func (brokenAuthenticator) Authenticate(ctx context.Context, token string) (*logic.Claims, error) {
	return nil, errors.New("database is locked")
}

func TestRequireAuthLookupFailure(t *testing.T) {
	r := authRouter(brokenAuthenticator{})
	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodGet, "/me", "some-token").Code)
	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/maybe", "some-token").Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", "").Code)

	// 不同 IP 独立计数
	assert.True(t, rl.Allow("10.0.0.2"))

	assert.Equal(t, 0, rl.Cleanup(time.Now()))
	assert.Equal(t, 2, rl.Cleanup(time.Now().Add(time.Hour)))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := perform(r, http.MethodGet, "/ok", "")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, id, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "upstream-id", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
}
