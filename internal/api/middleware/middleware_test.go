package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/config"
	"github.com/artisenpaiii/liftlog/internal/testutil"
	"github.com/artisenpaiii/liftlog/pkg/jwt"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── 测试辅助 ──

type mockBlacklist struct {
	revoked map[string]bool
	err     error
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], m.err
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret: "middleware-test-secret-2026",
		TokenTTL:  time.Hour,
	})
}

// protected 返回挂载 JWTAuth 的引擎，受保护路由回显 user_id
func protected(mgr *jwt.Manager, blacklist TokenBlacklist) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, blacklist, "token"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"jti":     c.GetString("token_jti"),
		})
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) int {
	var body response.ErrorBody
	json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

// ═══════════════════════════════════════════════════════════
// JWTAuth
// ═══════════════════════════════════════════════════════════

func TestJWTAuth_BearerToken(t *testing.T) {
	mgr := newJWTManager()
	token, claims, _ := mgr.GenerateToken("user-1", "lifter@example.com")

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(protected(mgr, nil), req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":"user-1"`) {
		t.Errorf("期望注入 user_id，实际 %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), claims.ID) {
		t.Errorf("期望注入 jti，实际 %s", w.Body.String())
	}
}

func TestJWTAuth_CookieToken(t *testing.T) {
	mgr := newJWTManager()
	token, _, _ := mgr.GenerateToken("user-2", "")

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := do(protected(mgr, nil), req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := newJWTManager()
	other := jwt.NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-000", TokenTTL: time.Hour})
	foreign, _, _ := other.GenerateToken("user-1", "")

	tests := []struct {
		name   string
		header string
	}{
		{"缺少认证信息", ""},
		{"格式错误", "Token abc"},
		{"空 Bearer", "Bearer "},
		{"无效 token", "Bearer not.a.token"},
		{"其他密钥签名", "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := do(protected(mgr, nil), req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("期望 401，实际 %d", w.Code)
			}
			if code := errorCode(w); code != 10002 {
				t.Errorf("期望错误码 10002，实际 %d", code)
			}
		})
	}
}

func TestJWTAuth_Blacklisted(t *testing.T) {
	mgr := newJWTManager()
	token, claims, _ := mgr.GenerateToken("user-1", "")
	bl := &mockBlacklist{revoked: map[string]bool{claims.ID: true}}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(protected(mgr, bl), req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("已登出的 token 期望 401，实际 %d", w.Code)
	}
}

func TestJWTAuth_BlacklistErrorFailsOpen(t *testing.T) {
	mgr := newJWTManager()
	token, _, _ := mgr.GenerateToken("user-1", "")
	bl := &mockBlacklist{err: errors.New("redis down")}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(protected(mgr, bl), req)

	if w.Code != http.StatusOK {
		t.Errorf("黑名单不可用时期望放行，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RateLimit
// ═══════════════════════════════════════════════════════════

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)

	r := gin.New()
	r.POST("/auth/login", RateLimit(rdb, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := do(r, httptest.NewRequest("POST", "/auth/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求期望 200，实际 %d", i+1, w.Code)
		}
	}

	w := do(r, httptest.NewRequest("POST", "/auth/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("期望 429，实际 %d", w.Code)
	}
	if code := errorCode(w); code != 10004 {
		t.Errorf("期望错误码 10004，实际 %d", code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("期望 Retry-After=60，实际 %s", w.Header().Get("Retry-After"))
	}
}

func TestRateLimit_NilLimiterPasses(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := do(r, httptest.NewRequest("GET", "/x", nil)); w.Code != http.StatusOK {
			t.Fatalf("期望 200，实际 %d", w.Code)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// 其他中间件
// ═══════════════════════════════════════════════════════════

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/x", BodyLimit(16), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest("POST", "/x", strings.NewReader(strings.Repeat("a", 32))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}
	if code := errorCode(w); code != 10005 {
		t.Errorf("期望错误码 10005，实际 %d", code)
	}

	w = do(r, httptest.NewRequest("POST", "/x", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := do(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("期望透传 X-Request-ID，实际 %s", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	w = do(r, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 ID 应被替换为 UUID，实际 %s", got)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := do(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("白名单 Origin 应被回显")
	}

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = do(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单 Origin 不应被回显")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest("GET", "/x", nil))
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("缺少 X-Frame-Options")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("缺少 X-Content-Type-Options")
	}
}

func TestLogger_InjectsLoggerForFail(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		response.Fail(c, errors.New("boom"), "Failed to do x")
	})

	w := do(r, httptest.NewRequest("GET", "/x", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际 %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("内部错误不应返回给客户端")
	}
}
