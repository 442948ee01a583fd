package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"clinic-scheduling-server/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(2, zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client was limited: %d", w.Code)
	}
}

func TestRateLimiterStoreBounded(t *testing.T) {
	store := newRateLimiterStore(rate.Every(time.Second), 1, 2, time.Hour)
	store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")
	store.getLimiter("10.0.0.3")
	if n := store.limiters.Len(); n != 2 {
		t.Errorf("expected 2 tracked clients, got %d", n)
	}
	if _, ok := store.limiters.Peek("10.0.0.1"); ok {
		t.Error("least recently used client was not evicted")
	}
}

func TestRateLimiterStoreExpires(t *testing.T) {
	store := newRateLimiterStore(rate.Every(time.Second), 1, 10, 20*time.Millisecond)
	first := store.getLimiter("10.0.0.1")
	if store.getLimiter("10.0.0.1") != first {
		t.Fatal("limiter not reused within ttl")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := store.limiters.Peek("10.0.0.1"); ok {
		t.Error("limiter outlived its ttl")
	}
	if store.getLimiter("10.0.0.1") == first {
		t.Error("expired limiter was reused")
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"allowed", models.RoleAdmin, http.StatusOK},
		{"denied", models.RoleProfessional, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) { c.Set(userRoleKey, tt.role) })
			router.GET("/admin", RoleAuthMiddleware(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
