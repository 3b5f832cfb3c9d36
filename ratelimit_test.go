package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rps, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/login", rateLimitMiddleware(rps, burst), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func postFrom(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRateLimit_SecondRequestReturns429 exhausts a burst of one and checks
// the follow-up request is rejected with the standard error body.
func TestRateLimit_SecondRequestReturns429(t *testing.T) {
	r := newLimitedRouter(1, 1)

	if w := postFrom(r, "1.2.3.4:1111"); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	w := postFrom(r, "1.2.3.4:1111")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After: 1, got %q", w.Header().Get("Retry-After"))
	}
	if body := w.Body.String(); body != `{"error":"too many requests"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

// TestRateLimit_PerIP verifies one client's exhaustion does not affect another.
func TestRateLimit_PerIP(t *testing.T) {
	r := newLimitedRouter(1, 1)

	postFrom(r, "1.2.3.4:1111")
	if w := postFrom(r, "5.6.7.8:2222"); w.Code != http.StatusOK {
		t.Errorf("other IP: expected 200, got %d", w.Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	r := newLimitedRouter(0, 0)
	for i := 0; i < 10; i++ {
		if w := postFrom(r, "1.2.3.4:1111"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}
