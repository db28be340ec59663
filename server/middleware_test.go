package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/vetdose/config"
	"github.com/giygas/vetdose/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		expected   string
	}{
		{"single forwarded ip", "203.0.113.1", "192.168.1.1:12345", "203.0.113.1"},
		{"forwarded chain", "203.0.113.1, 10.0.0.1", "192.168.1.1:12345", "203.0.113.1"},
		{"no header strips port", "", "192.168.1.1:12345", "192.168.1.1"},
		{"ipv6 without header", "", "[::1]:8080", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			var got string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("Expected RemoteAddr %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBlockDirectAccessMiddleware(t *testing.T) {
	logging.InitLogger("")

	tests := []struct {
		name       string
		enabled    bool
		remoteAddr string
		header     string
		status     int
	}{
		{"disabled lets everything through", false, "203.0.113.9:1000", "", http.StatusOK},
		{"loopback ipv4", true, "127.0.0.1:1000", "", http.StatusOK},
		{"loopback ipv6", true, "[::1]:1000", "", http.StatusOK},
		{"proxied", true, "203.0.113.9:1000", "X-Real-IP", http.StatusOK},
		{"direct remote", true, "203.0.113.9:1000", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.header != "" {
				req.Header.Set(tt.header, "198.51.100.2")
			}

			rr := httptest.NewRecorder()
			BlockDirectAccessMiddleware(tt.enabled)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	logging.InitLogger("")
	cfg := &config.Config{MaxRequestBody: 16, MaxHeaderSize: 64}
	mw := RequestSizeMiddleware(cfg)

	t.Run("small body passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/dose", strings.NewReader(`{"a":1}`))
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
	})

	t.Run("declared body too large", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/dose", strings.NewReader(strings.Repeat("x", 32)))
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Maximum allowed size is 16 bytes") {
			t.Errorf("Expected size in message, got %s", rr.Body.String())
		}
	})

	t.Run("undeclared body is capped", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/dose", strings.NewReader(strings.Repeat("x", 32)))
		req.ContentLength = -1

		var readErr error
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		var maxErr *http.MaxBytesError
		if !errors.As(readErr, &maxErr) {
			t.Errorf("Expected MaxBytesError, got %v", readErr)
		}
	})

	t.Run("headers too large", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/species", nil)
		req.Header.Set("X-Padding", strings.Repeat("p", 100))
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
			t.Errorf("Expected 431, got %d", rr.Code)
		}
	})
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path     string
		expected int64
	}{
		{"/metrics", 0},
		{"/health", 5},
		{"/species", 1},
		{"/tabs", 1},
		{"/normalize", 1},
		{"/dose", 5},
		{"/drugs", 10},
		{"/drugs?q=ket", 20},
		{"/drugs/ket", 5},
		{"/sessions", 10},
		{"/sessions/abc", 5},
		{"/sessions/abc/patient", 5},
		{"/sessions/abc/reset", 5},
		{"/sessions/abc/rows", 20},
		{"/sessions/abc/sheet", 20},
		{"/other", 20},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if got := getTokenCost(req); got != tt.expected {
				t.Errorf("Expected cost %d for %s, got %d", tt.expected, tt.path, got)
			}
		})
	}
}

func TestRateLimitHandler(t *testing.T) {
	logging.InitLogger("")
	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()

	handler := RateLimitHandler(rl)(okHandler())

	req := httptest.NewRequest("GET", "/species", nil)
	req.RemoteAddr = "203.0.113.5"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "999" {
		t.Errorf("Expected 999 remaining, got %s", rr.Header().Get("X-RateLimit-Remaining"))
	}

	// Drain the bucket
	rl.getBucket("203.0.113.5").TakeAvailable(bucketCapacity)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Expected Retry-After header, got %q", rr.Header().Get("Retry-After"))
	}

	// Another client is unaffected
	other := httptest.NewRequest("GET", "/species", nil)
	other.RemoteAddr = "203.0.113.6"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for another client, got %d", rr.Code)
	}

	// Free routes never touch a bucket
	metricsReq := httptest.NewRequest("GET", "/metrics", nil)
	metricsReq.RemoteAddr = "203.0.113.5"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, metricsReq)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected free route to pass, got %d", rr.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()

	rl.getBucket("full")
	rl.getBucket("used").TakeAvailable(10)

	if removed := rl.cleanup(); removed != 1 {
		t.Errorf("Expected 1 bucket removed, got %d", removed)
	}

	rl.mu.RLock()
	_, fullLeft := rl.clients["full"]
	_, usedLeft := rl.clients["used"]
	rl.mu.RUnlock()

	if fullLeft {
		t.Error("Expected refilled bucket to be removed")
	}
	if !usedLeft {
		t.Error("Expected partially used bucket to be kept")
	}
}
