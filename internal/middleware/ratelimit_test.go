// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterCache(t *testing.T) {
	lc := newLimiterCache[string](1, 3)

	a := lc.get("10.0.0.1")
	b := lc.get("10.0.0.2")
	assert.NotSame(t, a, b)

	// Same key returns the same limiter.
	assert.Same(t, a, lc.get("10.0.0.1"))
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	for i := 0; i < 5; i++ {
		lc.get(fmt.Sprintf("10.0.0.%d", i))
	}

	assert.False(t, lc.clearIfExceeds(10))
	assert.True(t, lc.clearIfExceeds(3))
	assert.Len(t, lc.limiters, 0)
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	next, _ := okHandler()
	handler := rl.Middleware()(next)

	serve := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// First two requests consume the burst.
	require.Equal(t, http.StatusOK, serve("1.2.3.4").Code)
	require.Equal(t, http.StatusOK, serve("1.2.3.4").Code)

	// Third request from the same IP is limited.
	w := serve("1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// A different IP has its own budget.
	assert.Equal(t, http.StatusOK, serve("5.6.7.8").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{name: "x-real-ip wins", realIP: "1.1.1.1", forwarded: "2.2.2.2", remoteAddr: "3.3.3.3:1234", want: "1.1.1.1"},
		{name: "x-forwarded-for", forwarded: "2.2.2.2", remoteAddr: "3.3.3.3:1234", want: "2.2.2.2"},
		{name: "x-forwarded-for chain keeps first hop", forwarded: "2.2.2.2, 10.0.0.1, 10.0.0.2", remoteAddr: "3.3.3.3:1234", want: "2.2.2.2"},
		{name: "remote addr fallback", remoteAddr: "3.3.3.3:1234", want: "3.3.3.3:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
