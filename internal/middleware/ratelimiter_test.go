package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	// Burst of 2 with no refill inside the test window.
	limiter := rate.NewLimiter(rate.Limit(0.001), 2)

	limitedCount := 0
	handler := RateLimitMiddleware(limiter, func() { limitedCount++ })(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
		rr := httptest.NewRecorder()

		handler(rr, req)

		if rr.Code != want {
			t.Errorf("request %d: got status %d, want %d", i+1, rr.Code, want)
		}
	}

	if limitedCount != 1 {
		t.Errorf("onLimited ran %d times, want 1", limitedCount)
	}
}

func TestRateLimitMiddleware_NilCallback(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 0)

	handler := RateLimitMiddleware(limiter, nil)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	rr := httptest.NewRecorder()

	handler(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
}
