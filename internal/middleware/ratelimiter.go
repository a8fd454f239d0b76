package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/haguru/kakashi/internal/models/dto"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware sheds requests over the limiter's rate with a 429.
// onLimited, if non-nil, runs for every shed request.
func RateLimitMiddleware(limiter *rate.Limiter, onLimited func()) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if onLimited != nil {
					onLimited()
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				resp := dto.RateLimitResponse{Message: "Too many requests. Please try again later."}
				_ = json.NewEncoder(w).Encode(resp)
				return
			}
			next(w, r)
		}
	}
}
