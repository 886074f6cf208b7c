package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

type rateLimitResponse struct {
	Error string `json:"error"`
}

// RateLimit limits requests per client IP using a formatted rate such as "30-M".
func RateLimit(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parsing rate %q: %w", formatted, err)
	}

	instance := limiter.New(memory.NewStore(), rate)

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded", slog.String("remote_addr", r.RemoteAddr))
			render.JSON(w, r, http.StatusTooManyRequests, rateLimitResponse{Error: "too many requests, please try again later"})
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context()).Error("failed to check rate limit", slog.String("error", err.Error()))
			render.JSON(w, r, http.StatusInternalServerError, rateLimitResponse{Error: "internal server error during rate limit check"})
		}),
	)

	return mw.Handler, nil
}
