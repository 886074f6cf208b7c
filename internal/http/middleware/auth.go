package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

type contextKey string

const accountIDKey = contextKey("account_id")

type TokenParser interface {
	ParseToken(token string) (*user.Claims, error)
}

// Authenticate reads an optional bearer token. A valid token puts the account id into the request
// context, an invalid one is rejected with 401, and requests without a token pass through.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				render.Error(w, r, apperr.Unauthorized("authorization header format must be Bearer {token}"))
				return
			}

			claims, err := parser.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logging.FromContext(r.Context()).Warn("invalid token", "error", err)
				render.Error(w, r, err)

				return
			}

			accountID, err := claims.AccountID()
			if err != nil {
				render.Error(w, r, apperr.Unauthorized("invalid token claims"))
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.Int64("account_id", accountID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that Authenticate did not attach an account to.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AccountIDFromContext(r.Context()); !ok {
			render.Error(w, r, apperr.Unauthorized("authorization header required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AccountIDFromContext returns the authenticated account id.
func AccountIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}

// WithAccountID is used by tests and in-process callers to act as an account.
func WithAccountID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}
