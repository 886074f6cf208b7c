package http_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	shopHttp "github.com/m-cagatin/rfmclothingshop/internal/http"
	"github.com/m-cagatin/rfmclothingshop/internal/http/auth"
	"github.com/m-cagatin/rfmclothingshop/internal/http/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/http/export"
	"github.com/m-cagatin/rfmclothingshop/internal/http/importcsv"
	"github.com/m-cagatin/rfmclothingshop/internal/http/matching"
	orderHandler "github.com/m-cagatin/rfmclothingshop/internal/http/order"
	"github.com/m-cagatin/rfmclothingshop/internal/http/payment"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

const (
	testSecret = "router-secret"
	testIssuer = "rfm-test"
)

func newRouter(t *testing.T) (http.Handler, *order.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	orders := order.NewMockRepository(ctrl)
	users := user.NewService(nil, user.TokenConfig{Secret: testSecret, Issuer: testIssuer})

	router := shopHttp.New(shopHttp.Options{
		Logger:         slog.New(slog.DiscardHandler),
		AllowedOrigins: []string{"http://localhost:5173"},
		Tokens:         users,
	}, shopHttp.Handlers{
		Auth:     auth.NewHandler(users),
		Cashflow: cashflow.NewHandler(nil),
		Import:   importcsv.NewHandler(nil, nil, nil),
		Rules:    matching.NewHandler(nil),
		Export:   export.NewHandler(nil, nil),
		Payments: payment.NewHandler(nil, users, nil),
		Orders:   orderHandler.NewHandler(order.NewService(orders)),
	})

	return router, orders
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()

	claims := user.Claims{
		Role: user.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestRouter_Health(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_OrdersAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setup      func(repo *order.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing token",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authorization header required"}`,
		},
		{
			name:       "malformed header",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"authorization header format must be Bearer {token}"}`,
		},
		{
			name:       "wrong signature",
			header:     "Bearer " + signToken(t, "other-secret", "7"),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid token"}`,
		},
		{
			name:   "valid token",
			header: "Bearer " + signToken(t, testSecret, "7"),
			setup: func(repo *order.MockRepository) {
				repo.EXPECT().ListOrders(gomock.Any(), order.ListFilter{}).Return([]*order.Order{}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tc.setup != nil {
				tc.setup(repo)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
