package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/m-cagatin/rfmclothingshop/internal/http/auth"
	"github.com/m-cagatin/rfmclothingshop/internal/http/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/http/export"
	"github.com/m-cagatin/rfmclothingshop/internal/http/importcsv"
	"github.com/m-cagatin/rfmclothingshop/internal/http/matching"
	"github.com/m-cagatin/rfmclothingshop/internal/http/middleware"
	"github.com/m-cagatin/rfmclothingshop/internal/http/order"
	"github.com/m-cagatin/rfmclothingshop/internal/http/payment"
)

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Timeout        time.Duration
	Tokens         middleware.TokenParser
}

type Handlers struct {
	Auth     *auth.Handler
	Cashflow *cashflow.Handler
	Import   *importcsv.Handler
	Rules    *matching.Handler
	Export   *export.Handler
	Payments *payment.Handler
	Orders   *order.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(chimw.Timeout(opts.Timeout))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Tokens))

		r.Route("/auth", h.Auth.Routes)

		r.Route("/cashflow", func(r chi.Router) {
			h.Cashflow.Routes(r)
			r.Route("/import", h.Import.Routes)
			r.Route("/rules", h.Rules.Routes)
			r.Route("/report/export", h.Export.Routes)
		})

		r.Route("/payments", h.Payments.Routes)

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			h.Orders.Routes(r)
		})
	})

	return router
}
