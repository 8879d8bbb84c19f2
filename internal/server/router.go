package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"astryxnodes/internal/config"
	"astryxnodes/internal/dto"
	ordercontroller "astryxnodes/internal/order/controller"
	paymentcontroller "astryxnodes/internal/payment/controller"
)

const notFoundBody = "404 - Page Not Found"

func NewRouter(
	cfg config.ServerConfig,
	paymentCtrl *paymentcontroller.PaymentController,
	orderCtrl *ordercontroller.OrderController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(recoverer(cfg.Production(), logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(cfg.Environment))
		r.Get("/payment-config", paymentCtrl.PaymentConfig)
		r.Get("/stripe-key", paymentCtrl.StripeKey)
		r.Post("/create-payment-intent", paymentCtrl.CreatePaymentIntent)
		r.Post("/create-order", orderCtrl.CreateOrder)
		r.Post("/complete-order", orderCtrl.CompleteOrder)
	})

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func health(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Environment: environment,
		})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type internalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// recoverer turns a panic into a 500. The panic text is only exposed
// outside production.
func recoverer(production bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				message := fmt.Sprint(rec)
				logger.Error("panic recovered",
					zap.String("requestId", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("panic", message),
					zap.Stack("stack"),
				)

				if production {
					message = "An error occurred"
				}
				writeJSON(w, http.StatusInternalServerError, internalErrorResponse{
					Error:   "Internal Server Error",
					Message: message,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
