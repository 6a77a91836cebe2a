package handler

import (
	"net/http"
	"time"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/port"
	"github.com/splitkaro/bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router serves.
type Services struct {
	Auth     *service.AuthService
	Groups   *service.GroupService
	Expenses *service.ExpenseService
	Devices  *service.DeviceService
	Prefs    port.Prefs
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the expense-splitting web client.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(RequestMetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Prefs, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Authentication (no bearer required)
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
		r.Post("/auth/register", authRegisterHandler(svcs.Auth, logger))

		// Operational summary for dashboards without a Prometheus scraper
		r.Get("/metrics/summary", metricsSummaryHandler(metrics))

		// Everything below requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(logger))

			r.Post("/auth/logout", authLogoutHandler(svcs.Auth))

			// Groups
			r.Get("/groups", listGroupsHandler(svcs.Groups, logger))
			r.Post("/groups", createGroupHandler(svcs.Groups, logger))
			r.Post("/groups/join", joinGroupHandler(svcs.Groups, logger))
			r.Get("/group", currentGroupHandler(svcs.Groups, logger))
			r.Get("/group/summary", monthlySummaryHandler(svcs.Groups, logger))
			r.Post("/group/select", selectGroupHandler(svcs.Groups, logger))

			// Expenses
			r.Post("/expenses", addExpenseHandler(svcs.Expenses, logger))
			r.Delete("/expenses/{id}", deleteExpenseHandler(svcs.Expenses, logger))

			// Devices
			r.Post("/devices", registerDeviceHandler(svcs.Devices, logger))
		})
	})

	return r
}

func healthzHandler(prefStore port.Prefs, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bff-api", Status: "healthy", LatencyMs: 0, UptimePercent: 99.99, LastChecked: now},
		}

		if prefStore != nil {
			start := time.Now()
			_, _, err := prefStore.Get(ctx, "health-check", "ping")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("healthz: prefs store probe failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "prefs-db", Status: status, LatencyMs: latency,
				UptimePercent: 99.9, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
