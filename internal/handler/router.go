package handler

import (
	"net/http"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/infra/observability"
	"github.com/cardsim/cardsim-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const serviceVersion = "1.0.0"

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(simSvc *service.Simulator, pricingSvc *service.Pricing, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TraceContext)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(pricingSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Simulation engine
		r.Route("/simulation", func(r chi.Router) {
			r.Post("/run", runSimulationHandler(simSvc, logger))
			r.Post("/solve", solveHandler(simSvc, logger))
			r.Post("/compare", compareHandler(simSvc, logger))
			r.Post("/sensitivity/{parameter}", sensitivityHandler(simSvc, logger))
			r.Get("/template", templateHandler(simSvc))
		})

		// Pricing plan and presets (read-only)
		r.Route("/pricing", func(r chi.Router) {
			r.Get("/plan", pricingPlanHandler(pricingSvc, logger))
			r.Get("/presets", presetsHandler(pricingSvc, logger))
			r.Get("/presets/{presetName}", presetByNameHandler(pricingSvc, logger))
			r.Get("/tiers/{metric}", tierInfoHandler(pricingSvc, logger))
			r.Get("/fees/fixed", fixedFeesHandler(pricingSvc, logger))
			r.Get("/fees/events", eventFeesHandler(pricingSvc, logger))
			r.Get("/fees/oneoff", oneOffFeesHandler(pricingSvc, logger))
		})

		// Engine counters snapshot
		r.Get("/metrics/engine", engineMetricsHandler(metrics))
	})

	return r
}

// healthzHandler verifies the pricing plan is loadable, since every
// simulation depends on it.
func healthzHandler(pricingSvc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricingSvc != nil {
			if _, err := pricingSvc.Plan(r.Context()); err != nil {
				logger.Error("health check: pricing plan unavailable", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, domain.HealthResponse{
					Status:  "unhealthy",
					Service: "cardsim",
					Version: serviceVersion,
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, domain.HealthResponse{
			Status:  "healthy",
			Service: "cardsim",
			Version: serviceVersion,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
