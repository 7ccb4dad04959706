package handler

import (
	"net/http"

	"github.com/cardsim/cardsim-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Pricing plan endpoints
// ============================================================

func pricingPlanHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/plan")
		defer span.End()

		plan, err := svc.Plan(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

func presetsHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/presets")
		defer span.End()

		presets, err := svc.Presets(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, presets)
	}
}

func presetByNameHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/presets/{presetName}")
		defer span.End()

		name := chi.URLParam(r, "presetName")
		preset, err := svc.PresetByName(ctx, name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, preset)
	}
}

func tierInfoHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/tiers/{metric}")
		defer span.End()

		metric := chi.URLParam(r, "metric")
		info, err := svc.TierInfo(ctx, metric)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func fixedFeesHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/fees/fixed")
		defer span.End()

		fees, err := svc.FixedFees(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fees)
	}
}

func eventFeesHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/fees/events")
		defer span.End()

		fees, err := svc.EventFees(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fees)
	}
}

func oneOffFeesHandler(svc *service.Pricing, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pricing/fees/oneoff")
		defer span.End()

		fees, err := svc.OneOffFees(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fees)
	}
}
