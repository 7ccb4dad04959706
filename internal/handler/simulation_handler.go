package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Simulation endpoints
// ============================================================

type runSimulationRequest struct {
	Scenario domain.Scenario `json:"scenario"`
}

type compareRequest struct {
	Scenarios []domain.Scenario `json:"scenarios"`
}

type sensitivityRequest struct {
	Scenario domain.Scenario `json:"scenario"`
	Values   []float64       `json:"values"`
}

func runSimulationHandler(svc *service.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/simulation/run")
		defer span.End()

		var req runSimulationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Run(ctx, &req.Scenario)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func solveHandler(svc *service.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/simulation/solve")
		defer span.End()

		var req runSimulationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Solve(ctx, &req.Scenario)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// Infeasible and did-not-converge are reportable outcomes, so they
		// still return 200 with the status on the body.
		writeJSON(w, http.StatusOK, result)
	}
}

func compareHandler(svc *service.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/simulation/compare")
		defer span.End()

		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Compare(ctx, req.Scenarios)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// sensitivityHandler accepts either an explicit values list in the body
// or min/max/steps query parameters for an evenly spaced sweep.
func sensitivityHandler(svc *service.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/simulation/sensitivity/{parameter}")
		defer span.End()

		parameter := chi.URLParam(r, "parameter")

		var req sensitivityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		values := req.Values
		if len(values) == 0 {
			var err error
			values, err = sweepFromQuery(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		result, err := svc.Sensitivity(ctx, &req.Scenario, parameter, values)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func templateHandler(svc *service.Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Template())
	}
}

// sweepFromQuery builds an evenly spaced value list from min/max/steps.
func sweepFromQuery(r *http.Request) ([]float64, error) {
	q := r.URL.Query()

	min, err := queryFloat(q.Get("min"), 0.0)
	if err != nil {
		return nil, &domain.ErrInvalidScenario{Field: "min", Message: "must be a number"}
	}
	max, err := queryFloat(q.Get("max"), 1.0)
	if err != nil {
		return nil, &domain.ErrInvalidScenario{Field: "max", Message: "must be a number"}
	}
	steps := 5
	if v := q.Get("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			return nil, &domain.ErrInvalidScenario{Field: "steps", Message: "must be an integer >= 2"}
		}
		steps = n
	}

	values := make([]float64, steps)
	stepSize := (max - min) / float64(steps-1)
	for i := range values {
		values[i] = min + float64(i)*stepSize
	}
	return values, nil
}

func queryFloat(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
