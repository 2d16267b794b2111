package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/genome"
	"github.com/snow-ghost/planner/optimizer"
	"github.com/snow-ghost/planner/selection"
)

// emptySelectionMessage is the reply the web client shows verbatim.
const emptySelectionMessage = "No exercises selected. Please select at least one workout."

// handleOptimize runs one optimization
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	var req OptimizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	names := req.SelectedExercises.Names()
	if len(names) == 0 {
		writeError(w, emptySelectionMessage, "EMPTY_POOL", http.StatusBadRequest)
		return
	}

	result, err := s.optimizer.Optimize(r.Context(), names, req.RunConfig())
	if err != nil {
		s.writeOptimizeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleBatch runs several independent optimizations
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, "requests must not be empty", "EMPTY_BATCH", http.StatusBadRequest)
		return
	}

	results, err := s.optimizer.OptimizeBatch(r.Context(), req.toOptimizer())
	if err != nil {
		if errors.Is(err, optimizer.ErrBatchTooLarge) {
			writeError(w, err.Error(), "BATCH_TOO_LARGE", http.StatusBadRequest)
			return
		}
		s.writeOptimizeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleExercises lists the catalog
func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"exercises": s.catalog.List()})
}

// handleStrategies lists the policy names a request may choose from
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"selection":      selection.Available(),
		"genome":         genome.Available(),
		"goals":          []core.Goal{core.GoalFatLoss, core.GoalMuscleGain, core.GoalEndurance},
		"calorie_models": []core.CalorieModel{core.CalorieModelRate, core.CalorieModelFixed},
		"defaults":       core.DefaultRunConfig(),
	})
}

// handleCache reports cache statistics (GET) or clears the cache (DELETE)
func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	cm := s.optimizer.Cache()
	if cm == nil {
		writeError(w, "Cache not available", "CACHE_DISABLED", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, cm.Stats())
	case http.MethodDelete:
		cm.Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}
	s.optimizer.Telemetry().HealthHandler(w, r)
}

func (s *Server) writeOptimizeError(w http.ResponseWriter, r *http.Request, err error) {
	code := optimizer.ErrorCode(err)
	switch {
	case errors.Is(err, core.ErrEmptyPool):
		writeError(w, emptySelectionMessage, code, http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidConfig):
		writeError(w, err.Error(), code, http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, "optimization timed out", code, http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads this reply.
		writeError(w, "request cancelled", code, http.StatusServiceUnavailable)
	default:
		s.logger.Error("optimization failed", "error", err.Error(), "path", r.URL.Path)
		writeError(w, "internal server error", code, http.StatusInternalServerError)
	}
}

// decodeBody parses a JSON body, writing a 400 reply on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid JSON: "+err.Error(), "INVALID_JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message, code string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}
