package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planforge/planforge/internal/plangen"
	"github.com/planforge/planforge/internal/reqcache"
)

// Planner is the slice of the generation pipeline the transport needs.
type Planner interface {
	GeneratePlan(ctx context.Context, req plangen.PlanRequest) (*plangen.PlanDocument, error)
}

type Server struct {
	planner Planner
	cache   *reqcache.Cache
	now     func() time.Time
}

func NewServer(planner Planner) http.Handler {
	s := &Server{
		planner: planner,
		cache:   reqcache.New(reqcache.DefaultEntryTTL),
		now:     time.Now,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/generatePlan", s.handleGeneratePlan)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writePipelineError(w http.ResponseWriter, err error) {
	var pe *plangen.PipelineError
	if errors.As(err, &pe) {
		writeJSON(w, pe.Status, map[string]any{"error": pe.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "POST required"})
		return
	}

	var req plangen.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}

	requestID := uuid.NewString()
	start := s.now()
	key := plangen.CacheKey(req, start)

	// The computation is shared between concurrent identical requests,
	// so it must outlive the first caller's connection.
	computeCtx := context.WithoutCancel(r.Context())
	val, err := s.cache.GetOrCompute(r.Context(), key, func() (any, error) {
		return s.planner.GeneratePlan(computeCtx, req)
	})
	if err != nil {
		log.Printf("httpapi: request %s failed after %s: %v", requestID, time.Since(start).Round(time.Millisecond), err)
		writePipelineError(w, err)
		return
	}

	doc, ok := val.(*plangen.PlanDocument)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}

	log.Printf("httpapi: request %s served in %s (score %d)", requestID, time.Since(start).Round(time.Millisecond), doc.ComprehensivenessScore)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pending": s.cache.Len()})
}
