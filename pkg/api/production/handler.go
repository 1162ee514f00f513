// Package production exposes the orchestrator over HTTP: kick off a run,
// list past runs, fetch one run or its EDL.
package production

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/pipeline"
	"agentic_studio/pkg/core/store"
)

type RunRequest struct {
	Request string  `json:"request"`
	Budget  float64 `json:"budget"`
}

// Handler holds dependencies for production endpoints. Repo may be nil when
// no database is configured; runs then live only in the response.
type Handler struct {
	Orch *pipeline.Orchestrator
	Repo *store.ProductionRepo
	Log  *zap.Logger
}

func NewHandler(orch *pipeline.Orchestrator, repo *store.ProductionRepo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Orch: orch, Repo: repo, Log: log}
}

// HandleRun starts a production synchronously and returns the full result.
// Runs take minutes; callers are expected to use generous client timeouts.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Request == "" || req.Budget <= 0 {
		http.Error(w, "request and a positive budget are required", http.StatusBadRequest)
		return
	}

	result, err := h.Orch.Produce(r.Context(), req.Request, req.Budget)
	if err != nil {
		h.Log.Error("production run failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.Repo != nil {
		if err := h.Repo.SaveRun(r.Context(), result); err != nil {
			h.Log.Warn("failed to persist run", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleListRuns returns recent runs, newest first. ?limit=N caps the page.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if h.Repo == nil {
		http.Error(w, "no database configured", http.StatusServiceUnavailable)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.Repo.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// HandleGetRun returns one stored run by ?id=.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if h.Repo == nil {
		http.Error(w, "no database configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		http.Error(w, "id query parameter required", http.StatusBadRequest)
		return
	}

	result, err := h.Repo.LoadRun(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetEDL returns the EDL stored for a run by ?run_id=.
func (h *Handler) HandleGetEDL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if h.Repo == nil {
		http.Error(w, "no database configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id query parameter required", http.StatusBadRequest)
		return
	}

	edl, err := h.Repo.LoadEDL(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(edl)
}
