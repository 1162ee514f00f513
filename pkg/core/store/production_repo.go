package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agentic_studio/pkg/models"
)

// ProductionRepo stores finished production runs and their EDLs.
type ProductionRepo struct {
	pool *pgxpool.Pool
}

// NewProductionRepo creates a repository on an injected pool.
func NewProductionRepo(pool *pgxpool.Pool) *ProductionRepo {
	return &ProductionRepo{pool: pool}
}

// RunSummary is the listing row for past runs.
type RunSummary struct {
	RunID      string                  `json:"run_id"`
	Status     models.ProductionStatus `json:"status"`
	Request    string                  `json:"request"`
	BudgetUsed float64                 `json:"budget_used"`
	FinishedAt time.Time               `json:"finished_at"`
}

// SaveRun upserts a production result keyed by run ID. The full result lands
// in a JSONB column; the query-relevant fields get their own columns.
//
// CREATE TABLE IF NOT EXISTS production_runs (
//   run_id TEXT PRIMARY KEY,
//   status TEXT,
//   request TEXT,
//   budget_used DOUBLE PRECISION,
//   result_json JSONB,
//   finished_at TIMESTAMPTZ,
//   updated_at TIMESTAMPTZ
// );
func (r *ProductionRepo) SaveRun(ctx context.Context, result *models.ProductionResult) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal production result: %w", err)
	}

	query := `
		INSERT INTO production_runs (run_id, status, request, budget_used, result_json, finished_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			budget_used = EXCLUDED.budget_used,
			result_json = EXCLUDED.result_json,
			finished_at = EXCLUDED.finished_at,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = r.pool.Exec(ctx, query,
		result.RunID, string(result.Status), result.Request, result.BudgetUsed,
		jsonData, result.FinishedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save production run: %w", err)
	}
	return nil
}

// LoadRun retrieves a full production result by run ID.
func (r *ProductionRepo) LoadRun(ctx context.Context, runID string) (*models.ProductionResult, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var jsonData []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result_json FROM production_runs WHERE run_id = $1`, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no production run %s", runID)
		}
		return nil, fmt.Errorf("failed to load production run: %w", err)
	}

	var result models.ProductionResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal production run: %w", err)
	}
	return &result, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *ProductionRepo) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT run_id, status, request, budget_used, finished_at
		FROM production_runs
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list production runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var status string
		if err := rows.Scan(&s.RunID, &status, &s.Request, &s.BudgetUsed, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		s.Status = models.ProductionStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveEDL upserts the edit decision list produced for a run.
//
// CREATE TABLE IF NOT EXISTS production_edls (
//   edl_id TEXT PRIMARY KEY,
//   run_id TEXT REFERENCES production_runs(run_id),
//   edl_json JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *ProductionRepo) SaveEDL(ctx context.Context, runID string, edl *models.EDL) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	jsonData, err := json.Marshal(edl)
	if err != nil {
		return fmt.Errorf("failed to marshal EDL: %w", err)
	}

	query := `
		INSERT INTO production_edls (edl_id, run_id, edl_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (edl_id)
		DO UPDATE SET
			edl_json = EXCLUDED.edl_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, edl.EDLID, runID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save EDL: %w", err)
	}
	return nil
}

// LoadEDL retrieves the EDL stored for a run, or pgx.ErrNoRows wrapped when
// the run shipped without one.
func (r *ProductionRepo) LoadEDL(ctx context.Context, runID string) (*models.EDL, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var jsonData []byte
	err := r.pool.QueryRow(ctx,
		`SELECT edl_json FROM production_edls WHERE run_id = $1 ORDER BY updated_at DESC LIMIT 1`, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no EDL for run %s", runID)
		}
		return nil, fmt.Errorf("failed to load EDL: %w", err)
	}

	var edl models.EDL
	if err := json.Unmarshal(jsonData, &edl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal EDL: %w", err)
	}
	return &edl, nil
}
