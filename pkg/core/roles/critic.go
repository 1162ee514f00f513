package roles

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/models"
)

// Critic gate thresholds over the 0-100 critic score.
const (
	approveThreshold   = 65
	fullBudgetScore    = 90
	strongBudgetScore  = 75
)

// Critic judges whether a pilot's test results earn a continuation budget.
type Critic struct {
	provider llm.TextProvider
	prompts  *prompt.Registry
	log      *zap.Logger
}

func NewCritic(provider llm.TextProvider, prompts *prompt.Registry, log *zap.Logger) *Critic {
	return &Critic{provider: provider, prompts: prompts, log: ensureLogger(log)}
}

type criticResponse struct {
	CriticScore         float64  `json:"critic_score"`
	GapAnalysis         string   `json:"gap_analysis"`
	Reasoning           string   `json:"reasoning"`
	AdjustmentsNeeded   []string `json:"adjustments_needed"`
	QAOverrideReasoning string   `json:"qa_override_reasoning"`
}

// EvaluatePilot scores the pilot and applies the deterministic gates:
// approved iff score >= 65; continuation budget multiplier 1.0 / 0.75 /
// 0.50 by score band, zero when cancelled. Approving past QA failures
// requires a non-empty qa_override_reasoning.
func (c *Critic) EvaluatePilot(ctx context.Context, request string, pilot models.PilotStrategy, sceneResults []models.SceneResult, spent, allocated float64) (*models.PilotResults, error) {
	userPrompt, err := c.prompts.RenderUser(prompt.IDCriticEvaluate, map[string]interface{}{
		"Request":      request,
		"Tier":         string(pilot.Tier),
		"Spent":        spent,
		"Allocated":    allocated,
		"SceneSummary": summarizeScenes(sceneResults),
	})
	if err != nil {
		return nil, err
	}
	systemPrompt, _ := c.prompts.SystemPrompt(prompt.IDCriticEvaluate)

	var resp criticResponse
	if err := queryJSON(ctx, c.provider, c.prompts, prompt.IDCriticEvaluate, "critic", userPrompt, systemPrompt, &resp); err != nil {
		return nil, err
	}

	qaFailures := 0
	for _, sr := range sceneResults {
		if !sr.QAPassed {
			qaFailures++
		}
	}

	approved := resp.CriticScore >= approveThreshold
	if approved && qaFailures > 0 && strings.TrimSpace(resp.QAOverrideReasoning) == "" {
		// One structured retry demanding the override, then give up.
		override := userPrompt + fmt.Sprintf("\n\n%d scene(s) failed QA. Since you approve anyway, qa_override_reasoning is mandatory and must explain why the failures are acceptable.", qaFailures)
		if err := queryJSON(ctx, c.provider, c.prompts, prompt.IDCriticEvaluate, "critic", override, systemPrompt, &resp); err != nil {
			return nil, err
		}
		approved = resp.CriticScore >= approveThreshold
		if approved && strings.TrimSpace(resp.QAOverrideReasoning) == "" {
			return nil, &models.InvalidAgentResponseError{
				Role: "critic",
				Err:  fmt.Errorf("approved %d QA failures without qa_override_reasoning", qaFailures),
			}
		}
	}

	results := &models.PilotResults{
		PilotID:             pilot.PilotID,
		Tier:                pilot.Tier,
		ScenesGenerated:     sceneResults,
		TotalCost:           spent,
		AvgQAScore:          avgQA(sceneResults),
		CriticScore:         resp.CriticScore,
		Approved:            approved,
		BudgetRemaining:     continuationBudget(resp.CriticScore, allocated-spent),
		GapAnalysis:         resp.GapAnalysis,
		CriticReasoning:     resp.Reasoning,
		AdjustmentsNeeded:   resp.AdjustmentsNeeded,
		QAFailuresCount:     qaFailures,
		QAOverrideReasoning: resp.QAOverrideReasoning,
	}

	c.log.Info("critic evaluated pilot",
		zap.String("pilot_id", pilot.PilotID),
		zap.Float64("critic_score", results.CriticScore),
		zap.Bool("approved", results.Approved),
		zap.Float64("budget_remaining", results.BudgetRemaining))
	return results, nil
}

// continuationBudget applies the score-band multiplier to the unspent
// allocation.
func continuationBudget(score, unspent float64) float64 {
	if unspent < 0 {
		unspent = 0
	}
	switch {
	case score >= fullBudgetScore:
		return unspent
	case score >= strongBudgetScore:
		return 0.75 * unspent
	case score >= approveThreshold:
		return 0.50 * unspent
	default:
		return 0
	}
}

// ComparePilots returns the best approved pilot: highest critic score,
// ties broken by QA quality per dollar. Returns nil when nothing was
// approved.
func ComparePilots(results []models.PilotResults) *models.PilotResults {
	var best *models.PilotResults
	for i := range results {
		r := &results[i]
		if !r.Approved {
			continue
		}
		if best == nil || betterPilot(r, best) {
			best = r
		}
	}
	return best
}

func betterPilot(a, b *models.PilotResults) bool {
	if a.CriticScore != b.CriticScore {
		return a.CriticScore > b.CriticScore
	}
	return qualityPerDollar(a) > qualityPerDollar(b)
}

func qualityPerDollar(r *models.PilotResults) float64 {
	if r.TotalCost <= 0 {
		return math.Inf(1)
	}
	return r.AvgQAScore / r.TotalCost
}

func avgQA(results []models.SceneResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.QAScore
	}
	return sum / float64(len(results))
}

func summarizeScenes(results []models.SceneResult) string {
	var b strings.Builder
	for _, r := range results {
		status := "PASS"
		if !r.QAPassed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "- %s: qa %.1f/%.1f %s, cost $%.2f: %s\n",
			r.SceneID, r.QAScore, r.QAThreshold, status, r.GenerationCost, r.Description)
	}
	if b.Len() == 0 {
		return "(no scenes produced)"
	}
	return b.String()
}
