// Package e2e exercises the whole production pipeline hermetically: real
// orchestrator, runner, roles and ledger, with scripted LLM responses and
// the mock video backend.
package e2e

import (
	"context"
	"math"
	"testing"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/pipeline"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/core/roles"
	"agentic_studio/pkg/models"
)

const producerPlan = `{"pilots": [
  {"pilot_id": "pilot_1", "tier": "motion_graphics", "allocated_budget": 60, "test_scene_count": 2, "full_scene_count": 4, "rationale": "mid tier"},
  {"pilot_id": "pilot_2", "tier": "static_images", "allocated_budget": 20, "test_scene_count": 2, "full_scene_count": 4, "rationale": "cheap baseline"}
]}`

const testScript = `{"scenes": [
  {"title": "opening", "description": "a clean desk with a terminal glowing", "duration_sec": 5},
  {"title": "payoff", "description": "a dashboard lighting up green", "duration_sec": 5}
]}`

const passingQA = `{"visual_accuracy": 85, "style_consistency": 85, "technical_quality": 85, "narrative_fit": 85, "issues": [], "suggestions": []}`

const criticVerdict = `{"critic_score": 85, "gap_analysis": "pacing is fine", "reasoning": "both scenes land", "adjustments_needed": [], "qa_override_reasoning": ""}`

func fixedResponder(response string) *llm.MockProvider {
	return &llm.MockProvider{
		QueryFunc: func(ctx context.Context, p, sys string, opts map[string]interface{}) (string, error) {
			return response, nil
		},
	}
}

func TestFullProduction(t *testing.T) {
	reg := prompt.NewDefaultRegistry()

	producer := roles.NewProducer((&llm.MockProvider{}).Enqueue(producerPlan), reg, nil)
	writer := roles.NewScriptWriter(fixedResponder(testScript), reg, nil)
	qa := roles.NewQAVerifier(fixedResponder(passingQA), reg, nil)
	critic := roles.NewCritic(fixedResponder(criticVerdict), reg, nil)
	editor := roles.NewEditor(nil, reg, nil)
	gen := roles.NewVideoGenerator(&providers.MockVideoProvider{}, nil)

	orch := pipeline.NewOrchestrator(producer, critic, editor,
		pipeline.DefaultRunnerFactory(writer, gen, qa, nil), nil)

	res, err := orch.Produce(context.Background(), "60-second video explaining our deploy pipeline", 150)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}

	if res.Status != models.ProductionCompleted {
		t.Fatalf("status = %s, want completed", res.Status)
	}
	if len(res.AllPilots) != 2 {
		t.Fatalf("pilots evaluated = %d, want 2", len(res.AllPilots))
	}
	for _, p := range res.AllPilots {
		if !p.Approved {
			t.Errorf("pilot %s not approved at critic score 85", p.PilotID)
		}
		// Test run plus continuation covers the full scene count.
		if len(p.ScenesGenerated) != 4 {
			t.Errorf("pilot %s scenes = %d, want 4", p.PilotID, len(p.ScenesGenerated))
		}
	}

	// Equal critic scores tie-break on quality per dollar, which the cheap
	// static tier wins.
	if res.BestPilot == nil || res.BestPilot.PilotID != "pilot_2" {
		t.Fatalf("best pilot = %+v, want pilot_2", res.BestPilot)
	}
	if res.BestPilot.Tier != models.TierStaticImages {
		t.Errorf("best tier = %s", res.BestPilot.Tier)
	}

	// Motion graphics: 4 scenes x 2 variations x $2.50. Static: 4 x 2 x
	// $0.50. Plus LLM overhead on top.
	videoSpend := 20.0 + 4.0
	if res.BudgetUsed < videoSpend || res.BudgetUsed > videoSpend+1 {
		t.Errorf("budget used = %v, want just over %v", res.BudgetUsed, videoSpend)
	}
	if math.Abs(res.BudgetUsed+res.BudgetRemaining-150) > 1e-9 {
		t.Errorf("ledger does not balance: used %v remaining %v", res.BudgetUsed, res.BudgetRemaining)
	}
	if res.EDLID == "" {
		t.Error("winner shipped without an EDL")
	}
	if res.TotalScenes != 4 {
		t.Errorf("total scenes = %d, want 4", res.TotalScenes)
	}
}

func TestFullProduction_StarvedBudget(t *testing.T) {
	reg := prompt.NewDefaultRegistry()

	plan := `{"pilots": [
	  {"pilot_id": "pilot_1", "tier": "animated", "allocated_budget": 5, "test_scene_count": 2, "full_scene_count": 4, "rationale": "doomed"},
	  {"pilot_id": "pilot_2", "tier": "photorealistic", "allocated_budget": 5, "test_scene_count": 2, "full_scene_count": 4, "rationale": "also doomed"}
	]}`
	producer := roles.NewProducer((&llm.MockProvider{}).Enqueue(plan), reg, nil)
	writer := roles.NewScriptWriter(fixedResponder(testScript), reg, nil)
	qa := roles.NewQAVerifier(fixedResponder(passingQA), reg, nil)
	critic := roles.NewCritic(fixedResponder(criticVerdict), reg, nil)
	gen := roles.NewVideoGenerator(&providers.MockVideoProvider{}, nil)

	orch := pipeline.NewOrchestrator(producer, critic, nil,
		pipeline.DefaultRunnerFactory(writer, gen, qa, nil), nil)

	// A $5 envelope cannot afford a single animated or photorealistic
	// variation, so no pilot produces a scene and the run fails.
	res, err := orch.Produce(context.Background(), "anything ambitious", 5)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionFailed {
		t.Fatalf("status = %s, want failed on starvation", res.Status)
	}
	if res.BestPilot != nil {
		t.Errorf("best pilot = %+v, want nil", res.BestPilot)
	}
}
