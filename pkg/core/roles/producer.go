package roles

import (
	"fmt"

	"context"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/models"
)

const (
	minPilots         = 2
	maxPilots         = 3
	minTestScenes     = 2
	maxTestScenes     = 4
	defaultFullScenes = 10
)

// Producer plans 2-3 competing pilot strategies for a production request.
type Producer struct {
	provider llm.TextProvider
	prompts  *prompt.Registry
	log      *zap.Logger
}

func NewProducer(provider llm.TextProvider, prompts *prompt.Registry, log *zap.Logger) *Producer {
	return &Producer{provider: provider, prompts: prompts, log: ensureLogger(log)}
}

type producerResponse struct {
	Pilots []models.PilotStrategy `json:"pilots"`
}

// Plan asks the LLM for pilot strategies and normalizes them: distinct
// tiers, test scene counts clamped to [2,4], budgets bounded by the total.
func (p *Producer) Plan(ctx context.Context, request string, totalBudget float64, providerKnowledge string) ([]models.PilotStrategy, error) {
	if request == "" {
		return nil, fmt.Errorf("%w: empty request", models.ErrInvalidInput)
	}
	if totalBudget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive, got %.2f", models.ErrInvalidInput, totalBudget)
	}

	userPrompt, err := p.prompts.RenderUser(prompt.IDProducerPlan, map[string]interface{}{
		"Request":           request,
		"Budget":            totalBudget,
		"ProviderKnowledge": providerKnowledge,
	})
	if err != nil {
		return nil, err
	}
	systemPrompt, _ := p.prompts.SystemPrompt(prompt.IDProducerPlan)

	var resp producerResponse
	if err := queryJSON(ctx, p.provider, p.prompts, prompt.IDProducerPlan, "producer", userPrompt, systemPrompt, &resp); err != nil {
		return nil, err
	}

	pilots := normalizePilots(resp.Pilots, totalBudget)
	if len(pilots) < minPilots {
		return nil, &models.InvalidAgentResponseError{
			Role: "producer",
			Err:  fmt.Errorf("planned %d usable pilots, need at least %d", len(pilots), minPilots),
		}
	}

	p.log.Info("producer planned pilots",
		zap.Int("count", len(pilots)),
		zap.Float64("total_budget", totalBudget))
	return pilots, nil
}

// normalizePilots enforces the structural contract on LLM output.
func normalizePilots(pilots []models.PilotStrategy, totalBudget float64) []models.PilotStrategy {
	seenTiers := make(map[models.ProductionTier]bool)
	var out []models.PilotStrategy
	for _, pilot := range pilots {
		if models.TierRank(pilot.Tier) < 0 || seenTiers[pilot.Tier] {
			continue
		}
		seenTiers[pilot.Tier] = true

		if pilot.PilotID == "" {
			pilot.PilotID = fmt.Sprintf("pilot_%d", len(out)+1)
		}
		pilot.TestSceneCount = clampInt(pilot.TestSceneCount, minTestScenes, maxTestScenes)
		if pilot.FullSceneCount < pilot.TestSceneCount {
			pilot.FullSceneCount = defaultFullScenes
		}
		if pilot.AllocatedBudget <= 0 || pilot.AllocatedBudget > totalBudget {
			pilot.AllocatedBudget = totalBudget / float64(minPilots)
		}

		out = append(out, pilot)
		if len(out) == maxPilots {
			break
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
