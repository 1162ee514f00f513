package budget

import (
	"agentic_studio/pkg/models"
)

// TokenPrice is the blended per-token price used for LLM cost estimates.
const TokenPrice = 0.000002

// FailureBufferRatio pads realistic estimates for regeneration after QA
// failures.
const FailureBufferRatio = 0.20

// audioRates are per-second rates by audio tier.
var audioRates = map[models.AudioTier]float64{
	models.AudioNone:           0,
	models.AudioMusicOnly:      0.02,
	models.AudioSimpleOverlay:  0.06,
	models.AudioTimeSynced:     0.10,
	models.AudioFullProduction: 0.15,
}

// CostBreakdown itemizes a realistic production estimate.
type CostBreakdown struct {
	Video         float64 `json:"video"`
	LLM           float64 `json:"llm"`
	FailureBuffer float64 `json:"failure_buffer"`
	Total         float64 `json:"total"`
	PerScene      float64 `json:"per_scene"`
}

// CostModel prices generation work per tier. The zero value uses the
// canonical tier table.
type CostModel struct {
	Specs map[models.ProductionTier]models.TierSpec
}

// NewCostModel returns a cost model over the canonical tier pricing.
func NewCostModel() *CostModel {
	return &CostModel{Specs: models.TierSpecs}
}

func (c *CostModel) spec(tier models.ProductionTier) models.TierSpec {
	specs := c.Specs
	if specs == nil {
		specs = models.TierSpecs
	}
	return specs[tier]
}

// EstimateSceneCost prices generating numVariations of a scene of the given
// duration at a tier.
func (c *CostModel) EstimateSceneCost(tier models.ProductionTier, durationSec float64, numVariations int) float64 {
	return durationSec * float64(numVariations) * c.spec(tier).CostPerSecond
}

// EstimatePilotTestCost prices a pilot's full test phase: video for every
// test scene plus the LLM tokens the agents will burn per scene.
func (c *CostModel) EstimatePilotTestCost(pilot models.PilotStrategy, numVariations int, avgSceneDuration float64) float64 {
	sceneCost := c.EstimateSceneCost(pilot.Tier, avgSceneDuration, numVariations)
	llmCost := float64(c.spec(pilot.Tier).LLMTokenEstimate) * float64(pilot.TestSceneCount) * TokenPrice
	return sceneCost*float64(pilot.TestSceneCount) + llmCost
}

// EstimateRealisticCost itemizes a full production at a tier, including a
// failure buffer of 20% of the video cost.
func (c *CostModel) EstimateRealisticCost(tier models.ProductionTier, numScenes, numVariations int, avgSceneDuration float64) CostBreakdown {
	video := c.EstimateSceneCost(tier, avgSceneDuration, numVariations) * float64(numScenes)
	llm := float64(c.spec(tier).LLMTokenEstimate) * float64(numScenes) * TokenPrice
	buffer := video * FailureBufferRatio
	total := video + llm + buffer
	perScene := 0.0
	if numScenes > 0 {
		perScene = total / float64(numScenes)
	}
	return CostBreakdown{Video: video, LLM: llm, FailureBuffer: buffer, Total: total, PerScene: perScene}
}

// EstimateAudioCost prices audio production across numScenes scenes of the
// given duration, scaled by the audio tier.
func (c *CostModel) EstimateAudioCost(tier models.AudioTier, durationSec float64, numScenes int) float64 {
	return audioRates[tier] * durationSec * float64(numScenes)
}

// QualityCeiling exposes the tier's maximum achievable quality.
func (c *CostModel) QualityCeiling(tier models.ProductionTier) float64 {
	return c.spec(tier).QualityCeiling
}
