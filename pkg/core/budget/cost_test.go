package budget

import (
	"math"
	"testing"

	"agentic_studio/pkg/models"
)

func TestCostModel_TierMonotonicity(t *testing.T) {
	c := NewCostModel()
	durations := []float64{0.5, 3, 5, 8, 30}

	for i := 0; i < len(models.TierOrder)-1; i++ {
		lo, hi := models.TierOrder[i], models.TierOrder[i+1]
		for _, d := range durations {
			if c.EstimateSceneCost(lo, d, 1) >= c.EstimateSceneCost(hi, d, 1) {
				t.Errorf("cost(%s, %v) must be < cost(%s, %v)", lo, d, hi, d)
			}
		}
		if c.QualityCeiling(lo) >= c.QualityCeiling(hi) {
			t.Errorf("ceiling(%s) must be < ceiling(%s)", lo, hi)
		}
	}
}

func TestCostModel_SceneCost(t *testing.T) {
	c := NewCostModel()
	got := c.EstimateSceneCost(models.TierAnimated, 5, 2)
	want := 5.0 * 2 * models.TierSpecs[models.TierAnimated].CostPerSecond
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateSceneCost = %v, want %v", got, want)
	}
}

func TestCostModel_RealisticBreakdown(t *testing.T) {
	c := NewCostModel()
	b := c.EstimateRealisticCost(models.TierMotionGraphics, 10, 2, 5)

	if math.Abs(b.FailureBuffer-0.2*b.Video) > 1e-9 {
		t.Errorf("failure buffer = %v, want 20%% of video %v", b.FailureBuffer, b.Video)
	}
	if math.Abs(b.Total-(b.Video+b.LLM+b.FailureBuffer)) > 1e-9 {
		t.Errorf("total %v != video+llm+buffer", b.Total)
	}
	if math.Abs(b.PerScene*10-b.Total) > 1e-9 {
		t.Errorf("per-scene %v * scenes != total %v", b.PerScene, b.Total)
	}
}

func TestCostModel_AudioTiers(t *testing.T) {
	c := NewCostModel()
	if got := c.EstimateAudioCost(models.AudioNone, 60, 10); got != 0 {
		t.Errorf("AudioNone cost = %v, want 0", got)
	}
	prev := 0.0
	for _, tier := range []models.AudioTier{models.AudioMusicOnly, models.AudioSimpleOverlay, models.AudioTimeSynced, models.AudioFullProduction} {
		got := c.EstimateAudioCost(tier, 5, 3)
		if got <= prev {
			t.Errorf("audio cost must increase by tier, %s = %v (prev %v)", tier, got, prev)
		}
		prev = got
	}
}

func TestCostModel_PilotTestCost(t *testing.T) {
	c := NewCostModel()
	pilot := models.PilotStrategy{Tier: models.TierMotionGraphics, TestSceneCount: 3}
	got := c.EstimatePilotTestCost(pilot, 2, 5)

	sceneCost := c.EstimateSceneCost(models.TierMotionGraphics, 5, 2)
	llm := float64(models.TierSpecs[models.TierMotionGraphics].LLMTokenEstimate) * 3 * TokenPrice
	want := sceneCost*3 + llm
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimatePilotTestCost = %v, want %v", got, want)
	}
}
