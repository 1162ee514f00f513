package roles

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/models"
)

const (
	minSceneDuration = 3.0
	maxSceneDuration = 8.0
	minScenes        = 8
	maxScenes        = 20
	// durationTolerance bounds |sum - target| relative to the target.
	durationTolerance = 0.10
)

// ScriptWriter turns a video concept into a concrete scene list.
type ScriptWriter struct {
	provider llm.TextProvider
	prompts  *prompt.Registry
	log      *zap.Logger
}

func NewScriptWriter(provider llm.TextProvider, prompts *prompt.Registry, log *zap.Logger) *ScriptWriter {
	return &ScriptWriter{provider: provider, prompts: prompts, log: ensureLogger(log)}
}

type scriptResponse struct {
	Scenes []models.Scene `json:"scenes"`
}

// Write produces numScenes scenes for the concept. When numScenes is zero
// the count is derived from the target duration at roughly five seconds per
// scene, clamped to [8, 20]. Scene durations are clamped to [3, 8] seconds
// and rescaled so their sum lands within 10% of the target.
func (w *ScriptWriter) Write(ctx context.Context, concept string, targetDuration float64, tier models.ProductionTier, numScenes int) ([]models.Scene, error) {
	if concept == "" {
		return nil, fmt.Errorf("%w: empty concept", models.ErrInvalidInput)
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("%w: target duration must be positive", models.ErrInvalidInput)
	}
	if numScenes <= 0 {
		numScenes = clampInt(int(math.Ceil(targetDuration/5)), minScenes, maxScenes)
	}

	userPrompt, err := w.prompts.RenderUser(prompt.IDScriptWriter, map[string]interface{}{
		"Concept":        concept,
		"TargetDuration": targetDuration,
		"Tier":           string(tier),
		"NumScenes":      numScenes,
	})
	if err != nil {
		return nil, err
	}
	systemPrompt, _ := w.prompts.SystemPrompt(prompt.IDScriptWriter)

	var resp scriptResponse
	if err := queryJSON(ctx, w.provider, w.prompts, prompt.IDScriptWriter, "scriptwriter", userPrompt, systemPrompt, &resp); err != nil {
		return nil, err
	}
	if len(resp.Scenes) == 0 {
		return nil, &models.InvalidAgentResponseError{Role: "scriptwriter", Err: fmt.Errorf("no scenes returned")}
	}

	scenes := normalizeScenes(resp.Scenes, targetDuration)
	w.log.Info("scriptwriter produced scenes",
		zap.Int("count", len(scenes)),
		zap.Float64("target_duration", targetDuration))
	return scenes, nil
}

// normalizeScenes assigns missing IDs, clamps durations, and rescales the
// total toward the target when it drifts past the tolerance.
func normalizeScenes(scenes []models.Scene, target float64) []models.Scene {
	var sum float64
	for i := range scenes {
		if scenes[i].SceneID == "" {
			scenes[i].SceneID = fmt.Sprintf("scene_%d", i+1)
		}
		scenes[i].DurationSec = clampDuration(scenes[i].DurationSec)
		sum += scenes[i].DurationSec
	}

	if math.Abs(sum-target) <= durationTolerance*target {
		return scenes
	}

	// Proportional rescale, then re-clamp. The clamp can reintroduce a
	// smaller residue; one pass is enough to land inside the tolerance for
	// any scene count the writer is allowed to pick.
	factor := target / sum
	for i := range scenes {
		scenes[i].DurationSec = clampDuration(scenes[i].DurationSec * factor)
	}
	return scenes
}

func clampDuration(d float64) float64 {
	if d < minSceneDuration {
		return minSceneDuration
	}
	if d > maxSceneDuration {
		return maxSceneDuration
	}
	return d
}
