package roles

import (
	"context"
	"time"

	"go.uber.org/zap"

	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/models"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 2 * time.Second
)

// VideoGenerator drives the video provider with retries, backoff and a hard
// budget stop.
type VideoGenerator struct {
	provider      providers.VideoProvider
	retryAttempts int
	backoff       time.Duration
	log           *zap.Logger
}

func NewVideoGenerator(provider providers.VideoProvider, log *zap.Logger) *VideoGenerator {
	return &VideoGenerator{
		provider:      provider,
		retryAttempts: defaultRetryAttempts,
		backoff:       defaultBackoff,
		log:           ensureLogger(log),
	}
}

// WithRetryPolicy overrides the retry count and initial backoff. Tests use
// a zero backoff.
func (g *VideoGenerator) WithRetryPolicy(attempts int, backoff time.Duration) *VideoGenerator {
	g.retryAttempts = attempts
	g.backoff = backoff
	return g
}

// GenerateScene produces up to numVariations variations of a scene. It
// stops early when the next variation's estimated cost would push actual
// spend past budgetLimit. Variations that keep failing after retries are
// skipped; the remaining ones are returned.
func (g *VideoGenerator) GenerateScene(ctx context.Context, scene models.Scene, tier models.ProductionTier, budgetLimit float64, numVariations int, chainFrom *providers.ChainRef) ([]models.GeneratedVideo, error) {
	spec := models.TierSpecs[tier]
	perVariation := scene.DurationSec * spec.CostPerSecond

	var videos []models.GeneratedVideo
	var spent float64
	for v := 0; v < numVariations; v++ {
		if spent+perVariation > budgetLimit {
			g.log.Info("variation budget stop",
				zap.String("scene_id", scene.SceneID),
				zap.Int("variation", v),
				zap.Float64("spent", spent),
				zap.Float64("budget_limit", budgetLimit))
			break
		}

		video, err := g.generateWithRetry(ctx, scene, tier, v, chainFrom)
		if err != nil {
			if ctx.Err() != nil {
				return videos, ctx.Err()
			}
			g.log.Warn("variation dropped after retries",
				zap.String("scene_id", scene.SceneID),
				zap.Int("variation", v),
				zap.Error(err))
			continue
		}
		spent += video.GenerationCost
		videos = append(videos, *video)
	}
	return videos, nil
}

func (g *VideoGenerator) generateWithRetry(ctx context.Context, scene models.Scene, tier models.ProductionTier, variationID int, chainFrom *providers.ChainRef) (*models.GeneratedVideo, error) {
	var lastErr error
	backoff := g.backoff
	for attempt := 0; attempt <= g.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
		video, err := g.provider.Generate(ctx, scene, tier, variationID, chainFrom)
		if err == nil {
			return video, nil
		}
		lastErr = err
		if !models.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
