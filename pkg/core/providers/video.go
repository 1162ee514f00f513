// Package providers wraps the external generation backends: video, image,
// speech and frame extraction. The core consumes only the interfaces;
// mocks keep the whole pipeline runnable without credentials.
package providers

import (
	"context"
	"fmt"
	"sync/atomic"

	"agentic_studio/pkg/models"
)

// ChainRef points a generation request at a previous scene's output so the
// provider can continue from its last frame or generation reference.
type ChainRef struct {
	SceneID      string `json:"scene_id"`
	GenerationID string `json:"generation_id,omitempty"`
	LastFrameURL string `json:"last_frame_url,omitempty"`
	ChainGroup   string `json:"chain_group,omitempty"`
}

// VideoProvider produces one video variation for a scene.
type VideoProvider interface {
	Name() string
	Generate(ctx context.Context, scene models.Scene, tier models.ProductionTier, variationID int, chainFrom *ChainRef) (*models.GeneratedVideo, error)
}

// mockChainOverlap is how many seconds of the previous scene the mock
// pretends to prepend on chained generations.
const mockChainOverlap = 2.0

// MockVideoProvider simulates generation deterministically: cost follows the
// tier pricing table and quality sits just under the tier ceiling. FailEvery
// > 0 makes every Nth call fail with a retryable error, for exercising the
// backoff path.
type MockVideoProvider struct {
	FailEvery int
	calls     atomic.Int64
}

var _ VideoProvider = (*MockVideoProvider)(nil)

func (p *MockVideoProvider) Name() string { return "mock" }

func (p *MockVideoProvider) Generate(ctx context.Context, scene models.Scene, tier models.ProductionTier, variationID int, chainFrom *ChainRef) (*models.GeneratedVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := p.calls.Add(1)
	if p.FailEvery > 0 && n%int64(p.FailEvery) == 0 {
		return nil, &models.ProviderError{
			Provider:  p.Name(),
			Retryable: true,
			Err:       fmt.Errorf("simulated transient failure on call %d", n),
		}
	}

	spec, ok := models.TierSpecs[tier]
	if !ok {
		return nil, &models.ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("unsupported tier %q", tier),
		}
	}

	video := &models.GeneratedVideo{
		SceneID:        scene.SceneID,
		VariationID:    variationID,
		VideoURL:       fmt.Sprintf("mock://video/%s/v%d", scene.SceneID, variationID),
		Duration:       scene.DurationSec,
		GenerationCost: scene.DurationSec * spec.CostPerSecond,
		Provider:       p.Name(),
		// Later variations drift slightly below the ceiling.
		QualityScore: spec.QualityCeiling - 3 - float64(variationID)*2,
	}
	if chainFrom != nil {
		video.ContainsPrevious = true
		video.NewContentStart = mockChainOverlap
		video.TotalVideoDuration = scene.DurationSec + mockChainOverlap
		video.IsChained = true
		video.ChainGroup = chainFrom.ChainGroup
		video.Metadata = map[string]string{"chained_from": chainFrom.SceneID}
	} else {
		video.TotalVideoDuration = scene.DurationSec
	}
	return video, nil
}
