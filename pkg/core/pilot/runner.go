// Package pilot runs one production hypothesis end to end: script the test
// scenes, build the execution graph, generate variations wave by wave under
// the ledger, and QA everything that comes back.
package pilot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agentic_studio/pkg/core/budget"
	"agentic_studio/pkg/core/execgraph"
	"agentic_studio/pkg/core/providers"
	"agentic_studio/pkg/core/roles"
	"agentic_studio/pkg/models"
)

// testSceneDuration is the fixed length of each test scene in seconds. Test
// runs probe quality, not pacing, so every scene gets the same short slot.
const testSceneDuration = 5.0

// defaultVariations is how many variations each scene gets when the caller
// does not override it.
const defaultVariations = 2

// Result is everything a pilot run produced, including raw material the
// Editor may want later.
type Result struct {
	PilotID     string                            `json:"pilot_id"`
	Tier        models.ProductionTier             `json:"tier"`
	Scenes      []models.SceneResult              `json:"scenes"`
	Script      []models.Scene                    `json:"script"`
	BudgetSpent float64                           `json:"budget_spent"`
	RawVideos   map[string][]models.GeneratedVideo `json:"raw_videos"`
	RawQA       map[string]models.QAResult        `json:"raw_qa"`
	BestVideos  map[string]models.GeneratedVideo  `json:"best_videos"`
	Stopped     bool                              `json:"stopped"`
}

// Runner executes pilots. All dependencies are injected; the same runner can
// serve concurrent pilots because all shared state lives in the ledger.
type Runner struct {
	writer     *roles.ScriptWriter
	videoGen   *roles.VideoGenerator
	qa         *roles.QAVerifier
	ledger     *budget.Ledger
	strategy   execgraph.Strategy
	variations int
	log        *zap.Logger
}

func NewRunner(writer *roles.ScriptWriter, videoGen *roles.VideoGenerator, qa *roles.QAVerifier, ledger *budget.Ledger, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		writer:     writer,
		videoGen:   videoGen,
		qa:         qa,
		ledger:     ledger,
		strategy:   execgraph.StrategyAuto,
		variations: defaultVariations,
		log:        log,
	}
}

// WithStrategy overrides the execution graph strategy.
func (r *Runner) WithStrategy(s execgraph.Strategy) *Runner {
	r.strategy = s
	return r
}

// WithVariations overrides the per-scene variation count.
func (r *Runner) WithVariations(n int) *Runner {
	if n > 0 {
		r.variations = n
	}
	return r
}

// Run executes a pilot: write the test script, then generate and verify it.
// Budget exhaustion mid-run is not an error; the result carries whatever
// scenes completed and Stopped is set.
func (r *Runner) Run(ctx context.Context, pilot models.PilotStrategy, request string) (*Result, error) {
	testDuration := float64(pilot.TestSceneCount) * testSceneDuration
	scenes, err := r.writer.Write(ctx, request, testDuration, pilot.Tier, pilot.TestSceneCount)
	if err != nil {
		return nil, fmt.Errorf("pilot %s: script: %w", pilot.PilotID, err)
	}
	return r.RunScenes(ctx, pilot, request, scenes)
}

// Continue writes and runs the scenes a pilot still owes after its test run.
// sceneOffset keeps the new scene IDs from colliding with the test scenes.
func (r *Runner) Continue(ctx context.Context, pilot models.PilotStrategy, request string, numScenes, sceneOffset int) (*Result, error) {
	targetDuration := float64(numScenes) * testSceneDuration
	scenes, err := r.writer.Write(ctx, request, targetDuration, pilot.Tier, numScenes)
	if err != nil {
		return nil, fmt.Errorf("pilot %s: continuation script: %w", pilot.PilotID, err)
	}
	for i := range scenes {
		scenes[i].SceneID = fmt.Sprintf("scene_%d", sceneOffset+i+1)
	}
	return r.RunScenes(ctx, pilot, request, scenes)
}

// RunScenes generates and verifies an already-written set of scenes. The
// orchestrator reuses this for continuation runs after critic approval.
func (r *Runner) RunScenes(ctx context.Context, pilot models.PilotStrategy, request string, scenes []models.Scene) (*Result, error) {
	graph, err := execgraph.Build(scenes, r.strategy)
	if err != nil {
		return nil, fmt.Errorf("pilot %s: graph: %w", pilot.PilotID, err)
	}
	if errs := graph.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("pilot %s: graph: %w", pilot.PilotID, errors.Join(errs...))
	}

	res := &Result{
		PilotID:    pilot.PilotID,
		Tier:       pilot.Tier,
		Script:     scenes,
		RawVideos:  make(map[string][]models.GeneratedVideo),
		RawQA:      make(map[string]models.QAResult),
		BestVideos: make(map[string]models.GeneratedVideo),
	}
	sceneByID := make(map[string]models.Scene, len(scenes))
	for _, s := range scenes {
		sceneByID[s.SceneID] = s
	}

	spec := models.TierSpecs[pilot.Tier]
	results := make(map[string]models.SceneResult)
	var mu sync.Mutex

	for _, wave := range graph.ExecutionWaves() {
		if res.Stopped {
			break
		}
		// Scenes in a wave run concurrently, so the ledger lags behind what
		// the wave has committed. reserved tracks spend plus the estimated
		// cost of scenes already launched in this wave.
		reserved := r.ledger.PilotSpent(pilot.PilotID)
		ledgerHeadroom := r.ledger.Remaining()

		g, waveCtx := errgroup.WithContext(ctx)
		for _, sceneID := range wave {
			scene, ok := sceneByID[sceneID]
			if !ok {
				continue
			}

			// Ledger gate: if one more variation of this scene does not fit
			// in either the pilot allocation or the global envelope, the run
			// stops with partial results.
			perVariation := scene.DurationSec * spec.CostPerSecond
			if reserved+perVariation > pilot.AllocatedBudget || perVariation > ledgerHeadroom {
				r.log.Info("pilot stopped on budget",
					zap.String("pilot_id", pilot.PilotID),
					zap.String("scene_id", sceneID),
					zap.Float64("committed", reserved),
					zap.Float64("allocated", pilot.AllocatedBudget),
					zap.Float64("ledger_remaining", ledgerHeadroom))
				res.Stopped = true
				break
			}

			sceneLimit := pilot.AllocatedBudget - reserved
			if sceneLimit > ledgerHeadroom {
				sceneLimit = ledgerHeadroom
			}
			sceneMax := perVariation * float64(r.variations)
			if sceneMax > sceneLimit {
				sceneMax = sceneLimit
			}
			reserved += sceneMax
			ledgerHeadroom -= sceneMax

			chainFrom := r.chainRef(graph, sceneID, res, &mu)

			g.Go(func() error {
				sceneRes, videos, qaResults, err := r.runScene(waveCtx, pilot, request, scene, sceneLimit, chainFrom)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				res.RawVideos[scene.SceneID] = videos
				for _, qa := range qaResults {
					res.RawQA[qa.VideoURL] = qa
				}
				if sceneRes != nil {
					results[scene.SceneID] = *sceneRes
					for _, v := range videos {
						if v.VideoURL == sceneRes.VideoURL {
							res.BestVideos[scene.SceneID] = v
							break
						}
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("pilot %s: %w", pilot.PilotID, err)
		}
	}

	// Scene results in script order; scenes with zero surviving variations
	// are simply absent.
	for _, s := range scenes {
		if sr, ok := results[s.SceneID]; ok {
			res.Scenes = append(res.Scenes, sr)
		}
	}
	res.BudgetSpent = r.ledger.PilotSpent(pilot.PilotID)
	r.log.Info("pilot run finished",
		zap.String("pilot_id", pilot.PilotID),
		zap.Int("scenes_completed", len(res.Scenes)),
		zap.Float64("budget_spent", res.BudgetSpent),
		zap.Bool("stopped", res.Stopped))
	return res, nil
}

// chainRef resolves the chain source for a scene, if its group chains and the
// source scene already produced a best video. Waves guarantee the source ran
// in an earlier wave; the lock only fences map access against goroutines of
// the current wave.
func (r *Runner) chainRef(graph *execgraph.Graph, sceneID string, res *Result, mu *sync.Mutex) *providers.ChainRef {
	sourceID, ok := graph.ChainSource(sceneID)
	if !ok {
		return nil
	}
	mu.Lock()
	source, ok := res.BestVideos[sourceID]
	mu.Unlock()
	if !ok {
		return nil
	}
	var group string
	if scene, ok := graph.Scene(sceneID); ok {
		group = scene.ContinuityGroup
	}
	return &providers.ChainRef{
		SceneID:      sourceID,
		GenerationID: fmt.Sprintf("%s_v%d", source.SceneID, source.VariationID),
		LastFrameURL: source.VideoURL,
		ChainGroup:   group,
	}
}

// runScene generates variations for one scene, verifies them all, and picks
// the best by QA score. A scene whose every variation failed yields a nil
// SceneResult without failing the pilot.
func (r *Runner) runScene(ctx context.Context, pilot models.PilotStrategy, request string, scene models.Scene, sceneLimit float64, chainFrom *providers.ChainRef) (*models.SceneResult, []models.GeneratedVideo, []models.QAResult, error) {
	videos, err := r.videoGen.GenerateScene(ctx, scene, pilot.Tier, sceneLimit, r.variations, chainFrom)
	if err != nil {
		return nil, nil, nil, err
	}
	var sceneCost float64
	for _, v := range videos {
		sceneCost += v.GenerationCost
	}
	if err := r.ledger.RecordSpend(pilot.PilotID, sceneCost); err != nil {
		return nil, nil, nil, err
	}
	if len(videos) == 0 {
		r.log.Warn("scene produced no variations",
			zap.String("pilot_id", pilot.PilotID),
			zap.String("scene_id", scene.SceneID))
		return nil, nil, nil, nil
	}

	qaResults, err := r.qa.VerifyBatch(ctx, scene, videos, request, pilot.Tier)
	if err != nil {
		return nil, videos, nil, err
	}

	bestIdx := 0
	for i, qa := range qaResults {
		if qa.OverallScore > qaResults[bestIdx].OverallScore {
			bestIdx = i
		}
	}
	best := qaResults[bestIdx]
	return &models.SceneResult{
		SceneID:        scene.SceneID,
		Description:    scene.Description,
		VideoURL:       best.VideoURL,
		QAScore:        best.OverallScore,
		QAPassed:       best.Passed,
		QAThreshold:    best.Threshold,
		QAIssues:       best.Issues,
		GenerationCost: sceneCost,
	}, videos, qaResults, nil
}
