// Package pipeline wires the agent roles into the five-stage production
// flow: plan pilots, run them in parallel under one ledger, critique the
// results, continue the approved pilots, and pick a winner.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"agentic_studio/pkg/core/budget"
	"agentic_studio/pkg/core/pilot"
	"agentic_studio/pkg/core/roles"
	"agentic_studio/pkg/models"
)

// DefaultMaxConcurrentPilots bounds how many pilots generate video at once.
const DefaultMaxConcurrentPilots = 3

// Nominal LLM overhead debited against the ledger per planning and critique
// call. Token spend is tiny next to video generation but still real money.
const (
	planningOverheadUSD = 0.01
	criticOverheadUSD   = 0.005
)

// PilotPlanner produces pilot strategies for a request.
type PilotPlanner interface {
	Plan(ctx context.Context, request string, totalBudget float64, providerKnowledge string) ([]models.PilotStrategy, error)
}

// PilotRunner executes a pilot's test run and its continuation.
type PilotRunner interface {
	Run(ctx context.Context, p models.PilotStrategy, request string) (*pilot.Result, error)
	Continue(ctx context.Context, p models.PilotStrategy, request string, numScenes, sceneOffset int) (*pilot.Result, error)
}

// PilotCritic judges a finished test run.
type PilotCritic interface {
	EvaluatePilot(ctx context.Context, request string, p models.PilotStrategy, sceneResults []models.SceneResult, spent, allocated float64) (*models.PilotResults, error)
}

// EDLCreator assembles the final edit decision list for the winner.
type EDLCreator interface {
	CreateEDL(ctx context.Context, scenes []models.Scene, candidates map[string][]models.GeneratedVideo, qaByURL map[string]models.QAResult, request string, sceneAudio map[string]*models.SceneAudio) (*models.EDL, error)
}

// RunnerFactory builds a runner bound to one production run's ledger.
type RunnerFactory func(ledger *budget.Ledger) PilotRunner

// Orchestrator drives a full production run. It is stateless across runs;
// each Produce call gets its own ledger.
type Orchestrator struct {
	planner   PilotPlanner
	critic    PilotCritic
	editor    EDLCreator
	newRunner RunnerFactory
	maxPilots int64
	knowledge string
	log       *zap.Logger
}

// NewOrchestrator assembles an orchestrator. editor may be nil, in which
// case the winner ships without an EDL.
func NewOrchestrator(planner PilotPlanner, critic PilotCritic, editor EDLCreator, newRunner RunnerFactory, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		planner:   planner,
		critic:    critic,
		editor:    editor,
		newRunner: newRunner,
		maxPilots: DefaultMaxConcurrentPilots,
		log:       log,
	}
}

// WithMaxConcurrentPilots bounds stage 2 parallelism.
func (o *Orchestrator) WithMaxConcurrentPilots(n int) *Orchestrator {
	if n > 0 {
		o.maxPilots = int64(n)
	}
	return o
}

// WithProviderKnowledge feeds a provider capability summary into planning.
func (o *Orchestrator) WithProviderKnowledge(summary string) *Orchestrator {
	o.knowledge = summary
	return o
}

// pilotRun pairs a strategy with everything its runs produced so far.
type pilotRun struct {
	strategy models.PilotStrategy
	result   *pilot.Result
	results  *models.PilotResults
}

// Produce runs the whole pipeline for one request. A run that ends without a
// usable pilot returns a failed ProductionResult, not an error; errors are
// reserved for invalid input and infrastructure faults.
func (o *Orchestrator) Produce(ctx context.Context, request string, totalBudget float64) (*models.ProductionResult, error) {
	started := time.Now()
	result := &models.ProductionResult{
		RunID:     uuid.New().String(),
		Request:   request,
		StartedAt: started,
	}

	// Stage 1: plan.
	pilots, err := o.planner.Plan(ctx, request, totalBudget, o.knowledge)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return nil, err
		}
		o.log.Error("planning failed", zap.Error(err))
		return o.failed(result, totalBudget, nil), nil
	}
	if len(pilots) == 0 {
		return o.failed(result, totalBudget, nil), nil
	}

	ledger := budget.NewLedger(totalBudget)
	_ = ledger.RecordOverhead(planningOverheadUSD, "producer planning")
	runner := o.newRunner(ledger)

	// Stage 2: run pilots in parallel under a concurrency cap. A pilot that
	// crashes is logged and dropped; the others keep going.
	runs := o.runPilots(ctx, runner, pilots, request)
	if len(runs) == 0 || !anyScenes(runs) {
		return o.failed(result, totalBudget, ledger), nil
	}

	// Stage 3: critique every pilot that produced scenes.
	evaluated := o.critiquePilots(ctx, ledger, runs, request)
	if len(evaluated) == 0 {
		return o.failed(result, totalBudget, ledger), nil
	}

	// Stage 4: continue approved pilots, best critic score first, each
	// capped by what the critic granted and what the ledger still holds.
	o.continuePilots(ctx, runner, ledger, evaluated, request)

	// Stage 5: compare and, when an editor is wired, cut the winner.
	var all []models.PilotResults
	for _, run := range evaluated {
		all = append(all, *run.results)
	}
	best := roles.ComparePilots(all)
	if best == nil {
		result.AllPilots = all
		return o.failed(result, totalBudget, ledger), nil
	}

	result.Status = models.ProductionCompleted
	result.BestPilot = best
	result.AllPilots = all
	result.BudgetUsed = ledger.TotalSpent()
	result.BudgetRemaining = ledger.Remaining()
	result.TotalScenes = len(best.ScenesGenerated)
	result.FinishedAt = time.Now()

	if o.editor != nil {
		if winner := findRun(evaluated, best.PilotID); winner != nil {
			edl, err := o.editor.CreateEDL(ctx, winner.result.Script, winner.result.RawVideos, winner.result.RawQA, request, nil)
			if err != nil {
				o.log.Warn("EDL creation failed", zap.String("pilot_id", best.PilotID), zap.Error(err))
			} else {
				result.EDLID = edl.EDLID
			}
		}
	}

	o.log.Info("production completed",
		zap.String("run_id", result.RunID),
		zap.String("best_pilot", best.PilotID),
		zap.Float64("budget_used", result.BudgetUsed))
	return result, nil
}

func (o *Orchestrator) runPilots(ctx context.Context, runner PilotRunner, pilots []models.PilotStrategy, request string) []*pilotRun {
	sem := semaphore.NewWeighted(o.maxPilots)
	results := make([]*pilotRun, len(pilots))
	done := make(chan struct{})
	for i, p := range pilots {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			res, err := runner.Run(ctx, p, request)
			if err != nil {
				o.log.Error("pilot crashed, dropping it",
					zap.String("pilot_id", p.PilotID), zap.Error(err))
				return
			}
			results[i] = &pilotRun{strategy: p, result: res}
		}()
	}
	for range pilots {
		<-done
	}

	var runs []*pilotRun
	for _, r := range results {
		if r != nil {
			runs = append(runs, r)
		}
	}
	return runs
}

func (o *Orchestrator) critiquePilots(ctx context.Context, ledger *budget.Ledger, runs []*pilotRun, request string) []*pilotRun {
	done := make(chan struct{})
	for _, run := range runs {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = ledger.RecordOverhead(criticOverheadUSD, "critic evaluation")
			pr, err := o.critic.EvaluatePilot(ctx, request, run.strategy, run.result.Scenes,
				ledger.PilotSpent(run.strategy.PilotID), run.strategy.AllocatedBudget)
			if err != nil {
				o.log.Error("critic failed, dropping pilot",
					zap.String("pilot_id", run.strategy.PilotID), zap.Error(err))
				return
			}
			run.results = pr
		}()
	}
	for range runs {
		<-done
	}

	var evaluated []*pilotRun
	for _, run := range runs {
		if run.results != nil {
			evaluated = append(evaluated, run)
		}
	}
	return evaluated
}

func (o *Orchestrator) continuePilots(ctx context.Context, runner PilotRunner, ledger *budget.Ledger, evaluated []*pilotRun, request string) {
	approved := make([]*pilotRun, 0, len(evaluated))
	for _, run := range evaluated {
		if run.results.Approved {
			approved = append(approved, run)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].results.CriticScore > approved[j].results.CriticScore
	})

	for _, run := range approved {
		grant := run.results.BudgetRemaining
		if remaining := ledger.Remaining(); remaining < grant {
			grant = remaining
		}
		remainingScenes := run.strategy.FullSceneCount - len(run.result.Scenes)
		if grant <= 0 || remainingScenes <= 0 {
			continue
		}

		contStrategy := run.strategy
		spentBefore := ledger.PilotSpent(run.strategy.PilotID)
		contStrategy.AllocatedBudget = spentBefore + grant

		contRes, err := runner.Continue(ctx, contStrategy, request, remainingScenes, len(run.result.Script))
		if err != nil {
			o.log.Error("continuation failed",
				zap.String("pilot_id", run.strategy.PilotID), zap.Error(err))
			continue
		}
		o.mergeContinuation(run, contRes, ledger, grant, spentBefore)
	}
}

// mergeContinuation folds a continuation run into the pilot's results and
// recomputes the aggregates the critic had based on the test run alone.
func (o *Orchestrator) mergeContinuation(run *pilotRun, cont *pilot.Result, ledger *budget.Ledger, grant, spentBefore float64) {
	run.result.Scenes = append(run.result.Scenes, cont.Scenes...)
	run.result.Script = append(run.result.Script, cont.Script...)
	for id, vids := range cont.RawVideos {
		run.result.RawVideos[id] = vids
	}
	for url, qa := range cont.RawQA {
		run.result.RawQA[url] = qa
	}
	for id, v := range cont.BestVideos {
		run.result.BestVideos[id] = v
	}

	pr := run.results
	pr.ScenesGenerated = append(pr.ScenesGenerated, cont.Scenes...)
	pr.TotalCost = ledger.PilotSpent(pr.PilotID)
	pr.BudgetRemaining = grant - (pr.TotalCost - spentBefore)
	if pr.BudgetRemaining < 0 {
		pr.BudgetRemaining = 0
	}
	var sum float64
	for _, s := range pr.ScenesGenerated {
		sum += s.QAScore
	}
	if n := len(pr.ScenesGenerated); n > 0 {
		pr.AvgQAScore = sum / float64(n)
	}
	o.log.Info("pilot continued",
		zap.String("pilot_id", pr.PilotID),
		zap.Int("scenes_total", len(pr.ScenesGenerated)),
		zap.Float64("total_cost", pr.TotalCost))
}

func (o *Orchestrator) failed(result *models.ProductionResult, totalBudget float64, ledger *budget.Ledger) *models.ProductionResult {
	result.Status = models.ProductionFailed
	result.FinishedAt = time.Now()
	if ledger != nil {
		result.BudgetUsed = ledger.TotalSpent()
		result.BudgetRemaining = ledger.Remaining()
	} else {
		result.BudgetRemaining = totalBudget
	}
	return result
}

func anyScenes(runs []*pilotRun) bool {
	for _, r := range runs {
		if len(r.result.Scenes) > 0 {
			return true
		}
	}
	return false
}

func findRun(runs []*pilotRun, pilotID string) *pilotRun {
	for _, r := range runs {
		if r.strategy.PilotID == pilotID {
			return r
		}
	}
	return nil
}

// DefaultRunnerFactory builds the production runner from the concrete roles.
func DefaultRunnerFactory(writer *roles.ScriptWriter, gen *roles.VideoGenerator, qa *roles.QAVerifier, log *zap.Logger) RunnerFactory {
	return func(ledger *budget.Ledger) PilotRunner {
		return pilot.NewRunner(writer, gen, qa, ledger, log)
	}
}

var _ PilotPlanner = (*roles.Producer)(nil)
var _ PilotCritic = (*roles.Critic)(nil)
var _ EDLCreator = (*roles.Editor)(nil)
var _ PilotRunner = (*pilot.Runner)(nil)
