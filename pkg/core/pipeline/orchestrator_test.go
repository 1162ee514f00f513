package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"agentic_studio/pkg/core/budget"
	"agentic_studio/pkg/core/pilot"
	"agentic_studio/pkg/models"
)

type fakePlanner struct {
	pilots []models.PilotStrategy
	err    error
}

func (f *fakePlanner) Plan(ctx context.Context, request string, totalBudget float64, knowledge string) ([]models.PilotStrategy, error) {
	return f.pilots, f.err
}

type fakeRunner struct {
	mu        sync.Mutex
	ledger    *budget.Ledger
	results   map[string]*pilot.Result
	errs      map[string]error
	contRes   map[string]*pilot.Result
	contCalls []models.PilotStrategy
}

func (f *fakeRunner) Run(ctx context.Context, p models.PilotStrategy, request string) (*pilot.Result, error) {
	if err := f.errs[p.PilotID]; err != nil {
		return nil, err
	}
	res := f.results[p.PilotID]
	_ = f.ledger.RecordSpend(p.PilotID, res.BudgetSpent)
	return res, nil
}

func (f *fakeRunner) Continue(ctx context.Context, p models.PilotStrategy, request string, numScenes, sceneOffset int) (*pilot.Result, error) {
	f.mu.Lock()
	f.contCalls = append(f.contCalls, p)
	f.mu.Unlock()
	res, ok := f.contRes[p.PilotID]
	if !ok {
		return emptyResult(p), nil
	}
	_ = f.ledger.RecordSpend(p.PilotID, res.BudgetSpent)
	return res, nil
}

type fakeCritic struct {
	verdicts map[string]*models.PilotResults
}

func (f *fakeCritic) EvaluatePilot(ctx context.Context, request string, p models.PilotStrategy, sceneResults []models.SceneResult, spent, allocated float64) (*models.PilotResults, error) {
	v, ok := f.verdicts[p.PilotID]
	if !ok {
		return nil, errors.New("critic has no verdict")
	}
	out := *v
	out.PilotID = p.PilotID
	out.Tier = p.Tier
	out.ScenesGenerated = sceneResults
	out.TotalCost = spent
	return &out, nil
}

type fakeEditor struct{ edlID string }

func (f *fakeEditor) CreateEDL(ctx context.Context, scenes []models.Scene, candidates map[string][]models.GeneratedVideo, qaByURL map[string]models.QAResult, request string, sceneAudio map[string]*models.SceneAudio) (*models.EDL, error) {
	return &models.EDL{EDLID: f.edlID}, nil
}

func emptyResult(p models.PilotStrategy) *pilot.Result {
	return &pilot.Result{
		PilotID:    p.PilotID,
		Tier:       p.Tier,
		RawVideos:  make(map[string][]models.GeneratedVideo),
		RawQA:      make(map[string]models.QAResult),
		BestVideos: make(map[string]models.GeneratedVideo),
	}
}

func testResult(p models.PilotStrategy, sceneCount int, qaScore, spent float64) *pilot.Result {
	res := emptyResult(p)
	res.BudgetSpent = spent
	for i := 0; i < sceneCount; i++ {
		id := fmt.Sprintf("scene_%d", i+1)
		url := fmt.Sprintf("%s_%s_v0", p.PilotID, id)
		res.Scenes = append(res.Scenes, models.SceneResult{
			SceneID: id, VideoURL: url, QAScore: qaScore, QAPassed: true,
			GenerationCost: spent / float64(sceneCount),
		})
		res.Script = append(res.Script, models.Scene{SceneID: id, DurationSec: 5})
		res.RawVideos[id] = []models.GeneratedVideo{{SceneID: id, VideoURL: url}}
		res.RawQA[url] = models.QAResult{VideoURL: url, OverallScore: qaScore}
	}
	return res
}

func twoPilots() []models.PilotStrategy {
	return []models.PilotStrategy{
		{PilotID: "pilot_1", Tier: models.TierMotionGraphics, AllocatedBudget: 60, TestSceneCount: 2, FullSceneCount: 10},
		{PilotID: "pilot_2", Tier: models.TierAnimated, AllocatedBudget: 90, TestSceneCount: 2, FullSceneCount: 10},
	}
}

func newFixture(planner *fakePlanner, runner *fakeRunner, critic *fakeCritic, editor EDLCreator) *Orchestrator {
	factory := func(l *budget.Ledger) PilotRunner {
		runner.ledger = l
		return runner
	}
	return NewOrchestrator(planner, critic, editor, factory, nil)
}

func TestProduce_HappyPath(t *testing.T) {
	pilots := twoPilots()
	runner := &fakeRunner{
		results: map[string]*pilot.Result{
			"pilot_1": testResult(pilots[0], 2, 82, 10),
			"pilot_2": testResult(pilots[1], 2, 70, 40),
		},
		contRes: map[string]*pilot.Result{
			"pilot_1": testResult(models.PilotStrategy{PilotID: "pilot_1", Tier: models.TierMotionGraphics}, 8, 80, 30),
		},
	}
	critic := &fakeCritic{verdicts: map[string]*models.PilotResults{
		"pilot_1": {CriticScore: 85, Approved: true, BudgetRemaining: 37.5},
		"pilot_2": {CriticScore: 60, Approved: false},
	}}
	orch := newFixture(&fakePlanner{pilots: pilots}, runner, critic, &fakeEditor{edlID: "edl-99"})

	res, err := orch.Produce(context.Background(), "developer workflow video", 150)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionCompleted {
		t.Fatalf("status = %s", res.Status)
	}
	if res.BestPilot == nil || res.BestPilot.PilotID != "pilot_1" {
		t.Fatalf("best pilot = %+v", res.BestPilot)
	}
	if res.TotalScenes != 10 {
		t.Errorf("total scenes = %d, want 10 after continuation", res.TotalScenes)
	}
	if len(res.AllPilots) != 2 {
		t.Errorf("all pilots = %d", len(res.AllPilots))
	}
	// 10 + 40 + 30 video spend plus planning and critic overhead.
	if res.BudgetUsed < 80 || res.BudgetUsed > 81 {
		t.Errorf("budget used = %v", res.BudgetUsed)
	}
	if res.EDLID != "edl-99" {
		t.Errorf("edl id = %q", res.EDLID)
	}
	// Continuation recomputes the quality average over all ten scenes.
	wantAvg := (2*82.0 + 8*80.0) / 10
	if res.BestPilot.AvgQAScore != wantAvg {
		t.Errorf("avg qa = %v, want %v", res.BestPilot.AvgQAScore, wantAvg)
	}
}

func TestProduce_PlannerFailureIsFailedRun(t *testing.T) {
	orch := newFixture(&fakePlanner{err: &models.InvalidAgentResponseError{Role: "producer"}}, &fakeRunner{}, &fakeCritic{}, nil)
	res, err := orch.Produce(context.Background(), "anything", 100)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionFailed {
		t.Errorf("status = %s, want failed", res.Status)
	}
	if res.BudgetRemaining != 100 {
		t.Errorf("budget remaining = %v, want untouched 100", res.BudgetRemaining)
	}
}

func TestProduce_InvalidInputPropagates(t *testing.T) {
	orch := newFixture(&fakePlanner{err: fmt.Errorf("empty request: %w", models.ErrInvalidInput)}, &fakeRunner{}, &fakeCritic{}, nil)
	if _, err := orch.Produce(context.Background(), "", 100); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestProduce_CrashedPilotIsDropped(t *testing.T) {
	pilots := twoPilots()
	runner := &fakeRunner{
		results: map[string]*pilot.Result{
			"pilot_2": testResult(pilots[1], 2, 81, 40),
		},
		errs: map[string]error{"pilot_1": errors.New("provider outage")},
	}
	critic := &fakeCritic{verdicts: map[string]*models.PilotResults{
		"pilot_2": {CriticScore: 80, Approved: true, BudgetRemaining: 0},
	}}
	orch := newFixture(&fakePlanner{pilots: pilots}, runner, critic, nil)

	res, err := orch.Produce(context.Background(), "anything", 150)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionCompleted {
		t.Fatalf("status = %s", res.Status)
	}
	if res.BestPilot.PilotID != "pilot_2" {
		t.Errorf("best = %s, want the surviving pilot", res.BestPilot.PilotID)
	}
	if len(res.AllPilots) != 1 {
		t.Errorf("all pilots = %d, want 1", len(res.AllPilots))
	}
}

func TestProduce_NoApprovalsIsFailed(t *testing.T) {
	pilots := twoPilots()
	runner := &fakeRunner{
		results: map[string]*pilot.Result{
			"pilot_1": testResult(pilots[0], 2, 50, 10),
			"pilot_2": testResult(pilots[1], 2, 55, 40),
		},
	}
	critic := &fakeCritic{verdicts: map[string]*models.PilotResults{
		"pilot_1": {CriticScore: 40, Approved: false},
		"pilot_2": {CriticScore: 55, Approved: false},
	}}
	orch := newFixture(&fakePlanner{pilots: pilots}, runner, critic, nil)

	res, err := orch.Produce(context.Background(), "anything", 150)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionFailed {
		t.Errorf("status = %s, want failed with no approvals", res.Status)
	}
	if res.BestPilot != nil {
		t.Errorf("best pilot = %+v, want nil", res.BestPilot)
	}
	if len(res.AllPilots) != 2 {
		t.Errorf("all pilots = %d, want verdicts preserved", len(res.AllPilots))
	}
}

func TestProduce_NoTestResultsIsFailed(t *testing.T) {
	pilots := twoPilots()
	runner := &fakeRunner{
		results: map[string]*pilot.Result{
			"pilot_1": emptyResult(pilots[0]),
			"pilot_2": emptyResult(pilots[1]),
		},
	}
	orch := newFixture(&fakePlanner{pilots: pilots}, runner, &fakeCritic{}, nil)

	res, err := orch.Produce(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionFailed {
		t.Errorf("status = %s, want failed when nothing was generated", res.Status)
	}
}

func TestProduce_ContinuationCappedByLedger(t *testing.T) {
	// The critic grants more than the ledger still holds; the continuation
	// allocation must respect the smaller number.
	pilots := []models.PilotStrategy{
		{PilotID: "pilot_1", Tier: models.TierAnimated, AllocatedBudget: 100, TestSceneCount: 2, FullSceneCount: 6},
	}
	runner := &fakeRunner{
		results: map[string]*pilot.Result{
			"pilot_1": testResult(pilots[0], 2, 85, 90),
		},
	}
	critic := &fakeCritic{verdicts: map[string]*models.PilotResults{
		"pilot_1": {CriticScore: 92, Approved: true, BudgetRemaining: 50},
	}}
	orch := newFixture(&fakePlanner{pilots: pilots}, runner, critic, nil)

	res, err := orch.Produce(context.Background(), "anything", 100)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if res.Status != models.ProductionCompleted {
		t.Fatalf("status = %s", res.Status)
	}
	if len(runner.contCalls) != 1 {
		t.Fatalf("continuation calls = %d, want 1", len(runner.contCalls))
	}
	got := runner.contCalls[0].AllocatedBudget
	// Spent 90 of 100 with a little overhead on top; the grant is the
	// ledger remainder, not the critic's 50.
	if got >= 100 || got <= 90 {
		t.Errorf("continuation allocation = %v, want 90 < alloc < 100", got)
	}
}
