package dop

import (
	"reflect"
	"strings"
	"testing"

	"agentic_studio/pkg/core/library"
	"agentic_studio/pkg/core/script"
)

// figureHeavyScript is a 10-segment script with figures referenced in
// segments 3 and 7 and one transition.
func figureHeavyScript() *script.StructuredScript {
	segs := []script.Segment{
		{Idx: 0, Intent: script.IntentIntro, ImportanceScore: 0.8, Text: "Welcome."},
		{Idx: 1, Intent: script.IntentContext, ImportanceScore: 0.4, Text: "Background."},
		{Idx: 2, Intent: script.IntentExplanation, ImportanceScore: 0.7, Text: "The method.", KeyConcepts: []string{"attention", "transformer"}},
		{Idx: 3, Intent: script.IntentFigureReference, ImportanceScore: 1.0, Text: "See Figure 2.", FigureRefs: []int{2}},
		{Idx: 4, Intent: script.IntentClaim, ImportanceScore: 0.9, Text: "Key finding."},
		{Idx: 5, Intent: script.IntentTransition, ImportanceScore: 0.2, Text: "Next, results."},
		{Idx: 6, Intent: script.IntentDataWalkthrough, ImportanceScore: 0.6, Text: "The data shows."},
		{Idx: 7, Intent: script.IntentFigureReference, ImportanceScore: 1.0, Text: "Figure 5 plots it.", FigureRefs: []int{5}},
		{Idx: 8, Intent: script.IntentRecap, ImportanceScore: 0.5, Text: "To recap."},
		{Idx: 9, Intent: script.IntentOutro, ImportanceScore: 0.6, Text: "Thanks."},
	}
	return &script.StructuredScript{
		ScriptID: "scr-test",
		Segments: segs,
		FigureInventory: map[string]*script.FigureEntry{
			"2": {Caption: "Attention weight heatmap across layers", DiscussedInSegments: []int{3}},
			"5": {Caption: "Scaling curve", DiscussedInSegments: []int{7}},
		},
	}
}

func TestPlanVisuals_FigureHeavyMediumTier(t *testing.T) {
	s := figureHeavyScript()
	lib := library.New("proj-1")

	plan, err := PlanVisuals(s, lib, TierMedium)
	if err != nil {
		t.Fatalf("PlanVisuals: %v", err)
	}

	// Coverage: every segment assigned, counts sum to total.
	total := 0
	for mode, n := range plan.ModeCounts {
		valid := false
		for _, m := range script.ValidDisplayModes {
			if mode == m {
				valid = true
			}
		}
		if !valid {
			t.Errorf("invalid mode %q in plan", mode)
		}
		total += n
	}
	if total != s.TotalSegments() {
		t.Errorf("mode counts sum to %d, want %d", total, s.TotalSegments())
	}

	// Figure priority.
	if s.Segments[3].DisplayMode != script.ModeFigureSync || s.Segments[7].DisplayMode != script.ModeFigureSync {
		t.Errorf("figure segments got %s and %s, want figure_sync", s.Segments[3].DisplayMode, s.Segments[7].DisplayMode)
	}
	// Transitions never get imagery.
	if s.Segments[5].DisplayMode != script.ModeTextOnly {
		t.Errorf("transition got %s, want text_only", s.Segments[5].DisplayMode)
	}
	if plan.ModeCounts[script.ModeDallE] < 1 {
		t.Error("medium tier should produce at least one dall_e segment")
	}
	if plan.ModeCounts[script.ModeCarryForward] < 1 {
		t.Error("medium tier should leave at least one carry_forward segment")
	}
	if plan.EstimatedCost != float64(plan.ModeCounts[script.ModeDallE])*DallEUnitCost {
		t.Errorf("estimated cost = %v", plan.EstimatedCost)
	}
}

func TestPlanVisuals_MicroTier(t *testing.T) {
	s := figureHeavyScript()
	plan, err := PlanVisuals(s, library.New("proj-1"), TierMicro)
	if err != nil {
		t.Fatalf("PlanVisuals: %v", err)
	}

	if got := plan.ModeCounts[script.ModeFigureSync]; got != 2 {
		t.Errorf("figure_sync count = %d, want 2 (figures survive micro)", got)
	}
	if got := plan.ModeCounts[script.ModeTextOnly]; got != 8 {
		t.Errorf("text_only count = %d, want 8", got)
	}
	if plan.EstimatedCost != 0 {
		t.Errorf("micro cost = %v, want 0", plan.EstimatedCost)
	}
}

func TestPlanVisuals_ImageBudgetFloor(t *testing.T) {
	// Two segments at ratio 0.2 floors the image budget at 1.
	s := &script.StructuredScript{Segments: []script.Segment{
		{Idx: 0, Intent: script.IntentIntro, ImportanceScore: 0.8, Text: "Hi."},
		{Idx: 1, Intent: script.IntentOutro, ImportanceScore: 0.6, Text: "Bye."},
	}}
	plan, err := PlanVisuals(s, library.New("proj-1"), TierLow)
	if err != nil {
		t.Fatalf("PlanVisuals: %v", err)
	}
	if plan.DallEBudget != 1 {
		t.Errorf("image budget = %d, want 1", plan.DallEBudget)
	}
	images := plan.ModeCounts[script.ModeDallE] + plan.ModeCounts[script.ModeWebImage]
	if images != 1 {
		t.Errorf("image segments = %d, want 1", images)
	}
}

func TestPlanVisuals_SourcePredicate(t *testing.T) {
	cases := []struct {
		name string
		seg  script.Segment
		want script.DisplayMode
	}{
		{"factual intent", script.Segment{Intent: script.IntentEvidence}, script.ModeWebImage},
		{"editorial intent", script.Segment{Intent: script.IntentIntro}, script.ModeDallE},
		{"concepts override editorial", script.Segment{Intent: script.IntentIntro, KeyConcepts: []string{"a", "b"}}, script.ModeWebImage},
		{"default", script.Segment{Intent: script.IntentAnalysis}, script.ModeWebImage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := chooseImageSource(&tc.seg); got != tc.want {
				t.Errorf("chooseImageSource = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPlanVisuals_ApprovedAssetsLinked(t *testing.T) {
	s := figureHeavyScript()
	lib := library.New("proj-1")

	figID, err := lib.Register(&library.AssetRecord{
		Type:         library.AssetFigure,
		Source:       library.SourceKBExtraction,
		FigureNumber: library.Intp(2),
		Path:         "figures/fig2.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := lib.Approve(figID, "dop"); err != nil {
		t.Fatal(err)
	}

	imgID, err := lib.Register(&library.AssetRecord{
		Type:       library.AssetImage,
		Source:     library.SourceDallE,
		SegmentIdx: library.Intp(1),
		Path:       "images/context.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := lib.Approve(imgID, "dop"); err != nil {
		t.Fatal(err)
	}

	if _, err := PlanVisuals(s, lib, TierMedium); err != nil {
		t.Fatalf("PlanVisuals: %v", err)
	}

	if s.Segments[3].VisualAssetID != figID {
		t.Errorf("figure segment linked %q, want %s", s.Segments[3].VisualAssetID, figID)
	}
	// An approved image wins the ranking and holds as a static image.
	if s.Segments[1].DisplayMode != script.ModeDallE || s.Segments[1].VisualAssetID != imgID {
		t.Errorf("segment 1 = %s/%q, want dall_e/%s", s.Segments[1].DisplayMode, s.Segments[1].VisualAssetID, imgID)
	}
}

func TestPlanVisuals_Deterministic(t *testing.T) {
	lib := library.New("proj-1")

	first := figureHeavyScript()
	if _, err := PlanVisuals(first, lib, TierHigh); err != nil {
		t.Fatal(err)
	}
	second := figureHeavyScript()
	if _, err := PlanVisuals(second, lib, TierHigh); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("planning identical inputs diverged")
	}

	// Re-running over an already-planned script changes nothing.
	before := make([]script.Segment, len(first.Segments))
	copy(before, first.Segments)
	if _, err := PlanVisuals(first, lib, TierHigh); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, first.Segments) {
		t.Error("re-running the planner mutated assigned segments")
	}
}

func TestBuildDirection(t *testing.T) {
	s := figureHeavyScript()
	seg := &s.Segments[3]
	seg.DisplayMode = script.ModeFigureSync
	dir := buildDirection(s, seg)
	if !strings.Contains(dir, "Attention weight heatmap") {
		t.Errorf("figure caption missing from direction: %q", dir)
	}
	if !strings.Contains(dir, "hero moment") {
		t.Errorf("importance note missing: %q", dir)
	}

	hero := &script.Segment{Intent: script.IntentIntro, ImportanceScore: 0.8, DisplayMode: script.ModeDallE}
	if dir := buildDirection(s, hero); !strings.Contains(dir, "Ken Burns") {
		t.Errorf("high-importance dall_e segment missing motion hint: %q", dir)
	}
	quiet := &script.Segment{Intent: script.IntentContext, ImportanceScore: 0.4, DisplayMode: script.ModeDallE}
	if dir := buildDirection(s, quiet); strings.Contains(dir, "Ken Burns") {
		t.Errorf("low-importance segment must not get the motion hint: %q", dir)
	}
}
