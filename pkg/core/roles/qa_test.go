package roles

import (
	"context"
	"fmt"
	"testing"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/models"
)

func qaJSON(visual, style, technical, narrative float64) string {
	return fmt.Sprintf(`{"visual_accuracy": %v, "style_consistency": %v, "technical_quality": %v, "narrative_fit": %v, "issues": ["minor banding"], "suggestions": []}`,
		visual, style, technical, narrative)
}

func TestQAVerifier_ThresholdBoundary(t *testing.T) {
	// All dimensions at 80 make overall exactly 80, the animated threshold.
	mock := (&llm.MockProvider{}).Enqueue(qaJSON(80, 80, 80, 80))
	qa := NewQAVerifier(mock, prompt.NewDefaultRegistry(), nil)

	scene := models.Scene{SceneID: "scene_1", Description: "desc"}
	video := models.GeneratedVideo{SceneID: "scene_1", VideoURL: "v1"}
	res, err := qa.VerifyVideo(context.Background(), scene, video, "req", models.TierAnimated)
	if err != nil {
		t.Fatalf("VerifyVideo: %v", err)
	}
	if res.OverallScore != 80 {
		t.Errorf("overall = %v, want 80", res.OverallScore)
	}
	if !res.Passed {
		t.Error("score equal to threshold must pass")
	}
	if res.Threshold != 80 {
		t.Errorf("threshold = %v, want 80", res.Threshold)
	}
}

func TestQAVerifier_WeightedBlend(t *testing.T) {
	mock := (&llm.MockProvider{}).Enqueue(qaJSON(90, 80, 70, 60))
	qa := NewQAVerifier(mock, prompt.NewDefaultRegistry(), nil)

	res, err := qa.VerifyVideo(context.Background(), models.Scene{SceneID: "s"}, models.GeneratedVideo{VideoURL: "v"}, "req", models.TierStaticImages)
	if err != nil {
		t.Fatalf("VerifyVideo: %v", err)
	}
	// 0.30*90 + 0.25*80 + 0.25*70 + 0.20*60 = 76.5
	if res.OverallScore != 76.5 {
		t.Errorf("overall = %v, want 76.5", res.OverallScore)
	}
	if !res.Passed { // static threshold 70
		t.Error("76.5 passes the static_images threshold")
	}
}

func TestQAVerifier_MalformedThenRepaired(t *testing.T) {
	// First answer is prose; the retry returns fenced JSON.
	mock := (&llm.MockProvider{}).Enqueue(
		"The video looks fine to me overall.",
		"```json\n"+qaJSON(85, 85, 85, 85)+"\n```",
	)
	qa := NewQAVerifier(mock, prompt.NewDefaultRegistry(), nil)

	res, err := qa.VerifyVideo(context.Background(), models.Scene{SceneID: "s"}, models.GeneratedVideo{VideoURL: "v"}, "req", models.TierAnimated)
	if err != nil {
		t.Fatalf("VerifyVideo: %v", err)
	}
	if res.OverallScore != 85 {
		t.Errorf("overall = %v, want 85", res.OverallScore)
	}
	if mock.Calls != 2 {
		t.Errorf("calls = %d, want 2", mock.Calls)
	}
}

func TestQAVerifier_VerifyBatchOrder(t *testing.T) {
	mock := &llm.MockProvider{
		QueryFunc: func(ctx context.Context, p, sys string, opts map[string]interface{}) (string, error) {
			return qaJSON(80, 80, 80, 80), nil
		},
	}
	qa := NewQAVerifier(mock, prompt.NewDefaultRegistry(), nil)

	scene := models.Scene{SceneID: "scene_1"}
	videos := []models.GeneratedVideo{
		{SceneID: "scene_1", VariationID: 0, VideoURL: "v0"},
		{SceneID: "scene_1", VariationID: 1, VideoURL: "v1"},
		{SceneID: "scene_1", VariationID: 2, VideoURL: "v2"},
	}
	results, err := qa.VerifyBatch(context.Background(), scene, videos, "req", models.TierAnimated)
	if err != nil {
		t.Fatalf("VerifyBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.VideoURL != videos[i].VideoURL {
			t.Errorf("result %d is for %s, want %s", i, r.VideoURL, videos[i].VideoURL)
		}
	}
}

func TestShouldRegenerate(t *testing.T) {
	const cost = 10.0
	cases := []struct {
		name   string
		score  float64
		budget float64
		want   bool
	}{
		{"hard fail with budget", 40, 10, true},
		{"hard fail broke", 40, 9, false},
		{"soft fail needs 1.5x", 70, 15, true},
		{"soft fail underfunded", 70, 14, false},
		{"pass needs 2.5x", 85, 25, true},
		{"pass underfunded", 85, 24, false},
		{"excellent never", 92, 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qa := &models.QAResult{OverallScore: tc.score, Threshold: 80}
			if got := ShouldRegenerate(qa, tc.budget, cost); got != tc.want {
				t.Errorf("ShouldRegenerate = %v, want %v", got, tc.want)
			}
		})
	}
}
