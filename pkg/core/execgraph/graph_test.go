package execgraph

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"agentic_studio/pkg/models"
)

func makeScenes(n int) []models.Scene {
	var scenes []models.Scene
	for i := 1; i <= n; i++ {
		scenes = append(scenes, models.Scene{
			SceneID:     fmt.Sprintf("scene_%d", i),
			Title:       fmt.Sprintf("Scene %d", i),
			Description: "A quiet workshop bench.",
			DurationSec: 5,
		})
	}
	return scenes
}

func TestBuild_AllParallel(t *testing.T) {
	g, err := Build(makeScenes(4), StrategyAllParallel)
	if err != nil {
		t.Fatal(err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Fatalf("validate: %v", errs)
	}
	waves := g.ExecutionWaves()
	if len(waves) != 1 || len(waves[0]) != 4 {
		t.Errorf("waves = %v, want one wave of 4", waves)
	}
}

func TestBuild_AllSequential(t *testing.T) {
	g, err := Build(makeScenes(3), StrategyAllSequential)
	if err != nil {
		t.Fatal(err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Fatalf("validate: %v", errs)
	}
	want := [][]string{{"scene_1"}, {"scene_2"}, {"scene_3"}}
	if got := g.ExecutionWaves(); !reflect.DeepEqual(got, want) {
		t.Errorf("waves = %v, want %v", got, want)
	}
	if src, ok := g.ChainSource("scene_2"); !ok || src != "scene_1" {
		t.Errorf("chain source of scene_2 = %q, %v", src, ok)
	}
	if _, ok := g.ChainSource("scene_1"); ok {
		t.Error("first scene must have no chain source")
	}
}

func TestBuild_ManualMixed(t *testing.T) {
	scenes := makeScenes(8)
	for _, i := range []int{2, 3, 4} { // scenes 3, 4, 5
		scenes[i].ContinuityGroup = "hero_arc"
	}
	g, err := Build(scenes, StrategyManual)
	if err != nil {
		t.Fatal(err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Fatalf("validate: %v", errs)
	}

	want := [][]string{
		{"scene_1", "scene_2", "scene_6", "scene_7", "scene_8"},
		{"scene_3"},
		{"scene_4"},
		{"scene_5"},
	}
	if got := g.ExecutionWaves(); !reflect.DeepEqual(got, want) {
		t.Errorf("waves = %v, want %v", got, want)
	}

	if src, _ := g.ChainSource("scene_4"); src != "scene_3" {
		t.Errorf("scene_4 chains from %q, want scene_3", src)
	}
	if src, _ := g.ChainSource("scene_5"); src != "scene_4" {
		t.Errorf("scene_5 chains from %q, want scene_4", src)
	}
	if _, ok := g.ChainSource("scene_1"); ok {
		t.Error("parallel scene must have no chain source")
	}
}

func TestBuild_ManualChainsSequentialGroups(t *testing.T) {
	scenes := makeScenes(4)
	scenes[0].ContinuityGroup = "arc_a"
	scenes[1].ContinuityGroup = "arc_a"
	scenes[2].ContinuityGroup = "arc_b"
	scenes[3].ContinuityGroup = "arc_b"

	g, err := Build(scenes, StrategyManual)
	if err != nil {
		t.Fatal(err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Fatalf("validate: %v", errs)
	}

	want := [][]string{{"scene_1"}, {"scene_2"}, {"scene_3"}, {"scene_4"}}
	if got := g.ExecutionWaves(); !reflect.DeepEqual(got, want) {
		t.Errorf("waves = %v, want %v", got, want)
	}
	// The first scene of arc_b continues from the last scene of arc_a.
	if src, _ := g.ChainSource("scene_3"); src != "scene_2" {
		t.Errorf("scene_3 chains from %q, want scene_2", src)
	}
}

func TestBuild_AutoClassification(t *testing.T) {
	scenes := []models.Scene{
		{SceneID: "s1", Title: "Opening", Description: "Establishing shot of the skyline."},
		{SceneID: "s2", Title: "Meet Maya", Description: "The protagonist Maya enters the lab."},
		{SceneID: "s3", Title: "Maya works", Description: "Tracking shot as Maya calibrates the rig."},
		{SceneID: "s4", Title: "Detail", Description: "Detail shot of the instrument panel."},
		{SceneID: "s5", Title: "New thread", Description: "Interview with Jonas in the atrium."},
	}
	g, err := Build(scenes, StrategyAuto)
	if err != nil {
		t.Fatal(err)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Fatalf("validate: %v", errs)
	}

	// s1 and s4 are independent; s2+s3 share "Maya"; s5 is continuity but
	// shares nothing with s4, so it opens its own group.
	var parallel, seqs []SceneGroup
	for _, grp := range g.Groups {
		if grp.Mode == GroupParallel {
			parallel = append(parallel, grp)
		} else {
			seqs = append(seqs, grp)
		}
	}
	if len(parallel) != 1 || !reflect.DeepEqual(parallel[0].SceneIDs, []string{"s1", "s4"}) {
		t.Errorf("parallel groups = %+v", parallel)
	}
	if len(seqs) != 2 {
		t.Fatalf("sequential groups = %+v, want 2", seqs)
	}
	if !reflect.DeepEqual(seqs[0].SceneIDs, []string{"s2", "s3"}) {
		t.Errorf("first sequential group = %v, want [s2 s3]", seqs[0].SceneIDs)
	}
	if !reflect.DeepEqual(seqs[1].SceneIDs, []string{"s5"}) {
		t.Errorf("second sequential group = %v, want [s5]", seqs[1].SceneIDs)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	g, err := Build(makeScenes(2), StrategyAllParallel)
	if err != nil {
		t.Fatal(err)
	}
	g.Groups = []SceneGroup{
		{GroupID: "a", Mode: GroupSequential, SceneIDs: []string{"scene_1", "scene_1", "ghost"}, ChainFromGroup: "b"},
		{GroupID: "b", Mode: GroupSequential, SceneIDs: []string{"scene_2"}, ChainFromGroup: "a"},
		{GroupID: "c", Mode: GroupParallel, ChainFromGroup: "missing"},
	}

	errs := g.Validate()
	if len(errs) < 3 {
		t.Fatalf("want duplicate, unknown-scene, unknown-group and cycle errors, got %v", errs)
	}
	var hasDup, hasGhost, hasMissing, hasCycle bool
	for _, e := range errs {
		msg := e.Error()
		switch {
		case strings.Contains(msg, "appears in groups"):
			hasDup = true
		case strings.Contains(msg, `unknown scene "ghost"`):
			hasGhost = true
		case strings.Contains(msg, `unknown group "missing"`):
			hasMissing = true
		case strings.Contains(msg, "cycle"):
			hasCycle = true
		}
	}
	if !hasDup || !hasGhost || !hasMissing || !hasCycle {
		t.Errorf("missing error kinds: dup=%v ghost=%v missing=%v cycle=%v in %v", hasDup, hasGhost, hasMissing, hasCycle, errs)
	}
}
