// Package execgraph turns a flat scene list into a partial order of
// execution waves that respects continuity. Groups are tagged values, not a
// hierarchy: behavior dispatch is a switch on the group mode.
package execgraph

import (
	"fmt"

	"agentic_studio/pkg/models"
)

// Strategy selects how scenes are grouped.
type Strategy string

const (
	StrategyAllParallel   Strategy = "all_parallel"
	StrategyAllSequential Strategy = "all_sequential"
	StrategyManual        Strategy = "manual"
	StrategyAuto          Strategy = "auto"
)

// GroupMode discriminates parallel from sequential groups.
type GroupMode string

const (
	GroupParallel   GroupMode = "parallel"
	GroupSequential GroupMode = "sequential"
)

// DefaultParallelGroup is the bucket for ungrouped scenes under the manual
// strategy.
const DefaultParallelGroup = "default_parallel"

// SceneGroup is one tagged group of scene IDs. A sequential group runs its
// scenes in order, each chained to the previous; ChainFromGroup delays the
// whole group until another group completes.
type SceneGroup struct {
	GroupID        string    `json:"group_id"`
	Mode           GroupMode `json:"mode"`
	SceneIDs       []string  `json:"scene_ids"`
	ChainFromGroup string    `json:"chain_from_group,omitempty"`
}

// Graph is the built execution plan over a scene list.
type Graph struct {
	Strategy Strategy     `json:"strategy"`
	Groups   []SceneGroup `json:"groups"`

	scenes map[string]models.Scene
	order  []string
}

// Build groups the scenes according to the strategy. The scene list order is
// preserved inside every group.
func Build(scenes []models.Scene, strategy Strategy) (*Graph, error) {
	g := &Graph{
		Strategy: strategy,
		scenes:   make(map[string]models.Scene, len(scenes)),
	}
	for _, sc := range scenes {
		g.scenes[sc.SceneID] = sc
		g.order = append(g.order, sc.SceneID)
	}

	switch strategy {
	case StrategyAllParallel:
		g.Groups = []SceneGroup{{GroupID: "parallel_all", Mode: GroupParallel, SceneIDs: g.order}}
	case StrategyAllSequential:
		g.Groups = []SceneGroup{{GroupID: "sequential_all", Mode: GroupSequential, SceneIDs: g.order}}
	case StrategyManual:
		g.Groups = buildManual(scenes)
	case StrategyAuto:
		g.Groups = buildAuto(scenes)
	default:
		return nil, fmt.Errorf("unknown execution strategy %q", strategy)
	}
	return g, nil
}

// buildManual honors each scene's continuity_group. Ungrouped scenes pool
// into one parallel group; grouped scenes become sequential groups in first
// appearance order, each chained to the previous sequential group.
func buildManual(scenes []models.Scene) []SceneGroup {
	parallel := SceneGroup{GroupID: DefaultParallelGroup, Mode: GroupParallel}

	var seqOrder []string
	seqScenes := make(map[string][]string)
	for _, sc := range scenes {
		if sc.ContinuityGroup == "" {
			parallel.SceneIDs = append(parallel.SceneIDs, sc.SceneID)
			continue
		}
		if _, seen := seqScenes[sc.ContinuityGroup]; !seen {
			seqOrder = append(seqOrder, sc.ContinuityGroup)
		}
		seqScenes[sc.ContinuityGroup] = append(seqScenes[sc.ContinuityGroup], sc.SceneID)
	}

	var groups []SceneGroup
	if len(parallel.SceneIDs) > 0 {
		groups = append(groups, parallel)
	}
	prev := ""
	for _, name := range seqOrder {
		groups = append(groups, SceneGroup{
			GroupID:        name,
			Mode:           GroupSequential,
			SceneIDs:       seqScenes[name],
			ChainFromGroup: prev,
		})
		prev = name
	}
	return groups
}

// Scene returns the scene behind an ID.
func (g *Graph) Scene(id string) (models.Scene, bool) {
	sc, ok := g.scenes[id]
	return sc, ok
}

// SceneCount returns the number of scenes in the graph.
func (g *Graph) SceneCount() int { return len(g.order) }

func (g *Graph) group(id string) (*SceneGroup, bool) {
	for i := range g.Groups {
		if g.Groups[i].GroupID == id {
			return &g.Groups[i], true
		}
	}
	return nil, false
}
