package execgraph

import "fmt"

// Validate checks the graph for duplicate scenes, dangling references and
// dependency cycles. All problems are collected and returned; an empty list
// means the graph is sound.
func (g *Graph) Validate() []error {
	var errs []error

	seen := make(map[string]string)
	for i := range g.Groups {
		grp := &g.Groups[i]
		for _, id := range grp.SceneIDs {
			if _, ok := g.scenes[id]; !ok {
				errs = append(errs, fmt.Errorf("group %q references unknown scene %q", grp.GroupID, id))
			}
			if owner, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("scene %q appears in groups %q and %q", id, owner, grp.GroupID))
				continue
			}
			seen[id] = grp.GroupID
		}
		if grp.ChainFromGroup != "" {
			if _, ok := g.group(grp.ChainFromGroup); !ok {
				errs = append(errs, fmt.Errorf("group %q chains from unknown group %q", grp.GroupID, grp.ChainFromGroup))
			}
		}
	}

	for id := range g.scenes {
		if _, ok := seen[id]; !ok {
			errs = append(errs, fmt.Errorf("scene %q belongs to no group", id))
		}
	}

	errs = append(errs, g.findCycles()...)
	return errs
}

// findCycles runs DFS over the chain_from_group edges with a path set.
func (g *Graph) findCycles() []error {
	var errs []error
	state := make(map[string]int) // 0 unvisited, 1 on path, 2 done

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case 1:
			return true
		case 2:
			return false
		}
		state[id] = 1
		if grp, ok := g.group(id); ok && grp.ChainFromGroup != "" {
			if _, known := g.group(grp.ChainFromGroup); known && visit(grp.ChainFromGroup) {
				state[id] = 2
				return true
			}
		}
		state[id] = 2
		return false
	}

	for i := range g.Groups {
		id := g.Groups[i].GroupID
		if state[id] == 0 && visit(id) {
			errs = append(errs, fmt.Errorf("dependency cycle through group %q", id))
		}
	}
	return errs
}
