package execgraph

// ExecutionWaves flattens the graph into an ordered list of waves. Each wave
// is a set of scene IDs safe to generate concurrently.
//
// Ready parallel groups merge into a single wave. Ready sequential groups
// contribute one wave per scene, in order; independent sequential groups
// advance in lockstep. A chained group waits for its source group to finish.
func (g *Graph) ExecutionWaves() [][]string {
	done := make(map[string]bool, len(g.Groups))
	var waves [][]string

	for len(done) < len(g.Groups) {
		var ready []*SceneGroup
		for i := range g.Groups {
			grp := &g.Groups[i]
			if done[grp.GroupID] {
				continue
			}
			if grp.ChainFromGroup == "" || done[grp.ChainFromGroup] {
				ready = append(ready, grp)
			}
		}
		if len(ready) == 0 {
			// Cycle or dangling reference; Validate reports it.
			break
		}

		var parallelWave []string
		var seqGroups []*SceneGroup
		for _, grp := range ready {
			switch grp.Mode {
			case GroupParallel:
				parallelWave = append(parallelWave, grp.SceneIDs...)
			case GroupSequential:
				seqGroups = append(seqGroups, grp)
			}
			done[grp.GroupID] = true
		}
		if len(parallelWave) > 0 {
			waves = append(waves, parallelWave)
		}

		depth := 0
		for _, grp := range seqGroups {
			if len(grp.SceneIDs) > depth {
				depth = len(grp.SceneIDs)
			}
		}
		for i := 0; i < depth; i++ {
			var wave []string
			for _, grp := range seqGroups {
				if i < len(grp.SceneIDs) {
					wave = append(wave, grp.SceneIDs[i])
				}
			}
			waves = append(waves, wave)
		}
	}
	return waves
}

// ChainSource returns the scene whose generation the given scene must
// continue from: the previous scene in its sequential group, or the last
// scene of the group it chains from. Scenes in parallel groups have no
// chain source.
func (g *Graph) ChainSource(sceneID string) (string, bool) {
	for i := range g.Groups {
		grp := &g.Groups[i]
		if grp.Mode != GroupSequential {
			continue
		}
		for j, id := range grp.SceneIDs {
			if id != sceneID {
				continue
			}
			if j > 0 {
				return grp.SceneIDs[j-1], true
			}
			if src, ok := g.group(grp.ChainFromGroup); ok && len(src.SceneIDs) > 0 {
				return src.SceneIDs[len(src.SceneIDs)-1], true
			}
			return "", false
		}
	}
	return "", false
}
