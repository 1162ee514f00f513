package execgraph

import (
	"fmt"
	"strings"

	"agentic_studio/pkg/models"
)

// parallelKeywords mark a scene as independent footage that can generate in
// any order.
var parallelKeywords = []string{
	"b-roll", "establishing", "cutaway", "montage", "insert", "overlay",
	"transition", "title", "logo", "product shot", "detail shot",
	"ambient", "background",
}

// continuityKeywords mark a scene as visually continuing its neighbors.
var continuityKeywords = []string{
	"continues", "continuous", "same", "character", "person", "protagonist",
	"hero", "actor", "follow", "tracking", "interview", "conversation",
	"dialogue", "reaction",
}

type sceneClass int

const (
	classAmbiguous sceneClass = iota
	classParallel
	classContinuity
)

func classifyScene(sc *models.Scene) sceneClass {
	text := strings.ToLower(sc.Title + " " + sc.Description)
	for _, kw := range continuityKeywords {
		if strings.Contains(text, kw) {
			return classContinuity
		}
	}
	for _, kw := range parallelKeywords {
		if strings.Contains(text, kw) {
			return classParallel
		}
	}
	return classAmbiguous
}

// entityStopwords are capitalized tokens that are never characters or
// locations.
var entityStopwords = map[string]bool{
	"The": true, "A": true, "An": true, "This": true, "That": true,
	"It": true, "We": true, "They": true, "He": true, "She": true,
	"In": true, "On": true, "At": true, "And": true, "But": true,
	"Or": true, "As": true, "To": true, "For": true, "With": true,
	"From": true, "Then": true, "Now": true, "After": true, "Before": true,
}

// extractEntities pulls capitalized tokens out of the scene text as a cheap
// proxy for characters and locations.
func extractEntities(sc *models.Scene) map[string]bool {
	entities := make(map[string]bool)
	for _, tok := range strings.Fields(sc.Title + " " + sc.Description) {
		tok = strings.Trim(tok, ".,;:!?\"'()")
		if len(tok) < 3 || entityStopwords[tok] {
			continue
		}
		r := tok[0]
		if r >= 'A' && r <= 'Z' {
			entities[tok] = true
		}
	}
	return entities
}

func sharesEntity(a, b map[string]bool) bool {
	for e := range a {
		if b[e] {
			return true
		}
	}
	return false
}

// buildAuto classifies scenes by keywords. Independent scenes pool into one
// parallel group. Adjacent continuity scenes sharing a character or location
// join the same sequential group; otherwise a new sequential group starts.
// Ambiguous scenes extend the open sequential group if the previous scene
// belongs to it.
func buildAuto(scenes []models.Scene) []SceneGroup {
	parallel := SceneGroup{GroupID: "auto_parallel", Mode: GroupParallel}
	var sequential []SceneGroup

	// Index of the sequential group the previous scene joined, or -1.
	prevSeq := -1
	var prevEntities map[string]bool

	for i := range scenes {
		sc := &scenes[i]
		entities := extractEntities(sc)

		switch classifyScene(sc) {
		case classParallel:
			parallel.SceneIDs = append(parallel.SceneIDs, sc.SceneID)
			prevSeq = -1
		case classContinuity:
			if prevSeq >= 0 && sharesEntity(prevEntities, entities) {
				sequential[prevSeq].SceneIDs = append(sequential[prevSeq].SceneIDs, sc.SceneID)
			} else {
				sequential = append(sequential, SceneGroup{
					GroupID:  fmt.Sprintf("auto_seq_%d", len(sequential)+1),
					Mode:     GroupSequential,
					SceneIDs: []string{sc.SceneID},
				})
				prevSeq = len(sequential) - 1
			}
		default:
			if prevSeq >= 0 {
				sequential[prevSeq].SceneIDs = append(sequential[prevSeq].SceneIDs, sc.SceneID)
			} else {
				parallel.SceneIDs = append(parallel.SceneIDs, sc.SceneID)
			}
		}
		prevEntities = entities
	}

	var groups []SceneGroup
	if len(parallel.SceneIDs) > 0 {
		groups = append(groups, parallel)
	}
	groups = append(groups, sequential...)
	return groups
}
