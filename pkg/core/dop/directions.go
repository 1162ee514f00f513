package dop

import (
	"fmt"
	"strings"

	"agentic_studio/pkg/core/script"
)

// directionTemplates maps each intent to its default framing instruction.
var directionTemplates = map[script.SegmentIntent]string{
	script.IntentIntro:           "Establishing wide shot, bold and inviting",
	script.IntentContext:         "Scene-setting imagery grounding the topic",
	script.IntentExplanation:     "Clear illustrative composition of the mechanism",
	script.IntentDefinition:      "Clean centered subject on a neutral backdrop",
	script.IntentNarrative:       "Documentary-style candid framing",
	script.IntentClaim:           "Strong single-subject emphasis, high contrast",
	script.IntentEvidence:        "Concrete supporting visual, literal not abstract",
	script.IntentDataWalkthrough: "Chart-like structured composition",
	script.IntentFigureReference: "Hold on the referenced figure",
	script.IntentAnalysis:        "Layered composition suggesting depth of reasoning",
	script.IntentComparison:      "Split or side-by-side framing",
	script.IntentCounterpoint:    "Contrasting tone against the previous visual",
	script.IntentSynthesis:       "Converging elements drawn into one frame",
	script.IntentCommentary:      "Editorial mood, softer palette",
	script.IntentQuestion:        "Open negative space inviting curiosity",
	script.IntentSpeculation:     "Atmospheric, slightly abstract imagery",
	script.IntentTransition:      "Minimal bridging frame",
	script.IntentRecap:           "Montage-style summary frame",
	script.IntentOutro:           "Closing wide shot, settled and conclusive",
}

const (
	maxDirectionConcepts = 3
	captionExcerptLen    = 60
	kenBurnsThreshold    = 0.6
)

// buildDirection concatenates the intent template, key concepts, a figure
// caption excerpt, an importance note and a motion hint into one instruction
// string for the image stage.
func buildDirection(s *script.StructuredScript, seg *script.Segment) string {
	parts := []string{directionTemplates[seg.Intent]}

	if len(seg.KeyConcepts) > 0 {
		concepts := seg.KeyConcepts
		if len(concepts) > maxDirectionConcepts {
			concepts = concepts[:maxDirectionConcepts]
		}
		parts = append(parts, "featuring "+strings.Join(concepts, ", "))
	}

	if seg.DisplayMode == script.ModeFigureSync && len(seg.FigureRefs) > 0 {
		if entry, ok := s.Figure(seg.FigureRefs[0]); ok && entry.Caption != "" {
			parts = append(parts, fmt.Sprintf("figure caption: %q", excerpt(entry.Caption)))
		}
	}

	parts = append(parts, importanceNote(seg.ImportanceScore))

	if seg.DisplayMode == script.ModeDallE && seg.ImportanceScore >= kenBurnsThreshold {
		parts = append(parts, "apply slow Ken Burns pan and zoom")
	}

	return strings.Join(parts, "; ")
}

func importanceNote(score float64) string {
	switch {
	case score >= 0.8:
		return "hero moment, maximum visual weight"
	case score >= 0.5:
		return "standard visual weight"
	default:
		return "background visual, keep understated"
	}
}

func excerpt(caption string) string {
	caption = strings.TrimSpace(caption)
	if len(caption) <= captionExcerptLen {
		return caption
	}
	return caption[:captionExcerptLen] + "..."
}
