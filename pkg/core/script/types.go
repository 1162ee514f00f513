// Package script parses flat narration text into a typed, indexed structured
// script: ordered segments with narrative intents, figure references,
// importance scores and duration estimates. The DoP and the audio stage
// annotate segments in place; everything else is read-only after parse.
package script

import (
	"fmt"
	"strings"
)

// SegmentIntent is the closed set of narrative roles a segment can play.
type SegmentIntent string

const (
	IntentIntro           SegmentIntent = "intro"
	IntentContext         SegmentIntent = "context"
	IntentExplanation     SegmentIntent = "explanation"
	IntentDefinition      SegmentIntent = "definition"
	IntentNarrative       SegmentIntent = "narrative"
	IntentClaim           SegmentIntent = "claim"
	IntentEvidence        SegmentIntent = "evidence"
	IntentDataWalkthrough SegmentIntent = "data_walkthrough"
	IntentFigureReference SegmentIntent = "figure_reference"
	IntentAnalysis        SegmentIntent = "analysis"
	IntentComparison      SegmentIntent = "comparison"
	IntentCounterpoint    SegmentIntent = "counterpoint"
	IntentSynthesis       SegmentIntent = "synthesis"
	IntentCommentary      SegmentIntent = "commentary"
	IntentQuestion        SegmentIntent = "question"
	IntentSpeculation     SegmentIntent = "speculation"
	IntentTransition      SegmentIntent = "transition"
	IntentRecap           SegmentIntent = "recap"
	IntentOutro           SegmentIntent = "outro"
)

// DisplayMode is how a segment's visual will be realized. Populated by the
// DoP, never by the parser.
type DisplayMode string

const (
	ModeFigureSync   DisplayMode = "figure_sync"
	ModeDallE        DisplayMode = "dall_e"
	ModeWebImage     DisplayMode = "web_image"
	ModeCarryForward DisplayMode = "carry_forward"
	ModeTextOnly     DisplayMode = "text_only"
)

// ValidDisplayModes lists every mode the DoP may assign.
var ValidDisplayModes = []DisplayMode{ModeFigureSync, ModeDallE, ModeWebImage, ModeCarryForward, ModeTextOnly}

// baseImportance maps each intent to its base importance weight.
var baseImportance = map[SegmentIntent]float64{
	IntentIntro:           0.8,
	IntentContext:         0.4,
	IntentExplanation:     0.7,
	IntentDefinition:      0.6,
	IntentNarrative:       0.5,
	IntentClaim:           0.9,
	IntentEvidence:        0.8,
	IntentDataWalkthrough: 0.6,
	IntentFigureReference: 1.0,
	IntentAnalysis:        0.7,
	IntentComparison:      0.7,
	IntentCounterpoint:    0.6,
	IntentSynthesis:       0.7,
	IntentCommentary:      0.5,
	IntentQuestion:        0.5,
	IntentSpeculation:     0.4,
	IntentTransition:      0.2,
	IntentRecap:           0.5,
	IntentOutro:           0.6,
}

// BaseImportance returns the intent's base importance weight.
func BaseImportance(intent SegmentIntent) float64 {
	return baseImportance[intent]
}

// Segment is one blank-line-delimited block of narration.
type Segment struct {
	Idx               int           `json:"idx"`
	Text              string        `json:"text"`
	Intent            SegmentIntent `json:"intent"`
	FigureRefs        []int         `json:"figure_refs,omitempty"`
	KeyConcepts       []string      `json:"key_concepts,omitempty"`
	ImportanceScore   float64       `json:"importance_score"`
	EstimatedDuration float64       `json:"estimated_duration_sec"`
	DisplayMode       DisplayMode   `json:"display_mode,omitempty"`
	VisualAssetID     string        `json:"visual_asset_id,omitempty"`
	VisualDirection   string        `json:"visual_direction,omitempty"`
	AudioFile         string        `json:"audio_file,omitempty"`
	ActualDuration    float64       `json:"actual_duration_sec,omitempty"`
}

// WordCount returns the number of whitespace-separated words in the segment.
func (s *Segment) WordCount() int {
	return len(strings.Fields(s.Text))
}

// FigureEntry describes one figure mentioned by the narration.
type FigureEntry struct {
	KBPath              string `json:"kb_path,omitempty"`
	Caption             string `json:"caption,omitempty"`
	Description         string `json:"description,omitempty"`
	DiscussedInSegments []int  `json:"discussed_in_segments"`
}

// StructuredScript is the parsed, ordered script plus its figure inventory.
// The inventory is keyed by figure number as a string, matching the artifact
// convention.
type StructuredScript struct {
	ScriptID        string                  `json:"script_id"`
	Segments        []Segment               `json:"segments"`
	FigureInventory map[string]*FigureEntry `json:"figure_inventory,omitempty"`
}

// TotalSegments returns the segment count.
func (s *StructuredScript) TotalSegments() int {
	return len(s.Segments)
}

// TotalEstimatedDuration sums the per-segment duration estimates.
func (s *StructuredScript) TotalEstimatedDuration() float64 {
	var sum float64
	for i := range s.Segments {
		sum += s.Segments[i].EstimatedDuration
	}
	return sum
}

// Figure returns the inventory entry for a figure number.
func (s *StructuredScript) Figure(n int) (*FigureEntry, bool) {
	e, ok := s.FigureInventory[fmt.Sprintf("%d", n)]
	return e, ok
}
