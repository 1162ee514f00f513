package models

// EditStyle is the closed set of candidate cutting styles.
type EditStyle string

const (
	StyleSafe     EditStyle = "safe"
	StyleCreative EditStyle = "creative"
	StyleBalanced EditStyle = "balanced"
)

// EditDecision binds one scene to a selected variation with resolved trim
// points. InPoint/OutPoint are offsets into the source video; when the source
// carries ContainsPrevious they are already offset by NewContentStart.
type EditDecision struct {
	SceneID       string  `json:"scene_id"`
	VariationID   int     `json:"variation_id"`
	VideoURL      string  `json:"video_url"`
	InPoint       float64 `json:"in_point"`
	OutPoint      float64 `json:"out_point"`
	TransitionIn  string  `json:"transition_in,omitempty"`
	TransitionOut string  `json:"transition_out,omitempty"`
	StartTime     float64 `json:"start_time"`
	Duration      float64 `json:"duration"`
	TextOverlay   string  `json:"text_overlay,omitempty"`
	AudioURL      string  `json:"audio_url,omitempty"`
}

// EditCandidate is one complete cut of the video.
type EditCandidate struct {
	CandidateID      string         `json:"candidate_id"`
	Name             string         `json:"name"`
	Style            EditStyle      `json:"style"`
	Decisions        []EditDecision `json:"decisions"`
	TotalDuration    float64        `json:"total_duration"`
	EstimatedQuality float64        `json:"estimated_quality"`
	Reasoning        string         `json:"reasoning,omitempty"`
}

// EDL is the Edit Decision List: every candidate cut plus the recommended one.
type EDL struct {
	EDLID                  string          `json:"edl_id"`
	Candidates             []EditCandidate `json:"candidates"`
	RecommendedCandidateID string          `json:"recommended_candidate_id"`
	ExportFormats          []string        `json:"export_formats,omitempty"`
	TotalScenes            int             `json:"total_scenes"`
	OriginalRequest        string          `json:"original_request"`
}
