// Package models defines the shared data model for the production core:
// tiers, pilots, scenes, generated videos, QA results and the final
// production outcome. All structs round-trip through JSON with stable
// field names; components reference each other by ID, never by pointer.
package models

import "time"

// =============================================================================
// PRODUCTION TIERS
// =============================================================================

// ProductionTier is the closed set of quality levels a pilot can run at.
type ProductionTier string

const (
	TierStaticImages   ProductionTier = "static_images"
	TierMotionGraphics ProductionTier = "motion_graphics"
	TierAnimated       ProductionTier = "animated"
	TierPhotorealistic ProductionTier = "photorealistic"
)

// TierSpec holds the pricing and quality envelope of a tier. Tiers strictly
// order both cost and ceiling: a higher tier is always more expensive and
// always has a higher quality ceiling.
type TierSpec struct {
	CostPerSecond    float64  `json:"cost_per_second"`
	CostPerVariation float64  `json:"cost_per_variation"`
	LLMTokenEstimate int      `json:"llm_token_estimate"`
	QualityCeiling   float64  `json:"quality_ceiling"` // 0-100
	ProviderHints    []string `json:"provider_hints,omitempty"`
}

// TierOrder lists tiers from cheapest to most expensive.
var TierOrder = []ProductionTier{
	TierStaticImages,
	TierMotionGraphics,
	TierAnimated,
	TierPhotorealistic,
}

// TierSpecs is the canonical pricing table.
var TierSpecs = map[ProductionTier]TierSpec{
	TierStaticImages: {
		CostPerSecond:    0.10,
		CostPerVariation: 0.05,
		LLMTokenEstimate: 2000,
		QualityCeiling:   60,
		ProviderHints:    []string{"dalle", "kenburns"},
	},
	TierMotionGraphics: {
		CostPerSecond:    0.50,
		CostPerVariation: 0.25,
		LLMTokenEstimate: 4000,
		QualityCeiling:   75,
		ProviderHints:    []string{"luma"},
	},
	TierAnimated: {
		CostPerSecond:    2.00,
		CostPerVariation: 1.00,
		LLMTokenEstimate: 8000,
		QualityCeiling:   85,
		ProviderHints:    []string{"luma", "runway"},
	},
	TierPhotorealistic: {
		CostPerSecond:    5.00,
		CostPerVariation: 2.50,
		LLMTokenEstimate: 12000,
		QualityCeiling:   95,
		ProviderHints:    []string{"runway"},
	},
}

// QAThresholds maps each tier to its pass cutoff for the overall QA score.
var QAThresholds = map[ProductionTier]float64{
	TierStaticImages:   70,
	TierMotionGraphics: 75,
	TierAnimated:       80,
	TierPhotorealistic: 85,
}

// TierRank returns the position of a tier in the cost/quality order,
// or -1 for an unknown tier.
func TierRank(t ProductionTier) int {
	for i, tier := range TierOrder {
		if tier == t {
			return i
		}
	}
	return -1
}

// =============================================================================
// AUDIO TIERS
// =============================================================================

// AudioTier gates how much audio production a scene receives.
type AudioTier string

const (
	AudioNone           AudioTier = "none"
	AudioMusicOnly      AudioTier = "music_only"
	AudioSimpleOverlay  AudioTier = "simple_overlay"
	AudioTimeSynced     AudioTier = "time_synced"
	AudioFullProduction AudioTier = "full_production"
)

// =============================================================================
// PILOTS
// =============================================================================

// PilotStrategy is one (tier, sub-budget) hypothesis produced by the Producer.
// allocated_budget is bounded by the total budget; the sum across pilots may
// exceed it, since pilots compete and only winners continue.
type PilotStrategy struct {
	PilotID         string         `json:"pilot_id"`
	Tier            ProductionTier `json:"tier"`
	AllocatedBudget float64        `json:"allocated_budget"`
	TestSceneCount  int            `json:"test_scene_count"`
	FullSceneCount  int            `json:"full_scene_count"`
	Rationale       string         `json:"rationale"`
}

// PilotStatus tracks a pilot through its lifecycle.
type PilotStatus string

const (
	PilotPlanned   PilotStatus = "planned"
	PilotTesting   PilotStatus = "testing"
	PilotApproved  PilotStatus = "approved"
	PilotCompleted PilotStatus = "completed"
	PilotCancelled PilotStatus = "cancelled"
)

// =============================================================================
// SCENES
// =============================================================================

// Scene is a single shot of the video as authored by the ScriptWriter.
// Scenes are immutable after creation.
type Scene struct {
	SceneID         string   `json:"scene_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationSec     float64  `json:"duration_sec"`
	VisualElements  []string `json:"visual_elements,omitempty"`
	PromptHints     []string `json:"prompt_hints,omitempty"`
	TransitionIn    string   `json:"transition_in,omitempty"`
	TransitionOut   string   `json:"transition_out,omitempty"`
	VoiceoverText   string   `json:"voiceover_text,omitempty"`
	SyncPoints      []float64 `json:"sync_points,omitempty"`
	MusicTransition string   `json:"music_transition,omitempty"`
	SFXCues         []string `json:"sfx_cues,omitempty"`
	ContinuityGroup string   `json:"continuity_group,omitempty"`
	TextOverlay     string   `json:"text_overlay,omitempty"`
}

// =============================================================================
// GENERATED VIDEO
// =============================================================================

// GeneratedVideo is one provider-produced variation for a scene.
// ContainsPrevious means the provider literally prepended the previous
// scene's frames; trims must offset by NewContentStart and clamp to
// TotalVideoDuration.
type GeneratedVideo struct {
	SceneID            string            `json:"scene_id"`
	VariationID        int               `json:"variation_id"`
	VideoURL           string            `json:"video_url"`
	Duration           float64           `json:"duration"`
	GenerationCost     float64           `json:"generation_cost"`
	Provider           string            `json:"provider"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	QualityScore       float64           `json:"quality_score,omitempty"`
	ContainsPrevious   bool              `json:"contains_previous,omitempty"`
	NewContentStart    float64           `json:"new_content_start,omitempty"`
	TotalVideoDuration float64           `json:"total_video_duration,omitempty"`
	IsChained          bool              `json:"is_chained,omitempty"`
	ChainGroup         string            `json:"chain_group,omitempty"`
}

// =============================================================================
// QA
// =============================================================================

// QAResult scores one generated video against the creative intent.
// OverallScore is the fixed weighted blend of the four dimensions; Passed
// means OverallScore >= Threshold for the pilot's tier.
type QAResult struct {
	SceneID          string    `json:"scene_id"`
	VideoURL         string    `json:"video_url"`
	OverallScore     float64   `json:"overall_score"`
	VisualAccuracy   float64   `json:"visual_accuracy"`
	StyleConsistency float64   `json:"style_consistency"`
	TechnicalQuality float64   `json:"technical_quality"`
	NarrativeFit     float64   `json:"narrative_fit"`
	Issues           []string  `json:"issues,omitempty"`
	Suggestions      []string  `json:"suggestions,omitempty"`
	Passed           bool      `json:"passed"`
	Threshold        float64   `json:"threshold"`
	VisualAnalysis   string    `json:"visual_analysis,omitempty"`
	FrameTimestamps  []float64 `json:"frame_timestamps,omitempty"`
}

// ComputeOverall applies the canonical dimension weights and sets Passed
// against the tier threshold.
func (q *QAResult) ComputeOverall(tier ProductionTier) {
	q.OverallScore = 0.30*q.VisualAccuracy + 0.25*q.StyleConsistency +
		0.25*q.TechnicalQuality + 0.20*q.NarrativeFit
	q.Threshold = QAThresholds[tier]
	q.Passed = q.OverallScore >= q.Threshold
}

// =============================================================================
// SCENE AUDIO
// =============================================================================

// WordTiming is one entry of the voiceover timing map.
type WordTiming struct {
	Word     string  `json:"word"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

// SceneAudio is the audio bundle for one scene. Fields are populated
// according to the audio tier: music only, voiceover, sync-point-aware
// voiceover, or full production with SFX.
type SceneAudio struct {
	SceneID       string       `json:"scene_id"`
	Tier          AudioTier    `json:"tier"`
	VoiceoverURL  string       `json:"voiceover_url,omitempty"`
	MusicURL      string       `json:"music_url,omitempty"`
	SFXURLs       []string     `json:"sfx_urls,omitempty"`
	DurationSec   float64      `json:"duration_sec,omitempty"`
	VoiceoverMap  []WordTiming `json:"voiceover_map,omitempty"`
	Cost          float64      `json:"cost"`
}

// =============================================================================
// PILOT RESULTS
// =============================================================================

// SceneResult is the per-scene outcome of a pilot run: the best variation
// and its QA verdict.
type SceneResult struct {
	SceneID        string   `json:"scene_id"`
	Description    string   `json:"description"`
	VideoURL       string   `json:"video_url"`
	QAScore        float64  `json:"qa_score"`
	QAPassed       bool     `json:"qa_passed"`
	QAThreshold    float64  `json:"qa_threshold"`
	QAIssues       []string `json:"qa_issues,omitempty"`
	GenerationCost float64  `json:"generation_cost"`
}

// PilotResults is the Critic's evaluation of a pilot, merged with run facts.
type PilotResults struct {
	PilotID             string         `json:"pilot_id"`
	Tier                ProductionTier `json:"tier"`
	ScenesGenerated     []SceneResult  `json:"scenes_generated"`
	TotalCost           float64        `json:"total_cost"`
	AvgQAScore          float64        `json:"avg_qa_score"`
	CriticScore         float64        `json:"critic_score"`
	Approved            bool           `json:"approved"`
	BudgetRemaining     float64        `json:"budget_remaining"`
	GapAnalysis         string         `json:"gap_analysis,omitempty"`
	CriticReasoning     string         `json:"critic_reasoning,omitempty"`
	AdjustmentsNeeded   []string       `json:"adjustments_needed,omitempty"`
	QAFailuresCount     int            `json:"qa_failures_count"`
	QAOverrideReasoning string         `json:"qa_override_reasoning,omitempty"`
}

// =============================================================================
// PRODUCTION RESULT
// =============================================================================

// ProductionStatus is the terminal state of a full run.
type ProductionStatus string

const (
	ProductionCompleted ProductionStatus = "completed"
	ProductionFailed    ProductionStatus = "failed"
)

// ProductionResult is the orchestrator's final answer.
type ProductionResult struct {
	RunID           string           `json:"run_id"`
	Status          ProductionStatus `json:"status"`
	Request         string           `json:"request"`
	BestPilot       *PilotResults    `json:"best_pilot,omitempty"`
	AllPilots       []PilotResults   `json:"all_pilots"`
	BudgetUsed      float64          `json:"budget_used"`
	BudgetRemaining float64          `json:"budget_remaining"`
	TotalScenes     int              `json:"total_scenes"`
	EDLID           string           `json:"edl_id,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
}
