// Package library is the persistent registry of generated and approved
// assets. Records are owned by the Library and referenced by ID everywhere
// else; approval state drives the generation-skip predicate used by the DoP
// and the pilot runner.
package library

import "time"

// AssetType partitions records and scopes the ID counters.
type AssetType string

const (
	AssetAudio  AssetType = "audio"
	AssetImage  AssetType = "image"
	AssetFigure AssetType = "figure"
	AssetVideo  AssetType = "video"
)

// idPrefixes gives every type its ID namespace: aud_0001, img_0001, ...
var idPrefixes = map[AssetType]string{
	AssetAudio:  "aud",
	AssetImage:  "img",
	AssetFigure: "fig",
	AssetVideo:  "vid",
}

// AssetSource identifies the backend that produced an asset.
type AssetSource string

const (
	SourceDallE        AssetSource = "dalle"
	SourceElevenLabs   AssetSource = "elevenlabs"
	SourceOpenAITTS    AssetSource = "openai_tts"
	SourceLuma         AssetSource = "luma"
	SourceRunway       AssetSource = "runway"
	SourceKBExtraction AssetSource = "kb_extraction"
	SourceWeb          AssetSource = "web"
	SourceFFmpeg       AssetSource = "ffmpeg"
	SourceManual       AssetSource = "manual"
)

// AssetStatus is the record lifecycle: draft -> review -> approved|rejected,
// with revised records pointing at their predecessor.
type AssetStatus string

const (
	StatusDraft    AssetStatus = "draft"
	StatusReview   AssetStatus = "review"
	StatusApproved AssetStatus = "approved"
	StatusRejected AssetStatus = "rejected"
	StatusRevised  AssetStatus = "revised"
)

// AssetRecord is one registered asset. SegmentIdx and FigureNumber are
// pointers because zero is a valid index.
type AssetRecord struct {
	AssetID        string      `json:"asset_id"`
	Type           AssetType   `json:"type"`
	Source         AssetSource `json:"source"`
	Status         AssetStatus `json:"status"`
	Path           string      `json:"path,omitempty"`
	SegmentIdx     *int        `json:"segment_idx,omitempty"`
	UsedInSegments []int       `json:"used_in_segments,omitempty"`
	FigureNumber   *int        `json:"figure_number,omitempty"`
	TextContent    string      `json:"text_content,omitempty"`
	Voice          string      `json:"voice,omitempty"`
	DurationSec    float64     `json:"duration_sec,omitempty"`
	Prompt         string      `json:"prompt,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	OriginRunID    string      `json:"origin_run_id,omitempty"`
	GeneratedAt    time.Time   `json:"generated_at"`
	ApprovedAt     *time.Time  `json:"approved_at,omitempty"`
	ApprovedBy     string      `json:"approved_by,omitempty"`
	RejectedReason string      `json:"rejected_reason,omitempty"`
	RevisionOf     string      `json:"revision_of,omitempty"`
}

// Filter selects assets in Query. Nil/zero fields match everything.
type Filter struct {
	Type         AssetType
	Status       AssetStatus
	SegmentIdx   *int
	FigureNumber *int
	Source       AssetSource
	Tags         []string
}

// Intp is a small helper for the pointer index fields.
func Intp(v int) *int { return &v }
