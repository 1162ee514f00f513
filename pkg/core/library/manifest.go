package library

import (
	"strings"

	"agentic_studio/pkg/core/script"
)

// ManifestAudio references the audio asset backing a segment.
type ManifestAudio struct {
	AssetID     string  `json:"asset_id,omitempty"`
	Path        string  `json:"path,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}

// ManifestVisual references the visual asset backing a segment.
type ManifestVisual struct {
	AssetID string    `json:"asset_id,omitempty"`
	Path    string    `json:"path,omitempty"`
	Type    AssetType `json:"type,omitempty"`
}

// ManifestSegment is one assembler work item.
type ManifestSegment struct {
	SegmentIdx  int                `json:"segment_idx"`
	TextPreview string             `json:"text_preview"`
	Intent      script.SegmentIntent `json:"intent"`
	FigureRefs  []int              `json:"figure_refs,omitempty"`
	DisplayMode script.DisplayMode `json:"display_mode"`
	Audio       ManifestAudio      `json:"audio"`
	Visual      ManifestVisual     `json:"visual"`
}

// FigureSyncPoint marks where the assembler must cut to a figure.
type FigureSyncPoint struct {
	SegmentIdx   int    `json:"segment_idx"`
	FigureNumber int    `json:"figure_number"`
	AssetID      string `json:"asset_id,omitempty"`
}

// ManifestSummary aggregates the manifest for quick sanity checks.
type ManifestSummary struct {
	TotalAudio    int `json:"total_audio"`
	TotalImages   int `json:"total_images"`
	TotalFigures  int `json:"total_figures"`
	FigureSyncs   int `json:"figure_syncs"`
	DallEImages   int `json:"dall_e_images"`
	CarryForwards int `json:"carry_forwards"`
}

// AssemblyManifest is the bridge artifact handed to the downstream assembler.
type AssemblyManifest struct {
	ScriptID        string            `json:"script_id"`
	TrialID         string            `json:"trial_id"`
	TotalSegments   int               `json:"total_segments"`
	Segments        []ManifestSegment `json:"segments"`
	FigureSyncPoints []FigureSyncPoint `json:"figure_sync_points"`
	Summary         ManifestSummary   `json:"summary"`
}

const previewLen = 80

// BuildManifest joins the planned script with the library's approved assets
// into the assembler's manifest.
func BuildManifest(s *script.StructuredScript, lib *Library, trialID string) *AssemblyManifest {
	m := &AssemblyManifest{
		ScriptID:      s.ScriptID,
		TrialID:       trialID,
		TotalSegments: s.TotalSegments(),
	}

	for i := range s.Segments {
		seg := &s.Segments[i]
		ms := ManifestSegment{
			SegmentIdx:  seg.Idx,
			TextPreview: preview(seg.Text),
			Intent:      seg.Intent,
			FigureRefs:  seg.FigureRefs,
			DisplayMode: seg.DisplayMode,
		}

		if audio, ok := lib.GetApprovedForSegment(seg.Idx, AssetAudio); ok {
			ms.Audio = ManifestAudio{AssetID: audio.AssetID, Path: audio.Path, DurationSec: audio.DurationSec}
			m.Summary.TotalAudio++
		} else if seg.AudioFile != "" {
			ms.Audio = ManifestAudio{Path: seg.AudioFile, DurationSec: seg.ActualDuration}
			m.Summary.TotalAudio++
		}

		switch seg.DisplayMode {
		case script.ModeFigureSync:
			m.Summary.FigureSyncs++
			for _, n := range seg.FigureRefs {
				sp := FigureSyncPoint{SegmentIdx: seg.Idx, FigureNumber: n}
				if seg.VisualAssetID != "" {
					sp.AssetID = seg.VisualAssetID
				}
				m.FigureSyncPoints = append(m.FigureSyncPoints, sp)
			}
			if rec := visualRecord(lib, seg, AssetFigure); rec != nil {
				ms.Visual = ManifestVisual{AssetID: rec.AssetID, Path: rec.Path, Type: AssetFigure}
				m.Summary.TotalFigures++
			}
		case script.ModeDallE:
			m.Summary.DallEImages++
			if rec := visualRecord(lib, seg, AssetImage); rec != nil {
				ms.Visual = ManifestVisual{AssetID: rec.AssetID, Path: rec.Path, Type: AssetImage}
				m.Summary.TotalImages++
			}
		case script.ModeWebImage:
			if rec := visualRecord(lib, seg, AssetImage); rec != nil {
				ms.Visual = ManifestVisual{AssetID: rec.AssetID, Path: rec.Path, Type: AssetImage}
				m.Summary.TotalImages++
			}
		case script.ModeCarryForward:
			m.Summary.CarryForwards++
		}

		m.Segments = append(m.Segments, ms)
	}

	return m
}

// visualRecord prefers the segment's linked asset, falling back to the first
// approved asset of the wanted type.
func visualRecord(lib *Library, seg *script.Segment, t AssetType) *AssetRecord {
	if seg.VisualAssetID != "" {
		if rec, err := lib.Get(seg.VisualAssetID); err == nil {
			return rec
		}
	}
	if rec, ok := lib.GetApprovedForSegment(seg.Idx, t); ok {
		return rec
	}
	return nil
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLen {
		return text
	}
	return text[:previewLen] + "..."
}
