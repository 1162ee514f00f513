// Package dop is the Director of Photography: a deterministic planner that
// assigns a display mode and visual direction to every script segment under
// a budget tier. No LLM calls; re-running on unchanged inputs is a no-op.
package dop

import (
	"fmt"
	"sort"

	"agentic_studio/pkg/core/library"
	"agentic_studio/pkg/core/script"
)

// BudgetTier controls how many generated images the plan may spend on.
type BudgetTier string

const (
	TierMicro  BudgetTier = "micro"
	TierLow    BudgetTier = "low"
	TierMedium BudgetTier = "medium"
	TierHigh   BudgetTier = "high"
	TierFull   BudgetTier = "full"
)

// TierConfig is the per-tier planning knobs.
type TierConfig struct {
	// ImageRatio is the fraction of segments that may receive a generated
	// or sourced image.
	ImageRatio float64 `json:"image_ratio"`
	// TextOverlayAll short-circuits planning: every non-figure segment
	// becomes text_only.
	TextOverlayAll bool `json:"text_overlay_all"`
}

// TierConfigs maps every budget tier to its configuration.
var TierConfigs = map[BudgetTier]TierConfig{
	TierMicro:  {ImageRatio: 0, TextOverlayAll: true},
	TierLow:    {ImageRatio: 0.2},
	TierMedium: {ImageRatio: 0.45},
	TierHigh:   {ImageRatio: 0.7},
	TierFull:   {ImageRatio: 1.0},
}

// DallEUnitCost is the per-image price used for the plan's cost estimate.
const DallEUnitCost = 0.04

// webImageIntents prefer sourced imagery: factual segments where a real
// photo or diagram beats a generated illustration.
var webImageIntents = map[script.SegmentIntent]bool{
	script.IntentContext:         true,
	script.IntentExplanation:     true,
	script.IntentEvidence:        true,
	script.IntentDataWalkthrough: true,
	script.IntentNarrative:       true,
	script.IntentComparison:      true,
}

// dallEIntents prefer generated imagery: framing and editorial segments
// with no factual anchor.
var dallEIntents = map[script.SegmentIntent]bool{
	script.IntentIntro:       true,
	script.IntentOutro:       true,
	script.IntentCommentary:  true,
	script.IntentSpeculation: true,
	script.IntentQuestion:    true,
	script.IntentSynthesis:   true,
}

// Plan summarizes one planning pass. The segment annotations themselves are
// written in place on the script.
type Plan struct {
	Tier          BudgetTier                  `json:"tier"`
	ModeCounts    map[script.DisplayMode]int  `json:"mode_counts"`
	DallEBudget   int                         `json:"dall_e_budget"`
	EstimatedCost float64                     `json:"estimated_cost"`
}

// PlanVisuals assigns a display mode to every segment of the script.
//
// Phases, in order: figure sync, micro short-circuit, image budget,
// transitions to text_only, importance-ranked image assignment with the
// dall_e/web_image predicate, approved-asset linking, visual direction
// synthesis.
func PlanVisuals(s *script.StructuredScript, lib *library.Library, tier BudgetTier) (*Plan, error) {
	cfg, ok := TierConfigs[tier]
	if !ok {
		return nil, fmt.Errorf("unknown budget tier %q", tier)
	}

	// Phase 1: figure references always win.
	for i := range s.Segments {
		seg := &s.Segments[i]
		if seg.DisplayMode != "" || len(seg.FigureRefs) == 0 {
			continue
		}
		seg.DisplayMode = script.ModeFigureSync
		if rec, ok := approvedFigure(lib, seg); ok {
			seg.VisualAssetID = rec.AssetID
		}
	}

	// Phase 2: micro tier holds everything else on text overlays.
	if cfg.TextOverlayAll {
		for i := range s.Segments {
			if s.Segments[i].DisplayMode == "" {
				s.Segments[i].DisplayMode = script.ModeTextOnly
			}
		}
		return summarize(s, tier, 0), nil
	}

	// Phase 3: image budget.
	dalleBudget := 0
	if cfg.ImageRatio > 0 {
		dalleBudget = int(float64(s.TotalSegments()) * cfg.ImageRatio)
		if dalleBudget < 1 {
			dalleBudget = 1
		}
	}

	// Phase 4: transitions carry no visuals of their own.
	for i := range s.Segments {
		seg := &s.Segments[i]
		if seg.DisplayMode == "" && seg.Intent == script.IntentTransition {
			seg.DisplayMode = script.ModeTextOnly
		}
	}

	// Phase 5: rank the rest. Segments with an approved image first, then
	// by importance; idx breaks ties so the ordering is total.
	var remaining []int
	for i := range s.Segments {
		if s.Segments[i].DisplayMode == "" {
			remaining = append(remaining, i)
		}
	}
	sort.SliceStable(remaining, func(a, b int) bool {
		sa, sb := &s.Segments[remaining[a]], &s.Segments[remaining[b]]
		ha := lib.HasApprovedAssetFor(sa.Idx, library.AssetImage)
		hb := lib.HasApprovedAssetFor(sb.Idx, library.AssetImage)
		if ha != hb {
			return ha
		}
		if sa.ImportanceScore != sb.ImportanceScore {
			return sa.ImportanceScore > sb.ImportanceScore
		}
		return sa.Idx < sb.Idx
	})

	for rank, idx := range remaining {
		seg := &s.Segments[idx]
		if rank >= dalleBudget {
			seg.DisplayMode = script.ModeCarryForward
			continue
		}
		// Phase 6: closed-form source choice.
		seg.DisplayMode = chooseImageSource(seg)
		// Phase 7: an approved image means a static hold, no regeneration.
		if rec, ok := lib.GetApprovedForSegment(seg.Idx, library.AssetImage); ok {
			seg.VisualAssetID = rec.AssetID
			seg.DisplayMode = script.ModeDallE
		}
	}

	// Phase 8: synthesize visual direction for every visual segment.
	for i := range s.Segments {
		seg := &s.Segments[i]
		switch seg.DisplayMode {
		case script.ModeDallE, script.ModeWebImage, script.ModeFigureSync:
			seg.VisualDirection = buildDirection(s, seg)
		}
	}

	return summarize(s, tier, dalleBudget), nil
}

// chooseImageSource decides between generated and sourced imagery.
func chooseImageSource(seg *script.Segment) script.DisplayMode {
	if webImageIntents[seg.Intent] || len(seg.KeyConcepts) >= 2 {
		return script.ModeWebImage
	}
	if dallEIntents[seg.Intent] {
		return script.ModeDallE
	}
	return script.ModeWebImage
}

func approvedFigure(lib *library.Library, seg *script.Segment) (*library.AssetRecord, bool) {
	for _, n := range seg.FigureRefs {
		recs := lib.Query(library.Filter{
			Type:         library.AssetFigure,
			Status:       library.StatusApproved,
			FigureNumber: library.Intp(n),
		})
		if len(recs) > 0 {
			return &recs[0], true
		}
	}
	return nil, false
}

func summarize(s *script.StructuredScript, tier BudgetTier, dalleBudget int) *Plan {
	p := &Plan{
		Tier:        tier,
		ModeCounts:  make(map[script.DisplayMode]int),
		DallEBudget: dalleBudget,
	}
	for i := range s.Segments {
		p.ModeCounts[s.Segments[i].DisplayMode]++
	}
	p.EstimatedCost = float64(p.ModeCounts[script.ModeDallE]) * DallEUnitCost
	return p
}
