package script

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// WordsPerMinute is the speaking rate used for duration estimates.
const WordsPerMinute = 150.0

var (
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
	figurePattern    = regexp.MustCompile(`(?i)\bfigure\s+(\d+)`)
)

// Intent keyword tables. Checked in order after the positional and figure
// rules; first table with a hit wins.
var intentKeywords = []struct {
	intent   SegmentIntent
	keywords []string
}{
	{IntentExplanation, []string{"method", "methodology", "approach", "procedure", "we use", "technique", "algorithm"}},
	{IntentComparison, []string{"compared to", "in contrast", "whereas", "versus", "unlike", "on the other hand"}},
	{IntentClaim, []string{"key finding", "we found", "we show", "demonstrates that", "results show", "significantly"}},
	{IntentDataWalkthrough, []string{"the data", "dataset", "table", "the numbers", "statistics", "measured"}},
	{IntentTransition, []string{"next,", "moving on", "now let", "turning to", "with that"}},
	{IntentContext, []string{"background", "historically", "previous work", "prior research", "traditionally"}},
}

// ParseScript splits flat narration on blank lines and produces an ordered
// structured script with figure inventory.
func ParseScript(text string) (*StructuredScript, error) {
	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return nil, fmt.Errorf("script text is empty")
	}

	s := &StructuredScript{
		ScriptID:        uuid.NewString(),
		Segments:        make([]Segment, 0, len(blocks)),
		FigureInventory: make(map[string]*FigureEntry),
	}

	last := len(blocks) - 1
	for idx, block := range blocks {
		refs := extractFigureRefs(block)
		intent := classifyIntent(idx, last, block, refs)
		seg := Segment{
			Idx:               idx,
			Text:              block,
			Intent:            intent,
			FigureRefs:        refs,
			KeyConcepts:       extractKeyConcepts(block),
			EstimatedDuration: estimateDuration(block),
		}
		seg.ImportanceScore = importanceScore(&seg)
		s.Segments = append(s.Segments, seg)
	}

	buildFigureInventory(s)
	return s, nil
}

func splitBlocks(text string) []string {
	var blocks []string
	for _, raw := range blankLinePattern.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		b := strings.TrimSpace(raw)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// extractFigureRefs collects unique figure numbers in order of first mention.
func extractFigureRefs(text string) []int {
	var refs []int
	seen := make(map[int]bool)
	for _, m := range figurePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		refs = append(refs, n)
	}
	return refs
}

// classifyIntent applies the deterministic priority chain: position first,
// then figure references, then keyword tables, then the recap slot, then
// context as the default.
func classifyIntent(idx, last int, text string, figureRefs []int) SegmentIntent {
	switch {
	case idx == 0:
		return IntentIntro
	case idx == last:
		return IntentOutro
	case len(figureRefs) > 0:
		return IntentFigureReference
	}

	lower := strings.ToLower(text)
	for _, table := range intentKeywords {
		for _, kw := range table.keywords {
			if strings.Contains(lower, kw) {
				return table.intent
			}
		}
	}

	if idx == last-1 {
		return IntentRecap
	}
	return IntentContext
}

// estimateDuration converts word count to seconds at the canonical rate.
func estimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / WordsPerMinute * 60.0
}

// importanceScore is base-by-intent, +0.2 for figure references, +0.1 for
// long segments, clamped to [0,1] and rounded to 2 decimals.
func importanceScore(seg *Segment) float64 {
	score := BaseImportance(seg.Intent)
	if len(seg.FigureRefs) > 0 {
		score += 0.2
	}
	if seg.WordCount() > 150 {
		score += 0.1
	}
	score = math.Min(1.0, math.Max(0.0, score))
	return math.Round(score*100) / 100
}

// extractKeyConcepts picks distinctive long words as a cheap concept proxy.
// Deterministic: first occurrence order, capped at five.
func extractKeyConcepts(text string) []string {
	var concepts []string
	seen := make(map[string]bool)
	for _, raw := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(raw, ".,;:!?()\"'"))
		if len(w) < 8 || seen[w] {
			continue
		}
		seen[w] = true
		concepts = append(concepts, w)
		if len(concepts) == 5 {
			break
		}
	}
	return concepts
}

// buildFigureInventory inverts segment figure_refs into the per-figure index.
func buildFigureInventory(s *StructuredScript) {
	for i := range s.Segments {
		for _, n := range s.Segments[i].FigureRefs {
			key := strconv.Itoa(n)
			entry, ok := s.FigureInventory[key]
			if !ok {
				entry = &FigureEntry{}
				s.FigureInventory[key] = entry
			}
			entry.DiscussedInSegments = append(entry.DiscussedInSegments, s.Segments[i].Idx)
		}
	}
	for _, entry := range s.FigureInventory {
		sort.Ints(entry.DiscussedInSegments)
	}
}
