package roles

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentic_studio/pkg/core/llm"
	"agentic_studio/pkg/core/prompt"
	"agentic_studio/pkg/models"
)

// Editor assembles edit decision lists from the surviving variations.
// Selection is deterministic; the optional LLM only writes the one-line
// reasoning per candidate.
type Editor struct {
	provider llm.TextProvider
	prompts  *prompt.Registry
	log      *zap.Logger
}

func NewEditor(provider llm.TextProvider, prompts *prompt.Registry, log *zap.Logger) *Editor {
	return &Editor{provider: provider, prompts: prompts, log: ensureLogger(log)}
}

// CreateEDL builds one candidate per style (safe, creative, balanced) over
// the given scenes. candidates maps scene ID to its variations; qaByURL
// maps video URL to its QA verdict; sceneAudio may be nil.
func (e *Editor) CreateEDL(ctx context.Context, scenes []models.Scene, candidates map[string][]models.GeneratedVideo, qaByURL map[string]models.QAResult, request string, sceneAudio map[string]*models.SceneAudio) (*models.EDL, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: no scenes to edit", models.ErrInvalidInput)
	}

	edl := &models.EDL{
		EDLID:           uuid.New().String(),
		TotalScenes:     len(scenes),
		OriginalRequest: request,
		ExportFormats:   []string{"json", "fcpxml", "cmx3600", "davinci", "premiere"},
	}

	for _, style := range []models.EditStyle{models.StyleSafe, models.StyleCreative, models.StyleBalanced} {
		cand, err := e.buildCandidate(ctx, style, scenes, candidates, qaByURL, request, sceneAudio)
		if err != nil {
			return nil, err
		}
		edl.Candidates = append(edl.Candidates, *cand)
	}

	edl.RecommendedCandidateID = recommendCandidate(edl.Candidates)
	e.log.Info("editor produced EDL",
		zap.String("edl_id", edl.EDLID),
		zap.Int("candidates", len(edl.Candidates)),
		zap.String("recommended", edl.RecommendedCandidateID))
	return edl, nil
}

func (e *Editor) buildCandidate(ctx context.Context, style models.EditStyle, scenes []models.Scene, candidates map[string][]models.GeneratedVideo, qaByURL map[string]models.QAResult, request string, sceneAudio map[string]*models.SceneAudio) (*models.EditCandidate, error) {
	cand := &models.EditCandidate{
		CandidateID: fmt.Sprintf("edit_%s", style),
		Name:        fmt.Sprintf("%s cut", capitalize(string(style))),
		Style:       style,
	}

	var startTime, qaSum float64
	var picked int
	for _, scene := range scenes {
		videos := candidates[scene.SceneID]
		if len(videos) == 0 {
			continue
		}
		video := pickVariation(style, videos, qaByURL)
		in, out := resolveTrim(scene, video)

		decision := models.EditDecision{
			SceneID:       scene.SceneID,
			VariationID:   video.VariationID,
			VideoURL:      video.VideoURL,
			InPoint:       in,
			OutPoint:      out,
			TransitionIn:  scene.TransitionIn,
			TransitionOut: scene.TransitionOut,
			StartTime:     startTime,
			Duration:      out - in,
			TextOverlay:   scene.TextOverlay,
		}
		if audio, ok := sceneAudio[scene.SceneID]; ok && audio != nil {
			decision.AudioURL = audio.VoiceoverURL
		}
		cand.Decisions = append(cand.Decisions, decision)

		startTime += decision.Duration
		if qa, ok := qaByURL[video.VideoURL]; ok {
			qaSum += qa.OverallScore
			picked++
		}
	}
	cand.TotalDuration = startTime
	if picked > 0 {
		cand.EstimatedQuality = qaSum / float64(picked)
	}
	cand.Reasoning = e.reasoning(ctx, style, request, cand)
	return cand, nil
}

// pickVariation selects per style: safe takes the highest QA score,
// creative the most interesting variation, balanced weighs both.
func pickVariation(style models.EditStyle, videos []models.GeneratedVideo, qaByURL map[string]models.QAResult) models.GeneratedVideo {
	best := videos[0]
	bestScore := math.Inf(-1)
	for _, v := range videos {
		var score float64
		qa, hasQA := qaByURL[v.VideoURL]
		switch style {
		case models.StyleSafe:
			if hasQA {
				score = qa.OverallScore
			}
		case models.StyleCreative:
			score = interestScore(v)
		default: // balanced
			score = 0.4 * interestScore(v)
			if hasQA {
				score += 0.6 * qa.OverallScore
			}
		}
		if score > bestScore {
			best, bestScore = v, score
		}
	}
	return best
}

// interestScore ranks creative appeal: the provider's own quality estimate
// when present, later variations otherwise (they explore further from the
// baseline prompt).
func interestScore(v models.GeneratedVideo) float64 {
	if v.QualityScore > 0 {
		return v.QualityScore
	}
	return float64(v.VariationID)
}

// resolveTrim computes in/out points. Chained videos literally contain the
// previous scene's tail, so trims offset by NewContentStart and clamp to
// the probed total duration.
func resolveTrim(scene models.Scene, video models.GeneratedVideo) (in, out float64) {
	total := video.TotalVideoDuration
	if total <= 0 {
		total = video.Duration
	}
	if video.ContainsPrevious {
		in = video.NewContentStart
	}
	out = in + scene.DurationSec
	if out > total {
		out = total
	}
	if out < in {
		out = in
	}
	return in, out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func recommendCandidate(cands []models.EditCandidate) string {
	var bestID string
	bestQuality := math.Inf(-1)
	for _, c := range cands {
		if c.Style == models.StyleBalanced {
			return c.CandidateID
		}
		if c.EstimatedQuality > bestQuality {
			bestID, bestQuality = c.CandidateID, c.EstimatedQuality
		}
	}
	return bestID
}

func (e *Editor) reasoning(ctx context.Context, style models.EditStyle, request string, cand *models.EditCandidate) string {
	fallback := fmt.Sprintf("%s cut across %d scenes, estimated quality %.1f", style, len(cand.Decisions), cand.EstimatedQuality)
	if e.provider == nil {
		return fallback
	}

	var summary strings.Builder
	for _, d := range cand.Decisions {
		fmt.Fprintf(&summary, "- %s v%d (%.1fs)\n", d.SceneID, d.VariationID, d.Duration)
	}
	userPrompt, err := e.prompts.RenderUser(prompt.IDEditorCreateEDL, map[string]interface{}{
		"Style":        string(style),
		"Request":      request,
		"SceneSummary": summary.String(),
	})
	if err != nil {
		return fallback
	}
	systemPrompt, _ := e.prompts.SystemPrompt(prompt.IDEditorCreateEDL)
	text, err := e.provider.Query(ctx, userPrompt, systemPrompt, nil)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}
